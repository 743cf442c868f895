package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/abhisek/quizmate/internal/bank"
	"github.com/abhisek/quizmate/internal/progression"
	"github.com/abhisek/quizmate/internal/quiz"
	"github.com/abhisek/quizmate/internal/store"
)

// userLock returns the mutex that serializes document updates for one user.
func (s *Server) userLock(userID int) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	return l
}

// course picks the course for a request: the course query parameter, then
// the one remembered by the login session, then the catalog default.
func (s *Server) course(r *http.Request) (*bank.Course, error) {
	name := r.URL.Query().Get("course")
	if name == "" {
		if ls := loginFromContext(r.Context()); ls != nil {
			name = ls.Course
		}
	}
	c, ok := s.catalog.Course(name)
	if !ok {
		return nil, fmt.Errorf("unknown course %q", name)
	}
	return c, nil
}

// update loads the user's document for course, applies fn and saves the
// result when fn reports a change or when loading normalized legacy keys.
// The whole read-modify-write runs under the user's lock.
func (s *Server) update(ctx context.Context, userID int, course string, fn func(ud *quiz.UserData) (bool, error)) (*quiz.UserData, error) {
	l := s.userLock(userID)
	l.Lock()
	defer l.Unlock()

	ud, dirty, err := s.load(ctx, userID, course)
	if err != nil {
		return nil, err
	}
	changed, err := fn(ud)
	if err != nil {
		return nil, err
	}
	if changed || dirty {
		if err := s.save(ctx, userID, course, ud); err != nil {
			return nil, err
		}
	}
	return ud, nil
}

// view is update without changes.
func (s *Server) view(ctx context.Context, userID int, course string) (*quiz.UserData, error) {
	return s.update(ctx, userID, course, func(*quiz.UserData) (bool, error) { return false, nil })
}

func (s *Server) load(ctx context.Context, userID int, course string) (*quiz.UserData, bool, error) {
	raw, err := s.docs.Load(ctx, userID, course)
	if errors.Is(err, store.ErrNotFound) {
		return quiz.NewUserData(), false, nil
	}
	if err != nil {
		return nil, false, err
	}
	ud, err := quiz.DecodeUserData(raw)
	if err != nil {
		return nil, false, err
	}
	dirty := progression.NormalizeUserData(ud, s.catalog.Names()...)
	return ud, dirty, nil
}

func (s *Server) save(ctx context.Context, userID int, course string, ud *quiz.UserData) error {
	doc, err := json.Marshal(ud)
	if err != nil {
		return fmt.Errorf("encode user data: %w", err)
	}
	return s.docs.Save(ctx, userID, course, doc)
}

// errRequest marks an update callback failure caused by the request itself.
type errRequest struct {
	status int
	msg    string
}

func (e *errRequest) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &errRequest{status: http.StatusBadRequest, msg: fmt.Sprintf(format, args...)}
}

// fail writes err as a response: request errors keep their status, anything
// else is an internal error.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	var re *errRequest
	if errors.As(err, &re) {
		writeError(w, re.status, re.msg)
		return
	}
	s.internalError(w, r, op, err)
}
