package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/abhisek/quizmate/internal/gateway"
	"github.com/abhisek/quizmate/internal/store"
)

var credentialRE = regexp.MustCompile(`^[A-Za-z0-9]+$`)

var errBadPassword = errors.New("wrong password")

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Course   string `json:"course"`
}

func (c credentials) validate() error {
	if c.Username == "" || c.Password == "" {
		return errors.New("username and password are required")
	}
	if !credentialRE.MatchString(c.Username) || !credentialRE.MatchString(c.Password) {
		return errors.New("username and password may contain only letters and digits")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// handleLogin authenticates a user. Unknown users are registered on the
// spot; a known user with the wrong password is rejected.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	s.authenticate(w, r, false)
}

// handleRegister creates a user and logs in. It fails when the name is taken.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	s.authenticate(w, r, true)
}

func (s *Server) authenticate(w http.ResponseWriter, r *http.Request, registerOnly bool) {
	var cred credentials
	if err := decodeBody(r, &cred); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := cred.validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	course := cred.Course
	if course == "" {
		course = r.URL.Query().Get("course")
	}
	if course == "" {
		course = s.catalog.Default()
	}
	if _, ok := s.catalog.Course(course); !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown course %q", course))
		return
	}

	var (
		user *store.User
		err  error
	)
	if registerOnly {
		user, err = s.register(r.Context(), cred)
	} else {
		user, err = s.login(r.Context(), cred)
	}
	switch {
	case errors.Is(err, store.ErrExists):
		writeError(w, http.StatusConflict, "username already exists")
		return
	case errors.Is(err, errBadPassword):
		writeError(w, http.StatusUnauthorized, "username exists but the password is wrong")
		return
	case err != nil:
		s.internalError(w, r, "authenticate", err)
		return
	}

	now := s.now()
	ls := &store.LoginSession{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		Course:    course,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.SessionTTL),
	}
	if err := s.logins.Create(r.Context(), ls); err != nil {
		s.internalError(w, r, "create session", err)
		return
	}
	if info, ok := r.Context().Value(requestKey).(*requestInfo); ok {
		info.userID = user.ID
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    ls.Token,
		Path:     "/",
		Expires:  ls.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, gateway.LoginResult{OK: true, UID: user.ID, Course: course})
}

func (s *Server) login(ctx context.Context, cred credentials) (*store.User, error) {
	user, err := s.users.ByName(ctx, cred.Username)
	if errors.Is(err, store.ErrNotFound) {
		user, err = s.register(ctx, cred)
		if errors.Is(err, store.ErrExists) {
			// Lost a race with a concurrent first login.
			return s.login(ctx, cred)
		}
		return user, err
	}
	if err != nil {
		return nil, err
	}
	if !checkPassword(user.PasswordHash, cred.Password) {
		return nil, errBadPassword
	}
	return user, nil
}

func (s *Server) register(ctx context.Context, cred credentials) (*store.User, error) {
	hash, err := hashPassword(cred.Password)
	if err != nil {
		return nil, err
	}
	user, err := s.users.Create(ctx, cred.Username, hash)
	if err != nil {
		return nil, err
	}
	s.log.Info("user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := sessionToken(r); token != "" {
		if err := s.logins.Delete(r.Context(), token); err != nil && !errors.Is(err, store.ErrNotFound) {
			s.internalError(w, r, "delete session", err)
			return
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, okBody{OK: true})
}
