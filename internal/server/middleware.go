package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/quizmate/internal/store"
)

// SessionCookie is the name of the login cookie.
const SessionCookie = "quizmate_session"

type contextKey string

const (
	requestKey contextKey = "request"
	loginKey   contextKey = "login"
)

// requestInfo is filled in as the request moves through the middleware
// chain so the access log can report the user.
type requestInfo struct {
	id     string
	userID int
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		info := &requestInfo{id: uuid.NewString()}
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		w.Header().Set("X-Request-ID", info.id)

		next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), requestKey, info)))

		attrs := []any{
			"request_id", info.id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if info.userID != 0 {
			attrs = append(attrs, "user_id", info.userID)
		}
		if rec.status >= 500 {
			s.log.Error("request", attrs...)
		} else {
			s.log.Info("request", attrs...)
		}
	})
}

// sessionToken gets the login token from the Authorization header or the
// session cookie.
func sessionToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return c.Value
}

// requireUser rejects requests without a live login session and stores
// the session in the request context.
func (s *Server) requireUser(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := sessionToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "not logged in")
			return
		}
		ls, err := s.logins.Get(r.Context(), token, s.now())
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "session expired")
			return
		}
		if err != nil {
			s.internalError(w, r, "load session", err)
			return
		}
		if info, ok := r.Context().Value(requestKey).(*requestInfo); ok {
			info.userID = ls.UserID
		}
		next(w, r.WithContext(context.WithValue(r.Context(), loginKey, ls)))
	})
}

func loginFromContext(ctx context.Context) *store.LoginSession {
	ls, _ := ctx.Value(loginKey).(*store.LoginSession)
	return ls
}
