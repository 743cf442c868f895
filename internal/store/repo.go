package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrExists is returned when a unique row already exists.
	ErrExists = errors.New("already exists")
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	After   int64     // sequence > After
	Before  int64     // sequence < Before
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
	Purpose string    // exact purpose match
}

// User is a registered learner.
type User struct {
	ID           int
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// UserRepo manages accounts.
type UserRepo interface {
	// Create inserts a user. Returns ErrExists when the name is taken.
	Create(ctx context.Context, username, passwordHash string) (*User, error)

	// ByName returns the user or ErrNotFound.
	ByName(ctx context.Context, username string) (*User, error)

	// ByID returns the user or ErrNotFound.
	ByID(ctx context.Context, id int) (*User, error)
}

// LoginSession is an authenticated browser or client session.
type LoginSession struct {
	Token     string
	UserID    int
	Course    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// LoginRepo manages login sessions.
type LoginRepo interface {
	Create(ctx context.Context, ls *LoginSession) error

	// Get returns a live session. Expired sessions count as ErrNotFound.
	Get(ctx context.Context, token string, now time.Time) (*LoginSession, error)

	// SetCourse changes the course remembered for the session.
	SetCourse(ctx context.Context, token, course string) error

	Delete(ctx context.Context, token string) error

	// DeleteExpired removes sessions that expired before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// DocumentRepo stores one user data document per user and course.
type DocumentRepo interface {
	// Load returns the raw document or ErrNotFound.
	Load(ctx context.Context, userID int, course string) ([]byte, error)

	// Save inserts or replaces the document.
	Save(ctx context.Context, userID int, course string, doc []byte) error
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEventRecord is a stored LLM request event.
type LLMRequestEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEventRecord, error)

	// GetLLMEvent returns one event, or nil when it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEventRecord, error)
}
