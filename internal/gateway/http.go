package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/abhisek/quizmate/internal/quiz"
)

// ClientConfig configures an HTTP gateway client.
type ClientConfig struct {
	// BaseURL is the server root, e.g. "http://127.0.0.1:5000".
	BaseURL string

	// Course selects the question set every request applies to.
	Course string

	// Timeout bounds a single request. Default: 15s.
	Timeout time.Duration
}

// Client implements Gateway and Catalog over the JSON HTTP API served by
// package server. Login state is kept in a cookie jar.
type Client struct {
	base   *url.URL
	course string
	http   *http.Client
}

var (
	_ Gateway = (*Client)(nil)
	_ Catalog = (*Client)(nil)
)

// NewClient creates a Client. It does not contact the server.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("gateway base URL is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		base:   base,
		course: cfg.Course,
		http:   &http.Client{Jar: jar, Timeout: timeout},
	}, nil
}

// Course returns the course the client is bound to.
func (c *Client) Course() string {
	return c.course
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Course   string `json:"course,omitempty"`
}

// LoginResult is returned by Login and Register.
type LoginResult struct {
	OK     bool   `json:"ok"`
	UID    int    `json:"uid"`
	Course string `json:"course"`
}

// Login authenticates, registering the user on first use.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	var out LoginResult
	err := c.do(ctx, http.MethodPost, "/api/login", nil, loginRequest{username, password, c.course}, &out)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &out, nil
}

// Register creates a new account and logs in.
func (c *Client) Register(ctx context.Context, username, password string) (*LoginResult, error) {
	var out LoginResult
	err := c.do(ctx, http.MethodPost, "/api/register", nil, loginRequest{username, password, c.course}, &out)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return &out, nil
}

// Logout ends the login session.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/logout", nil, struct{}{}, nil)
}

func (c *Client) FetchUserData(ctx context.Context) (*quiz.UserData, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/user/data", nil, nil, &raw); err != nil {
		return nil, fmt.Errorf("fetch user data: %w", err)
	}
	return quiz.DecodeUserData(raw)
}

func (c *Client) FetchFlags(ctx context.Context) (quiz.Flags, error) {
	var f quiz.Flags
	if err := c.do(ctx, http.MethodGet, "/api/flags", nil, nil, &f); err != nil {
		return quiz.Flags{}, fmt.Errorf("fetch flags: %w", err)
	}
	return f, nil
}

func (c *Client) FetchQuestion(ctx context.Context, id quiz.QuestionID, reveal bool) (*quiz.Question, error) {
	q := url.Values{"uid": {string(id)}}
	if reveal {
		q.Set("reveal", "1")
	}
	var out quiz.Question
	if err := c.do(ctx, http.MethodGet, "/api/question", q, nil, &out); err != nil {
		return nil, fmt.Errorf("fetch question %s: %w", id, err)
	}
	return &out, nil
}

type answerRequest struct {
	UID      quiz.QuestionID `json:"uid"`
	Selected quiz.Selection  `json:"selected"`
}

func (c *Client) SubmitAnswer(ctx context.Context, id quiz.QuestionID, sel quiz.Selection) (quiz.Grade, error) {
	var g quiz.Grade
	if err := c.do(ctx, http.MethodPost, "/api/answer", nil, answerRequest{id, sel}, &g); err != nil {
		return quiz.Grade{}, fmt.Errorf("submit answer %s: %w", id, err)
	}
	return g, nil
}

type starRequest struct {
	UID    quiz.QuestionID `json:"uid"`
	Action string          `json:"action"`
}

func (c *Client) ToggleStar(ctx context.Context, id quiz.QuestionID) (quiz.StarResult, error) {
	var r quiz.StarResult
	if err := c.do(ctx, http.MethodPost, "/api/star", nil, starRequest{id, "toggle"}, &r); err != nil {
		return quiz.StarResult{}, fmt.Errorf("toggle star %s: %w", id, err)
	}
	return r, nil
}

type saveRequest struct {
	Key quiz.ProgressionKey `json:"key"`
	Pos int                 `json:"pos"`
}

func (c *Client) SaveProgress(ctx context.Context, key quiz.ProgressionKey, pos int) error {
	if err := c.do(ctx, http.MethodPost, "/api/progress/save", nil, saveRequest{key, pos}, nil); err != nil {
		return fmt.Errorf("save progress %s@%d: %w", key, pos, err)
	}
	return nil
}

func (c *Client) Units(ctx context.Context) ([]Unit, error) {
	var out struct {
		Units []Unit `json:"units"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/units", nil, nil, &out); err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	return out.Units, nil
}

func (c *Client) StartProgression(ctx context.Context, req StartRequest) (*StartResult, error) {
	var out StartResult
	if err := c.do(ctx, http.MethodPost, "/api/start", nil, req, &out); err != nil {
		return nil, fmt.Errorf("start %s progression: %w", req.Mode, err)
	}
	return &out, nil
}

func (c *Client) ClearUnit(ctx context.Context, unit string) error {
	body := map[string]string{"unit": unit}
	if err := c.do(ctx, http.MethodPost, "/api/clear_unit", nil, body, nil); err != nil {
		return fmt.Errorf("clear unit %s: %w", unit, err)
	}
	return nil
}

func (c *Client) UpdateFlags(ctx context.Context, flags map[string]bool) (quiz.Flags, error) {
	var f quiz.Flags
	if err := c.do(ctx, http.MethodPost, "/api/flags", nil, flags, &f); err != nil {
		return quiz.Flags{}, fmt.Errorf("update flags: %w", err)
	}
	return f, nil
}

// VersionInfo is the server's version report.
type VersionInfo struct {
	API    string `json:"api"`
	Server string `json:"server"`
}

// Version asks the server for its API version. It needs no login.
func (c *Client) Version(ctx context.Context) (*VersionInfo, error) {
	var v VersionInfo
	if err := c.do(ctx, http.MethodGet, "/api/version", nil, nil, &v); err != nil {
		return nil, fmt.Errorf("fetch version: %w", err)
	}
	return &v, nil
}

// CheckVersion fails with *ErrIncompatible when the server's API major
// version differs from APIVersion.
func (c *Client) CheckVersion(ctx context.Context) error {
	v, err := c.Version(ctx)
	if err != nil {
		return err
	}
	return CheckCompatible(v.API)
}

type errorBody struct {
	Error string `json:"error"`
}

// do performs one JSON request. The course is always sent as a query
// parameter so the server never has to guess it from the login session.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := *c.base
	u.Path = c.base.Path + path
	if query == nil {
		query = url.Values{}
	}
	if c.course != "" {
		query.Set("course", c.course)
	}
	u.RawQuery = query.Encode()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &ErrUnavailable{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ErrUnavailable{Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		_ = json.Unmarshal(data, &eb)
		msg := eb.Error
		if msg == "" {
			msg = strings.TrimSpace(string(data))
		}
		return &ErrStatus{Code: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if raw, ok := out.(*json.RawMessage); ok {
		*raw = data
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response (%s): %w", path, strconv.Quote(truncate(string(data), 80)), err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// IsTransient reports whether err is worth retrying: transport failures and
// server-side 5xx responses.
func IsTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var unavail *ErrUnavailable
	if errors.As(err, &unavail) {
		return true
	}
	var st *ErrStatus
	if errors.As(err, &st) {
		return st.Code >= 500
	}
	return false
}
