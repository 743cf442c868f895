package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizmate/internal/quiz"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(ClientConfig{BaseURL: srv.URL, Course: "fundamentals"})
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClientFetchQuestion(t *testing.T) {
	var gotReveal, gotCourse string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/question", func(w http.ResponseWriter, r *http.Request) {
		gotReveal = r.URL.Query().Get("reveal")
		gotCourse = r.URL.Query().Get("course")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"uid":"q7","question":"Pick","type":"single","options":{"B":"two","A":"one"},"answer":"B"}`))
	})
	c := newTestClient(t, mux)

	q, err := c.FetchQuestion(context.Background(), "q7", true)
	require.NoError(t, err)
	assert.Equal(t, "1", gotReveal)
	assert.Equal(t, "fundamentals", gotCourse)
	assert.Equal(t, quiz.QuestionID("q7"), q.ID)
	assert.Equal(t, []string{"B", "A"}, q.Options.Keys())
	require.NotNil(t, q.Answer)
	assert.Equal(t, "B", q.Answer.Key())

	_, err = c.FetchQuestion(context.Background(), "q7", false)
	require.NoError(t, err)
	assert.Equal(t, "", gotReveal)
}

func TestClientSubmitAnswer(t *testing.T) {
	var got answerRequest
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/answer", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		writeJSON(w, http.StatusOK, map[string]any{"correct": false, "answer": []string{"A", "C"}})
	})
	c := newTestClient(t, mux)

	g, err := c.SubmitAnswer(context.Background(), "q1", quiz.Multi("C", "B"))
	require.NoError(t, err)
	assert.Equal(t, quiz.QuestionID("q1"), got.UID)
	assert.Equal(t, []string{"B", "C"}, got.Selected.Keys())
	assert.False(t, g.Correct)
	assert.True(t, g.Answer.Equal(quiz.Multi("A", "C")))
}

func TestClientFetchUserData(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/user/data", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"progress": {"wrong": {"list": ["q2"], "pos": 0}, "unit01": {"list": ["q1","q2"], "pos": 1}},
			"current_progress_key": "unit01",
			"last_choice": {"q1": {"correct": true, "selected": "A"}},
			"global": {"wrong": ["q2"], "star": []},
			"flags": {"reveal_mode": false, "show_explanations": true}
		}`))
	})
	c := newTestClient(t, mux)

	ud, err := c.FetchUserData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []quiz.ProgressionKey{"wrong", "unit01"}, ud.Progressions.Keys())
	assert.Equal(t, quiz.ProgressionKey("unit01"), ud.Active())
	assert.True(t, ud.LastChoice["q1"].Correct)
	assert.True(t, ud.Global.Wrong.Has("q2"))
	assert.True(t, ud.Flags.ShowExplanations)
}

func TestClientStatusErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/flags", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "login required"})
	})
	mux.HandleFunc("GET /api/question", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "unknown question"})
	})
	mux.HandleFunc("POST /api/star", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	c := newTestClient(t, mux)

	_, err := c.FetchFlags(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Contains(t, err.Error(), "login required")

	_, err = c.FetchQuestion(context.Background(), "nope", false)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, IsTransient(err))

	_, err = c.ToggleStar(context.Background(), "q1")
	var st *ErrStatus
	require.True(t, errors.As(err, &st))
	assert.Equal(t, http.StatusInternalServerError, st.Code)
	assert.True(t, IsTransient(err))
}

func TestClientUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewClient(ClientConfig{BaseURL: url})
	require.NoError(t, err)

	err = c.SaveProgress(context.Background(), "unit01", 3)
	var unavail *ErrUnavailable
	assert.True(t, errors.As(err, &unavail))
	assert.True(t, IsTransient(err))
}

func TestClientLoginKeepsCookie(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/login", func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Username != "alice" || req.Password != "pw" {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "bad credentials"})
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "quizmate_session", Value: "tok", Path: "/"})
		writeJSON(w, http.StatusOK, LoginResult{OK: true, UID: 1, Course: req.Course})
	})
	mux.HandleFunc("GET /api/units", func(w http.ResponseWriter, r *http.Request) {
		if ck, err := r.Cookie("quizmate_session"); err != nil || ck.Value != "tok" {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "login required"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"units": []Unit{{Name: "unit01", Count: 12}}})
	})
	c := newTestClient(t, mux)

	_, err := c.Units(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = c.Login(context.Background(), "alice", "wrong")
	assert.ErrorIs(t, err, ErrUnauthorized)

	res, err := c.Login(context.Background(), "alice", "pw")
	require.NoError(t, err)
	assert.Equal(t, "fundamentals", res.Course)

	units, err := c.Units(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Unit{{Name: "unit01", Count: 12}}, units)
}

func TestClientCheckVersion(t *testing.T) {
	api := APIVersion
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, VersionInfo{API: api, Server: "test"})
	})
	c := newTestClient(t, mux)

	require.NoError(t, c.CheckVersion(context.Background()))

	api = "v9.0.0"
	err := c.CheckVersion(context.Background())
	var inc *ErrIncompatible
	require.True(t, errors.As(err, &inc))
	assert.Equal(t, "v9.0.0", inc.Server)
}

func TestCheckCompatible(t *testing.T) {
	tests := []struct {
		server string
		ok     bool
	}{
		{"v1.0.0", true},
		{"v1.9.3", true},
		{"v2.0.0", false},
		{"v0.9.0", false},
		{"1.0.0", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.server, func(t *testing.T) {
			err := CheckCompatible(tt.server)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
