package server

import (
	"fmt"
	"net/http"

	"github.com/abhisek/quizmate/internal/bank"
	"github.com/abhisek/quizmate/internal/gateway"
	"github.com/abhisek/quizmate/internal/mirror"
	"github.com/abhisek/quizmate/internal/progression"
	"github.com/abhisek/quizmate/internal/quiz"
)

// DefaultRandomCount is the size of a random progression when the request
// does not name one.
const DefaultRandomCount = 50

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, gateway.VersionInfo{API: gateway.APIVersion, Server: s.cfg.Version})
}

func (s *Server) handleUnits(w http.ResponseWriter, r *http.Request) {
	c, err := s.course(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	units := c.Units()
	out := make([]gateway.Unit, len(units))
	for i, u := range units {
		out[i] = gateway.Unit{Name: u.Name, Count: len(u.IDs)}
	}
	writeJSON(w, http.StatusOK, map[string][]gateway.Unit{"units": out})
}

// handleUserData returns the learner document. A learner with no
// progression at all starts on the first unit.
func (s *Server) handleUserData(w http.ResponseWriter, r *http.Request) {
	c, err := s.course(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ls := loginFromContext(r.Context())
	ud, err := s.update(r.Context(), ls.UserID, c.Name, func(ud *quiz.UserData) (bool, error) {
		return bootstrap(ud, c), nil
	})
	if err != nil {
		s.fail(w, r, "load user data", err)
		return
	}
	writeJSON(w, http.StatusOK, ud)
}

func bootstrap(ud *quiz.UserData, c *bank.Course) bool {
	if ud.Progressions.Len() > 0 {
		return false
	}
	u, ok := c.FirstUnit()
	if !ok {
		return false
	}
	key := quiz.ProgressionKey(u.Name)
	ud.Progressions.Set(key, &quiz.ProgressionState{List: u.IDs})
	ud.SetActive(key)
	return true
}

func (s *Server) handleFlags(w http.ResponseWriter, r *http.Request) {
	c, err := s.course(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ud, err := s.view(r.Context(), loginFromContext(r.Context()).UserID, c.Name)
	if err != nil {
		s.fail(w, r, "load flags", err)
		return
	}
	writeJSON(w, http.StatusOK, ud.Flags)
}

// handleUpdateFlags merges the named boolean flags into the stored ones.
func (s *Server) handleUpdateFlags(w http.ResponseWriter, r *http.Request) {
	c, err := s.course(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req map[string]bool
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ud, err := s.update(r.Context(), loginFromContext(r.Context()).UserID, c.Name, func(ud *quiz.UserData) (bool, error) {
		for name, v := range req {
			switch name {
			case "reveal_mode":
				ud.Flags.RevealMode = v
			case "show_explanations":
				ud.Flags.ShowExplanations = v
			default:
				return false, badRequest("unknown flag %q", name)
			}
		}
		return len(req) > 0, nil
	})
	if err != nil {
		s.fail(w, r, "update flags", err)
		return
	}
	writeJSON(w, http.StatusOK, ud.Flags)
}

// handleQuestion serves one question. The answer is included only for
// reveal=1; the explanation is always included when known.
func (s *Server) handleQuestion(w http.ResponseWriter, r *http.Request) {
	c, err := s.course(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id := quiz.QuestionID(r.URL.Query().Get("uid"))
	q, ok := c.Question(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no question %q in course %s", id, c.Name))
		return
	}
	if r.URL.Query().Get("reveal") != "1" {
		q = q.Redacted()
	}
	writeJSON(w, http.StatusOK, q)
}

type answerRequest struct {
	UID      quiz.QuestionID `json:"uid"`
	Selected quiz.Selection  `json:"selected"`
}

// handleAnswer grades a submission and records it. The server does not
// enforce answer-once; that is the client's job.
func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	c, err := s.course(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req answerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	q, ok := c.Question(req.UID)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no question %q in course %s", req.UID, c.Name))
		return
	}
	if req.Selected.IsZero() {
		writeError(w, http.StatusBadRequest, "selected is required")
		return
	}

	grade := bank.Grade(q, req.Selected)
	_, err = s.update(r.Context(), loginFromContext(r.Context()).UserID, c.Name, func(ud *quiz.UserData) (bool, error) {
		mirror.New(ud).RecordAnswer(q.ID, quiz.AnswerRecord{Correct: grade.Correct, Selected: req.Selected})
		unit := ud.Unit(unitName(q))
		unit.Studied.Add(q.ID)
		if grade.Correct {
			unit.Wrong.Remove(q.ID)
		} else {
			unit.Wrong.Add(q.ID)
		}
		return true, nil
	})
	if err != nil {
		s.fail(w, r, "record answer", err)
		return
	}
	writeJSON(w, http.StatusOK, grade)
}

func unitName(q *quiz.Question) string {
	if q.Unit == "" {
		return "unknown"
	}
	return q.Unit
}

type starRequest struct {
	UID    quiz.QuestionID `json:"uid"`
	Action string          `json:"action"`
}

// handleStar toggles or queries the star state of a question.
func (s *Server) handleStar(w http.ResponseWriter, r *http.Request) {
	c, err := s.course(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req := starRequest{Action: "toggle"}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	q, ok := c.Question(req.UID)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no question %q in course %s", req.UID, c.Name))
		return
	}

	var res quiz.StarResult
	_, err = s.update(r.Context(), loginFromContext(r.Context()).UserID, c.Name, func(ud *quiz.UserData) (bool, error) {
		m := mirror.New(ud)
		switch req.Action {
		case "query":
			res.Starred = m.IsStarred(q.ID)
			return false, nil
		case "toggle", "":
			res.Starred = !m.IsStarred(q.ID)
			m.SetStarred(q.ID, res.Starred)
			unit := ud.Unit(unitName(q))
			if res.Starred {
				unit.Star.Add(q.ID)
			} else {
				unit.Star.Remove(q.ID)
			}
			return true, nil
		default:
			return false, badRequest("unknown star action %q", req.Action)
		}
	})
	if err != nil {
		s.fail(w, r, "toggle star", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type saveRequest struct {
	Key quiz.ProgressionKey `json:"key"`
	Pos int                 `json:"pos"`
}

// handleProgressSave stores a progression cursor and makes the
// progression current. An unknown key creates an empty entry.
func (s *Server) handleProgressSave(w http.ResponseWriter, r *http.Request) {
	c, err := s.course(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req saveRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Key == "" {
		writeError(w, http.StatusBadRequest, "no progress key provided")
		return
	}
	_, err = s.update(r.Context(), loginFromContext(r.Context()).UserID, c.Name, func(ud *quiz.UserData) (bool, error) {
		st, ok := ud.Progressions.Get(req.Key)
		if !ok || st == nil {
			st = &quiz.ProgressionState{}
			ud.Progressions.Set(req.Key, st)
		}
		st.Position = max(req.Pos, 0)
		ud.SetActive(req.Key)
		return true, nil
	})
	if err != nil {
		s.fail(w, r, "save progress", err)
		return
	}
	writeJSON(w, http.StatusOK, okBody{OK: true})
}

// handleStart creates or resumes a progression and makes it current.
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	c, err := s.course(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req gateway.StartRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Mode == "" {
		req.Mode = gateway.ModeRandom
	}

	ls := loginFromContext(r.Context())
	var res gateway.StartResult
	_, err = s.update(r.Context(), ls.UserID, c.Name, func(ud *quiz.UserData) (bool, error) {
		out, err := start(ud, c, req)
		if err != nil {
			return false, err
		}
		res = *out
		return true, nil
	})
	if err != nil {
		s.fail(w, r, "start progression", err)
		return
	}
	if ls.Course != c.Name {
		if err := s.logins.SetCourse(r.Context(), ls.Token, c.Name); err != nil {
			s.log.Warn("remember course", "error", err)
		}
	}
	writeJSON(w, http.StatusOK, res)
}

func start(ud *quiz.UserData, c *bank.Course, req gateway.StartRequest) (*gateway.StartResult, error) {
	reveal := req.Reveal != nil && *req.Reveal
	var (
		key  quiz.ProgressionKey
		list []quiz.QuestionID
		pos  int
	)

	switch req.Mode {
	case gateway.ModeSequential:
		if req.Unit != "" {
			u, ok := c.Unit(req.Unit)
			if !ok {
				return nil, badRequest("unit %q not found", req.Unit)
			}
			key, list = quiz.ProgressionKey(u.Name), u.IDs
		} else {
			key, list = progression.SequentialAllKey, c.IDs()
		}
		if st, ok := ud.Progressions.Get(key); ok && st != nil {
			list, pos = st.List, st.Position
			if req.Reveal == nil {
				reveal = st.Reveal
			}
			st.Reveal = reveal
			ud.SetActive(key)
			return &gateway.StartResult{Key: key, Mode: req.Mode, List: list, Pos: pos, Reveal: reveal}, nil
		}

	case gateway.ModeTag:
		switch req.Tag {
		case "":
			return nil, badRequest("tag required for tag mode")
		case string(progression.WrongKey):
			list = ud.Global.Wrong.Items()
		case string(progression.StarKey):
			list = ud.Global.Star.Items()
		}
		key = quiz.ProgressionKey(req.Tag)

	case gateway.ModeRandom:
		count := req.Count
		if count <= 0 {
			count = DefaultRandomCount
		}
		key, list = progression.RandomKey(count), c.Sample(count, nil)

	default:
		return nil, badRequest("unknown mode %q", req.Mode)
	}

	if list == nil {
		list = []quiz.QuestionID{}
	}
	ud.Progressions.Set(key, &quiz.ProgressionState{List: list, Position: pos, Reveal: reveal})
	ud.SetActive(key)
	return &gateway.StartResult{Key: key, Mode: req.Mode, List: list, Pos: pos, Reveal: reveal}, nil
}

// handleClearUnit wipes a unit's statistics and the last choices recorded
// for its questions. Clearing a unit with no history is a no-op.
func (s *Server) handleClearUnit(w http.ResponseWriter, r *http.Request) {
	c, err := s.course(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req struct {
		Unit string `json:"unit"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Unit == "" {
		writeError(w, http.StatusBadRequest, "no unit")
		return
	}
	u, ok := c.Unit(req.Unit)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unit %q not found", req.Unit))
		return
	}
	_, err = s.update(r.Context(), loginFromContext(r.Context()).UserID, c.Name, func(ud *quiz.UserData) (bool, error) {
		delete(ud.ByUnit, u.Name)
		for _, id := range u.IDs {
			delete(ud.LastChoice, id)
		}
		return true, nil
	})
	if err != nil {
		s.fail(w, r, "clear unit", err)
		return
	}
	writeJSON(w, http.StatusOK, okBody{OK: true})
}
