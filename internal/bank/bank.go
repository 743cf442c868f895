// Package bank loads the question banks served by the reference backend.
package bank

import (
	"fmt"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/abhisek/quizmate/internal/quiz"
)

// Layout names the shape of a question bank document.
type Layout string

const (
	// LayoutUnits is {unit: {type label: [question, ...]}}.
	LayoutUnits Layout = "units"

	// LayoutGrouped is {"单选": [{group_index, questions}], "判断": [...]}.
	// Each group becomes a unit named "单选题 PartN" or "判断题 PartN".
	LayoutGrouped Layout = "grouped"
)

// Unit is a named, ordered group of questions.
type Unit struct {
	Name string
	IDs  []quiz.QuestionID
}

// Course is one loaded question bank.
type Course struct {
	Name  string
	Title string

	questions map[quiz.QuestionID]*quiz.Question
	order     []quiz.QuestionID
	units     []Unit
	unitIndex map[string]int
}

// Source describes where a course comes from.
type Source struct {
	Name         string
	Title        string
	Questions    string
	Layout       Layout
	Explanations string
}

// Open reads a course and its optional explanation file from disk.
func Open(src Source) (*Course, error) {
	data, err := os.ReadFile(src.Questions)
	if err != nil {
		return nil, fmt.Errorf("read course %s: %w", src.Name, err)
	}
	c, err := Parse(src.Name, src.Layout, data)
	if err != nil {
		return nil, err
	}
	c.Title = src.Title
	if src.Explanations != "" {
		exps, err := ReadExplanations(src.Explanations)
		if err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		c.SetExplanations(exps)
	}
	return c, nil
}

// Parse decodes a bank document. Unit, question and option order follow
// the document.
func Parse(name string, layout Layout, data []byte) (*Course, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("parse course %s: invalid JSON", name)
	}
	c := &Course{
		Name:      name,
		Title:     name,
		questions: make(map[quiz.QuestionID]*quiz.Question),
		unitIndex: make(map[string]int),
	}

	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, fmt.Errorf("parse course %s: top level is not an object", name)
	}

	var err error
	switch layout {
	case LayoutUnits, "":
		err = c.parseUnits(doc)
	case LayoutGrouped:
		err = c.parseGrouped(doc)
	default:
		err = fmt.Errorf("unknown layout %q", layout)
	}
	if err != nil {
		return nil, fmt.Errorf("parse course %s: %w", name, err)
	}
	return c, nil
}

func (c *Course) parseUnits(doc gjson.Result) error {
	var err error
	doc.ForEach(func(unit, types gjson.Result) bool {
		types.ForEach(func(label, list gjson.Result) bool {
			qt, perr := quiz.ParseQuestionType(label.String())
			if perr != nil {
				err = fmt.Errorf("unit %s: %w", unit.String(), perr)
				return false
			}
			for _, raw := range list.Array() {
				if err = c.add(unit.String(), qt, raw); err != nil {
					return false
				}
			}
			return true
		})
		return err == nil
	})
	return err
}

var groupKinds = map[string]struct {
	qt     quiz.QuestionType
	prefix string
}{
	"单选": {quiz.SingleChoice, "单选题"},
	"判断": {quiz.TrueFalse, "判断题"},
	"多选": {quiz.MultiSelect, "多选题"},
}

func (c *Course) parseGrouped(doc gjson.Result) error {
	var err error
	doc.ForEach(func(kind, groups gjson.Result) bool {
		k, ok := groupKinds[kind.String()]
		if !ok {
			return true
		}
		for _, g := range groups.Array() {
			idx := g.Get("group_index").Int()
			if idx == 0 {
				idx = 1
			}
			unit := fmt.Sprintf("%s Part%d", k.prefix, idx)
			for _, raw := range g.Get("questions").Array() {
				if err = c.add(unit, k.qt, raw); err != nil {
					return false
				}
			}
		}
		return true
	})
	return err
}

// add registers one raw question. Questions without a uid are skipped.
func (c *Course) add(unit string, qt quiz.QuestionType, raw gjson.Result) error {
	uid := raw.Get("uid").String()
	if uid == "" {
		return nil
	}
	id := quiz.QuestionID(uid)

	q := &quiz.Question{
		ID:   id,
		Text: raw.Get("question").String(),
		Type: qt,
		Unit: unit,
	}
	if opts := raw.Get("options"); opts.IsObject() {
		if err := q.Options.UnmarshalJSON([]byte(opts.Raw)); err != nil {
			return fmt.Errorf("question %s: %w", uid, err)
		}
	}
	if len(q.Options) == 0 && qt == quiz.TrueFalse {
		q.Options = append(quiz.Options(nil), quiz.TrueFalseOptions...)
	}

	ans, err := parseAnswer(qt, raw.Get("answer"))
	if err != nil {
		return fmt.Errorf("question %s: %w", uid, err)
	}
	if !ans.IsZero() {
		q.Answer = &ans
	}
	if exp := raw.Get("explanation"); exp.Exists() {
		q.Explanation = exp.String()
	}

	if _, dup := c.questions[id]; !dup {
		c.order = append(c.order, id)
	}
	c.questions[id] = q

	i, ok := c.unitIndex[unit]
	if !ok {
		i = len(c.units)
		c.unitIndex[unit] = i
		c.units = append(c.units, Unit{Name: unit})
	}
	c.units[i].IDs = append(c.units[i].IDs, id)
	return nil
}

// parseAnswer reads a string or array answer. A multi-select answer given
// as one string such as "ACD" is split into its keys.
func parseAnswer(qt quiz.QuestionType, v gjson.Result) (quiz.Selection, error) {
	switch {
	case !v.Exists() || v.Type == gjson.Null:
		return quiz.Selection{}, nil
	case v.IsArray():
		var keys []string
		for _, k := range v.Array() {
			keys = append(keys, k.String())
		}
		return quiz.Multi(keys...), nil
	case v.Type == gjson.String:
		s := strings.TrimSpace(v.String())
		if qt == quiz.MultiSelect {
			var keys []string
			for _, r := range s {
				if !strings.ContainsRune(", 、，", r) {
					keys = append(keys, string(r))
				}
			}
			return quiz.Multi(keys...), nil
		}
		return quiz.Single(s), nil
	}
	return quiz.Selection{}, fmt.Errorf("unsupported answer %s", v.Raw)
}

// Question returns the full question, answer included. The result is a
// copy.
func (c *Course) Question(id quiz.QuestionID) (*quiz.Question, bool) {
	q, ok := c.questions[id]
	if !ok {
		return nil, false
	}
	cp := *q
	cp.Options = append(quiz.Options(nil), q.Options...)
	return &cp, true
}

// Has reports whether id belongs to the course.
func (c *Course) Has(id quiz.QuestionID) bool {
	_, ok := c.questions[id]
	return ok
}

// Len returns the number of questions.
func (c *Course) Len() int {
	return len(c.order)
}

// IDs returns every question id in document order.
func (c *Course) IDs() []quiz.QuestionID {
	return append([]quiz.QuestionID(nil), c.order...)
}

// Units returns the units in document order.
func (c *Course) Units() []Unit {
	out := make([]Unit, len(c.units))
	for i, u := range c.units {
		out[i] = Unit{Name: u.Name, IDs: append([]quiz.QuestionID(nil), u.IDs...)}
	}
	return out
}

// Unit looks up a unit by name.
func (c *Course) Unit(name string) (Unit, bool) {
	i, ok := c.unitIndex[name]
	if !ok {
		return Unit{}, false
	}
	u := c.units[i]
	return Unit{Name: u.Name, IDs: append([]quiz.QuestionID(nil), u.IDs...)}, true
}

// FirstUnit returns the first unit of the course.
func (c *Course) FirstUnit() (Unit, bool) {
	if len(c.units) == 0 {
		return Unit{}, false
	}
	return c.Unit(c.units[0].Name)
}

// Sample draws n distinct question ids with a partial Fisher-Yates
// shuffle. n is capped at the course size.
func (c *Course) Sample(n int, r *rand.Rand) []quiz.QuestionID {
	ids := c.IDs()
	n = min(max(n, 0), len(ids))
	for i := range n {
		var j int
		if r != nil {
			j = i + r.IntN(len(ids)-i)
		} else {
			j = i + rand.IntN(len(ids)-i)
		}
		ids[i], ids[j] = ids[j], ids[i]
	}
	return ids[:n]
}

// SetExplanations attaches explanation texts to known questions.
func (c *Course) SetExplanations(exps map[quiz.QuestionID]string) {
	for id, text := range exps {
		if q, ok := c.questions[id]; ok {
			q.Explanation = text
		}
	}
}

// Grade compares sel with the answer of q. Multi-select answers compare as
// sets; every other type compares the single key.
func Grade(q *quiz.Question, sel quiz.Selection) quiz.Grade {
	if q.Answer == nil {
		return quiz.Grade{}
	}
	return quiz.Grade{Correct: q.Answer.Equal(sel), Answer: *q.Answer}
}
