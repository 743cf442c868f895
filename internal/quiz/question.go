package quiz

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// QuestionType is the closed set of question kinds.
type QuestionType int

const (
	SingleChoice QuestionType = iota
	TrueFalse
	MultiSelect
)

// typeLabels maps every accepted wire or bank label to a QuestionType.
// The bank files use Chinese labels; the HTTP API emits the short codes.
var typeLabels = map[string]QuestionType{
	"single":     SingleChoice,
	"选择题":        SingleChoice,
	"单选题":        SingleChoice,
	"单选":         SingleChoice,
	"true_false": TrueFalse,
	"判断题":        TrueFalse,
	"判断":         TrueFalse,
	"multi":      MultiSelect,
	"多选题":        MultiSelect,
	"多选":         MultiSelect,
}

// ParseQuestionType resolves a type label.
func ParseQuestionType(s string) (QuestionType, error) {
	t, ok := typeLabels[s]
	if !ok {
		return 0, fmt.Errorf("unknown question type %q", s)
	}
	return t, nil
}

// String returns the wire code of the type.
func (t QuestionType) String() string {
	switch t {
	case SingleChoice:
		return "single"
	case TrueFalse:
		return "true_false"
	case MultiSelect:
		return "multi"
	default:
		return fmt.Sprintf("QuestionType(%d)", int(t))
	}
}

// Label returns the human-facing name of the type.
func (t QuestionType) Label() string {
	switch t {
	case TrueFalse:
		return "判断题"
	case MultiSelect:
		return "多选题"
	default:
		return "选择题"
	}
}

func (t QuestionType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *QuestionType) UnmarshalText(text []byte) error {
	v, err := ParseQuestionType(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Option is one answer choice.
type Option struct {
	Key  string
	Text string
}

// Options preserves the document order of a question's option object.
type Options []Option

// TrueFalseOptions is used when a true/false question carries no options.
var TrueFalseOptions = Options{{Key: "√", Text: "正确"}, {Key: "×", Text: "错误"}}

// Has reports whether key names one of the options.
func (o Options) Has(key string) bool {
	for _, opt := range o {
		if opt.Key == key {
			return true
		}
	}
	return false
}

// Keys returns the option keys in order.
func (o Options) Keys() []string {
	keys := make([]string, len(o))
	for i, opt := range o {
		keys[i] = opt.Key
	}
	return keys
}

func (o Options) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, opt := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(opt.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(opt.Text)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (o *Options) UnmarshalJSON(data []byte) error {
	res := gjson.ParseBytes(data)
	if res.Type == gjson.Null {
		*o = nil
		return nil
	}
	if !res.IsObject() {
		return fmt.Errorf("decode options: expected object, got %s", res.Type)
	}
	var out Options
	res.ForEach(func(key, value gjson.Result) bool {
		out = append(out, Option{Key: key.String(), Text: value.String()})
		return true
	})
	*o = out
	return nil
}

// Question is a question as served by the gateway. Answer is present only
// when disclosure was authorized for the fetch.
type Question struct {
	ID          QuestionID   `json:"uid"`
	Text        string       `json:"question"`
	Type        QuestionType `json:"type"`
	Options     Options      `json:"options"`
	Answer      *Selection   `json:"answer,omitempty"`
	Explanation string       `json:"explanation,omitempty"`
	Unit        string       `json:"unit,omitempty"`
}

// Disclosed reports whether the authoritative answer is known.
func (q *Question) Disclosed() bool {
	return q.Answer != nil && !q.Answer.IsZero()
}

// Redacted returns a copy of q without its answer.
func (q *Question) Redacted() *Question {
	c := *q
	c.Answer = nil
	return &c
}
