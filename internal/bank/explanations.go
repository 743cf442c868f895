package bank

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"

	"github.com/abhisek/quizmate/internal/quiz"
)

// ReadExplanations reads an explanation file: a JSON object mapping
// question uid to text.
func ReadExplanations(path string) (map[quiz.QuestionID]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseExplanations(data)
}

// ParseExplanations decodes the body of an explanation file.
func ParseExplanations(data []byte) (map[quiz.QuestionID]string, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("parse explanations: invalid JSON")
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, fmt.Errorf("parse explanations: top level is not an object")
	}
	out := make(map[quiz.QuestionID]string)
	doc.ForEach(func(k, v gjson.Result) bool {
		out[quiz.QuestionID(k.String())] = v.String()
		return true
	})
	return out, nil
}

// WriteExplanations writes exps to path in the order of ids. Entries not
// listed in ids are appended in no particular order.
func WriteExplanations(path string, ids []quiz.QuestionID, exps map[quiz.QuestionID]string) error {
	data, err := EncodeExplanations(ids, exps)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create explanation dir: %w", err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write explanations: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("write explanations: %w", err)
	}
	return nil
}

// EncodeExplanations renders an indented JSON object in the order of ids.
func EncodeExplanations(ids []quiz.QuestionID, exps map[quiz.QuestionID]string) ([]byte, error) {
	seen := make(map[quiz.QuestionID]bool, len(ids))
	var keys []quiz.QuestionID
	for _, id := range ids {
		if _, ok := exps[id]; ok && !seen[id] {
			keys = append(keys, id)
			seen[id] = true
		}
	}
	for id := range exps {
		if !seen[id] {
			keys = append(keys, id)
		}
	}

	var buf bytes.Buffer
	buf.WriteString("{")
	for i, id := range keys {
		if i > 0 {
			buf.WriteString(",")
		}
		k, err := json.Marshal(string(id))
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(exps[id])
		if err != nil {
			return nil, err
		}
		buf.WriteString("\n  ")
		buf.Write(k)
		buf.WriteString(": ")
		buf.Write(v)
	}
	if len(keys) > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}
