package quiz

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Selection is a learner's choice or an authoritative answer: a single
// option key for single-choice and true/false questions, or a set of keys
// for multi-select questions.
type Selection struct {
	keys  []string
	multi bool
}

// Single returns a single-key selection.
func Single(key string) Selection {
	return Selection{keys: []string{key}}
}

// Multi returns a key-set selection. Duplicates are dropped and keys are
// kept sorted so that two equal sets always compare and print the same.
func Multi(keys ...string) Selection {
	set := make([]string, 0, len(keys))
	for _, k := range keys {
		if !slices.Contains(set, k) {
			set = append(set, k)
		}
	}
	slices.Sort(set)
	return Selection{keys: set, multi: true}
}

// IsZero reports whether nothing was selected.
func (s Selection) IsZero() bool {
	return len(s.keys) == 0
}

// IsMulti reports whether this is a key-set selection.
func (s Selection) IsMulti() bool {
	return s.multi
}

// Key returns the selected key of a single selection, or "" for a set.
func (s Selection) Key() string {
	if s.multi || len(s.keys) == 0 {
		return ""
	}
	return s.keys[0]
}

// Keys returns a copy of the selected keys.
func (s Selection) Keys() []string {
	return slices.Clone(s.keys)
}

// Contains reports whether key is part of the selection.
func (s Selection) Contains(key string) bool {
	return slices.Contains(s.keys, key)
}

// Equal compares two selections. If either side is a set the comparison is
// order-independent set equality; otherwise the single keys must match.
func (s Selection) Equal(other Selection) bool {
	if s.multi || other.multi {
		a, b := Multi(s.keys...), Multi(other.keys...)
		return slices.Equal(a.keys, b.keys)
	}
	return s.Key() == other.Key()
}

func (s Selection) String() string {
	if !s.multi {
		return s.Key()
	}
	return strings.Join(s.keys, ", ")
}

func (s Selection) MarshalJSON() ([]byte, error) {
	switch {
	case s.multi:
		if s.keys == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(s.keys)
	case len(s.keys) == 0:
		return []byte("null"), nil
	default:
		return json.Marshal(s.keys[0])
	}
}

func (s *Selection) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode selection: %w", err)
	}
	switch v := raw.(type) {
	case nil:
		*s = Selection{}
	case string:
		*s = Single(v)
	case []any:
		keys := make([]string, 0, len(v))
		for _, item := range v {
			k, ok := item.(string)
			if !ok {
				return fmt.Errorf("decode selection: non-string key %v", item)
			}
			keys = append(keys, k)
		}
		*s = Multi(keys...)
	default:
		return fmt.Errorf("decode selection: unexpected %T", raw)
	}
	return nil
}
