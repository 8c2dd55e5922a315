package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type answerKind uint8

const (
	answerNone answerKind = iota
	answerChoice
	answerText
)

// Answer is a student's answer to one question: either a zero-based option
// index or free text. The zero value is "no answer".
type Answer struct {
	kind  answerKind
	index int
	text  string
}

// Choice returns an answer selecting option i.
func Choice(i int) Answer {
	return Answer{kind: answerChoice, index: i}
}

// Text returns a free-text answer.
func Text(s string) Answer {
	return Answer{kind: answerText, text: s}
}

// Choice reports the selected option index.
func (a Answer) Choice() (int, bool) {
	return a.index, a.kind == answerChoice
}

// Text reports the free-text value.
func (a Answer) Text() (string, bool) {
	return a.text, a.kind == answerText
}

// IsZero reports whether the answer carries no value.
func (a Answer) IsZero() bool {
	return a.kind == answerNone
}

func (a Answer) String() string {
	switch a.kind {
	case answerChoice:
		return strconv.Itoa(a.index)
	case answerText:
		return a.text
	}
	return ""
}

// MarshalJSON encodes a choice as a number and text as a string.
func (a Answer) MarshalJSON() ([]byte, error) {
	switch a.kind {
	case answerChoice:
		return json.Marshal(a.index)
	case answerText:
		return json.Marshal(a.text)
	}
	return []byte("null"), nil
}

// UnmarshalJSON accepts a JSON number (option index), a JSON string (free
// text) or null.
func (a *Answer) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*a = Answer{}
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Text(s)
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("answer must be a number or a string: %w", err)
	}
	if f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return fmt.Errorf("answer index %s is not an integer", strings.TrimSpace(string(data)))
	}
	*a = Choice(int(f))
	return nil
}

// Submission maps question IDs to answers for one grading call.
type Submission map[string]Answer

// Answered reports whether the submission holds a usable answer for q:
// an option index for closed questions, non-blank text for open ones.
func (s Submission) Answered(q *Question) bool {
	a, ok := s[q.ID]
	if !ok {
		return false
	}
	switch q.Kind {
	case KindClosed:
		_, ok := a.Choice()
		return ok
	case KindOpen:
		t, ok := a.Text()
		return ok && strings.TrimSpace(t) != ""
	}
	return false
}

// Covers reports whether every question has a usable answer.
func (s Submission) Covers(questions []*Question) bool {
	for _, q := range questions {
		if !s.Answered(q) {
			return false
		}
	}
	return true
}
