package content

import (
	"fmt"
	"strings"
	"time"
)

// Kind is the question kind. The set is closed.
type Kind string

const (
	KindClosed Kind = "CLOSED"
	KindOpen   Kind = "OPEN"
)

// ParseKind accepts the kind in any letter case.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToUpper(strings.TrimSpace(s))) {
	case KindClosed:
		return KindClosed, nil
	case KindOpen:
		return KindOpen, nil
	}
	return "", fmt.Errorf("unknown question kind %q", s)
}

// Passage is a reading text with its comprehension questions.
// Passages are immutable once created.
type Passage struct {
	ID               string
	Title            string
	Body             string
	Grade            string
	TeacherID        string
	ImageURL         string
	TimeLimitMinutes int
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// Questions are in display order.
	Questions []*Question
}

// Question belongs to exactly one passage.
type Question struct {
	ID        string
	PassageID string
	Prompt    string
	Kind      Kind
	Position  int

	// Options and CorrectIndex are set for closed questions.
	Options      []string
	CorrectIndex int

	// ReferenceAnswer is set for open questions and is never shown to students.
	// It may be empty, in which case every answer is graded incorrect.
	ReferenceAnswer string
}

// Option returns the option text at index i.
func (q *Question) Option(i int) (string, bool) {
	if i < 0 || i >= len(q.Options) {
		return "", false
	}
	return q.Options[i], true
}

// CountKind returns how many of the passage's questions have kind k.
func (p *Passage) CountKind(k Kind) int {
	n := 0
	for _, q := range p.Questions {
		if q.Kind == k {
			n++
		}
	}
	return n
}
