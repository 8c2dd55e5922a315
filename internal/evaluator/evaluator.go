// Package evaluator decides whether a free-text answer to an open question
// is correct. It never fails: judgment errors degrade to an incorrect
// verdict carrying an explanatory message.
package evaluator

import (
	"bytes"
	"context"
	"strings"
	"text/template"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/abhisek/readcheck/internal/judgment"
)

// MaxFeedbackLength is the longest feedback kept from a verdict, in characters.
const MaxFeedbackLength = 300

// Student-facing messages.
const (
	ReferenceMissingFeedback = "No reference answer is stored for this open question."
	TechnicalErrorFeedback   = "Automatic grading failed. Please try again later."
	DefaultSuccessFeedback   = "Graded successfully."
)

// Judge produces a verdict for one judgment request.
type Judge interface {
	Judge(ctx context.Context, req judgment.Request) (judgment.Verdict, error)
}

// Outcome classifies how one evaluation ended.
type Outcome string

const (
	OutcomeJudged           Outcome = "judged"
	OutcomeReferenceMissing Outcome = "reference_missing"
	OutcomeFailed           Outcome = "failed"
)

// Observer is notified of every evaluation outcome.
type Observer interface {
	ObserveJudgment(outcome Outcome)
}

// Input is one open answer to evaluate.
type Input struct {
	QuestionPrompt  string
	PassageBody     string
	ReferenceAnswer string
	StudentAnswer   string
}

// Evaluation is the evaluator's verdict.
type Evaluation struct {
	IsCorrect bool
	Feedback  string
}

// Evaluator grades open answers through a Judge.
type Evaluator struct {
	judge    Judge
	log      *zap.Logger
	observer Observer
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithLogger sets the logger used for degraded evaluations.
func WithLogger(l *zap.Logger) Option {
	return func(e *Evaluator) { e.log = l }
}

// WithObserver registers an outcome observer.
func WithObserver(o Observer) Option {
	return func(e *Evaluator) { e.observer = o }
}

// New creates an Evaluator.
func New(judge Judge, opts ...Option) *Evaluator {
	e := &Evaluator{judge: judge, log: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate judges one open answer. A blank reference answer is marked
// incorrect without calling the judge.
func (e *Evaluator) Evaluate(ctx context.Context, in Input) Evaluation {
	if strings.TrimSpace(in.ReferenceAnswer) == "" {
		e.observe(OutcomeReferenceMissing)
		return Evaluation{IsCorrect: false, Feedback: ReferenceMissingFeedback}
	}

	prompt, err := buildPrompt(in)
	if err == nil {
		var v judgment.Verdict
		v, err = e.judge.Judge(ctx, judgment.Request{System: systemPrompt, Prompt: prompt})
		if err == nil {
			e.observe(OutcomeJudged)
			return Evaluation{IsCorrect: v.IsCorrect, Feedback: normalizeFeedback(v.Feedback)}
		}
	}

	e.log.Warn("open answer evaluation degraded", zap.Error(err))
	e.observe(OutcomeFailed)
	return Evaluation{IsCorrect: false, Feedback: TechnicalErrorFeedback}
}

func (e *Evaluator) observe(o Outcome) {
	if e.observer != nil {
		e.observer.ObserveJudgment(o)
	}
}

// normalizeFeedback truncates to MaxFeedbackLength characters and
// substitutes the default message for empty feedback.
func normalizeFeedback(s string) string {
	if utf8.RuneCountInString(s) > MaxFeedbackLength {
		s = string([]rune(s)[:MaxFeedbackLength])
	}
	if s == "" {
		return DefaultSuccessFeedback
	}
	return s
}

const systemPrompt = `You grade reading comprehension answers written by primary school students.
You are given a question, the passage it is about, the teacher's reference answer and the student's answer.

Grading rules:
- Ignore spelling and grammar mistakes when the key information matches.
- Mark the answer correct when it is logically or semantically right, even if it is not worded like the reference answer.
- Respond only with JSON that matches the given schema. Do not write any other text.
- Keep feedback short and address it to the student.`

var promptTemplate = template.Must(template.New("open-answer").Parse(`Question: """{{.QuestionPrompt}}"""
Passage: """{{.PassageBody}}"""
Reference answer: """{{.ReferenceAnswer}}"""
Student answer: """{{.StudentAnswer}}"""
`))

func buildPrompt(in Input) (string, error) {
	var buf bytes.Buffer
	if err := promptTemplate.Execute(&buf, in); err != nil {
		return "", err
	}
	return buf.String(), nil
}
