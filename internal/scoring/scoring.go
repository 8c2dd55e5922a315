// Package scoring computes per-question correctness and the aggregate score
// of a complete submission.
package scoring

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/readcheck/internal/content"
	"github.com/abhisek/readcheck/internal/evaluator"
)

// MaxOpenConcurrency caps in-flight open-answer judgments.
const MaxOpenConcurrency = 3

// OpenEvaluator judges one open answer and never fails.
type OpenEvaluator interface {
	Evaluate(ctx context.Context, in evaluator.Input) evaluator.Evaluation
}

// Result is the verdict for one question.
type Result struct {
	QuestionID string       `json:"questionId"`
	IsCorrect  bool         `json:"isCorrect"`
	Feedback   string       `json:"feedback,omitempty"`
	Kind       content.Kind `json:"kind"`
}

// Outcome is the scored submission. Results are in passage question order.
type Outcome struct {
	Results         []Result
	CorrectCount    int
	TotalQuestions  int
	TotalClosed     int
	PercentageScore int
}

// Engine scores submissions.
type Engine struct {
	open        OpenEvaluator
	concurrency int
}

// Option configures an Engine.
type Option func(*Engine)

// WithOpenConcurrency sets how many open answers may be judged at once,
// clamped to [1, MaxOpenConcurrency]. The default is 1.
func WithOpenConcurrency(n int) Option {
	return func(e *Engine) {
		e.concurrency = min(max(n, 1), MaxOpenConcurrency)
	}
}

// New creates an Engine that judges open answers with open.
func New(open OpenEvaluator, opts ...Option) *Engine {
	e := &Engine{open: open, concurrency: 1}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Score grades sub against p's questions. Closed questions are scored first,
// then open questions in passage order. The submission is assumed complete;
// an answer of the wrong shape counts as incorrect.
func (e *Engine) Score(ctx context.Context, p *content.Passage, sub content.Submission) Outcome {
	results := make([]Result, len(p.Questions))

	var open []int
	for i, q := range p.Questions {
		results[i] = Result{QuestionID: q.ID, Kind: q.Kind}
		if q.Kind == content.KindClosed {
			results[i].IsCorrect = ClosedCorrect(q, sub[q.ID])
			continue
		}
		open = append(open, i)
	}

	g := &errgroup.Group{}
	g.SetLimit(e.concurrency)
	for _, i := range open {
		q := p.Questions[i]
		text, _ := sub[q.ID].Text()
		in := evaluator.Input{
			QuestionPrompt:  q.Prompt,
			PassageBody:     p.Body,
			ReferenceAnswer: q.ReferenceAnswer,
			StudentAnswer:   text,
		}
		g.Go(func() error {
			ev := e.open.Evaluate(ctx, in)
			results[i].IsCorrect = ev.IsCorrect
			results[i].Feedback = ev.Feedback
			return nil
		})
	}
	_ = g.Wait()

	out := Outcome{
		Results:        results,
		TotalQuestions: len(p.Questions),
		TotalClosed:    p.CountKind(content.KindClosed),
	}
	for _, r := range results {
		if r.IsCorrect {
			out.CorrectCount++
		}
	}
	out.PercentageScore = Percentage(out.CorrectCount, out.TotalQuestions)
	return out
}

// ClosedCorrect reports whether a is the correct option of q. Text answers
// and out-of-range indices are incorrect.
func ClosedCorrect(q *content.Question, a content.Answer) bool {
	i, ok := a.Choice()
	if !ok {
		return false
	}
	if _, inRange := q.Option(i); !inRange && len(q.Options) > 0 {
		return false
	}
	return i == q.CorrectIndex
}

// Percentage returns round(correct / total * 100), or 0 when total is 0.
func Percentage(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}
