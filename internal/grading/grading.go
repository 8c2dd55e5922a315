// Package grading orchestrates one graded submission: it checks the caller
// and the submission, scores the answers and records the attempt.
package grading

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/readcheck/internal/auth"
	"github.com/abhisek/readcheck/internal/content"
	"github.com/abhisek/readcheck/internal/scoring"
	"github.com/abhisek/readcheck/internal/store"
)

var (
	ErrUnauthorized         = errors.New("sign in to submit answers")
	ErrForbidden            = errors.New("only students can submit answers")
	ErrNotFound             = errors.New("passage not found")
	ErrIncompleteSubmission = errors.New("answer every question before submitting")
	ErrPersistence          = errors.New("could not save the attempt")
)

// PassageReader loads a passage with its questions in display order.
type PassageReader interface {
	PassageWithQuestions(ctx context.Context, id string) (*content.Passage, error)
}

// AttemptRecorder persists a scored attempt and assigns its number.
type AttemptRecorder interface {
	Record(ctx context.Context, in store.AttemptInput) (*store.Attempt, error)
}

// Scorer grades a complete submission.
type Scorer interface {
	Score(ctx context.Context, p *content.Passage, sub content.Submission) scoring.Outcome
}

// Observer is told how each grading call ended.
type Observer interface {
	ObserveGrading(outcome string, d time.Duration)
}

// Result is returned to the student after grading.
type Result struct {
	// Score is the number of correct answers.
	Score           int              `json:"score"`
	TotalQuestions  int              `json:"totalQuestions"`
	TotalClosed     int              `json:"totalClosed"`
	PercentageScore int              `json:"percentageScore"`
	AttemptID       string           `json:"attemptId"`
	AttemptNumber   int              `json:"attemptNumber"`
	Results         []scoring.Result `json:"results"`
}

type Service struct {
	passages PassageReader
	attempts AttemptRecorder
	scorer   Scorer
	log      *zap.Logger
	observer Observer
}

type Option func(*Service)

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.log = l }
}

func WithObserver(o Observer) Option {
	return func(s *Service) { s.observer = o }
}

func NewService(passages PassageReader, attempts AttemptRecorder, scorer Scorer, opts ...Option) *Service {
	s := &Service{
		passages: passages,
		attempts: attempts,
		scorer:   scorer,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GradeSubmission grades sub for passageID on behalf of p and records the
// attempt. Caller and submission checks all run before any answer is judged.
func (s *Service) GradeSubmission(ctx context.Context, p auth.Principal, passageID string, sub content.Submission) (*Result, error) {
	start := time.Now()
	res, err := s.grade(ctx, p, passageID, sub)
	s.observe(err, time.Since(start))
	return res, err
}

func (s *Service) grade(ctx context.Context, p auth.Principal, passageID string, sub content.Submission) (*Result, error) {
	if !p.Authenticated() {
		return nil, ErrUnauthorized
	}
	if p.Role != auth.RoleStudent {
		return nil, ErrForbidden
	}

	passage, err := s.passages.PassageWithQuestions(ctx, passageID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load passage: %w", ErrPersistence, err)
	}

	if !sub.Covers(passage.Questions) {
		return nil, ErrIncompleteSubmission
	}

	log := s.log.With(
		zap.String("student_id", p.ID),
		zap.String("passage_id", passage.ID),
	)

	outcome := s.scorer.Score(ctx, passage, sub)

	in := store.AttemptInput{
		StudentID:       p.ID,
		PassageID:       passage.ID,
		Score:           outcome.CorrectCount,
		TotalQuestions:  outcome.TotalQuestions,
		PercentageScore: outcome.PercentageScore,
		Answers:         make([]store.AnswerInput, len(passage.Questions)),
	}
	for i, q := range passage.Questions {
		r := outcome.Results[i]
		in.Answers[i] = store.AnswerInput{
			QuestionID: q.ID,
			Kind:       q.Kind,
			Answer:     store.AnswerText(q, sub[q.ID]),
			IsCorrect:  r.IsCorrect,
			Feedback:   r.Feedback,
		}
	}

	attempt, err := s.attempts.Record(ctx, in)
	if err != nil {
		log.Error("record attempt failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	log.Info("submission graded",
		zap.String("attempt_id", attempt.ID),
		zap.Int("attempt_number", attempt.AttemptNumber),
		zap.Int("correct", outcome.CorrectCount),
		zap.Int("total", outcome.TotalQuestions),
		zap.Int("percentage", outcome.PercentageScore),
	)

	return &Result{
		Score:           outcome.CorrectCount,
		TotalQuestions:  outcome.TotalQuestions,
		TotalClosed:     outcome.TotalClosed,
		PercentageScore: attempt.PercentageScore,
		AttemptID:       attempt.ID,
		AttemptNumber:   attempt.AttemptNumber,
		Results:         outcome.Results,
	}, nil
}

func (s *Service) observe(err error, d time.Duration) {
	if s.observer == nil {
		return
	}
	s.observer.ObserveGrading(OutcomeLabel(err), d)
}

// OutcomeLabel names the class of a GradeSubmission error for metrics.
func OutcomeLabel(err error) string {
	switch {
	case err == nil:
		return "graded"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrIncompleteSubmission):
		return "incomplete"
	case errors.Is(err, ErrPersistence):
		return "persistence_error"
	}
	return "error"
}
