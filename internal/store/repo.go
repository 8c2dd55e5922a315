package store

import (
	"context"
	"errors"
	"time"

	"github.com/abhisek/readcheck/internal/content"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // id > After
	Before int64     // id < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// PassageSummary is a passage without its body or questions.
type PassageSummary struct {
	ID            string
	Title         string
	Grade         string
	QuestionCount int
	CreatedAt     time.Time
}

// PassageRepo stores passages and their questions.
type PassageRepo interface {
	// Create inserts the passage and its questions, assigning missing IDs,
	// positions and timestamps.
	Create(ctx context.Context, p *content.Passage) error

	// PassageWithQuestions returns the passage with questions in display
	// order, or ErrNotFound.
	PassageWithQuestions(ctx context.Context, id string) (*content.Passage, error)

	// List returns passage summaries, newest first.
	List(ctx context.Context) ([]PassageSummary, error)
}

// AnswerInput is one graded answer to persist.
type AnswerInput struct {
	QuestionID string
	Kind       content.Kind
	Answer     string
	IsCorrect  bool
	Feedback   string
}

// AttemptInput is everything needed to persist one graded submission.
type AttemptInput struct {
	StudentID       string
	PassageID       string
	Score           int
	TotalQuestions  int
	PercentageScore int

	// Answers are stored in the given order.
	Answers []AnswerInput
}

// Attempt is a persisted grading of one submission.
type Attempt struct {
	ID              string
	StudentID       string
	PassageID       string
	AttemptNumber   int
	Score           int
	TotalQuestions  int
	PercentageScore int
	IsCompleted     bool
	CreatedAt       time.Time
}

// AnswerRecord is a stored answer belonging to an attempt.
type AnswerRecord struct {
	Position   int
	QuestionID string
	Kind       content.Kind
	Answer     string
	IsCorrect  bool
	Feedback   string
}

// AttemptRepo persists attempts.
type AttemptRepo interface {
	// Record assigns the next attempt number for the student and passage and
	// stores the attempt with its answers in a single transaction.
	Record(ctx context.Context, in AttemptInput) (*Attempt, error)

	// ListAttempts returns a student's attempts for a passage, latest first.
	ListAttempts(ctx context.Context, studentID, passageID string) ([]*Attempt, error)

	// AttemptAnswers returns an attempt's answers in position order.
	AttemptAnswers(ctx context.Context, attemptID string) ([]AnswerRecord, error)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEventRecord is a stored LLM request event.
type LLMRequestEventRecord struct {
	ID        int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates token usage for one purpose or model.
type LLMUsage struct {
	Key          string
	Calls        int
	Failures     int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventRepo records and queries LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEventRecord, error)

	// GetLLMEvent returns one event with its bodies, or ErrNotFound.
	GetLLMEvent(ctx context.Context, id int64) (*LLMRequestEventRecord, error)

	// LLMUsageByPurpose aggregates usage per purpose label.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)

	// LLMUsageByModel aggregates usage per model.
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)
}
