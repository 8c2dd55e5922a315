package store

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"entgo.io/ent/dialect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/readcheck/internal/content"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), Options{
		Driver: DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "readcheck.db"),
	})
	require.NoError(t, err, "open test store")
	t.Cleanup(func() { s.Close() })
	return s
}

func samplePassage() *content.Passage {
	return &content.Passage{
		Title:            "The River",
		Body:             "The river starts in the mountains and flows to the sea.",
		Grade:            "4",
		TeacherID:        "teacher-1",
		TimeLimitMinutes: 15,
		Questions: []*content.Question{
			{Prompt: "Where does the river start?", Kind: content.KindClosed, Options: []string{"The sea", "The mountains", "A lake"}, CorrectIndex: 1},
			{Prompt: "Where does the river end?", Kind: content.KindOpen, ReferenceAnswer: "In the sea"},
		},
	}
}

func createPassage(t *testing.T, s *Store) *content.Passage {
	t.Helper()
	p := samplePassage()
	require.NoError(t, s.PassageRepo().Create(context.Background(), p))
	return p
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: "oracle"})
	require.Error(t, err)
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"foreign_keys", "1"},
		{"journal_mode", "wal"},
		{"synchronous", "1"}, // NORMAL = 1
		{"busy_timeout", "5000"},
	}

	for _, tt := range tests {
		var got string
		require.NoError(t, db.QueryRow("PRAGMA "+tt.pragma).Scan(&got), "PRAGMA %s", tt.pragma)
		assert.Equal(t, tt.want, got, "PRAGMA %s", tt.pragma)
	}
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t,
		"file:/tmp/x.db?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_txlock=immediate",
		sqliteDSN("/tmp/x.db"))
	assert.Contains(t, sqliteDSN("file:test.db?mode=rwc"), "file:test.db?mode=rwc&_pragma=busy_timeout(5000)")
}

func TestPassageRoundTrip(t *testing.T) {
	s := openTestStore(t)
	p := createPassage(t, s)

	require.NotEmpty(t, p.ID)
	require.NotEmpty(t, p.Questions[0].ID)

	got, err := s.PassageRepo().PassageWithQuestions(context.Background(), p.ID)
	require.NoError(t, err)

	assert.Equal(t, "The River", got.Title)
	assert.Equal(t, "4", got.Grade)
	assert.Equal(t, 15, got.TimeLimitMinutes)
	require.Len(t, got.Questions, 2)

	closed := got.Questions[0]
	assert.Equal(t, content.KindClosed, closed.Kind)
	assert.Equal(t, []string{"The sea", "The mountains", "A lake"}, closed.Options)
	assert.Equal(t, 1, closed.CorrectIndex)
	assert.Equal(t, 0, closed.Position)

	open := got.Questions[1]
	assert.Equal(t, content.KindOpen, open.Kind)
	assert.Empty(t, open.Options)
	assert.Equal(t, "In the sea", open.ReferenceAnswer)
	assert.Equal(t, 1, open.Position)
}

func TestPassageNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.PassageRepo().PassageWithQuestions(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPassageList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := createPassage(t, s)
	empty := &content.Passage{Title: "No questions", Body: "b", Grade: "2", CreatedAt: first.CreatedAt.Add(time.Minute)}
	require.NoError(t, s.PassageRepo().Create(ctx, empty))

	list, err := s.PassageRepo().List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, empty.ID, list[0].ID, "newest first")
	assert.Equal(t, 0, list[0].QuestionCount)
	assert.Equal(t, first.ID, list[1].ID)
	assert.Equal(t, 2, list[1].QuestionCount)
}

func TestListPassagesQueryUsesJoinAlias(t *testing.T) {
	unquote := strings.NewReplacer("`", "", `"`, "")
	for _, d := range []string{dialect.SQLite, dialect.Postgres} {
		t.Run(d, func(t *testing.T) {
			query, _ := listPassagesQuery(d)
			query = unquote.Replace(query)
			assert.Contains(t, query, "COUNT(q.id)")
			assert.Contains(t, query, "LEFT JOIN questions AS q ON p.id = q.passage_id")
			assert.NotContains(t, query, "questions.id")
		})
	}
}

func attemptInput(p *content.Passage, student string) AttemptInput {
	return AttemptInput{
		StudentID:       student,
		PassageID:       p.ID,
		Score:           1,
		TotalQuestions:  2,
		PercentageScore: 50,
		Answers: []AnswerInput{
			{QuestionID: p.Questions[0].ID, Kind: content.KindClosed, Answer: "The mountains", IsCorrect: true},
			{QuestionID: p.Questions[1].ID, Kind: content.KindOpen, Answer: "a lake", IsCorrect: false, Feedback: "It flows to the sea."},
		},
	}
}

func TestRecordNumbersAttemptsPerStudentAndPassage(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	p := createPassage(t, s)
	repo := s.AttemptRepo()

	for want := 1; want <= 3; want++ {
		a, err := repo.Record(ctx, attemptInput(p, "student-1"))
		require.NoError(t, err)
		assert.Equal(t, want, a.AttemptNumber)
		assert.True(t, a.IsCompleted)
	}

	other, err := repo.Record(ctx, attemptInput(p, "student-2"))
	require.NoError(t, err)
	assert.Equal(t, 1, other.AttemptNumber, "numbering is per student")

	list, err := repo.ListAttempts(ctx, "student-1", p.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, 3, list[0].AttemptNumber, "latest first")
	assert.Equal(t, 50, list[0].PercentageScore)

	answers, err := repo.AttemptAnswers(ctx, list[0].ID)
	require.NoError(t, err)
	require.Len(t, answers, 2)
	assert.Equal(t, "The mountains", answers[0].Answer)
	assert.True(t, answers[0].IsCorrect)
	assert.Equal(t, content.KindOpen, answers[1].Kind)
	assert.Equal(t, "It flows to the sea.", answers[1].Feedback)
}

func TestRecordConcurrentNumberingIsGapless(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	p := createPassage(t, s)

	const n = 12
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers []int
		errs    []error
	)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Each goroutine uses its own repo; they share the store's lock.
			a, err := s.AttemptRepo().Record(ctx, attemptInput(p, "student-1"))
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			numbers = append(numbers, a.AttemptNumber)
		}()
	}
	wg.Wait()

	require.Empty(t, errs)
	sort.Ints(numbers)
	want := make([]int, n)
	for i := range want {
		want[i] = i + 1
	}
	assert.Equal(t, want, numbers)
}

func TestRecordRollsBackOnFailure(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	p := createPassage(t, s)

	// The attempt row inserts fine; the answers insert then fails.
	_, err := s.DB().Exec("DROP TABLE answer_records")
	require.NoError(t, err)

	_, err = s.AttemptRepo().Record(ctx, attemptInput(p, "student-1"))
	require.Error(t, err)

	var count int
	require.NoError(t, s.DB().QueryRow("SELECT COUNT(*) FROM attempts").Scan(&count))
	assert.Zero(t, count, "attempt row must be rolled back")
}

func TestRecordUnknownPassage(t *testing.T) {
	s := openTestStore(t)
	p := samplePassage()
	p.ID = "missing"
	p.Questions[0].ID, p.Questions[1].ID = "q1", "q2"

	_, err := s.AttemptRepo().Record(context.Background(), attemptInput(p, "student-1"))
	require.Error(t, err)
}

func TestUniqueAttemptNumberIndex(t *testing.T) {
	s := openTestStore(t)
	p := createPassage(t, s)

	insert := `INSERT INTO attempts (id, student_id, passage_id, attempt_number, score, total_questions, percentage_score, is_completed, created_at)
		VALUES (?, 'student-1', ?, 1, 0, 2, 0, 1, ?)`
	_, err := s.DB().Exec(insert, "a1", p.ID, time.Now())
	require.NoError(t, err)
	_, err = s.DB().Exec(insert, "a2", p.ID, time.Now())
	require.Error(t, err, "duplicate attempt number must be rejected")
}

func TestAnswerText(t *testing.T) {
	q := &content.Question{Kind: content.KindClosed, Options: []string{"red", "green"}}

	assert.Equal(t, "green", AnswerText(q, content.Choice(1)))
	assert.Equal(t, "7", AnswerText(q, content.Choice(7)))
	assert.Equal(t, "-1", AnswerText(q, content.Choice(-1)))
	assert.Equal(t, "free text", AnswerText(&content.Question{Kind: content.KindOpen}, content.Text("free text")))
	assert.Equal(t, "", AnswerText(q, content.Answer{}))
}

func TestLLMEvents(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.EventRepo()

	events := []LLMRequestEventData{
		{Provider: "gemini", Model: "gemini-2.5-flash", Purpose: "open-answer-judgment", InputTokens: 100, OutputTokens: 10, LatencyMs: 300, Success: true, RequestBody: "[user]\nq", ResponseBody: `{"isCorrect":true}`},
		{Provider: "gemini", Model: "gemini-2.5-flash", Purpose: "open-answer-judgment", LatencyMs: 100, Success: false, ErrorMessage: "overloaded"},
		{Provider: "openai", Model: "gpt-4o-mini", Purpose: "other", InputTokens: 50, OutputTokens: 5, LatencyMs: 200, Success: true},
	}
	for _, e := range events {
		require.NoError(t, repo.AppendLLMRequest(ctx, e))
	}

	list, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 2})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "gpt-4o-mini", list[0].Model, "newest first")
	assert.Empty(t, list[0].RequestBody, "list omits bodies")

	older, err := repo.QueryLLMEvents(ctx, QueryOpts{Before: list[1].ID})
	require.NoError(t, err)
	require.Len(t, older, 1)

	got, err := repo.GetLLMEvent(ctx, older[0].ID)
	require.NoError(t, err)
	assert.Equal(t, `{"isCorrect":true}`, got.ResponseBody)
	assert.Equal(t, "[user]\nq", got.RequestBody)

	_, err = repo.GetLLMEvent(ctx, 9999)
	require.ErrorIs(t, err, ErrNotFound)

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	require.NoError(t, err)
	require.Len(t, byPurpose, 2)
	assert.Equal(t, "open-answer-judgment", byPurpose[0].Key)
	assert.Equal(t, 2, byPurpose[0].Calls)
	assert.Equal(t, 1, byPurpose[0].Failures)
	assert.Equal(t, 100, byPurpose[0].InputTokens)
	assert.Equal(t, int64(200), byPurpose[0].AvgLatencyMs)

	byModel, err := repo.LLMUsageByModel(ctx)
	require.NoError(t, err)
	require.Len(t, byModel, 2)
}
