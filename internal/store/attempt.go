package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"sync"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/abhisek/readcheck/internal/content"
)

// attemptRepo implements AttemptRepo.
//
// Attempt numbers are read and assigned inside the insert transaction. On
// SQLite the shared mutex serializes writers in this process and the
// immediate transaction lock covers other processes; on Postgres a
// transaction-scoped advisory lock keyed on student and passage does both.
// The unique (student_id, passage_id, attempt_number) index rejects anything
// that slips past either.
type attemptRepo struct {
	db      *sql.DB
	dialect string
	mu      *sync.Mutex
}

func (r *attemptRepo) Record(ctx context.Context, in AttemptInput) (*Attempt, error) {
	if r.dialect == dialect.SQLite {
		r.mu.Lock()
		defer r.mu.Unlock()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer rollback(tx)

	if r.dialect == dialect.Postgres {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, in.StudentID+"/"+in.PassageID); err != nil {
			return nil, fmt.Errorf("lock attempt numbering: %w", err)
		}
	}

	d := entsql.Dialect(r.dialect)
	query, args := d.Select("COALESCE(MAX(attempt_number), 0)").
		From(d.Table(attemptsTable)).
		Where(entsql.And(
			entsql.EQ("student_id", in.StudentID),
			entsql.EQ("passage_id", in.PassageID),
		)).
		Query()
	var last int
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&last); err != nil {
		return nil, fmt.Errorf("read last attempt number: %w", err)
	}

	a := &Attempt{
		ID:              uuid.NewString(),
		StudentID:       in.StudentID,
		PassageID:       in.PassageID,
		AttemptNumber:   last + 1,
		Score:           in.Score,
		TotalQuestions:  in.TotalQuestions,
		PercentageScore: in.PercentageScore,
		IsCompleted:     true,
		CreatedAt:       time.Now().UTC(),
	}

	query, args = d.Insert(attemptsTable).
		Columns("id", "student_id", "passage_id", "attempt_number", "score", "total_questions", "percentage_score", "is_completed", "created_at").
		Values(a.ID, a.StudentID, a.PassageID, a.AttemptNumber, a.Score, a.TotalQuestions, a.PercentageScore, a.IsCompleted, a.CreatedAt).
		Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("insert attempt: %w", err)
	}

	if len(in.Answers) > 0 {
		ins := d.Insert(answerRecordTable).
			Columns("attempt_id", "position", "question_id", "kind", "answer", "is_correct", "feedback")
		for i, ans := range in.Answers {
			ins.Values(a.ID, i, ans.QuestionID, string(ans.Kind), ans.Answer, ans.IsCorrect, ans.Feedback)
		}
		query, args = ins.Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return nil, fmt.Errorf("insert answers: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return a, nil
}

func (r *attemptRepo) ListAttempts(ctx context.Context, studentID, passageID string) ([]*Attempt, error) {
	d := entsql.Dialect(r.dialect)
	query, args := d.Select("id", "student_id", "passage_id", "attempt_number", "score", "total_questions", "percentage_score", "is_completed", "created_at").
		From(d.Table(attemptsTable)).
		Where(entsql.And(
			entsql.EQ("student_id", studentID),
			entsql.EQ("passage_id", passageID),
		)).
		OrderBy(entsql.Desc("attempt_number")).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var out []*Attempt
	for rows.Next() {
		a := &Attempt{}
		if err := rows.Scan(&a.ID, &a.StudentID, &a.PassageID, &a.AttemptNumber, &a.Score,
			&a.TotalQuestions, &a.PercentageScore, &a.IsCompleted, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *attemptRepo) AttemptAnswers(ctx context.Context, attemptID string) ([]AnswerRecord, error) {
	d := entsql.Dialect(r.dialect)
	query, args := d.Select("position", "question_id", "kind", "answer", "is_correct", "feedback").
		From(d.Table(answerRecordTable)).
		Where(entsql.EQ("attempt_id", attemptID)).
		OrderBy("position").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	defer rows.Close()

	var out []AnswerRecord
	for rows.Next() {
		var (
			rec  AnswerRecord
			kind string
		)
		if err := rows.Scan(&rec.Position, &rec.QuestionID, &kind, &rec.Answer, &rec.IsCorrect, &rec.Feedback); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		rec.Kind = content.Kind(kind)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// AnswerText is the stored text of a submitted answer: the option text for a
// closed question (the index itself when out of range), the raw text for an
// open one.
func AnswerText(q *content.Question, a content.Answer) string {
	if i, ok := a.Choice(); ok {
		if opt, ok := q.Option(i); ok {
			return opt
		}
		return strconv.Itoa(i)
	}
	if s, ok := a.Text(); ok {
		return s
	}
	return ""
}
