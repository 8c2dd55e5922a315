package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/abhisek/readcheck/internal/content"
)

// passageRepo implements PassageRepo with ent's SQL builder.
type passageRepo struct {
	db      *sql.DB
	dialect string
}

func (r *passageRepo) Create(ctx context.Context, p *content.Passage) error {
	now := time.Now().UTC()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer rollback(tx)

	d := entsql.Dialect(r.dialect)
	query, args := d.Insert(passagesTable).
		Columns("id", "title", "body", "grade", "teacher_id", "image_url", "time_limit_minutes", "created_at", "updated_at").
		Values(p.ID, p.Title, p.Body, p.Grade, p.TeacherID, p.ImageURL, p.TimeLimitMinutes, p.CreatedAt, p.UpdatedAt).
		Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert passage: %w", err)
	}

	if len(p.Questions) > 0 {
		ins := d.Insert(questionsTable).
			Columns("id", "passage_id", "position", "kind", "prompt", "options", "correct_index", "reference_answer")
		for i, q := range p.Questions {
			if q.ID == "" {
				q.ID = uuid.NewString()
			}
			q.PassageID = p.ID
			q.Position = i
			var options any
			if q.Kind == content.KindClosed {
				raw, err := json.Marshal(q.Options)
				if err != nil {
					return fmt.Errorf("marshal options for question %s: %w", q.ID, err)
				}
				options = string(raw)
			}
			ins.Values(q.ID, q.PassageID, q.Position, string(q.Kind), q.Prompt, options, q.CorrectIndex, q.ReferenceAnswer)
		}
		query, args = ins.Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert questions: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *passageRepo) PassageWithQuestions(ctx context.Context, id string) (*content.Passage, error) {
	d := entsql.Dialect(r.dialect)
	query, args := d.Select("id", "title", "body", "grade", "teacher_id", "image_url", "time_limit_minutes", "created_at", "updated_at").
		From(d.Table(passagesTable)).
		Where(entsql.EQ("id", id)).
		Query()

	p := &content.Passage{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&p.ID, &p.Title, &p.Body, &p.Grade, &p.TeacherID, &p.ImageURL, &p.TimeLimitMinutes, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("passage %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query passage: %w", err)
	}

	query, args = d.Select("id", "position", "kind", "prompt", "options", "correct_index", "reference_answer").
		From(d.Table(questionsTable)).
		Where(entsql.EQ("passage_id", id)).
		OrderBy("position").
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		q := &content.Question{PassageID: p.ID}
		var (
			kind    string
			options []byte
		)
		if err := rows.Scan(&q.ID, &q.Position, &kind, &q.Prompt, &options, &q.CorrectIndex, &q.ReferenceAnswer); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if q.Kind, err = content.ParseKind(kind); err != nil {
			return nil, fmt.Errorf("question %s: %w", q.ID, err)
		}
		if len(options) > 0 {
			if err := json.Unmarshal(options, &q.Options); err != nil {
				return nil, fmt.Errorf("question %s options: %w", q.ID, err)
			}
		}
		p.Questions = append(p.Questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questions: %w", err)
	}

	return p, nil
}

func (r *passageRepo) List(ctx context.Context) ([]PassageSummary, error) {
	query, args := listPassagesQuery(r.dialect)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list passages: %w", err)
	}
	defer rows.Close()

	var out []PassageSummary
	for rows.Next() {
		var s PassageSummary
		if err := rows.Scan(&s.ID, &s.Title, &s.Grade, &s.CreatedAt, &s.QuestionCount); err != nil {
			return nil, fmt.Errorf("scan passage: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// listPassagesQuery counts questions per passage, passages without questions
// included. Join aliases must be set before any column is taken, otherwise
// the builder names the joined table t1 while the columns keep its bare name.
func listPassagesQuery(dialect string) (string, []any) {
	d := entsql.Dialect(dialect)
	p := d.Table(passagesTable).As("p")
	q := d.Table(questionsTable).As("q")
	return d.Select(p.C("id"), p.C("title"), p.C("grade"), p.C("created_at"), entsql.Count(q.C("id"))).
		From(p).
		LeftJoin(q).On(p.C("id"), q.C("passage_id")).
		GroupBy(p.C("id"), p.C("title"), p.C("grade"), p.C("created_at")).
		OrderBy(entsql.Desc(p.C("created_at")), p.C("id")).
		Query()
}
