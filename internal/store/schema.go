package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table and column names shared by the repos and the migration.
const (
	passagesTable     = "passages"
	questionsTable    = "questions"
	attemptsTable     = "attempts"
	answerRecordTable = "answer_records"
	llmEventsTable    = "llm_request_events"
)

var (
	// PassagesColumns holds the columns for the "passages" table.
	PassagesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 36},
		{Name: "title", Type: field.TypeString},
		{Name: "body", Type: field.TypeString, Size: 2147483647},
		{Name: "grade", Type: field.TypeString},
		{Name: "teacher_id", Type: field.TypeString, Default: ""},
		{Name: "image_url", Type: field.TypeString, Default: ""},
		{Name: "time_limit_minutes", Type: field.TypeInt, Default: 0},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// PassagesTable holds the schema information for the "passages" table.
	PassagesTable = &schema.Table{
		Name:       passagesTable,
		Columns:    PassagesColumns,
		PrimaryKey: []*schema.Column{PassagesColumns[0]},
	}

	// QuestionsColumns holds the columns for the "questions" table.
	QuestionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 36},
		{Name: "position", Type: field.TypeInt},
		{Name: "kind", Type: field.TypeEnum, Enums: []string{"CLOSED", "OPEN"}},
		{Name: "prompt", Type: field.TypeString, Size: 2147483647},
		{Name: "options", Type: field.TypeJSON, Nullable: true},
		{Name: "correct_index", Type: field.TypeInt, Default: 0},
		{Name: "reference_answer", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "passage_id", Type: field.TypeString, Size: 36},
	}
	// QuestionsTable holds the schema information for the "questions" table.
	QuestionsTable = &schema.Table{
		Name:       questionsTable,
		Columns:    QuestionsColumns,
		PrimaryKey: []*schema.Column{QuestionsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "questions_passages_questions",
				Columns:    []*schema.Column{QuestionsColumns[7]},
				RefColumns: []*schema.Column{PassagesColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "question_passage_id_position",
				Unique:  true,
				Columns: []*schema.Column{QuestionsColumns[7], QuestionsColumns[1]},
			},
		},
	}

	// AttemptsColumns holds the columns for the "attempts" table.
	AttemptsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 36},
		{Name: "student_id", Type: field.TypeString},
		{Name: "attempt_number", Type: field.TypeInt},
		{Name: "score", Type: field.TypeInt},
		{Name: "total_questions", Type: field.TypeInt},
		{Name: "percentage_score", Type: field.TypeInt},
		{Name: "is_completed", Type: field.TypeBool, Default: true},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "passage_id", Type: field.TypeString, Size: 36},
	}
	// AttemptsTable holds the schema information for the "attempts" table.
	AttemptsTable = &schema.Table{
		Name:       attemptsTable,
		Columns:    AttemptsColumns,
		PrimaryKey: []*schema.Column{AttemptsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "attempts_passages_attempts",
				Columns:    []*schema.Column{AttemptsColumns[8]},
				RefColumns: []*schema.Column{PassagesColumns[0]},
				OnDelete:   schema.NoAction,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "attempt_student_id_passage_id_attempt_number",
				Unique:  true,
				Columns: []*schema.Column{AttemptsColumns[1], AttemptsColumns[8], AttemptsColumns[2]},
			},
		},
	}

	// AnswerRecordsColumns holds the columns for the "answer_records" table.
	AnswerRecordsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "position", Type: field.TypeInt},
		{Name: "question_id", Type: field.TypeString, Size: 36},
		{Name: "kind", Type: field.TypeEnum, Enums: []string{"CLOSED", "OPEN"}},
		{Name: "answer", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "is_correct", Type: field.TypeBool},
		{Name: "feedback", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "attempt_id", Type: field.TypeString, Size: 36},
	}
	// AnswerRecordsTable holds the schema information for the "answer_records" table.
	AnswerRecordsTable = &schema.Table{
		Name:       answerRecordTable,
		Columns:    AnswerRecordsColumns,
		PrimaryKey: []*schema.Column{AnswerRecordsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "answer_records_attempts_answers",
				Columns:    []*schema.Column{AnswerRecordsColumns[7]},
				RefColumns: []*schema.Column{AttemptsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "answerrecord_attempt_id_position",
				Unique:  true,
				Columns: []*schema.Column{AnswerRecordsColumns[7], AnswerRecordsColumns[1]},
			},
		},
	}

	// LlmRequestEventsColumns holds the columns for the "llm_request_events" table.
	LlmRequestEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt},
		{Name: "output_tokens", Type: field.TypeInt},
		{Name: "latency_ms", Type: field.TypeInt64},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: 2147483647, Default: ""},
	}
	// LlmRequestEventsTable holds the schema information for the "llm_request_events" table.
	LlmRequestEventsTable = &schema.Table{
		Name:       llmEventsTable,
		Columns:    LlmRequestEventsColumns,
		PrimaryKey: []*schema.Column{LlmRequestEventsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "llmrequestevent_timestamp",
				Unique:  false,
				Columns: []*schema.Column{LlmRequestEventsColumns[1]},
			},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		PassagesTable,
		QuestionsTable,
		AttemptsTable,
		AnswerRecordsTable,
		LlmRequestEventsTable,
	}
)

func init() {
	QuestionsTable.ForeignKeys[0].RefTable = PassagesTable
	AttemptsTable.ForeignKeys[0].RefTable = PassagesTable
	AnswerRecordsTable.ForeignKeys[0].RefTable = AttemptsTable
}
