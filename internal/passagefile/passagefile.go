// Package passagefile reads passages from JSON import files.
//
// A file holds either one passage object or an array of them:
//
//	{
//	  "title": "The Lighthouse",
//	  "content": "...",
//	  "grade": "4",
//	  "timeLimitMinutes": 20,
//	  "questions": [
//	    {"kind": "closed", "prompt": "...", "options": ["a", "b"], "correctIndex": 1},
//	    {"kind": "open", "prompt": "...", "expectedAnswer": "..."}
//	  ]
//	}
package passagefile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/abhisek/readcheck/internal/content"
)

// PassageDoc is one passage as written in an import file.
type PassageDoc struct {
	Title            string        `json:"title" validate:"required,max=200"`
	Content          string        `json:"content" validate:"required"`
	Grade            string        `json:"grade" validate:"required,max=20"`
	TeacherID        string        `json:"teacherId" validate:"omitempty,max=64"`
	ImageURL         string        `json:"imageUrl" validate:"omitempty,url"`
	TimeLimitMinutes int           `json:"timeLimitMinutes" validate:"gte=0,lte=600"`
	Questions        []QuestionDoc `json:"questions" validate:"required,min=1,dive"`
}

// QuestionDoc is one question of a PassageDoc.
type QuestionDoc struct {
	Kind           string   `json:"kind" validate:"required,oneof=closed open CLOSED OPEN"`
	Prompt         string   `json:"prompt" validate:"required"`
	Options        []string `json:"options" validate:"omitempty,dive,required"`
	CorrectIndex   int      `json:"correctIndex"`
	ExpectedAnswer string   `json:"expectedAnswer"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(questionRules, QuestionDoc{})
	return v
}

// questionRules checks the fields whose meaning depends on the kind.
func questionRules(sl validator.StructLevel) {
	q := sl.Current().Interface().(QuestionDoc)
	kind, err := content.ParseKind(q.Kind)
	if err != nil || kind != content.KindClosed {
		return
	}
	if len(q.Options) < 2 {
		sl.ReportError(q.Options, "Options", "options", "min_options", "2")
		return
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		sl.ReportError(q.CorrectIndex, "CorrectIndex", "correctIndex", "option_index", fmt.Sprint(len(q.Options)))
	}
}

// ReadFile parses and validates the passages in path.
func ReadFile(path string) ([]*content.Passage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

// Read parses and validates passages from r.
func Read(r io.Reader) ([]*content.Passage, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read passages: %w", err)
	}

	var docs []PassageDoc
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &docs)
	} else {
		var doc PassageDoc
		err = json.Unmarshal(trimmed, &doc)
		docs = []PassageDoc{doc}
	}
	if err != nil {
		return nil, fmt.Errorf("decode passages: %w", err)
	}
	if len(docs) == 0 {
		return nil, errors.New("no passages in file")
	}

	out := make([]*content.Passage, 0, len(docs))
	for i, d := range docs {
		if err := validate.Struct(d); err != nil {
			return nil, fmt.Errorf("passage %d (%q): %w", i+1, d.Title, describe(err))
		}
		out = append(out, d.Passage())
	}
	return out, nil
}

// Passage converts a validated document into a content.Passage without IDs.
func (d PassageDoc) Passage() *content.Passage {
	p := &content.Passage{
		Title:            strings.TrimSpace(d.Title),
		Body:             d.Content,
		Grade:            strings.TrimSpace(d.Grade),
		TeacherID:        d.TeacherID,
		ImageURL:         d.ImageURL,
		TimeLimitMinutes: d.TimeLimitMinutes,
		Questions:        make([]*content.Question, len(d.Questions)),
	}
	for i, qd := range d.Questions {
		kind, _ := content.ParseKind(qd.Kind)
		q := &content.Question{
			Prompt:   qd.Prompt,
			Kind:     kind,
			Position: i,
		}
		if kind == content.KindClosed {
			q.Options = qd.Options
			q.CorrectIndex = qd.CorrectIndex
		} else {
			q.ReferenceAnswer = qd.ExpectedAnswer
		}
		p.Questions[i] = q
	}
	return p
}

// describe flattens validator errors into one readable message.
func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "PassageDoc.")
		if fe.Param() != "" {
			msgs[i] = fmt.Sprintf("%s failed %s=%s", field, fe.Tag(), fe.Param())
		} else {
			msgs[i] = fmt.Sprintf("%s failed %s", field, fe.Tag())
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
