package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/abhisek/readcheck/internal/auth"
	"github.com/abhisek/readcheck/internal/content"
	"github.com/abhisek/readcheck/internal/grading"
	"github.com/abhisek/readcheck/internal/store"
)

const maxBodyBytes = 1 << 20

type gradeRequest struct {
	Answers content.Submission `json:"answers" validate:"max=500"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type passageSummaryView struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Grade         string    `json:"grade"`
	QuestionCount int       `json:"questionCount"`
	CreatedAt     time.Time `json:"createdAt"`
}

// passageView is what a student may see of a passage: no correct option
// and no reference answer.
type passageView struct {
	ID               string         `json:"id"`
	Title            string         `json:"title"`
	Content          string         `json:"content"`
	Grade            string         `json:"grade"`
	ImageURL         string         `json:"imageUrl,omitempty"`
	TimeLimitMinutes int            `json:"timeLimitMinutes,omitempty"`
	Questions        []questionView `json:"questions"`
}

type questionView struct {
	ID       string       `json:"id"`
	Position int          `json:"position"`
	Kind     content.Kind `json:"kind"`
	Prompt   string       `json:"prompt"`
	Options  []string     `json:"options,omitempty"`
}

type attemptView struct {
	ID              string       `json:"id"`
	AttemptNumber   int          `json:"attemptNumber"`
	Score           int          `json:"score"`
	TotalQuestions  int          `json:"totalQuestions"`
	PercentageScore int          `json:"percentageScore"`
	CreatedAt       time.Time    `json:"createdAt"`
	Answers         []answerView `json:"answers"`
}

type answerView struct {
	QuestionID string       `json:"questionId"`
	Kind       content.Kind `json:"kind"`
	Answer     string       `json:"answer"`
	IsCorrect  bool         `json:"isCorrect"`
	Feedback   string       `json:"feedback,omitempty"`
}

func (s *Server) listPassages(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.deps.Passages.List(r.Context())
	if err != nil {
		s.internalError(w, "list passages", err)
		return
	}
	out := make([]passageSummaryView, len(summaries))
	for i, p := range summaries {
		out[i] = passageSummaryView(p)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getPassage(w http.ResponseWriter, r *http.Request) {
	p, err := s.deps.Passages.PassageWithQuestions(r.Context(), chi.URLParam(r, "passageID"))
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: grading.ErrNotFound.Error()})
		return
	}
	if err != nil {
		s.internalError(w, "load passage", err)
		return
	}
	writeJSON(w, http.StatusOK, studentView(p))
}

func studentView(p *content.Passage) passageView {
	v := passageView{
		ID:               p.ID,
		Title:            p.Title,
		Content:          p.Body,
		Grade:            p.Grade,
		ImageURL:         p.ImageURL,
		TimeLimitMinutes: p.TimeLimitMinutes,
		Questions:        make([]questionView, len(p.Questions)),
	}
	for i, q := range p.Questions {
		v.Questions[i] = questionView{
			ID:       q.ID,
			Position: q.Position,
			Kind:     q.Kind,
			Prompt:   q.Prompt,
			Options:  q.Options,
		}
	}
	return v
}

func (s *Server) gradePassage(w http.ResponseWriter, r *http.Request) {
	var req gradeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	p := auth.PrincipalFrom(r.Context())
	res, err := s.deps.Grader.GradeSubmission(r.Context(), p, chi.URLParam(r, "passageID"), req.Answers)
	if err != nil {
		s.gradingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) listAttempts(w http.ResponseWriter, r *http.Request) {
	p := auth.PrincipalFrom(r.Context())
	if !p.Authenticated() {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: grading.ErrUnauthorized.Error()})
		return
	}

	ctx := r.Context()
	attempts, err := s.deps.Attempts.ListAttempts(ctx, p.ID, chi.URLParam(r, "passageID"))
	if err != nil {
		s.internalError(w, "list attempts", err)
		return
	}

	out := make([]attemptView, 0, len(attempts))
	for _, a := range attempts {
		records, err := s.deps.Attempts.AttemptAnswers(ctx, a.ID)
		if err != nil {
			s.internalError(w, "load attempt answers", err)
			return
		}
		v := attemptView{
			ID:              a.ID,
			AttemptNumber:   a.AttemptNumber,
			Score:           a.Score,
			TotalQuestions:  a.TotalQuestions,
			PercentageScore: a.PercentageScore,
			CreatedAt:       a.CreatedAt,
			Answers:         make([]answerView, len(records)),
		}
		for i, rec := range records {
			v.Answers[i] = answerView{
				QuestionID: rec.QuestionID,
				Kind:       rec.Kind,
				Answer:     rec.Answer,
				IsCorrect:  rec.IsCorrect,
				Feedback:   rec.Feedback,
			}
		}
		out = append(out, v)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) gradingError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, grading.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, grading.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, grading.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, grading.ErrIncompleteSubmission):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, grading.ErrPersistence):
		s.log.Error("grading failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: grading.ErrPersistence.Error()})
		return
	default:
		s.internalError(w, "grade submission", err)
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	s.log.Error(op+" failed", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
