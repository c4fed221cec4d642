package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hireloop/interviewd/internal/evaluation"
	"github.com/hireloop/interviewd/internal/interview"
	"github.com/hireloop/interviewd/internal/jobs"
	"github.com/hireloop/interviewd/internal/resume"
	"github.com/hireloop/interviewd/internal/storage"
	"github.com/hireloop/interviewd/internal/transcription"
)

const (
	maxRequestBodySize = 1 << 20  // 1MB
	maxResumeBodySize  = 10 << 20 // 10MB
	maxAudioBodySize   = 26 << 20 // 25MB audio plus multipart overhead
)

// JobCatalog abstracts the job catalog for the API layer.
type JobCatalog interface {
	Find(id string) (jobs.Job, error)
	All() []jobs.Job
}

// Evaluator scores completed interviews.
type Evaluator interface {
	Evaluate(ctx context.Context, job jobs.Job, history []interview.ConversationEntry) evaluation.Evaluation
}

// Transcriber converts candidate audio to text.
type Transcriber interface {
	Transcribe(ctx context.Context, filename string, audio []byte) (string, error)
}

// SessionReader reads persisted session snapshots. Used as a fallback
// when a session is no longer live in memory.
type SessionReader interface {
	GetSession(id string) (interview.Snapshot, error)
	ListRecentSessions(limit int) ([]storage.SessionSummary, error)
}

// Deps holds the collaborators for the HTTP API. Interviews and Catalog
// are required; the rest disable their endpoints' functionality when nil.
type Deps struct {
	Interviews  *interview.Service
	Catalog     JobCatalog
	Evaluator   Evaluator
	Transcriber Transcriber   // optional; transcription returns 501 when nil
	Store       SessionReader // optional
	Token       string        // optional; empty disables auth
	Logger      *slog.Logger
}

// interviewResponse is the shared response shape for session state.
// Question is null once the interview is complete.
type interviewResponse struct {
	SessionID           string                        `json:"session_id"`
	Question            *string                       `json:"question"`
	QuestionNumber      int                           `json:"question_number"`
	IsComplete          bool                          `json:"is_complete"`
	ConversationHistory []interview.ConversationEntry `json:"conversation_history"`
}

// NewHandler returns the HTTP API for interview sessions.
func NewHandler(deps Deps) http.Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Get("/health", handleHealth)

	r.Route("/api", func(r chi.Router) {
		if deps.Token != "" {
			r.Use(BearerAuth(deps.Token))
		}

		r.Get("/jobs", handleListJobs(deps))

		r.Route("/interviews", func(r chi.Router) {
			r.Get("/", handleListSessions(deps))
			r.Post("/start", handleStart(deps))
			r.Get("/{id}", handleGetSession(deps))
			r.Post("/{id}/answer", handleAnswer(deps))
			r.Post("/{id}/end", handleEnd(deps))
			r.Get("/{id}/evaluation", handleEvaluation(deps))
		})

		r.Post("/transcribe", handleTranscribe(deps))
		r.Post("/resumes/extract", handleResumeExtract(deps))
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func handleListJobs(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(deps.Catalog.All())
	}
}

func handleStart(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req struct {
			JobID      string `json:"job_id"`
			ResumeText string `json:"resume_text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.JobID == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "job_id is required")
			return
		}

		result, err := deps.Interviews.Start(r.Context(), req.JobID, req.ResumeText)
		if err != nil {
			interviewError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(interviewResponse{
			SessionID:           result.SessionID,
			Question:            &result.Question,
			QuestionNumber:      result.QuestionNumber,
			IsComplete:          false,
			ConversationHistory: result.ConversationHistory,
		})
	}
}

func handleAnswer(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		id := chi.URLParam(r, "id")

		var req struct {
			Answer string `json:"answer"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		result, err := deps.Interviews.SubmitAnswer(r.Context(), id, req.Answer)
		if err != nil {
			interviewError(w, err)
			return
		}

		resp := interviewResponse{
			SessionID:           id,
			QuestionNumber:      result.QuestionNumber,
			IsComplete:          result.InterviewComplete,
			ConversationHistory: result.ConversationHistory,
		}
		if !result.InterviewComplete {
			resp.Question = &result.Question
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}

func handleEnd(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		result, err := deps.Interviews.End(id)
		if err != nil {
			interviewError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"session_id": result.SessionID,
			"message":    result.Message,
		})
	}
}

func handleGetSession(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		snap, err := loadSnapshot(deps.Interviews, deps.Store, id)
		if err != nil {
			interviewError(w, err)
			return
		}

		resp := interviewResponse{
			SessionID:           snap.SessionID,
			QuestionNumber:      snap.CurrentQuestionNumber,
			IsComplete:          snap.IsComplete,
			ConversationHistory: snap.ConversationHistory,
		}
		if !snap.IsComplete {
			q := snap.CurrentQuestion
			resp.Question = &q
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}

func handleListSessions(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Store == nil {
			httpError(w, http.StatusNotImplemented, "api_error", "session persistence not configured")
			return
		}

		limit := parseIntParam(r, "limit", 20, 100)
		sessions, err := deps.Store.ListRecentSessions(limit)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list sessions: %v", err)
			return
		}
		if sessions == nil {
			sessions = []storage.SessionSummary{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(sessions)
	}
}

func handleEvaluation(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		snap, err := loadSnapshot(deps.Interviews, deps.Store, id)
		if err != nil {
			interviewError(w, err)
			return
		}
		if !snap.IsComplete {
			httpError(w, http.StatusConflict, "invalid_state_error", "interview is not complete")
			return
		}

		job, err := deps.Catalog.Find(snap.JobID)
		if err != nil {
			// The catalog changed since the session started; the transcript
			// exists but can no longer be scored against a job description.
			httpError(w, http.StatusUnprocessableEntity, "invalid_state_error", "job %q is no longer available", snap.JobID)
			return
		}

		result := deps.Evaluator.Evaluate(r.Context(), job, snap.ConversationHistory)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(struct {
			SessionID    string   `json:"session_id"`
			JobID        string   `json:"job_id"`
			JobTitle     string   `json:"job_title"`
			Strengths    []string `json:"strengths"`
			Concerns     []string `json:"concerns"`
			OverallScore float64  `json:"overall_score"`
		}{
			SessionID:    snap.SessionID,
			JobID:        snap.JobID,
			JobTitle:     snap.JobTitle,
			Strengths:    result.Strengths,
			Concerns:     result.Concerns,
			OverallScore: result.OverallScore,
		})
	}
}

func handleTranscribe(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Transcriber == nil {
			httpError(w, http.StatusNotImplemented, "api_error", "transcription not configured")
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxAudioBodySize)
		defer r.Body.Close()

		filename, data, err := readUpload(r)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
			return
		}

		text, err := deps.Transcriber.Transcribe(r.Context(), filename, data)
		switch {
		case err == nil:
		case errors.Is(err, transcription.ErrUnsupportedFormat), errors.Is(err, transcription.ErrAudioTooLarge):
			httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
			return
		case errors.Is(err, transcription.ErrBusy):
			w.Header().Set("Retry-After", "30")
			httpError(w, http.StatusServiceUnavailable, "provider_error", "%v", err)
			return
		default:
			httpError(w, http.StatusBadGateway, "provider_error", "%v", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"text": text})
	}
}

func handleResumeExtract(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxResumeBodySize)
		defer r.Body.Close()

		_, data, err := readUpload(r)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
			return
		}

		text, err := resume.Extract(data)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"text": text})
	}
}

// readUpload pulls the "file" part out of a multipart request.
func readUpload(r *http.Request) (filename string, data []byte, err error) {
	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, errors.New(`multipart field "file" is required`)
	}
	defer file.Close()

	data, err = io.ReadAll(file)
	if err != nil {
		return "", nil, errors.New("reading uploaded file failed")
	}
	return header.Filename, data, nil
}

// loadSnapshot resolves a session against the live service first, then
// falls back to persisted snapshots for sessions from earlier runs.
func loadSnapshot(svc *interview.Service, store SessionReader, id string) (interview.Snapshot, error) {
	snap, err := svc.Session(id)
	if err == nil {
		return snap, nil
	}
	if errors.Is(err, interview.ErrNotFound) && store != nil {
		return store.GetSession(id)
	}
	return interview.Snapshot{}, err
}

func parseIntParam(r *http.Request, key string, defaultVal, maxVal int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return defaultVal
	}
	if maxVal > 0 && v > maxVal {
		return maxVal
	}
	return v
}
