package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hireloop/interviewd/internal/evaluation"
	"github.com/hireloop/interviewd/internal/interview"
	"github.com/hireloop/interviewd/internal/jobs"
	"github.com/hireloop/interviewd/internal/storage"
	"github.com/hireloop/interviewd/internal/transcription"
)

// --- mocks ---

// stubProvider hands out sequential standalone questions.
type stubProvider struct {
	n int
}

func (p *stubProvider) NextQuestion(_ context.Context, _ string) (interview.Question, error) {
	p.n++
	return interview.Question{Text: fmt.Sprintf("Question %d?", p.n)}, nil
}

type fakeEvaluator struct {
	result evaluation.Evaluation
}

func (f *fakeEvaluator) Evaluate(_ context.Context, _ jobs.Job, _ []interview.ConversationEntry) evaluation.Evaluation {
	return f.result
}

type fakeTranscriber struct {
	text string
	err  error
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ string, _ []byte) (string, error) {
	return f.text, f.err
}

// toggleCatalog can be flipped to simulate a job disappearing from the
// catalog between session start and evaluation.
type toggleCatalog struct {
	*jobs.Catalog
	failFind bool
}

func (c *toggleCatalog) Find(id string) (jobs.Job, error) {
	if c.failFind {
		return jobs.Job{}, jobs.ErrNotFound
	}
	return c.Catalog.Find(id)
}

// --- helpers ---

func newTestDeps(t *testing.T) (Deps, *storage.Store) {
	t.Helper()

	catalog, err := jobs.Load("")
	if err != nil {
		t.Fatalf("loading catalog: %v", err)
	}
	store, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	svc := interview.NewService(interview.Config{
		Catalog:     catalog,
		NewProvider: func(_ jobs.Job, _ string) interview.Provider { return &stubProvider{} },
		Saver:       store,
	})

	return Deps{
		Interviews: svc,
		Catalog:    catalog,
		Evaluator: &fakeEvaluator{result: evaluation.Evaluation{
			Strengths:    []string{"clear communication"},
			Concerns:     []string{},
			OverallScore: 82,
		}},
		Transcriber: &fakeTranscriber{text: "transcribed answer"},
		Store:       store,
	}, store
}

func newTestServer(t *testing.T) (*httptest.Server, Deps) {
	t.Helper()
	deps, _ := newTestDeps(t)
	srv := httptest.NewServer(NewHandler(deps))
	t.Cleanup(srv.Close)
	return srv, deps
}

func postJSON(t *testing.T, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshaling request: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp, decodeBody(t, resp)
}

func getJSON(t *testing.T, url string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	return resp, decodeBody(t, resp)
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading response body: %v", err)
	}
	var out map[string]any
	if len(data) > 0 && data[0] == '{' {
		if err := json.Unmarshal(data, &out); err != nil {
			t.Fatalf("decoding response %q: %v", data, err)
		}
	}
	return out
}

func startSession(t *testing.T, srv *httptest.Server, jobID string) string {
	t.Helper()
	resp, body := postJSON(t, srv.URL+"/api/interviews/start", map[string]string{"job_id": jobID})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start returned %d: %v", resp.StatusCode, body)
	}
	id, _ := body["session_id"].(string)
	if id == "" {
		t.Fatalf("no session_id in start response: %v", body)
	}
	return id
}

// --- tests ---

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := getJSON(t, srv.URL+"/health")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestListJobs(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/jobs")
	if err != nil {
		t.Fatalf("GET /api/jobs: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var list []jobs.Job
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decoding jobs: %v", err)
	}
	if len(list) == 0 {
		t.Fatal("no jobs returned")
	}
	if list[0].ID == "" || list[0].Title == "" {
		t.Errorf("jobs[0] = %+v, missing id or title", list[0])
	}
}

func TestStartInterview(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := postJSON(t, srv.URL+"/api/interviews/start", map[string]string{"job_id": "job_1"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %v", resp.StatusCode, body)
	}
	if body["question"] == nil || body["question"] == "" {
		t.Errorf("question = %v, want opening question", body["question"])
	}
	if body["question_number"] != float64(1) {
		t.Errorf("question_number = %v, want 1", body["question_number"])
	}
	if body["is_complete"] != false {
		t.Errorf("is_complete = %v, want false", body["is_complete"])
	}
	if history, ok := body["conversation_history"].([]any); !ok || len(history) != 0 {
		t.Errorf("conversation_history = %v, want empty array", body["conversation_history"])
	}
}

func TestStartValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, _ := postJSON(t, srv.URL+"/api/interviews/start", map[string]string{"job_id": "nope"})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown job: status = %d, want 404", resp.StatusCode)
	}

	resp, _ = postJSON(t, srv.URL+"/api/interviews/start", map[string]string{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing job_id: status = %d, want 400", resp.StatusCode)
	}
}

func TestAnswerAdvancesInterview(t *testing.T) {
	srv, _ := newTestServer(t)
	id := startSession(t, srv, "job_1")

	resp, body := postJSON(t, srv.URL+"/api/interviews/"+id+"/answer", map[string]string{"answer": "I like Go."})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %v", resp.StatusCode, body)
	}
	if body["question_number"] != float64(2) {
		t.Errorf("question_number = %v, want 2", body["question_number"])
	}
	history, ok := body["conversation_history"].([]any)
	if !ok || len(history) != 1 {
		t.Fatalf("conversation_history = %v, want 1 entry", body["conversation_history"])
	}
	entry := history[0].(map[string]any)
	if entry["answer"] != "I like Go." {
		t.Errorf("entry = %v", entry)
	}
}

func TestAnswerValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	id := startSession(t, srv, "job_1")

	resp, _ := postJSON(t, srv.URL+"/api/interviews/"+id+"/answer", map[string]string{"answer": "   "})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("blank answer: status = %d, want 400", resp.StatusCode)
	}

	resp, _ = postJSON(t, srv.URL+"/api/interviews/unknown/answer", map[string]string{"answer": "hello"})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown session: status = %d, want 404", resp.StatusCode)
	}
}

func TestAnswerAfterEndConflicts(t *testing.T) {
	srv, _ := newTestServer(t)
	id := startSession(t, srv, "job_1")

	resp, _ := postJSON(t, srv.URL+"/api/interviews/"+id+"/end", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("end status = %d", resp.StatusCode)
	}

	resp, body := postJSON(t, srv.URL+"/api/interviews/"+id+"/answer", map[string]string{"answer": "too late"})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want 409: %v", resp.StatusCode, body)
	}
}

func TestEndAndGetSession(t *testing.T) {
	srv, _ := newTestServer(t)
	id := startSession(t, srv, "job_1")

	resp, body := postJSON(t, srv.URL+"/api/interviews/"+id+"/end", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("end status = %d: %v", resp.StatusCode, body)
	}
	if body["session_id"] != id {
		t.Errorf("session_id = %v, want %s", body["session_id"], id)
	}

	resp, body = getJSON(t, srv.URL+"/api/interviews/"+id)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d", resp.StatusCode)
	}
	if body["is_complete"] != true {
		t.Errorf("is_complete = %v, want true", body["is_complete"])
	}
	if body["question"] != nil {
		t.Errorf("question = %v, want null after completion", body["question"])
	}
}

func TestGetSessionFallsBackToStore(t *testing.T) {
	deps, store := newTestDeps(t)
	srv := httptest.NewServer(NewHandler(deps))
	t.Cleanup(srv.Close)

	// A session persisted by an earlier process run: not in the live
	// service, only in the store.
	ended := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	snap := interview.Snapshot{
		SessionID: "old-session",
		JobID:     "job_1",
		JobTitle:  "Software Engineer",
		ConversationHistory: []interview.ConversationEntry{
			{Question: "Why us?", Answer: "Because Go.", QuestionNumber: 1},
		},
		TotalQuestionCount:      1,
		StandaloneQuestionCount: 1,
		StartedAt:               ended.Add(-time.Hour),
		EndedAt:                 &ended,
		IsComplete:              true,
	}
	if err := store.SaveSession(snap); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}

	resp, body := getJSON(t, srv.URL+"/api/interviews/old-session")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %v", resp.StatusCode, body)
	}
	if body["session_id"] != "old-session" || body["is_complete"] != true {
		t.Errorf("body = %v", body)
	}
}

func TestListSessions(t *testing.T) {
	srv, _ := newTestServer(t)
	startSession(t, srv, "job_1")
	startSession(t, srv, "job_2")

	resp, err := http.Get(srv.URL + "/api/interviews/")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var list []storage.SessionSummary
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decoding sessions: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("got %d sessions, want 2", len(list))
	}
}

func TestEvaluation(t *testing.T) {
	srv, _ := newTestServer(t)
	id := startSession(t, srv, "job_1")

	// Not complete yet.
	resp, _ := getJSON(t, srv.URL+"/api/interviews/"+id+"/evaluation")
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("incomplete session: status = %d, want 409", resp.StatusCode)
	}

	postJSON(t, srv.URL+"/api/interviews/"+id+"/end", nil)

	resp, body := getJSON(t, srv.URL+"/api/interviews/"+id+"/evaluation")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %v", resp.StatusCode, body)
	}
	if body["overall_score"] != float64(82) {
		t.Errorf("overall_score = %v, want 82", body["overall_score"])
	}
	strengths, ok := body["strengths"].([]any)
	if !ok || len(strengths) != 1 {
		t.Errorf("strengths = %v", body["strengths"])
	}

	resp, _ = getJSON(t, srv.URL+"/api/interviews/unknown/evaluation")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown session: status = %d, want 404", resp.StatusCode)
	}
}

func TestEvaluationJobGone(t *testing.T) {
	deps, _ := newTestDeps(t)
	catalog := &toggleCatalog{Catalog: deps.Catalog.(*jobs.Catalog)}
	deps.Catalog = catalog
	srv := httptest.NewServer(NewHandler(deps))
	t.Cleanup(srv.Close)

	id := startSession(t, srv, "job_1")
	postJSON(t, srv.URL+"/api/interviews/"+id+"/end", nil)

	catalog.failFind = true
	resp, body := getJSON(t, srv.URL+"/api/interviews/"+id+"/evaluation")
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422: %v", resp.StatusCode, body)
	}
}

func TestBearerAuth(t *testing.T) {
	deps, _ := newTestDeps(t)
	deps.Token = "secret-token"
	srv := httptest.NewServer(NewHandler(deps))
	t.Cleanup(srv.Close)

	// Health stays open.
	resp, _ := getJSON(t, srv.URL+"/health")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d, want 200", resp.StatusCode)
	}

	resp, _ = getJSON(t, srv.URL+"/api/jobs")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/jobs", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	authResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("authed GET: %v", err)
	}
	authResp.Body.Close()
	if authResp.StatusCode != http.StatusOK {
		t.Errorf("with token: status = %d, want 200", authResp.StatusCode)
	}
}

func multipartUpload(t *testing.T, url, filename string, content []byte) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("creating form file: %v", err)
	}
	part.Write(content)
	mw.Close()

	resp, err := http.Post(url, mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func TestTranscribe(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := multipartUpload(t, srv.URL+"/api/transcribe", "answer.webm", []byte("audio-bytes"))
	body := decodeBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %v", resp.StatusCode, body)
	}
	if body["text"] != "transcribed answer" {
		t.Errorf("text = %v", body["text"])
	}
}

func TestTranscribeBusy(t *testing.T) {
	deps, _ := newTestDeps(t)
	deps.Transcriber = &fakeTranscriber{err: fmt.Errorf("rate limited: %w", transcription.ErrBusy)}
	srv := httptest.NewServer(NewHandler(deps))
	t.Cleanup(srv.Close)

	resp := multipartUpload(t, srv.URL+"/api/transcribe", "answer.webm", []byte("audio"))
	decodeBody(t, resp)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", resp.StatusCode)
	}
	if resp.Header.Get("Retry-After") == "" {
		t.Error("missing Retry-After header")
	}
}

func TestTranscribeRejectsBadUpload(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/transcribe", "application/json", bytes.NewReader([]byte("{}")))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	decodeBody(t, resp)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestResumeExtractRejectsNonPDF(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := multipartUpload(t, srv.URL+"/api/resumes/extract", "resume.pdf", []byte("not a pdf"))
	decodeBody(t, resp)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}
