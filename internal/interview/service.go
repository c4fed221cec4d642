package interview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hireloop/interviewd/internal/jobs"
)

// Provider generates interview questions for a single session. One
// provider is created per session and keeps its own memory of prior
// exchanges; the service never replays history into it.
type Provider interface {
	// NextQuestion returns the next question given the candidate's
	// previous answer. An empty previousAnswer requests the opening
	// question and must never be treated as a real answer.
	NextQuestion(ctx context.Context, previousAnswer string) (Question, error)
}

// ProviderFactory builds a Provider bound to a job. candidateContext
// optionally carries resume text supplied at session start.
type ProviderFactory func(job jobs.Job, candidateContext string) Provider

// JobFinder resolves job ids against the catalog.
type JobFinder interface {
	Find(id string) (jobs.Job, error)
}

// SessionSaver persists point-in-time session snapshots. Saves are best
// effort: a failed save is logged, never surfaced to the caller.
type SessionSaver interface {
	SaveSession(snap Snapshot) error
}

// Config wires the service's collaborators. Catalog and NewProvider are
// required; Policy, Saver, and Logger fall back to defaults.
type Config struct {
	Catalog     JobFinder
	NewProvider ProviderFactory
	Policy      Policy       // zero value means DefaultPolicy
	Saver       SessionSaver // optional
	Logger      *slog.Logger // optional
}

// StartResult is returned by Start. The opening question is pending, not
// yet answered, so the history is always empty.
type StartResult struct {
	SessionID           string
	Question            string
	QuestionNumber      int
	ConversationHistory []ConversationEntry
}

// AnswerResult is returned by SubmitAnswer. When InterviewComplete is
// true, Question is empty and QuestionNumber is the number of the
// question that was just answered.
type AnswerResult struct {
	Question            string
	QuestionNumber      int
	InterviewComplete   bool
	ConversationHistory []ConversationEntry
}

// EndResult is returned by End.
type EndResult struct {
	SessionID string
	Message   string
}

// session pairs a live snapshot with its owned provider. The mutex
// serializes all operations on one session; provider calls happen inside
// the critical section so counters and the pending question move
// atomically, without blocking other sessions.
type session struct {
	mu       sync.Mutex
	provider Provider
	snap     Snapshot
}

// Service is the interview session state machine. It owns per-session
// progress counters, conversation history, and the completion decision.
// Sessions live in memory for the process lifetime; snapshots are
// persisted through the configured SessionSaver after every mutation.
type Service struct {
	catalog     JobFinder
	newProvider ProviderFactory
	policy      Policy
	saver       SessionSaver
	logger      *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*session
}

// NewService creates a Service from cfg. It panics if the required
// collaborators are missing, since that is a wiring bug, not a runtime
// condition.
func NewService(cfg Config) *Service {
	if cfg.Catalog == nil {
		panic("interview: Config.Catalog is required")
	}
	if cfg.NewProvider == nil {
		panic("interview: Config.NewProvider is required")
	}
	policy := cfg.Policy
	if policy == (Policy{}) {
		policy = DefaultPolicy()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		catalog:     cfg.Catalog,
		newProvider: cfg.NewProvider,
		policy:      policy,
		saver:       cfg.Saver,
		logger:      logger,
		sessions:    make(map[string]*session),
	}
}

// Start creates a new session for the given job and asks the provider
// for the opening question. No session is created if the job id does not
// resolve or the provider fails.
func (s *Service) Start(ctx context.Context, jobID, candidateContext string) (StartResult, error) {
	job, err := s.catalog.Find(jobID)
	if err != nil {
		return StartResult{}, fmt.Errorf("job %q: %w", jobID, ErrNotFound)
	}

	provider := s.newProvider(job, candidateContext)

	q, err := provider.NextQuestion(ctx, "")
	if err != nil {
		return StartResult{}, &ProviderError{Err: err}
	}
	if q.Text == "" {
		return StartResult{}, &ProviderError{Err: errors.New("provider returned empty question text")}
	}

	snap := Snapshot{
		SessionID:                 uuid.New().String(),
		JobID:                     job.ID,
		JobTitle:                  job.Title,
		JobDepartment:             job.Department,
		ConversationHistory:       []ConversationEntry{},
		CurrentQuestion:           q.Text,
		CurrentQuestionNumber:     1,
		CurrentQuestionIsFollowUp: q.FollowUp,
		TotalQuestionCount:        1,
		StartedAt:                 time.Now().UTC(),
	}
	// The opening question should be standalone by provider contract, but
	// the counters record whatever classification the provider reported.
	if q.FollowUp {
		s.logger.Warn("provider flagged opening question as follow-up", "job_id", job.ID)
		snap.FollowUpCount = 1
	} else {
		snap.StandaloneQuestionCount = 1
	}

	sess := &session{provider: provider, snap: snap}
	s.mu.Lock()
	s.sessions[snap.SessionID] = sess
	s.mu.Unlock()

	s.persist(snap)

	s.logger.Info("interview started",
		"session_id", snap.SessionID,
		"job_id", job.ID,
	)

	return StartResult{
		SessionID:           snap.SessionID,
		Question:            q.Text,
		QuestionNumber:      1,
		ConversationHistory: []ConversationEntry{},
	}, nil
}

// SubmitAnswer commits the answer to the pending question, then either
// completes the interview or returns the next question.
//
// Completion is checked twice: once right after the answer is committed,
// and again after a new question is generated, because the freshly
// generated question's classification can itself satisfy the minimums.
// A question discarded by the second check is never shown; the policy
// must never present a question whose answer would not be recorded.
//
// If the provider call fails, the session is left exactly as it was,
// answer commit included, and the failure is surfaced.
func (s *Service) SubmitAnswer(ctx context.Context, sessionID, answer string) (AnswerResult, error) {
	trimmed := strings.TrimSpace(answer)
	if trimmed == "" {
		return AnswerResult{}, ErrEmptyAnswer
	}

	sess, err := s.lookup(sessionID)
	if err != nil {
		return AnswerResult{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.snap.IsComplete {
		return AnswerResult{}, ErrAlreadyComplete
	}

	entry := ConversationEntry{
		Question:       sess.snap.CurrentQuestion,
		Answer:         trimmed,
		QuestionNumber: sess.snap.CurrentQuestionNumber,
		IsFollowUp:     sess.snap.CurrentQuestionIsFollowUp,
	}
	answeredNumber := entry.QuestionNumber

	// Counters only move when questions are generated, so the
	// post-commit check uses them as they stand.
	if s.policy.Satisfied(sess.snap.TotalQuestionCount, sess.snap.StandaloneQuestionCount, sess.snap.FollowUpCount) {
		sess.snap.ConversationHistory = append(sess.snap.ConversationHistory, entry)
		s.complete(&sess.snap)
		s.persist(sess.snap)
		s.logger.Info("interview complete",
			"session_id", sessionID,
			"questions", sess.snap.TotalQuestionCount,
		)
		return AnswerResult{
			QuestionNumber:      answeredNumber,
			InterviewComplete:   true,
			ConversationHistory: historyCopy(sess.snap.ConversationHistory),
		}, nil
	}

	q, err := sess.provider.NextQuestion(ctx, trimmed)
	if err != nil {
		return AnswerResult{}, &ProviderError{Err: err}
	}
	if q.Text == "" {
		return AnswerResult{}, &ProviderError{Err: errors.New("provider returned empty question text")}
	}

	sess.snap.ConversationHistory = append(sess.snap.ConversationHistory, entry)
	sess.snap.TotalQuestionCount++
	if q.FollowUp {
		sess.snap.FollowUpCount++
	} else {
		sess.snap.StandaloneQuestionCount++
	}

	if s.policy.Exceeded(sess.snap.TotalQuestionCount, sess.snap.StandaloneQuestionCount, sess.snap.FollowUpCount) {
		// The new question pushed the counters past the thresholds;
		// discard it rather than asking a question whose answer would
		// never be recorded.
		s.complete(&sess.snap)
		s.persist(sess.snap)
		s.logger.Info("interview complete",
			"session_id", sessionID,
			"questions", sess.snap.TotalQuestionCount,
			"discarded_generated_question", true,
		)
		return AnswerResult{
			QuestionNumber:      answeredNumber,
			InterviewComplete:   true,
			ConversationHistory: historyCopy(sess.snap.ConversationHistory),
		}, nil
	}

	sess.snap.CurrentQuestion = q.Text
	sess.snap.CurrentQuestionNumber = answeredNumber + 1
	sess.snap.CurrentQuestionIsFollowUp = q.FollowUp
	s.persist(sess.snap)

	return AnswerResult{
		Question:            q.Text,
		QuestionNumber:      answeredNumber + 1,
		InterviewComplete:   false,
		ConversationHistory: historyCopy(sess.snap.ConversationHistory),
	}, nil
}

// End terminates a session unconditionally, regardless of counters or a
// pending question. This is the explicit human-initiated override, not
// natural completion. Repeated calls succeed and refresh EndedAt.
func (s *Service) End(sessionID string) (EndResult, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return EndResult{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	s.complete(&sess.snap)
	s.persist(sess.snap)

	s.logger.Info("interview ended",
		"session_id", sessionID,
		"questions_answered", len(sess.snap.ConversationHistory),
	)

	return EndResult{SessionID: sessionID, Message: "Interview ended successfully"}, nil
}

// Session returns a copy of the live session state.
func (s *Service) Session(sessionID string) (Snapshot, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return Snapshot{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.snap.clone(), nil
}

func (s *Service) lookup(sessionID string) (*session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("session %q: %w", sessionID, ErrNotFound)
	}
	return sess, nil
}

// complete marks the snapshot terminal. The pending question is cleared
// so that CurrentQuestion is empty exactly when IsComplete holds.
func (s *Service) complete(snap *Snapshot) {
	now := time.Now().UTC()
	snap.IsComplete = true
	snap.EndedAt = &now
	snap.CurrentQuestion = ""
	snap.CurrentQuestionIsFollowUp = false
}

func (s *Service) persist(snap Snapshot) {
	if s.saver == nil {
		return
	}
	if err := s.saver.SaveSession(snap.clone()); err != nil {
		s.logger.Error("persisting session snapshot", "session_id", snap.SessionID, "error", err)
	}
}

func historyCopy(history []ConversationEntry) []ConversationEntry {
	out := make([]ConversationEntry, len(history))
	copy(out, history)
	return out
}
