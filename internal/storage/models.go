package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// SessionSummary is the listing view of a persisted interview session,
// without the full transcript.
type SessionSummary struct {
	ID             string     `json:"session_id"`
	JobID          string     `json:"job_id"`
	JobTitle       string     `json:"job_title"`
	StartedAt      time.Time  `json:"started_at"`
	EndedAt        *time.Time `json:"ended_at,omitempty"`
	IsComplete     bool       `json:"is_complete"`
	TotalQuestions int        `json:"total_questions"`
}
