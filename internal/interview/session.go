package interview

import "time"

// ConversationEntry is one answered question. Entries are immutable once
// appended to a session's history.
type ConversationEntry struct {
	Question       string `json:"question"`
	Answer         string `json:"answer"`
	QuestionNumber int    `json:"question_number"`
	IsFollowUp     bool   `json:"is_followup"`
}

// Question is a generated interview question together with its
// classification at generation time.
type Question struct {
	Text     string
	FollowUp bool
}

// Snapshot is the full point-in-time state of an interview session. The
// service hands out copies; mutating a Snapshot never affects the live
// session. CurrentQuestion is empty exactly when IsComplete is true.
type Snapshot struct {
	SessionID     string
	JobID         string
	JobTitle      string
	JobDepartment string

	ConversationHistory []ConversationEntry

	CurrentQuestion           string
	CurrentQuestionNumber     int
	CurrentQuestionIsFollowUp bool

	StandaloneQuestionCount int
	FollowUpCount           int
	TotalQuestionCount      int

	StartedAt  time.Time
	EndedAt    *time.Time
	IsComplete bool
}

// clone returns a deep copy safe to hand outside the session's lock.
func (s Snapshot) clone() Snapshot {
	out := s
	out.ConversationHistory = make([]ConversationEntry, len(s.ConversationHistory))
	copy(out.ConversationHistory, s.ConversationHistory)
	if s.EndedAt != nil {
		t := *s.EndedAt
		out.EndedAt = &t
	}
	return out
}
