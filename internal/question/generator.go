package question

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hireloop/interviewd/internal/interview"
	"github.com/hireloop/interviewd/internal/jobs"
	"github.com/hireloop/interviewd/internal/llm"
)

// Chatter is the interface for chat completion with structured output.
type Chatter interface {
	Chat(ctx context.Context, model string, messages []llm.Message, jsonSchema *llm.Schema) (string, error)
}

// Generator produces role-grounded interview questions for one session.
// It accumulates its own conversation memory across calls, so one
// Generator must be created per session and never shared.
type Generator struct {
	client   Chatter
	model    string
	messages []llm.Message
}

// NewGenerator creates a Generator bound to the given job. The policy's
// thresholds are written into the system prompt so the model paces the
// interview the same way the state machine scores it. candidateContext
// optionally carries resume text.
func NewGenerator(client Chatter, model string, job jobs.Job, policy interview.Policy, candidateContext string) *Generator {
	return &Generator{
		client: client,
		model:  model,
		messages: []llm.Message{
			{Role: "system", Content: buildSystemPrompt(job, policy, candidateContext)},
		},
	}
}

// NewFactory returns a factory producing one Generator per session,
// satisfying the interview service's provider contract.
func NewFactory(client Chatter, model string, policy interview.Policy) interview.ProviderFactory {
	return func(job jobs.Job, candidateContext string) interview.Provider {
		return NewGenerator(client, model, job, policy, candidateContext)
	}
}

// generated mirrors the structured output schema.
type generated struct {
	Question   string `json:"question"`
	IsFollowUp bool   `json:"is_followup"`
}

// NextQuestion returns the next question given the candidate's previous
// answer; an empty previousAnswer requests the opening question. The
// conversation memory is only extended when generation succeeds, so a
// failed call can be retried without corrupting the transcript the
// model sees.
func (g *Generator) NextQuestion(ctx context.Context, previousAnswer string) (interview.Question, error) {
	userTurn := previousAnswer
	if userTurn == "" {
		userTurn = "Begin the interview with your opening question."
	}
	msgs := append(g.messages, llm.Message{Role: "user", Content: userTurn})

	raw, err := g.client.Chat(ctx, g.model, msgs, questionSchema())
	if err != nil {
		return interview.Question{}, fmt.Errorf("generating question: %w", err)
	}

	var out generated
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return interview.Question{}, fmt.Errorf("parsing question response: %w", err)
	}
	out.Question = strings.TrimSpace(out.Question)
	if out.Question == "" {
		return interview.Question{}, fmt.Errorf("model returned empty question")
	}

	g.messages = append(msgs, llm.Message{Role: "assistant", Content: out.Question})

	return interview.Question{Text: out.Question, FollowUp: out.IsFollowUp}, nil
}

// questionSchema returns the JSON schema for structured question output.
func questionSchema() *llm.Schema {
	return &llm.Schema{
		Type: "object",
		Properties: map[string]llm.SchemaProperty{
			"question":    {Type: "string", Description: "The next interview question to ask the candidate"},
			"is_followup": {Type: "boolean", Description: "True if the question seeks elaboration on the previous answer, false if it explores a new aspect of the role"},
		},
		Required: []string{"question", "is_followup"},
	}
}
