package evaluation

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hireloop/interviewd/internal/interview"
	"github.com/hireloop/interviewd/internal/jobs"
	"github.com/hireloop/interviewd/internal/llm"
)

// Chatter is the interface for chat completion with structured output.
type Chatter interface {
	Chat(ctx context.Context, model string, messages []llm.Message, jsonSchema *llm.Schema) (string, error)
}

// Evaluation is the structured assessment of a completed interview.
type Evaluation struct {
	Strengths    []string `json:"strengths"`
	Concerns     []string `json:"concerns"`
	OverallScore float64  `json:"overall_score"`
}

// Evaluator scores completed interviews. Unlike question generation,
// evaluation failures are masked: a transcript must never be blocked
// from viewing because scoring failed, so errors degrade to a fallback
// result and the cause is logged.
type Evaluator struct {
	client Chatter
	model  string
	logger *slog.Logger
}

// NewEvaluator creates an Evaluator. A nil logger falls back to
// slog.Default().
func NewEvaluator(client Chatter, model string, logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{client: client, model: model, logger: logger}
}

// Evaluate analyses the conversation and returns strengths, concerns,
// and an overall score in [0, 100]. It never returns an error; on
// provider failure the fallback result carries a zero score and a
// concern noting the failure.
func (e *Evaluator) Evaluate(ctx context.Context, job jobs.Job, history []interview.ConversationEntry) Evaluation {
	messages := []llm.Message{
		{Role: "system", Content: evaluationInstructions},
		{Role: "user", Content: buildEvaluationPrompt(job, history)},
	}

	raw, err := e.client.Chat(ctx, e.model, messages, evaluationSchema())
	if err != nil {
		e.logger.Error("generating evaluation", "job_id", job.ID, "error", err)
		return fallbackEvaluation()
	}

	var out Evaluation
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		e.logger.Error("parsing evaluation response", "job_id", job.ID, "error", err)
		return fallbackEvaluation()
	}

	if out.Strengths == nil {
		out.Strengths = []string{}
	}
	if out.Concerns == nil {
		out.Concerns = []string{}
	}
	if out.OverallScore < 0 {
		out.OverallScore = 0
	}
	if out.OverallScore > 100 {
		out.OverallScore = 100
	}

	return out
}

func fallbackEvaluation() Evaluation {
	return Evaluation{
		Strengths:    []string{},
		Concerns:     []string{"Unable to generate evaluation due to technical error"},
		OverallScore: 0.0,
	}
}

// evaluationSchema returns the JSON schema for structured evaluation output.
func evaluationSchema() *llm.Schema {
	return &llm.Schema{
		Type: "object",
		Properties: map[string]llm.SchemaProperty{
			"strengths": {
				Type:        "array",
				Description: "Candidate strengths identified from the interview",
				Items:       &llm.SchemaProperty{Type: "string"},
			},
			"concerns": {
				Type:        "array",
				Description: "Concerns or areas for improvement",
				Items:       &llm.SchemaProperty{Type: "string"},
			},
			"overall_score": {
				Type:        "number",
				Description: "Overall score from 0.0 to 100.0",
			},
		},
		Required: []string{"strengths", "concerns", "overall_score"},
	}
}
