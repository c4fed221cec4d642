package evaluation

import (
	"fmt"
	"strings"

	"github.com/hireloop/interviewd/internal/interview"
	"github.com/hireloop/interviewd/internal/jobs"
)

const evaluationInstructions = `You are an expert interviewer evaluating a candidate's interview performance.

Your task is to analyze the interview conversation and provide a structured evaluation.

Guidelines:
- Identify specific strengths demonstrated by the candidate
- Identify specific concerns or areas for improvement
- Provide an overall score from 0.0 to 100.0 based on:
  - Technical competence
  - Communication skills
  - Cultural fit
  - Overall performance
- Be specific and constructive in your feedback
- Base your evaluation solely on the conversation provided`

// buildEvaluationPrompt serializes the job context and transcript into
// the user turn for the evaluation model.
func buildEvaluationPrompt(job jobs.Job, history []interview.ConversationEntry) string {
	var b strings.Builder

	reqs := "None specified"
	if len(job.Requirements) > 0 {
		reqs = strings.Join(job.Requirements, ", ")
	}
	fmt.Fprintf(&b, "Job Title: %s\nDepartment: %s\nDescription: %s\nRequirements: %s\n\n", job.Title, job.Department, job.Description, reqs)

	b.WriteString("Interview Conversation:\n\n")
	for _, entry := range history {
		kind := "Standalone"
		if entry.IsFollowUp {
			kind = "Follow-up"
		}
		fmt.Fprintf(&b, "Q%d (%s): %s\nA: %s\n\n", entry.QuestionNumber, kind, entry.Question, entry.Answer)
	}

	return strings.TrimRight(b.String(), "\n")
}
