package question

import (
	"fmt"
	"strings"

	"github.com/hireloop/interviewd/internal/interview"
	"github.com/hireloop/interviewd/internal/jobs"
)

// buildSystemPrompt assembles the interviewer instructions for one job.
func buildSystemPrompt(job jobs.Job, policy interview.Policy, candidateContext string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are an interviewer conducting a job interview for the position of %s in the %s department.\n\n", job.Title, job.Department)
	fmt.Fprintf(&b, "Job Description: %s\n\n", job.Description)

	reqs := "None specified"
	if len(job.Requirements) > 0 {
		reqs = strings.Join(job.Requirements, ", ")
	}
	fmt.Fprintf(&b, "Job Requirements: %s\n\n", reqs)

	if candidateContext != "" {
		b.WriteString("Candidate Background (from their resume):\n")
		b.WriteString(candidateContext)
		b.WriteString("\n\n")
	}

	b.WriteString("Interview Requirements:\n")
	fmt.Fprintf(&b, "- You must ask at least %d standalone questions (exploring new aspects of the role)\n", policy.MinStandalone)
	fmt.Fprintf(&b, "- You must ask at least %d follow-up questions (seeking more information about previous answers)\n", policy.MinFollowUp)
	fmt.Fprintf(&b, "- Try to stick to %d questions total\n\n", policy.SoftLimit)

	b.WriteString("Guidelines:\n")
	b.WriteString("- Standalone questions should explore different aspects of the role, skills, experience, or fit\n")
	b.WriteString("- Follow-up questions should seek more information about the candidate's previous answer\n")
	fmt.Fprintf(&b, "- Questions must be role-grounded and relevant to the %s position\n", job.Title)
	b.WriteString("- Avoid repeating questions already asked\n")
	b.WriteString("- Make questions conversational and natural\n")
	b.WriteString("- Ask exactly one question at a time")

	return b.String()
}
