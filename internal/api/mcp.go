package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hireloop/interviewd/internal/interview"
)

// MCPDeps holds dependencies for the MCP server. The same collaborators
// back the HTTP API; MCP is a second surface over them for agent use.
type MCPDeps struct {
	Interviews *interview.Service
	Catalog    JobCatalog
	Evaluator  Evaluator
	Store      SessionReader // optional; if nil, only live sessions are visible
}

// NewMCPServer creates an MCP server exposing interview data to agents.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"interviewd",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("interviewd — AI-driven job interview sessions: job catalog, transcripts, and candidate evaluations."),
		server.WithRecovery(),
	)

	// Tools
	s.AddTool(
		mcp.NewTool("list_jobs",
			mcp.WithDescription("List the open positions candidates can interview for."),
		),
		mcpListJobs(deps),
	)

	s.AddTool(
		mcp.NewTool("get_transcript",
			mcp.WithDescription("Fetch the conversation transcript of an interview session."),
			mcp.WithString("session_id", mcp.Description("Interview session id"), mcp.Required()),
		),
		mcpGetTranscript(deps),
	)

	s.AddTool(
		mcp.NewTool("evaluate_interview",
			mcp.WithDescription("Score a completed interview session: strengths, concerns, and an overall score."),
			mcp.WithString("session_id", mcp.Description("Interview session id"), mcp.Required()),
		),
		mcpEvaluateInterview(deps),
	)

	// Resources
	s.AddResource(
		mcp.NewResource(
			"interviews://recent",
			"Recent Interviews",
			mcp.WithResourceDescription("Last 10 interview sessions (summaries only)"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceRecent(deps),
	)

	return s
}

func mcpListJobs(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		b, err := json.Marshal(deps.Catalog.All())
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal jobs: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpGetTranscript(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sessionID, err := req.RequireString("session_id")
		if err != nil {
			return mcpError("session_id is required"), nil
		}

		snap, err := loadSnapshot(deps.Interviews, deps.Store, sessionID)
		if err != nil {
			return mcpError(fmt.Sprintf("session not found: %v", err)), nil
		}

		b, err := json.Marshal(map[string]any{
			"session_id":           snap.SessionID,
			"job_id":               snap.JobID,
			"job_title":            snap.JobTitle,
			"is_complete":          snap.IsComplete,
			"conversation_history": snap.ConversationHistory,
		})
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal transcript: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpEvaluateInterview(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sessionID, err := req.RequireString("session_id")
		if err != nil {
			return mcpError("session_id is required"), nil
		}

		snap, err := loadSnapshot(deps.Interviews, deps.Store, sessionID)
		if err != nil {
			return mcpError(fmt.Sprintf("session not found: %v", err)), nil
		}
		if !snap.IsComplete {
			return mcpError("interview is not complete"), nil
		}

		job, err := deps.Catalog.Find(snap.JobID)
		if err != nil {
			return mcpError(fmt.Sprintf("job %q is no longer available", snap.JobID)), nil
		}

		result := deps.Evaluator.Evaluate(ctx, job, snap.ConversationHistory)
		b, err := json.Marshal(result)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal evaluation: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpResourceRecent(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		if deps.Store == nil {
			return nil, fmt.Errorf("session persistence not configured")
		}

		sessions, err := deps.Store.ListRecentSessions(10)
		if err != nil {
			return nil, fmt.Errorf("failed to list sessions: %w", err)
		}

		type sessionSummary struct {
			ID         string `json:"session_id"`
			JobTitle   string `json:"job_title"`
			StartedAt  string `json:"started_at"`
			IsComplete bool   `json:"is_complete"`
			Questions  int    `json:"questions"`
		}

		summaries := make([]sessionSummary, len(sessions))
		for i, sess := range sessions {
			title := sess.JobTitle
			if utf8.RuneCountInString(title) > 200 {
				runes := []rune(title)
				title = string(runes[:200]) + "..."
			}
			summaries[i] = sessionSummary{
				ID:         sess.ID,
				JobTitle:   title,
				StartedAt:  sess.StartedAt.Format(time.RFC3339),
				IsComplete: sess.IsComplete,
				Questions:  sess.TotalQuestions,
			}
		}

		b, err := json.Marshal(summaries)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal sessions: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
