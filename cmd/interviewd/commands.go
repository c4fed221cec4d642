package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// --- jobs ---

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List open positions candidates can interview for",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/api/jobs")
		if err != nil {
			return err
		}

		var jobList []struct {
			ID           string   `json:"id"`
			Title        string   `json:"title"`
			Department   string   `json:"department"`
			Requirements []string `json:"requirements"`
		}
		if err := decodeJSON(resp, &jobList); err != nil {
			return err
		}

		if len(jobList) == 0 {
			fmt.Println("No jobs configured.")
			return nil
		}

		for _, j := range jobList {
			fmt.Printf("%s  %s (%s)\n",
				colorize(colorCyan, j.ID),
				colorize(colorBold, j.Title),
				j.Department,
			)
			if len(j.Requirements) > 0 {
				fmt.Printf("    requirements: %s\n", strings.Join(j.Requirements, ", "))
			}
		}
		return nil
	},
}

// --- session ---

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect and manage interview sessions",
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent interview sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), fmt.Sprintf("/api/interviews/?limit=%d", limit))
		if err != nil {
			return err
		}

		var sessions []struct {
			ID             string `json:"session_id"`
			JobTitle       string `json:"job_title"`
			StartedAt      string `json:"started_at"`
			IsComplete     bool   `json:"is_complete"`
			TotalQuestions int    `json:"total_questions"`
		}
		if err := decodeJSON(resp, &sessions); err != nil {
			return err
		}

		if len(sessions) == 0 {
			fmt.Println("No sessions found.")
			return nil
		}

		for _, s := range sessions {
			state := "in progress"
			if s.IsComplete {
				state = "complete"
			}
			fmt.Printf("%s  %s  %s  %s (%d questions)\n",
				colorize(colorCyan, s.ID[:8]),
				s.StartedAt,
				s.JobTitle,
				state,
				s.TotalQuestions,
			)
		}
		return nil
	},
}

var sessionShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a session's transcript as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/api/interviews/"+args[0])
		if err != nil {
			return err
		}

		var session any
		if err := decodeJSON(resp, &session); err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(session)
	},
}

var sessionEndCmd = &cobra.Command{
	Use:   "end <id>",
	Short: "End an interview session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/api/interviews/"+args[0]+"/end", nil)
		if err != nil {
			return err
		}

		var result map[string]string
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("%s", result["message"])
		return nil
	},
}

var sessionEvaluateCmd = &cobra.Command{
	Use:   "evaluate <id>",
	Short: "Fetch the evaluation of a completed session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/api/interviews/"+args[0]+"/evaluation")
		if err != nil {
			return err
		}

		var eval struct {
			JobTitle     string   `json:"job_title"`
			Strengths    []string `json:"strengths"`
			Concerns     []string `json:"concerns"`
			OverallScore float64  `json:"overall_score"`
		}
		if err := decodeJSON(resp, &eval); err != nil {
			return err
		}

		printStatus("Position", "%s", eval.JobTitle)
		printStatus("Score", "%.1f / 100", eval.OverallScore)
		for _, s := range eval.Strengths {
			fmt.Fprintf(os.Stderr, "  %s %s\n", colorize(colorGreen, "+"), s)
		}
		for _, c := range eval.Concerns {
			fmt.Fprintf(os.Stderr, "  %s %s\n", colorize(colorYellow, "-"), c)
		}
		return nil
	},
}

func init() {
	sessionListCmd.Flags().Int("limit", 20, "maximum number of sessions to list")
	sessionCmd.AddCommand(sessionListCmd)
	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionEndCmd)
	sessionCmd.AddCommand(sessionEvaluateCmd)
}
