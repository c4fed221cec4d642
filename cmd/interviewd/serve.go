package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"

	"github.com/hireloop/interviewd/internal/api"
	"github.com/hireloop/interviewd/internal/config"
	"github.com/hireloop/interviewd/internal/evaluation"
	"github.com/hireloop/interviewd/internal/interview"
	"github.com/hireloop/interviewd/internal/jobs"
	"github.com/hireloop/interviewd/internal/llm"
	"github.com/hireloop/interviewd/internal/question"
	"github.com/hireloop/interviewd/internal/storage"
	"github.com/hireloop/interviewd/internal/transcription"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the interviewd server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		mcpEnabled, _ := cmd.Flags().GetBool("mcp")
		return runServer(mcpEnabled)
	},
}

func init() {
	serveCmd.Flags().Bool("mcp", false, "also serve MCP tools over stdio")
}

func runServer(mcpEnabled bool) error {
	fmt.Fprintf(os.Stderr, "interviewd version %s\n", version)

	cfg, err := config.Load(configPath, ".env")
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	catalog, err := jobs.Load(cfg.Jobs.CatalogPath)
	if err != nil {
		return fmt.Errorf("loading job catalog: %w", err)
	}
	logger.Info("job catalog loaded", "jobs", len(catalog.All()))

	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: closing storage: %v\n", err)
		}
	}()

	llmClient := llm.New(cfg.LLM.BaseURL, cfg.LLM.APIKey)
	if !llmClient.IsReachable(ctx) {
		printWarning("LLM backend at %s is not reachable; interviews will fail until it is", cfg.LLM.BaseURL)
	}

	policy := interview.Policy{
		SoftLimit:     cfg.Interview.SoftLimit,
		MinStandalone: cfg.Interview.MinStandalone,
		MinFollowUp:   cfg.Interview.MinFollowUp,
	}

	interviews := interview.NewService(interview.Config{
		Catalog:     catalog,
		NewProvider: question.NewFactory(llmClient, cfg.LLM.Model, policy),
		Policy:      policy,
		Saver:       store,
		Logger:      logger,
	})

	evaluator := evaluation.NewEvaluator(llmClient, cfg.LLM.Model, logger)
	transcriber := transcription.New(llmClient, cfg.LLM.TranscribeModel, 0, logger)

	handler := api.NewHandler(api.Deps{
		Interviews:  interviews,
		Catalog:     catalog,
		Evaluator:   evaluator,
		Transcriber: transcriber,
		Store:       store,
		Token:       cfg.Server.APIToken,
		Logger:      logger,
	})

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	if cfg.Server.MaxConns > 0 {
		ln = netutil.LimitListener(ln, cfg.Server.MaxConns)
	}

	srv := &http.Server{Handler: handler}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("interviewd listening", "addr", addr)
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	if mcpEnabled {
		mcpSrv := api.NewMCPServer(api.MCPDeps{
			Interviews: interviews,
			Catalog:    catalog,
			Evaluator:  evaluator,
			Store:      store,
		})
		stdioSrv := server.NewStdioServer(mcpSrv)
		g.Go(func() error {
			logger.Info("MCP server started (stdio transport)")
			if err := stdioSrv.Listen(gctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("MCP stdio server error: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		fmt.Fprintln(os.Stderr, "shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
