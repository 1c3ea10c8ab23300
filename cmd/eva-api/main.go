package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	httpadapter "github.com/PabloGalante/eva-assistant/internal/adapters/http"
	"github.com/PabloGalante/eva-assistant/internal/adapters/llm"
	memstore "github.com/PabloGalante/eva-assistant/internal/adapters/storage/memory"
	"github.com/PabloGalante/eva-assistant/internal/app/conversation"
	"github.com/PabloGalante/eva-assistant/internal/config"
	"github.com/PabloGalante/eva-assistant/internal/domain"
	"github.com/PabloGalante/eva-assistant/internal/observability"
)

const shutdownTimeout = 10 * time.Second

var (
	configPath string
	port       string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "eva-api",
	Short: "EVA Assistant session service",
	Long: `eva-api serves the EVA Assistant session engine to the lending UI:
conversation threads bound to agents, rule-based replies with follow-up
suggestions, and tasks that open their own discussion threads.

All state lives in memory for the lifetime of the process.`,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and event stream",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if port != "" {
			cfg.Port = port
		}
		if verbose {
			cfg.LogLevel = "debug"
		}

		logger, err := observability.Init(cfg.LogLevel)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		return serve(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	serveCmd.Flags().StringVarP(&port, "port", "p", "", "listen port (overrides config)")

	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context, cfg *config.Config) error {
	log := observability.Logger()

	hub := httpadapter.NewHub()
	defer hub.Close()

	svc := conversation.NewService(
		memstore.NewConversationStore(llm.WelcomeMessage),
		memstore.NewTaskStore(),
		conversation.Options{
			ReplyDelay:   cfg.Session.ReplyDelay,
			Routing:      conversation.ReplyRouting(cfg.Session.ReplyRouting),
			DefaultAgent: domain.ParticipantID(cfg.Session.DefaultAgent),
			CustomAgents: cfg.CustomAgents,
			Events:       hub,
		},
	)
	defer svc.Close()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpadapter.NewServer(svc, hub),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("EVA API listening",
			zap.String("addr", srv.Addr),
			zap.String("reply_routing", cfg.Session.ReplyRouting),
			zap.Int("custom_agents", len(cfg.CustomAgents)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		hub.Close()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
