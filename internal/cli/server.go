package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kidlingo-service/internal/app"
	"kidlingo-service/internal/auth"
	"kidlingo-service/internal/config"
	"kidlingo-service/internal/logger"
	transport "kidlingo-service/internal/transport/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string, envPort string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
	cmd.Flags().StringVar(port, "port", envPort, "port to listen on (overrides config)")
	return cmd
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Env)
	defer func() { _ = log.Sync() }()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	d, err := buildDeps(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer d.Close()

	if !d.persist {
		// nothing else will ever fill an in-memory dictionary
		if err := d.backend.SeedVocabulary(ctx); err != nil {
			return err
		}
	}

	service := app.NewQuizService(d.sessions, d.backend, d.cache, app.Options{
		Settings: quizSettings(cfg),
		Logger:   log,
	})
	tokens := auth.NewTokens(cfg.Auth.Secret, cfg.Auth.Issuer, config.TTLDuration(cfg.Auth.TokenTTL, 24*time.Hour))
	if !tokens.Enabled() {
		log.Warn("auth secret not set, every caller plays as a guest")
	}
	ws := transport.NewWSHandler(service, config.TTLDuration(cfg.Quiz.FeedbackDelay, 1500*time.Millisecond), log)

	server := &http.Server{
		Addr:              ":" + finalPort,
		Handler:           transport.NewRouter(service, tokens, ws, log),
		// only headers are bounded; websocket quizzes stay open for minutes
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("starting kidlingo service", zap.String("port", finalPort), zap.Bool("persistent", d.persist))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("failed to start server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
