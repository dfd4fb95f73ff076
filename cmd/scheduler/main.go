package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/slotwise/scheduler/internal/api"
	"github.com/slotwise/scheduler/internal/config"
	"github.com/slotwise/scheduler/internal/factory"
	"github.com/slotwise/scheduler/internal/logger"
	"github.com/slotwise/scheduler/internal/store"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "scheduler",
		Short: "Natural-language time-slot scheduling service",
		RunE:  func(cmd *cobra.Command, args []string) error { return serve() },
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE:  func(cmd *cobra.Command, args []string) error { return serve() },
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}

	root.AddCommand(serveCmd, versionCmd)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serve() error {
	// .env is optional; real deployments configure through the environment.
	_ = godotenv.Load()

	log := logger.New("scheduler")

	cfg, err := config.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log.Info().
		Str("db_driver", cfg.DBDriver).
		Int("http_port", cfg.HTTPPort).
		Bool("ai_enabled", cfg.AIEnabled).
		Msg("Scheduler service starting")

	// -------- Storage layer -----------------
	storageLayer, err := factory.NewStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Storage unavailable")
	}

	// -------- Provider ---------------------
	suggester := factory.NewSuggester(storageLayer, cfg, log)
	providers := &factory.ProviderFactory{}
	p := providers.Get(cfg, log, suggester)

	// -------- Router & Server --------------
	router := api.NewRouter(api.Deps{
		Store:     storageLayer,
		Attendees: store.EmptyAttendeeReader{},
		Provider:  p,
		Config:    cfg,
		Log:       log,
	})
	server := &http.Server{
		Addr:         cfg.GetHTTPAddr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server")
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
	return nil
}
