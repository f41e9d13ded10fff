package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"tipster/api"
	"tipster/application"
	"tipster/config"
	"tipster/database"
	"tipster/domain/events"
	"tipster/domain/interfaces"
	"tipster/domain/services"
	"tipster/infrastructure"
	"tipster/infrastructure/observability"
	"tipster/repository"

	"github.com/spf13/cobra"
	log "github.com/sirupsen/logrus"
)

func newServeCmd() *cobra.Command {
	var migrateFirst bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the expiry sweep",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), config.Get(), migrateFirst)
		},
	}
	cmd.Flags().BoolVar(&migrateFirst, "migrate", false, "apply pending migrations before starting")
	return cmd
}

// eventWiring groups the publisher and subscriber the application runs with
type eventWiring struct {
	publisher  interfaces.EventPublisher
	subscriber interfaces.EventSubscriber
	close      func()
}

// setupEvents connects to NATS JetStream when enabled, otherwise events stay in process
func setupEvents(ctx context.Context, cfg *config.Config) (*eventWiring, error) {
	if !cfg.NATSEnabled {
		bus := events.NewBus()
		log.Info("NATS disabled, using the in-process event bus")
		return &eventWiring{publisher: bus, subscriber: bus, close: func() {}}, nil
	}

	log.WithField("servers", cfg.NATSServers).Info("Connecting to NATS...")
	client := infrastructure.NewNATSClient(cfg.NATSServers)
	if err := client.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	mapper := infrastructure.NewEventSubjectMapper()
	if err := infrastructure.EnsureEventStream(client, mapper); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &eventWiring{
		publisher:  infrastructure.NewNATSEventPublisher(client, mapper),
		subscriber: infrastructure.NewNATSEventSubscriber(client, mapper),
		close: func() {
			if err := client.Close(); err != nil {
				log.WithError(err).Error("Error closing NATS connection")
			}
		},
	}, nil
}

// runServe initializes and starts the application
func runServe(ctx context.Context, cfg *config.Config, migrateFirst bool) error {
	setupLogging(cfg.LogLevel, cfg.Environment)
	log.WithField("environment", cfg.Environment).Info("Starting tipster...")

	if err := observability.InitializeGlobalMetrics(ctx, cfg); err != nil {
		log.WithError(err).Warn("Metrics disabled")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := observability.ShutdownGlobalMetrics(shutdownCtx); err != nil {
			log.WithError(err).Error("Error shutting down metrics")
		}
	}()

	location, err := cfg.MatchLocation()
	if err != nil {
		return err
	}

	databaseURL := cfg.GetDatabaseURL()
	if migrateFirst {
		if err := database.MigrateUp(databaseURL); err != nil {
			return err
		}
	}

	log.Info("Connecting to database...")
	db, err := database.Open(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("Closing database connection...")
		db.Close()
	}()

	wiring, err := setupEvents(ctx, cfg)
	if err != nil {
		return err
	}
	defer wiring.close()

	app := application.NewApp(
		infrastructure.NewUnitOfWorkFactory(db, wiring.publisher),
		repository.NewPredictionRepository(db),
		repository.NewUserRepository(db),
		wiring.publisher,
		application.AppConfig{
			AccessCodeHash: cfg.ModeratorAccessCodeHash,
			Lifecycle: services.PredictionServiceConfig{
				GracePeriod: cfg.DeletionGracePeriod,
				Location:    location,
			},
		},
	)

	var notifier application.ModeratorNotifier
	if cfg.DiscordWebhookURL != "" {
		discordNotifier, err := infrastructure.NewDiscordNotifier(cfg.DiscordWebhookURL)
		if err != nil {
			return err
		}
		notifier = discordNotifier
	} else {
		log.Info("No Discord webhook configured, moderators will not be notified")
	}
	if err := application.RegisterApplicationSubscriptions(wiring.subscriber, notifier); err != nil {
		return err
	}

	stopSweep, err := application.NewSweepWorker(app, cfg.SweepSchedule).Start(ctx)
	if err != nil {
		return err
	}
	defer stopSweep()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewServer(app, app, app, app).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("HTTP API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down...")
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Error shutting down HTTP server")
	}

	log.Info("Shutdown completed")
	return nil
}
