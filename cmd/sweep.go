package cmd

import (
	"fmt"
	"time"

	"tipster/config"
	"tipster/database"
	"tipster/domain/services"
	"tipster/infrastructure"
	"tipster/repository"

	"github.com/spf13/cobra"
	log "github.com/sirupsen/logrus"
)

// newSweepCmd promotes past active predictions once, for use from an external scheduler
func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Move active predictions whose match has started to waiting_result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Get()
			setupLogging(cfg.LogLevel, cfg.Environment)

			location, err := cfg.MatchLocation()
			if err != nil {
				return err
			}

			db, err := database.Open(cmd.Context(), cfg.GetDatabaseURL())
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()

			users := repository.NewUserRepository(db)
			svc := services.NewPredictionService(
				repository.NewPredictionRepository(db),
				users,
				services.NewModerationPolicy(users, cfg.ModeratorAccessCodeHash),
				infrastructure.NewNoopEventPublisher(),
				services.PredictionServiceConfig{Location: location},
			)

			promoted, err := svc.SweepExpiredActive(cmd.Context(), time.Now())
			if err != nil {
				return err
			}
			log.WithField("promoted", promoted).Info("Sweep finished")
			fmt.Fprintf(cmd.OutOrStdout(), "promoted %d prediction(s)\n", promoted)
			return nil
		},
	}
}
