package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
	log "github.com/sirupsen/logrus"
)

// Execute runs the tipster command tree
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// NewRootCmd builds the root command and registers every subcommand
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tipster",
		Short:         "Sports prediction sharing service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newSweepCmd(),
		newAdminCmd(),
	)
	return root
}

// setupLogging applies the configured level; production logs are JSON
func setupLogging(level, environment string) {
	parsed, err := log.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		log.WithField("level", level).Warn("Unknown log level, using info")
		parsed = log.InfoLevel
	}
	log.SetLevel(parsed)

	if environment == "production" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
