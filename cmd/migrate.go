package cmd

import (
	"fmt"
	"strconv"

	"tipster/config"
	"tipster/database"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return database.MigrateUp(config.Get().GetDatabaseURL())
			},
		},
		&cobra.Command{
			Use:   "down [steps]",
			Short: "Roll back migrations (one by default)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				steps := 1
				if len(args) == 1 {
					parsed, err := strconv.Atoi(args[0])
					if err != nil {
						return fmt.Errorf("invalid steps %q: %w", args[0], err)
					}
					steps = parsed
				}
				return database.MigrateDown(config.Get().GetDatabaseURL(), steps)
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show the current schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				version, dirty, ok, err := database.MigrationStatus(config.Get().GetDatabaseURL())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				switch {
				case !ok:
					fmt.Fprintln(out, "no migrations applied")
				case dirty:
					fmt.Fprintf(out, "version %d (dirty)\n", version)
				default:
					fmt.Fprintf(out, "version %d\n", version)
				}
				return nil
			},
		},
	)
	return cmd
}
