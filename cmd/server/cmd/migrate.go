package cmd

import (
	"fmt"

	"github.com/codingevents/server/internal/storage/postgres"
	"github.com/spf13/cobra"
)

var migrateSteps int

var migrateCmd = &cobra.Command{
	Use:   "migrate [up|down]",
	Short: "Run database schema migrations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}

		switch args[0] {
		case "up":
			return postgres.MigrateUp(cfg.Database.URL, cfg.Database.MigrationsPath)
		case "down":
			return postgres.MigrateDown(cfg.Database.URL, cfg.Database.MigrationsPath, migrateSteps)
		default:
			return fmt.Errorf("unknown direction %q (want up or down)", args[0])
		}
	},
}

func init() {
	migrateCmd.Flags().IntVar(&migrateSteps, "steps", 1, "number of migrations to roll back (down only)")
}
