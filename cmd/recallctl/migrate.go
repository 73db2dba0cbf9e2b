package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/phrazzld/recall-api/internal/platform/postgres"
	"github.com/spf13/cobra"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate <" + strings.Join(postgres.MigrationCommands, "|") + ">",
		Short:     "Apply or inspect database migrations",
		Args:      cobra.ExactArgs(1),
		ValidArgs: postgres.MigrationCommands,
		RunE: func(cmd *cobra.Command, args []string) error {
			command := args[0]
			if !slices.Contains(postgres.MigrationCommands, command) {
				return fmt.Errorf("unknown migration command %q", command)
			}

			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := openDatabase(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer db.Close()

			return postgres.Migrate(cmd.Context(), db, command, log)
		},
	}
}
