package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/recall-api/internal/platform/clock"
	"github.com/phrazzld/recall-api/internal/platform/lock"
	"github.com/phrazzld/recall-api/internal/platform/postgres"
	"github.com/phrazzld/recall-api/internal/service/adaptation"
	"github.com/spf13/cobra"
)

func newAdaptCommand() *cobra.Command {
	var workers int

	command := &cobra.Command{
		Use:   "adapt",
		Short: "Run the daily adaptation batch once",
		Long: "Retunes every onboarded user's interval multiplier for today (UTC). " +
			"Users already adapted today are skipped, so re-running is safe.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := openDatabase(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer db.Close()

			var locker lock.Locker = lock.NewMemory()
			if cfg.Redis.URL != "" {
				rl, err := lock.DialRedis(ctx, cfg.Redis.URL, log)
				if err != nil {
					return fmt.Errorf("failed to connect to redis: %w", err)
				}
				defer rl.Close()
				locker = rl
			}

			if workers <= 0 {
				workers = cfg.Adaptation.WorkerCount
			}
			runner := adaptation.NewRunner(
				postgres.NewStores(db, log),
				postgres.NewTransactor(db, log),
				locker,
				clock.Real{},
				adaptation.Config{WorkerCount: workers, LockTTL: cfg.Adaptation.LockTTL},
				log,
			)

			summary, err := runner.RunDailyAdaptation(ctx)
			if errors.Is(err, adaptation.ErrBatchInProgress) {
				log.Info("daily adaptation already running elsewhere")
				return nil
			}
			if err != nil {
				return err
			}

			log.Info("daily adaptation finished",
				slog.Int("processed", summary.Processed),
				slog.Int("adapted", summary.Adapted),
				slog.Int("failed", summary.Failed))
			return printJSON(cmd, summary)
		},
	}
	command.Flags().IntVar(&workers, "workers", 0, "concurrent users (defaults to adaptation.worker_count)")
	return command
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
