package cmd

import (
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chrisdamba/retailiq/internal/analytics"
	"github.com/chrisdamba/retailiq/internal/output"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Send retention actions and reorder recommendations to the output destination",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		ctx := cmd.Context()
		a, err := newApp(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer a.Close()

		retention, err := a.reporter.Retention(ctx)
		if err != nil {
			return err
		}
		inventory, err := a.reporter.Inventory(ctx)
		if err != nil {
			return err
		}

		dest, err := output.NewDestination(cfg, log)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := dest.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()

		total := len(retention.RecommendedActions) + len(inventory.ReorderRecommendations)
		bar := progressbar.Default(int64(total), "publishing")
		dispatcher := output.NewDispatcher(dest, analytics.SystemClock, log).WithProgress(bar)

		actions, err := dispatcher.PublishRetention(retention)
		if err != nil {
			return err
		}
		reorders, err := dispatcher.PublishReorders(inventory.ReorderRecommendations)
		if err != nil {
			return err
		}
		_ = bar.Finish()

		log.Info("publish complete",
			zap.String("format", cfg.Output.Format),
			zap.Int("retention_actions", actions),
			zap.Int("reorders", reorders),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(publishCmd)
}
