package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/chrisdamba/retailiq/internal/logger"
	"github.com/chrisdamba/retailiq/internal/models"
)

var (
	cfgFile string
	cfg     *models.Config
	log     *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "retailiq",
	Short: "Revenue, customer and inventory analytics over a retail transaction log",
	Long: `retailiq reads completed sales transactions and the inventory snapshot from the
configured store and produces revenue metrics, customer intelligence, retention
campaign lists, stockout risk and replenishment forecasts.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// a missing .env is fine
		_ = godotenv.Load()

		v := viper.New()
		if err := v.BindPFlag("log_level", cmd.Flags().Lookup("log-level")); err != nil {
			return err
		}
		loaded, err := models.LoadConfig(v, cfgFile)
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}
		cfg = loaded

		log, err = logger.New(cfg.LogLevel)
		if err != nil {
			return err
		}
		if used := v.ConfigFileUsed(); used != "" {
			log.Debug("using config file", zap.String("path", used))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./retailiq.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "debug, info, warn or error")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
