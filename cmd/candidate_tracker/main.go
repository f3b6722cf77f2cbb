// Package main provides the entry point for the candidate tracker.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/jonathan/candidate-tracker/internal/config"
	"github.com/jonathan/candidate-tracker/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgFile string
	v       = config.New()
	cfg     *config.Config
	zlog    *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "candidate_tracker",
	Short: "Candidate screening and review tracker",
	Long:  "Candidate tracker scores job applications, classifies them against configurable thresholds and drives each candidate through review, invitation or rejection with an audit trail.",
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if cmd.Annotations["skipConfig"] == "true" {
			return nil
		}
		return loadConfig()
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		if zlog != nil {
			_ = zlog.Sync()
		}
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./candidate-tracker.yaml)")
	rootCmd.PersistentFlags().Bool("json", false, "log in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().String("store", "", "storage backend: postgres or memory")

	_ = v.BindPFlag("log.json", rootCmd.PersistentFlags().Lookup("json"))
	_ = v.BindPFlag("log.debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = v.BindPFlag("store", rootCmd.PersistentFlags().Lookup("store"))
}

func loadConfig() error {
	loaded, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}
	cfg = loaded

	l, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	zlog = l
	return nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
