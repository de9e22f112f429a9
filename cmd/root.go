package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/findings-cli/internal/config"
)

var (
	cfg *config.Config

	configFile string
	logLevel   string
	storeFile  string
)

var rootCmd = &cobra.Command{
	Use:   "findings-cli",
	Short: "Natural-language queries over audit findings",
	Long:  "Matches plain-language questions against a catalogue of query patterns, runs them against the findings store and reports the results.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		applyFlagOverrides(cmd, c)
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file (default ./config.yaml)")
	pf.StringVar(&logLevel, "log-level", "", "override log.level")
	pf.StringVar(&storeFile, "db", "", "sqlite findings database; selects the sqlite driver")
}

// applyFlagOverrides layers explicitly set persistent flags over the loaded
// config. Unset flags leave file and environment values alone.
func applyFlagOverrides(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		c.Log.Level = logLevel
	}
	if flags.Changed("db") {
		c.Store.Driver = "sqlite"
		c.Store.SQLitePath = storeFile
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
