// Package cmd implements the codex command-line interface for operating on
// shared team state: inspecting rosters and queues, sending messages, and
// cleaning up finished teams.
package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Sh1ra083/codex/internal/config"
	"github.com/Sh1ra083/codex/internal/coordination"
	"github.com/Sh1ra083/codex/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "codex",
	Short: "Filesystem-mediated coordination for agent teams",
	Long: `Codex coordinates teams of agents through shared state on the local
filesystem: a membership registry, a dependency-gated work queue, and
read-once mailboxes, all under a single coordination root.

This CLI operates on that shared state from a terminal. Spawning and
shutting down live agents is left to the embedding runtime.`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/codex/config.yaml)")
	rootCmd.PersistentFlags().String("root", "", "coordination root directory (default is $HOME/.codex)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("coordination.root", rootCmd.PersistentFlags().Lookup("root"))
}

func initConfig() {
	// Re-bind flags here as well: bindings registered in init() do not
	// survive a viper.Reset(), and OnInitialize runs after flag parsing.
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("coordination.root", rootCmd.PersistentFlags().Lookup("root"))

	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/codex")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("CODEX")
	// Replace dots with underscores for nested keys in env vars
	// e.g., CODEX_COORDINATION_LOCK_TIMEOUT_MS for coordination.lock_timeout_ms
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}

// newHub builds a Hub from the effective configuration. The returned cleanup
// closes the log file and must be called before exit.
func newHub() (*coordination.Hub, func(), error) {
	cfg := config.Get()
	root := cfg.Coordination.ResolveRoot()

	logger := logging.NopLogger()
	cleanup := func() {}
	if cfg.Logging.Enabled {
		fileLogger, err := logging.NewLogger(root, strings.ToUpper(cfg.Logging.Level))
		if err != nil {
			return nil, nil, err
		}
		logger = fileLogger
		cleanup = func() { _ = fileLogger.Close() }
	}

	hub, err := coordination.NewHub(
		coordination.Config{Root: root, Logger: logger},
		coordination.WithLockTimeout(cfg.Coordination.LockTimeout()),
		coordination.WithWaitPoll(cfg.Coordination.WaitPoll()),
	)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return hub, cleanup, nil
}
