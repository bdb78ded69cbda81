package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/donorlens/internal/contract"
	"github.com/huangsam/donorlens/internal/iocache"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// cacheManager is the global persistence manager instance.
var cacheManager contract.StoreManager = iocache.Manager

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:                "donorlens",
	Short:              "Summarize donor gift exports into fundraising metrics.",
	Long:               `Donorlens reads a donor gift export and shows who gives, who lapsed, and who needs a thank-you call next.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig reads in .env, config file and ENV variables if set.
func initConfig() {
	// A missing .env file is fine
	_ = godotenv.Load()

	setConfigFile()

	// Set environment variable prefix
	viper.SetEnvPrefix("DONORLENS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // Read in environment variables that match

	// Set defaults in Viper
	defaults := contract.DefaultRawInput()
	viper.SetDefault("lapsed-days", defaults.LapsedDays)
	viper.SetDefault("recent-days", defaults.RecentDays)
	viper.SetDefault("major-threshold", defaults.MajorThreshold)
	viper.SetDefault("mid-threshold", defaults.MidThreshold)
	viper.SetDefault("ack-days", defaults.AckDays)
	viper.SetDefault("top-n", defaults.TopN)
	viper.SetDefault("queue-size", defaults.QueueSize)
	viper.SetDefault("precision", defaults.Precision)
	viper.SetDefault("output", defaults.Output)
	viper.SetDefault("color", defaults.Color)
	viper.SetDefault("cache-backend", defaults.CacheBackend)
	viper.SetDefault("cache-db-connect", "")
	viper.SetDefault("history-backend", defaults.HistoryBackend)
	viper.SetDefault("history-db-connect", "")
	viper.SetDefault("addr", defaults.Addr)
}

// setConfigFile points viper at --config or at .donorlens.yaml in . or $HOME.
func setConfigFile() {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		return
	}
	viper.SetConfigName(".donorlens") // Name of config file (without extension)
	viper.SetConfigType("yaml")       // We'll use YAML format
	viper.AddConfigPath(".")          // Look in the current directory
	viper.AddConfigPath("$HOME")      // Look in the home directory
}

// loadConfigFile reads the config file if one is present.
func loadConfigFile() error {
	setConfigFile()
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			// Config file was found but another error was produced
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, which is fine; we'll use defaults/env/flags.
	}
	return nil
}

// sharedSetup unmarshals config and runs validation.
func sharedSetup(_ context.Context, _ *cobra.Command, args []string) error {
	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := loadConfigFile(); err != nil {
		return err
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Handle positional arguments (which Viper doesn't do).
	input.InputPathStr = ""
	if len(args) == 1 {
		input.InputPathStr = args[0]
	}

	// 4. Run all validation and complex parsing.
	if err := contract.ProcessAndValidate(cfg, input, time.Now()); err != nil {
		return err
	}

	// 5. Initialize persistence layer with validated config
	if err := iocache.InitStores(cfg.CacheBackend, cfg.CacheDBConnect, cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return fmt.Errorf("failed to initialize persistence: %w", err)
	}

	return nil
}

// sharedSetupWrapper wraps sharedSetup to provide context for Cobra's PreRunE.
func sharedSetupWrapper(cmd *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, cmd, args)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetRootContext replaces the context handed to every command, so main can cancel on signals.
func SetRootContext(ctx context.Context) {
	rootCtx = ctx
}
