// Package cli provides the Cobra-based command-line interface for the
// scand service: serving the HTTP API and inspecting the profile catalog.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cyberscan/scand/internal/config"
	"github.com/cyberscan/scand/internal/logging"
)

var (
	cfgFile string
	verbose bool
)

// Build information - these will be set by ldflags during build.
var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "scand",
	Short: "Network scan job wrapper service",
	Long: `Scand wraps an external port-scanning engine behind an HTTP API.
It admits scan requests, runs them asynchronously, classifies the raw
output into severity-tagged findings, and posts risk-scored reports to
caller-supplied callback URLs.`,
	Version: getVersion(),
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	if err := viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose")); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to bind verbose flag: %v\n", err)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("SCAND")

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	initLogging()
}

// getVersion returns the version string.
func getVersion() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime)
}

// SetVersion sets the version information (called from main).
func SetVersion(v, c, bt string) {
	version = v
	commit = c
	buildTime = bt
	rootCmd.Version = getVersion()
}

// initLogging initializes structured logging based on configuration.
func initLogging() {
	cfg, err := config.Load(viper.ConfigFileUsed())
	if err != nil {
		logging.SetDefault(logging.NewDefault())
		return
	}

	logConfig := logging.Config{
		Level:     logging.LogLevel(cfg.Logging.Level),
		Format:    logging.LogFormat(cfg.Logging.Format),
		Output:    cfg.Logging.Output,
		AddSource: cfg.Logging.Level == "debug",
	}

	logger, err := logging.New(logConfig)
	if err != nil {
		logger = logging.NewDefault()
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
	}

	logging.SetDefault(logger)

	if verbose {
		logging.Info("Structured logging initialized",
			"level", cfg.Logging.Level, "format", cfg.Logging.Format)
	}
}
