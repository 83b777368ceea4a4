package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cyberscan/scand/internal/api"
	"github.com/cyberscan/scand/internal/callback"
	"github.com/cyberscan/scand/internal/config"
	"github.com/cyberscan/scand/internal/logging"
	"github.com/cyberscan/scand/internal/metrics"
	"github.com/cyberscan/scand/internal/orchestrator"
	"github.com/cyberscan/scand/internal/scanning"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scan API server",
	Long: `Start the HTTP API server. Scan requests are admitted on POST /scan,
run asynchronously against the nmap engine, and reported to callback URLs.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	bindServeFlags(serveCmd.Flags())
}

func bindServeFlags(fs *pflag.FlagSet) {
	fs.String("host", "", "listen address (overrides config)")
	fs.Int("port", 0, "listen port (overrides config)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(viper.ConfigFileUsed())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if host, _ := cmd.Flags().GetString("host"); host != "" {
		cfg.API.Host = host
	}
	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.API.Port = port
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pm := metrics.GetGlobalMetrics()

	registry := orchestrator.NewRegistry(cfg.Scanning.RegistryRetention, cfg.Scanning.RegistryCapacity)
	registry.StartJanitor(ctx)
	defer registry.Stop()

	engine := scanning.NewNmapEngine()
	deliverer := callback.NewHTTPDeliverer(cfg.Callback.Timeout, pm)

	orch := orchestrator.New(cfg.Scanning, cfg.Callback.DefaultURL,
		registry, engine, deliverer, pm)

	server := api.New(cfg, orch, pm)

	logging.Info("Starting scand",
		"address", cfg.ListenAddr(),
		"max_concurrent_scans", cfg.Scanning.MaxConcurrentScans,
		"default_callback_configured", cfg.Callback.DefaultURL != "")

	if err := server.Start(ctx); err != nil {
		return err
	}

	// Let in-flight scans finish before exit; their callbacks are the
	// only way clients learn the outcome.
	waitForScans(orch, cfg.API.ShutdownTimeout)
	return nil
}

func waitForScans(orch *orchestrator.Orchestrator, timeout time.Duration) {
	done := make(chan struct{})
	go func() {
		orch.Wait()
		close(done)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	select {
	case <-done:
	case <-ctx.Done():
		logging.Warn("Shutdown timeout reached with scans still running")
	}
}
