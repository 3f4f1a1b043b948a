package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hugo-lorenzo-mato/flowrunner/internal/adapters/ledger"
	"github.com/hugo-lorenzo-mato/flowrunner/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the execution history and a run trigger over HTTP",
	Long: `Start an HTTP server exposing the execution ledger and a run endpoint.

  GET  /health
  GET  /api/v1/executions
  GET  /api/v1/executions/{id}
  POST /api/v1/runs        {"workflow": "path/to/flow.json", "input": {...}}

Each POST /runs performs one resolution-and-generation cycle and records it
in the ledger, exactly as the run command would.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var (
	serveHost   string
	servePort   int
	serveNoCORS bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveHost, "host", "",
		"host address to bind to (default from config)")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0,
		"port to listen on (default from config)")
	serveCmd.Flags().BoolVar(&serveNoCORS, "no-cors", false,
		"disable CORS headers")
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger()

	runner, led, err := buildRunner(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		_ = ledger.Close(led)
	}()

	webCfg := web.DefaultConfig()
	webCfg.Host = cfg.Serve.Host
	webCfg.Port = cfg.Serve.Port
	webCfg.CORSOrigins = cfg.Serve.CORSOrigins
	webCfg.EnableCORS = !serveNoCORS
	if serveHost != "" {
		webCfg.Host = serveHost
	}
	if servePort != 0 {
		webCfg.Port = servePort
	}
	// POST /runs blocks on the backend; keep the write window above the
	// generation timeout.
	if cfg.Ollama.Timeout > 0 {
		webCfg.WriteTimeout = cfg.Ollama.Timeout + 30*time.Second
	}

	server := web.New(webCfg, logger.Logger, led, runner)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return server.Start(ctx)
}
