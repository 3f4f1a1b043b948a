package cmd

import (
	"errors"
	"os"

	"github.com/spf13/viper"

	"github.com/hugo-lorenzo-mato/flowrunner/internal/adapters/ledger"
	"github.com/hugo-lorenzo-mato/flowrunner/internal/config"
	"github.com/hugo-lorenzo-mato/flowrunner/internal/core"
	"github.com/hugo-lorenzo-mato/flowrunner/internal/logging"
	"github.com/hugo-lorenzo-mato/flowrunner/internal/ollama"
	"github.com/hugo-lorenzo-mato/flowrunner/internal/service"
)

// exitError carries a process exit code through cobra's error return.
type exitError struct {
	err  error
	code int
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

// ExitCode maps a command error to the process exit code. All failure
// categories exit 1 unless a command asked for a specific code.
func ExitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	if err != nil {
		return 1
	}
	return 0
}

// loadConfig loads the runner configuration through the shared viper
// instance so CLI flags keep precedence.
func loadConfig() (*config.Config, error) {
	loader := config.NewLoaderWithViper(viper.GetViper())
	if cfgFile != "" {
		loader.WithConfigFile(cfgFile)
	}
	return loader.Load()
}

// newLogger builds the diagnostic logger from global flags. Diagnostics go
// to stderr; stdout is reserved for the machine-readable record line.
func newLogger() *logging.Logger {
	level := logLevel
	if quiet {
		level = "error"
	}
	return logging.New(logging.Config{
		Level:  level,
		Format: logFormat,
		Output: os.Stderr,
	})
}

// buildRunner wires the generation client and ledger into a runner.
func buildRunner(cfg *config.Config, logger *logging.Logger) (*service.Runner, core.ExecutionLedger, error) {
	client := ollama.New(ollama.Config{
		Host:    cfg.Ollama.Host,
		Model:   cfg.Ollama.Model,
		Timeout: cfg.Ollama.Timeout,
	}, logger)

	led, err := ledger.New(cfg.Ledger.Backend, cfg.Ledger.Path)
	if err != nil {
		return nil, nil, err
	}

	trace := logging.NewTrace(cfg.Logs.Dir)
	runner := service.NewRunner(client, led, logger, service.WithTrace(trace))
	return runner, led, nil
}
