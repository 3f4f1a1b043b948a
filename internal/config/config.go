// Package config loads runner configuration from defaults, an optional
// config file and FLOWRUNNER_* environment variables.
package config

import "time"

// Config is the full runner configuration.
type Config struct {
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
	Ollama OllamaConfig `mapstructure:"ollama" yaml:"ollama"`
	Ledger LedgerConfig `mapstructure:"ledger" yaml:"ledger"`
	Logs   LogsConfig   `mapstructure:"logs" yaml:"logs"`
	Serve  ServeConfig  `mapstructure:"serve" yaml:"serve"`
}

// LogConfig configures diagnostic logging.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// OllamaConfig configures the generation backend.
type OllamaConfig struct {
	Host    string        `mapstructure:"host" yaml:"host"`
	Model   string        `mapstructure:"model" yaml:"model"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// LedgerConfig configures the execution ledger.
type LedgerConfig struct {
	Backend string `mapstructure:"backend" yaml:"backend"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// LogsConfig configures the auxiliary trace/log files.
type LogsConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// ServeConfig configures the HTTP API server.
type ServeConfig struct {
	Host        string   `mapstructure:"host" yaml:"host"`
	Port        int      `mapstructure:"port" yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}
