package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
		Ollama: OllamaConfig{
			Host:    "http://ollama:11434",
			Model:   "tinyllama",
			Timeout: 60 * time.Second,
		},
		Ledger: LedgerConfig{
			Backend: "json",
			Path:    "executions.json",
		},
		Logs: LogsConfig{
			Dir: "logs",
		},
		Serve: ServeConfig{
			Host:        "localhost",
			Port:        8080,
			CORSOrigins: []string{"http://localhost:5173"},
		},
	}
}

// scaffold mirrors Config for the generated YAML file, with durations as
// human-readable strings.
type scaffold struct {
	Log    LogConfig    `yaml:"log"`
	Ollama struct {
		Host    string `yaml:"host"`
		Model   string `yaml:"model"`
		Timeout string `yaml:"timeout"`
	} `yaml:"ollama"`
	Ledger LedgerConfig `yaml:"ledger"`
	Logs   LogsConfig   `yaml:"logs"`
	Serve  ServeConfig  `yaml:"serve"`
}

// WriteDefault writes the default configuration as YAML to path, atomically.
func WriteDefault(path string) error {
	def := Default()
	var s scaffold
	s.Log = def.Log
	s.Ollama.Host = def.Ollama.Host
	s.Ollama.Model = def.Ollama.Model
	s.Ollama.Timeout = def.Ollama.Timeout.String()
	s.Ledger = def.Ledger
	s.Logs = def.Logs
	s.Serve = def.Serve

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling default config: %w", err)
	}
	header := []byte("# flowrunner configuration\n\n")
	if err := AtomicWrite(path, append(header, data...)); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
