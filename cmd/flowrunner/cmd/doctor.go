package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hugo-lorenzo-mato/flowrunner/internal/diagnostics"
	"github.com/hugo-lorenzo-mato/flowrunner/internal/ollama"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check backend connectivity and host readiness",
	Long: `Doctor verifies the pieces a run depends on: the generation backend is
reachable, the configured model is present, and the logs directory is
writable. It also reports host memory, disk and GPU information, since
local models are resource hungry.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger()

	failed := false
	report := func(ok bool, label, detail string) {
		mark := "ok"
		if !ok {
			mark = "FAIL"
			failed = true
		}
		fmt.Printf("  [%s] %-22s %s\n", mark, label, detail)
	}

	fmt.Println("backend:")
	client := ollama.New(ollama.Config{
		Host:    cfg.Ollama.Host,
		Model:   cfg.Ollama.Model,
		Timeout: 5 * time.Second,
	}, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	models, err := client.Models(ctx)
	if err != nil {
		report(false, "reachable", fmt.Sprintf("%s (%v)", cfg.Ollama.Host, err))
	} else {
		report(true, "reachable", cfg.Ollama.Host)
		found := false
		for _, m := range models {
			if m == cfg.Ollama.Model || strings.SplitN(m, ":", 2)[0] == cfg.Ollama.Model {
				found = true
				break
			}
		}
		if found {
			report(true, "model", cfg.Ollama.Model)
		} else {
			report(false, "model",
				fmt.Sprintf("%s not found (available: %s)", cfg.Ollama.Model, strings.Join(models, ", ")))
		}
	}

	fmt.Println("filesystem:")
	report(dirWritable(cfg.Logs.Dir), "logs dir", cfg.Logs.Dir)
	ledgerDir := filepath.Dir(cfg.Ledger.Path)
	report(dirWritable(ledgerDir), "ledger dir", ledgerDir)

	fmt.Println("host:")
	host := diagnostics.Collect()
	fmt.Printf("  cpu:    %s (%d threads)\n", host.CPUModel, host.CPUThreads)
	fmt.Printf("  memory: %.0f MB total, %.0f MB available\n", host.MemTotalMB, host.MemFreeMB)
	fmt.Printf("  disk:   %.1f GB total, %.1f GB free\n", host.DiskTotalGB, host.DiskFreeGB)
	if len(host.GPUs) > 0 {
		fmt.Printf("  gpu:    %s\n", strings.Join(host.GPUs, "; "))
	} else {
		fmt.Println("  gpu:    none detected (generation will run on CPU)")
	}

	if failed {
		return &exitError{err: fmt.Errorf("doctor found problems"), code: 1}
	}
	fmt.Println("all checks passed")
	return nil
}

// dirWritable checks the directory can be created and written.
func dirWritable(dir string) bool {
	if dir == "" || dir == "." {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false
	}
	probe, err := os.CreateTemp(dir, ".doctor-*")
	if err != nil {
		return false
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)
	return true
}
