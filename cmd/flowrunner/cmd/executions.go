package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hugo-lorenzo-mato/flowrunner/internal/adapters/ledger"
	"github.com/hugo-lorenzo-mato/flowrunner/internal/core"
)

var executionsCmd = &cobra.Command{
	Use:   "executions",
	Short: "Inspect the execution ledger",
}

var executionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded executions",
	Args:  cobra.NoArgs,
	RunE:  runExecutionsList,
}

var executionsShowCmd = &cobra.Command{
	Use:   "show <execution-id>",
	Short: "Show one execution record as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runExecutionsShow,
}

var executionsJSON bool

func init() {
	rootCmd.AddCommand(executionsCmd)
	executionsCmd.AddCommand(executionsListCmd)
	executionsCmd.AddCommand(executionsShowCmd)

	executionsListCmd.Flags().BoolVar(&executionsJSON, "json", false,
		"output the full records as JSON")
}

func openLedger() (core.ExecutionLedger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return ledger.New(cfg.Ledger.Backend, cfg.Ledger.Path)
}

func runExecutionsList(_ *cobra.Command, _ []string) error {
	led, err := openLedger()
	if err != nil {
		return err
	}
	defer func() {
		_ = ledger.Close(led)
	}()

	records, err := led.List(context.Background())
	if err != nil {
		return err
	}

	if executionsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFLOW\tSTATUS\tSTART\tDURATION")
	for _, rec := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2fs\n",
			rec.ID, rec.Flow, rec.Status, rec.StartTime, rec.Duration)
	}
	return w.Flush()
}

func runExecutionsShow(_ *cobra.Command, args []string) error {
	led, err := openLedger()
	if err != nil {
		return err
	}
	defer func() {
		_ = ledger.Close(led)
	}()

	record, err := led.Get(context.Background(), args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(record)
}
