package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/hugo-lorenzo-mato/flowrunner/internal/adapters/ledger"
	"github.com/hugo-lorenzo-mato/flowrunner/internal/logging"
	"github.com/hugo-lorenzo-mato/flowrunner/internal/service"
)

var runCmd = &cobra.Command{
	Use:   "run <workflow-file> <input>",
	Short: "Run one resolution-and-generation cycle",
	Long: `Run loads the workflow definition, resolves its prompt template with the
given input, sends the prompt to the generation backend, and appends the
outcome to the execution ledger.

The input is either a path to a .json file or an inline JSON value:

  flowrunner run flows/greeting.json '{"name": "Ada"}'
  flowrunner run flows/greeting.json inputs/ada.json

The final line on stdout is always the JSON execution record, on success
and on failure alike.`,
	Args: cobra.ExactArgs(2),
	RunE: runRun,
}

var runWatch bool

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&runWatch, "watch", false,
		"re-run whenever the workflow file changes")
}

func runRun(_ *cobra.Command, args []string) error {
	workflowPath, inputArg := args[0], args[1]

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

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if runWatch {
		return watchAndRun(ctx, runner, logger, workflowPath, inputArg)
	}

	return executeOnce(ctx, runner, workflowPath, inputArg)
}

// executeOnce performs one cycle and prints the record as the final stdout
// line. A run with no record (input parse failure) exits nonzero without a
// ledger entry.
func executeOnce(ctx context.Context, runner *service.Runner, workflowPath, inputArg string) error {
	record, err := runner.Run(ctx, workflowPath, inputArg)
	if record != nil {
		fmt.Println(record.JSON())
	}
	if err != nil {
		return &exitError{err: err, code: 1}
	}
	return nil
}

// watchAndRun re-executes the flow whenever its definition file changes.
// Each cycle appends its own ledger record.
func watchAndRun(ctx context.Context, runner *service.Runner, logger *logging.Logger,
	workflowPath, inputArg string) error {

	if err := executeOnce(ctx, runner, workflowPath, inputArg); err != nil {
		logger.Warn("initial run failed, watching for changes", "error", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors replace files on save, which drops
	// watches registered on the file itself.
	if err := watcher.Add(filepath.Dir(workflowPath)); err != nil {
		return fmt.Errorf("watching workflow directory: %w", err)
	}

	logger.Info("watching workflow for changes", "path", workflowPath)

	var debounce *time.Timer
	runCh := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(workflowPath) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(250*time.Millisecond, func() {
				select {
				case runCh <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)
		case <-runCh:
			logger.Info("workflow changed, re-running")
			if err := executeOnce(ctx, runner, workflowPath, inputArg); err != nil {
				logger.Warn("run failed", "error", err)
			}
		}
	}
}
