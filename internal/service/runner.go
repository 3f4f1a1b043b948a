// Package service composes the workflow runner: load, resolve, generate,
// record.
package service

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/hugo-lorenzo-mato/flowrunner/internal/core"
	"github.com/hugo-lorenzo-mato/flowrunner/internal/flow"
	"github.com/hugo-lorenzo-mato/flowrunner/internal/logging"
)

// Runner executes exactly one resolution-and-generation cycle per call.
type Runner struct {
	generator core.Generator
	ledger    core.ExecutionLedger
	logger    *logging.Logger
	trace     *logging.Trace
}

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithTrace sets the auxiliary file trace.
func WithTrace(trace *logging.Trace) RunnerOption {
	return func(r *Runner) {
		r.trace = trace
	}
}

// NewRunner creates a runner over the given collaborators.
func NewRunner(generator core.Generator, ledger core.ExecutionLedger,
	logger *logging.Logger, opts ...RunnerOption) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	r := &Runner{
		generator: generator,
		ledger:    ledger,
		logger:    logger,
		trace:     logging.NewNopTrace(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run performs one cycle: parse the input argument, load and normalize the
// workflow, resolve the prompt, call the generation backend, and append the
// outcome to the ledger.
//
// An input argument that fails to parse aborts before an execution identity
// exists: the error is returned with a nil record and nothing is appended.
// Any later failure is recorded in the ledger as an Error-status record and
// returned together with that record.
func (r *Runner) Run(ctx context.Context, workflowPath, inputArg string) (*core.ExecutionRecord, error) {
	r.trace.Debugf("run requested: workflow=%s input=%s", workflowPath, inputArg)

	input, err := flow.ParseInputArgument(inputArg)
	if err != nil {
		r.logger.Error("parsing input argument", "error", err)
		r.trace.Debugf("input parse failed: %v", err)
		return nil, err
	}

	flowName := FlowName(workflowPath)
	record := core.NewExecutionRecord(flowName, input.Raw())
	logger := r.logger.WithExecution(record.ID).WithFlow(flowName)
	execLog := r.trace.ExecutionLog(record.ID)

	execLog.Logf("[START] Execution %s for flow '%s' at %s", record.ID, flowName, record.StartTime)
	execLog.Logf("Input: %s", rawOrNull(input.Raw()))
	logger.Info("execution started", "workflow_path", workflowPath)

	output, err := r.execute(ctx, workflowPath, input, logger, execLog)
	if err != nil {
		record.Fail(err)
		execLog.Logf("[ERROR] %s", record.Error)
		execLog.Logf("[END] Execution failed after %.2f seconds.", record.Duration)
		logger.Error("execution failed", "error", err, "duration_s", record.Duration)
		if appendErr := r.ledger.Append(ctx, record); appendErr != nil {
			logger.Error("recording failed execution", "error", appendErr)
		}
		return record, err
	}

	record.Complete(output)
	execLog.Logf("[END] Execution completed in %.2f seconds.", record.Duration)
	logger.Info("execution completed", "duration_s", record.Duration)

	if err := r.ledger.Append(ctx, record); err != nil {
		logger.Error("recording execution", "error", err)
		return record, err
	}
	return record, nil
}

// execute runs the load/resolve/generate stages.
func (r *Runner) execute(ctx context.Context, workflowPath string, input *flow.InputPayload,
	logger *logging.Logger, execLog *logging.ExecutionLog) (string, error) {

	execLog.Logf("Loading workflow from: %s", workflowPath)
	wf, err := flow.Load(workflowPath)
	if err != nil {
		return "", err
	}
	execLog.Logf("Workflow loaded. Node count: %d", len(wf.Nodes))
	logger.Debug("workflow loaded",
		"variant", string(wf.Variant), "nodes", len(wf.Nodes), "edges", len(wf.Edges))

	execLog.Logf("Extracting prompt from flow and input...")
	prompt, err := flow.Resolve(wf, input)
	if err != nil {
		return "", err
	}
	execLog.Logf("Prompt extracted: %s", prompt)
	logger.Debug("prompt resolved", "length", len(prompt))

	execLog.Logf("Calling generation backend with prompt...")
	output, err := r.generator.Generate(ctx, prompt)
	if err != nil {
		execLog.Logf("Error: %s", core.ErrorMessage(err))
		return "", err
	}
	execLog.Logf("Backend output: %s", output)

	return output, nil
}

// FlowName derives the workflow name from the definition filename, without
// its .json extension.
func FlowName(workflowPath string) string {
	base := filepath.Base(workflowPath)
	return strings.TrimSuffix(base, ".json")
}

func rawOrNull(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "null"
	}
	return string(raw)
}
