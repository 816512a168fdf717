package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"workflow-automation/backend/internal/logging"
	"workflow-automation/backend/pkg/models"
)

// Store is the persistence surface the engine needs. The repository
// package provides the postgres implementation.
type Store interface {
	GetWorkflow(ctx context.Context, id string) (*models.Workflow, error)
	SetWorkflowStatus(ctx context.Context, id string, status models.WorkflowStatus) error
	CreateExecution(ctx context.Context, exec *models.Execution) error
	UpdateExecution(ctx context.Context, exec *models.Execution) error
}

// Engine runs one workflow execution at a time per call: it orders the
// tasks, invokes capabilities, routes outputs into downstream configs,
// and appends to the execution log as it goes. The execution record is
// owned exclusively by the goroutine running Run, so log appends and
// status updates reach the store as consistent snapshots.
type Engine struct {
	store    Store
	registry *Registry
	logger   *logging.Logger

	runsFinished  metric.Int64Counter
	tasksExecuted metric.Int64Counter
}

// New creates an Engine. Metric counters come from the global meter
// provider; with no provider configured they are no-ops.
func New(store Store, registry *Registry, logger *logging.Logger) *Engine {
	meter := otel.Meter("workflow-automation/backend/engine")
	runsFinished, _ := meter.Int64Counter("workflow_runs_finished_total",
		metric.WithDescription("Workflow runs reaching a terminal status"))
	tasksExecuted, _ := meter.Int64Counter("workflow_tasks_executed_total",
		metric.WithDescription("Task executions by type and outcome"))
	return &Engine{
		store:         store,
		registry:      registry,
		logger:        logger,
		runsFinished:  runsFinished,
		tasksExecuted: tasksExecuted,
	}
}

// Run executes the workflow's tasks for an already-created execution
// record. The graph must have passed Validate. Tasks run sequentially
// in topological order; the first failure aborts the remaining tasks
// and both the execution and the workflow finish failed. ctx bounds the
// run; cancellation is recorded as a run-level error log entry.
func (e *Engine) Run(ctx context.Context, wf *models.Workflow, exec *models.Execution) {
	// Persistence must survive run cancellation so a timed-out run is
	// never left permanently running.
	persistCtx := context.WithoutCancel(ctx)

	if err := e.store.SetWorkflowStatus(persistCtx, wf.ID, models.WorkflowStatusRunning); err != nil {
		e.logger.Error("failed to mark workflow running", "workflow_id", wf.ID, "error", err)
	}

	outputs := make(map[string]any, len(wf.Tasks))
	var runErr error

	for _, task := range executionOrder(wf.Tasks, wf.Connections) {
		if err := ctx.Err(); err != nil {
			exec.AppendLog("", fmt.Sprintf("Execution cancelled: %v", err), models.LogLevelError)
			runErr = err
			break
		}

		output, err := e.runTask(ctx, wf, task, outputs)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				exec.AppendLog(task.ID, fmt.Sprintf("Execution cancelled: %v", err), models.LogLevelError)
			} else {
				exec.AppendLog(task.ID, err.Error(), models.LogLevelError)
			}
			e.persist(persistCtx, exec)
			runErr = err
			break
		}

		outputs[task.ID] = output
		exec.AppendLog(task.ID, "Task completed: "+renderOutput(output), models.LogLevelInfo)
		e.persist(persistCtx, exec)
	}

	e.finalize(persistCtx, wf, exec, runErr)
}

// runTask resolves the task's provider and effective config and invokes
// the capability. Any failure is normalized to a TaskExecutionError,
// except unsupported types which keep their own identity.
func (e *Engine) runTask(ctx context.Context, wf *models.Workflow, task models.Task, outputs map[string]any) (any, error) {
	provider, err := e.registry.Resolve(task.Type)
	if err != nil {
		e.countTask(ctx, task.Type, "error")
		return nil, err
	}

	config := resolveConfig(wf, task, outputs)

	output, err := provider.Invoke(ctx, config)
	if err != nil {
		e.countTask(ctx, task.Type, "error")
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, &TaskExecutionError{TaskID: task.ID, TaskType: task.Type, Err: err}
	}

	e.countTask(ctx, task.Type, "ok")
	return output, nil
}

// ExecuteTask invokes a single capability outside of any workflow run.
// Nothing is logged or persisted; the caller gets the raw output or error.
func (e *Engine) ExecuteTask(ctx context.Context, taskType models.TaskType, config map[string]any) (any, error) {
	provider, err := e.registry.Resolve(taskType)
	if err != nil {
		return nil, err
	}
	return provider.Invoke(ctx, config)
}

func (e *Engine) finalize(ctx context.Context, wf *models.Workflow, exec *models.Execution, runErr error) {
	status := models.ExecutionStatusCompleted
	wfStatus := models.WorkflowStatusCompleted
	if runErr != nil {
		status = models.ExecutionStatusFailed
		wfStatus = models.WorkflowStatusFailed
	}

	now := time.Now().UTC()
	exec.Status = status
	exec.CompletedAt = &now
	e.persist(ctx, exec)

	if err := e.store.SetWorkflowStatus(ctx, wf.ID, wfStatus); err != nil {
		e.logger.Error("failed to finalize workflow status", "workflow_id", wf.ID, "error", err)
	}

	e.runsFinished.Add(ctx, 1, metric.WithAttributes(attribute.String("status", string(status))))
	e.logger.Info("execution finished",
		"execution_id", exec.ID, "workflow_id", wf.ID, "status", status, "log_entries", len(exec.Logs))
}

func (e *Engine) persist(ctx context.Context, exec *models.Execution) {
	if err := e.store.UpdateExecution(ctx, exec); err != nil {
		e.logger.Error("failed to persist execution", "execution_id", exec.ID, "error", err)
	}
}

func (e *Engine) countTask(ctx context.Context, t models.TaskType, outcome string) {
	e.tasksExecuted.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", string(t)),
		attribute.String("outcome", outcome),
	))
}

// executionOrder returns the tasks topologically sorted by the
// connection graph, sources before targets. Independent tasks keep
// their declared order, so a workflow with no connections runs in the
// order the tasks were defined.
func executionOrder(tasks []models.Task, connections []models.Connection) []models.Task {
	indegree := make(map[string]int, len(tasks))
	for _, t := range tasks {
		indegree[t.ID] = 0
	}
	for _, c := range connections {
		indegree[c.Target]++
	}

	order := make([]models.Task, 0, len(tasks))
	emitted := make(map[string]bool, len(tasks))

	for len(order) < len(tasks) {
		progressed := false
		for _, t := range tasks {
			if emitted[t.ID] || indegree[t.ID] > 0 {
				continue
			}
			emitted[t.ID] = true
			order = append(order, t)
			for _, c := range connections {
				if c.Source == t.ID {
					indegree[c.Target]--
				}
			}
			progressed = true
			break
		}
		if !progressed {
			// Remaining tasks form a cycle; Validate rejects this before Run.
			break
		}
	}
	return order
}

// resolveConfig builds the effective config for a task: its own config
// overlaid with upstream outputs routed to the keys the rule table
// declares, applied in connection-declaration order.
func resolveConfig(wf *models.Workflow, task models.Task, outputs map[string]any) map[string]any {
	config := make(map[string]any, len(task.Config)+1)
	for k, v := range task.Config {
		config[k] = v
	}
	for _, conn := range wf.Connections {
		if conn.Target != task.ID {
			continue
		}
		source := wf.TaskByID(conn.Source)
		if source == nil {
			continue
		}
		output, ok := outputs[conn.Source]
		if !ok {
			continue
		}
		if key, ok := OutputKey(source.Type, task.Type); ok {
			config[key] = output
		}
	}
	return config
}

// renderOutput renders a task output for the log message. Strings pass
// through; structured outputs are JSON-encoded.
func renderOutput(v any) string {
	switch t := v.(type) {
	case string:
		return t
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}
