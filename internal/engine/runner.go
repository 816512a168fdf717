package engine

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"workflow-automation/backend/internal/logging"
	"workflow-automation/backend/pkg/models"
)

// Runner is the run-trigger boundary: it validates a workflow, creates
// its execution record, and hands the run to a background goroutine.
// Callers poll the store for status and logs.
type Runner struct {
	engine *Engine
	store  Store
	logger *logging.Logger

	runTimeout time.Duration

	mu       sync.Mutex
	inFlight map[string]struct{}
	sem      chan struct{}
	wg       sync.WaitGroup
}

// NewRunner creates a Runner. maxConcurrent bounds the number of
// simultaneous runs across all workflows; runTimeout bounds each run.
func NewRunner(engine *Engine, store Store, logger *logging.Logger, maxConcurrent int, runTimeout time.Duration) *Runner {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Runner{
		engine:     engine,
		store:      store,
		logger:     logger,
		runTimeout: runTimeout,
		inFlight:   make(map[string]struct{}),
		sem:        make(chan struct{}, maxConcurrent),
	}
}

// StartRun starts an asynchronous run of the workflow and returns the
// new execution's id. Validation failures and an already-running
// workflow are returned to the caller and no execution record is
// created. At most one run per workflow is in flight at a time.
func (r *Runner) StartRun(ctx context.Context, workflowID string) (string, error) {
	wf, err := r.store.GetWorkflow(ctx, workflowID)
	if err != nil {
		return "", err
	}

	if err := Validate(wf.Tasks, wf.Connections); err != nil {
		return "", err
	}

	r.mu.Lock()
	if _, running := r.inFlight[wf.ID]; running || wf.Status == models.WorkflowStatusRunning {
		r.mu.Unlock()
		return "", ErrWorkflowRunning
	}
	r.inFlight[wf.ID] = struct{}{}
	r.mu.Unlock()

	exec := &models.Execution{
		ID:         uuid.New().String(),
		WorkflowID: wf.ID,
		Status:     models.ExecutionStatusRunning,
		Logs:       []models.LogEntry{},
		StartedAt:  time.Now().UTC(),
	}
	if err := r.store.CreateExecution(ctx, exec); err != nil {
		r.release(wf.ID)
		return "", err
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer r.release(wf.ID)

		r.sem <- struct{}{}
		defer func() { <-r.sem }()

		runCtx := context.Background()
		var cancel context.CancelFunc = func() {}
		if r.runTimeout > 0 {
			runCtx, cancel = context.WithTimeout(runCtx, r.runTimeout)
		}
		defer cancel()

		r.logger.Info("execution started", "execution_id", exec.ID, "workflow_id", wf.ID)
		r.engine.Run(runCtx, wf, exec)
	}()

	return exec.ID, nil
}

// ExecuteTask invokes a single capability synchronously, outside any
// workflow graph. Used for ad-hoc "run this node now" requests.
func (r *Runner) ExecuteTask(ctx context.Context, taskType models.TaskType, config map[string]any) (any, error) {
	return r.engine.ExecuteTask(ctx, taskType, config)
}

// Wait blocks until all in-flight runs have finished. Used during
// graceful shutdown.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) release(workflowID string) {
	r.mu.Lock()
	delete(r.inFlight, workflowID)
	r.mu.Unlock()
}
