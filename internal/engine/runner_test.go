package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workflow-automation/backend/internal/logging"
	"workflow-automation/backend/pkg/models"
)

func newTestRunner(store Store, registry *Registry) *Runner {
	logger := logging.NewLogger("error")
	return NewRunner(New(store, registry, logger), store, logger, 2, time.Minute)
}

func TestStartRunExecutesWorkflow(t *testing.T) {
	wf := &models.Workflow{
		ID:     "wf-1",
		Status: models.WorkflowStatusIdle,
		Tasks:  []models.Task{summarizeTask("t1")},
	}
	store := newMemStore(wf)

	registry := NewRegistry()
	registry.Register(models.TaskTypeSummarization, succeedWith("summary"))
	runner := newTestRunner(store, registry)

	executionID, err := runner.StartRun(context.Background(), "wf-1")
	require.NoError(t, err)
	require.NotEmpty(t, executionID)

	runner.Wait()

	store.mu.Lock()
	exec := store.executions[executionID]
	store.mu.Unlock()
	require.NotNil(t, exec)
	assert.Equal(t, models.ExecutionStatusCompleted, exec.Status)
	assert.Equal(t, "wf-1", exec.WorkflowID)
	require.NotNil(t, exec.CompletedAt)
}

func TestStartRunRejectsInvalidGraphWithoutCreatingExecution(t *testing.T) {
	wf := &models.Workflow{
		ID:     "wf-1",
		Status: models.WorkflowStatusIdle,
		Tasks:  []models.Task{emailTask("t1"), summarizeTask("t2")},
		Connections: []models.Connection{
			{Source: "t1", Target: "t2"},
		},
	}
	store := newMemStore(wf)
	runner := newTestRunner(store, NewRegistry())

	_, err := runner.StartRun(context.Background(), "wf-1")
	require.Error(t, err)
	assert.True(t, IsValidationError(err))

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Empty(t, store.executions, "validation failure must not create an execution record")
	assert.Empty(t, store.statuses["wf-1"], "validation failure must not touch workflow status")
}

func TestStartRunRejectsUnknownWorkflow(t *testing.T) {
	runner := newTestRunner(newMemStore(), NewRegistry())

	_, err := runner.StartRun(context.Background(), "missing")
	assert.Error(t, err)
}

func TestStartRunRefusesConcurrentRunOfSameWorkflow(t *testing.T) {
	wf := &models.Workflow{
		ID:     "wf-1",
		Status: models.WorkflowStatusIdle,
		Tasks:  []models.Task{summarizeTask("t1")},
	}
	store := newMemStore(wf)

	release := make(chan struct{})
	registry := NewRegistry()
	registry.Register(models.TaskTypeSummarization, &stubProvider{fn: func(ctx context.Context, _ map[string]any) (any, error) {
		select {
		case <-release:
		case <-ctx.Done():
		}
		return "summary", nil
	}})
	runner := newTestRunner(store, registry)

	_, err := runner.StartRun(context.Background(), "wf-1")
	require.NoError(t, err)

	_, err = runner.StartRun(context.Background(), "wf-1")
	assert.ErrorIs(t, err, ErrWorkflowRunning)

	close(release)
	runner.Wait()

	// After the first run finishes a new run may start.
	_, err = runner.StartRun(context.Background(), "wf-1")
	assert.NoError(t, err)
	runner.Wait()
}

func TestStartRunRefusesWorkflowMarkedRunning(t *testing.T) {
	wf := &models.Workflow{
		ID:     "wf-1",
		Status: models.WorkflowStatusRunning,
		Tasks:  []models.Task{summarizeTask("t1")},
	}
	runner := newTestRunner(newMemStore(wf), NewRegistry())

	_, err := runner.StartRun(context.Background(), "wf-1")
	assert.ErrorIs(t, err, ErrWorkflowRunning)
}
