package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"workflow-automation/backend/pkg/models"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) CreateWorkflow(ctx context.Context, wf *models.Workflow) error {
	return m.Called(ctx, wf).Error(0)
}

func (m *mockStore) GetWorkflow(ctx context.Context, id string) (*models.Workflow, error) {
	args := m.Called(ctx, id)
	wf, _ := args.Get(0).(*models.Workflow)
	return wf, args.Error(1)
}

func (m *mockStore) ListWorkflows(ctx context.Context) ([]*models.Workflow, error) {
	args := m.Called(ctx)
	workflows, _ := args.Get(0).([]*models.Workflow)
	return workflows, args.Error(1)
}

func (m *mockStore) UpdateWorkflow(ctx context.Context, wf *models.Workflow) error {
	return m.Called(ctx, wf).Error(0)
}

func (m *mockStore) DeleteWorkflow(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockStore) SetWorkflowStatus(ctx context.Context, id string, status models.WorkflowStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *mockStore) CreateExecution(ctx context.Context, exec *models.Execution) error {
	return m.Called(ctx, exec).Error(0)
}

func (m *mockStore) GetExecution(ctx context.Context, id string) (*models.Execution, error) {
	args := m.Called(ctx, id)
	exec, _ := args.Get(0).(*models.Execution)
	return exec, args.Error(1)
}

func (m *mockStore) ListExecutions(ctx context.Context, workflowID string) ([]*models.Execution, error) {
	args := m.Called(ctx, workflowID)
	executions, _ := args.Get(0).([]*models.Execution)
	return executions, args.Error(1)
}

func (m *mockStore) UpdateExecution(ctx context.Context, exec *models.Execution) error {
	return m.Called(ctx, exec).Error(0)
}

func (m *mockStore) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func newCachedMock(t *testing.T) (*mockStore, *CachingStore) {
	t.Helper()
	inner := new(mockStore)
	return inner, NewCachingStore(inner, 64, time.Minute)
}

func TestCachingStoreReadThrough(t *testing.T) {
	ctx := context.Background()
	inner, cached := newCachedMock(t)

	wf := &models.Workflow{ID: "wf-1", Name: "Digest"}
	inner.On("GetWorkflow", ctx, "wf-1").Return(wf, nil).Once()

	for range 3 {
		got, err := cached.GetWorkflow(ctx, "wf-1")
		require.NoError(t, err)
		assert.Equal(t, wf, got)
	}
	inner.AssertExpectations(t)
}

func TestCachingStoreDoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	inner, cached := newCachedMock(t)

	inner.On("GetWorkflow", ctx, "missing").Return(nil, ErrNotFound).Twice()

	for range 2 {
		_, err := cached.GetWorkflow(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	}
	inner.AssertExpectations(t)
}

func TestCachingStoreUpdateInvalidates(t *testing.T) {
	ctx := context.Background()
	inner, cached := newCachedMock(t)

	stale := &models.Workflow{ID: "wf-1", Name: "Before"}
	fresh := &models.Workflow{ID: "wf-1", Name: "After"}
	inner.On("GetWorkflow", ctx, "wf-1").Return(stale, nil).Once()
	inner.On("UpdateWorkflow", ctx, fresh).Return(nil).Once()
	inner.On("GetWorkflow", ctx, "wf-1").Return(fresh, nil).Once()

	_, err := cached.GetWorkflow(ctx, "wf-1")
	require.NoError(t, err)

	require.NoError(t, cached.UpdateWorkflow(ctx, fresh))

	got, err := cached.GetWorkflow(ctx, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, "After", got.Name)
	inner.AssertExpectations(t)
}

func TestCachingStoreFailedWriteKeepsCache(t *testing.T) {
	ctx := context.Background()
	inner, cached := newCachedMock(t)

	wf := &models.Workflow{ID: "wf-1", Name: "Cached"}
	inner.On("GetWorkflow", ctx, "wf-1").Return(wf, nil).Once()
	inner.On("UpdateWorkflow", ctx, wf).Return(errors.New("db down")).Once()

	_, err := cached.GetWorkflow(ctx, "wf-1")
	require.NoError(t, err)

	assert.Error(t, cached.UpdateWorkflow(ctx, wf))

	// The cached copy survives the failed write, no extra store read.
	got, err := cached.GetWorkflow(ctx, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, wf, got)
	inner.AssertExpectations(t)
}

func TestCachingStoreListInvalidatedByCreate(t *testing.T) {
	ctx := context.Background()
	inner, cached := newCachedMock(t)

	first := []*models.Workflow{{ID: "wf-1"}}
	second := []*models.Workflow{{ID: "wf-1"}, {ID: "wf-2"}}
	created := &models.Workflow{ID: "wf-2"}

	inner.On("ListWorkflows", ctx).Return(first, nil).Once()
	inner.On("CreateWorkflow", ctx, created).Return(nil).Once()
	inner.On("ListWorkflows", ctx).Return(second, nil).Once()

	got, err := cached.ListWorkflows(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	require.NoError(t, cached.CreateWorkflow(ctx, created))

	got, err = cached.ListWorkflows(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	inner.AssertExpectations(t)
}

func TestCachingStoreExecutionUpdateInvalidates(t *testing.T) {
	ctx := context.Background()
	inner, cached := newCachedMock(t)

	exec := &models.Execution{ID: "run-1", WorkflowID: "wf-1", Status: models.ExecutionStatusRunning}
	inner.On("GetExecution", ctx, "run-1").Return(exec, nil).Once()
	inner.On("UpdateExecution", ctx, exec).Return(nil).Once()
	inner.On("GetExecution", ctx, "run-1").Return(exec, nil).Once()
	inner.On("ListExecutions", ctx, "wf-1").Return([]*models.Execution{exec}, nil).Twice()

	_, err := cached.GetExecution(ctx, "run-1")
	require.NoError(t, err)
	_, err = cached.ListExecutions(ctx, "wf-1")
	require.NoError(t, err)

	require.NoError(t, cached.UpdateExecution(ctx, exec))

	// Both the execution and the workflow's run list re-read the store.
	_, err = cached.GetExecution(ctx, "run-1")
	require.NoError(t, err)
	_, err = cached.ListExecutions(ctx, "wf-1")
	require.NoError(t, err)
	inner.AssertExpectations(t)
}
