package repository

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"workflow-automation/backend/pkg/models"
)

const (
	workflowListKey = "workflow_list"
)

// CachingStore is a read-through cache in front of a Store. Writes go
// to the inner store first; matching cache entries are invalidated only
// after the write succeeds, so readers never see entries for data that
// failed to commit.
type CachingStore struct {
	inner Store
	cache *expirable.LRU[string, any]
}

// NewCachingStore wraps inner with an expiring LRU cache.
func NewCachingStore(inner Store, size int, ttl time.Duration) *CachingStore {
	return &CachingStore{
		inner: inner,
		cache: expirable.NewLRU[string, any](size, nil, ttl),
	}
}

func workflowKey(id string) string   { return "workflow:" + id }
func executionKey(id string) string  { return "execution:" + id }
func executionsKey(id string) string { return "workflow_executions:" + id }

// CreateWorkflow inserts a workflow and invalidates the list cache.
func (c *CachingStore) CreateWorkflow(ctx context.Context, wf *models.Workflow) error {
	if err := c.inner.CreateWorkflow(ctx, wf); err != nil {
		return err
	}
	c.cache.Remove(workflowListKey)
	return nil
}

// GetWorkflow returns a cached workflow or reads through to the store.
func (c *CachingStore) GetWorkflow(ctx context.Context, id string) (*models.Workflow, error) {
	if v, ok := c.cache.Get(workflowKey(id)); ok {
		return v.(*models.Workflow), nil
	}
	wf, err := c.inner.GetWorkflow(ctx, id)
	if err != nil {
		return nil, err
	}
	c.cache.Add(workflowKey(id), wf)
	return wf, nil
}

// ListWorkflows returns the cached list or reads through to the store.
func (c *CachingStore) ListWorkflows(ctx context.Context) ([]*models.Workflow, error) {
	if v, ok := c.cache.Get(workflowListKey); ok {
		return v.([]*models.Workflow), nil
	}
	workflows, err := c.inner.ListWorkflows(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.Add(workflowListKey, workflows)
	return workflows, nil
}

// UpdateWorkflow updates a workflow and invalidates its cache entries.
func (c *CachingStore) UpdateWorkflow(ctx context.Context, wf *models.Workflow) error {
	if err := c.inner.UpdateWorkflow(ctx, wf); err != nil {
		return err
	}
	c.invalidateWorkflow(wf.ID)
	return nil
}

// DeleteWorkflow deletes a workflow and invalidates its cache entries.
func (c *CachingStore) DeleteWorkflow(ctx context.Context, id string) error {
	if err := c.inner.DeleteWorkflow(ctx, id); err != nil {
		return err
	}
	c.invalidateWorkflow(id)
	c.cache.Remove(executionsKey(id))
	return nil
}

// SetWorkflowStatus updates a workflow's status and invalidates its cache entries.
func (c *CachingStore) SetWorkflowStatus(ctx context.Context, id string, status models.WorkflowStatus) error {
	if err := c.inner.SetWorkflowStatus(ctx, id, status); err != nil {
		return err
	}
	c.invalidateWorkflow(id)
	return nil
}

// CreateExecution inserts an execution and invalidates the workflow's
// execution list.
func (c *CachingStore) CreateExecution(ctx context.Context, exec *models.Execution) error {
	if err := c.inner.CreateExecution(ctx, exec); err != nil {
		return err
	}
	c.cache.Remove(executionsKey(exec.WorkflowID))
	return nil
}

// GetExecution returns a cached execution or reads through to the store.
func (c *CachingStore) GetExecution(ctx context.Context, id string) (*models.Execution, error) {
	if v, ok := c.cache.Get(executionKey(id)); ok {
		return v.(*models.Execution), nil
	}
	exec, err := c.inner.GetExecution(ctx, id)
	if err != nil {
		return nil, err
	}
	c.cache.Add(executionKey(id), exec)
	return exec, nil
}

// ListExecutions returns a cached execution list or reads through.
func (c *CachingStore) ListExecutions(ctx context.Context, workflowID string) ([]*models.Execution, error) {
	if v, ok := c.cache.Get(executionsKey(workflowID)); ok {
		return v.([]*models.Execution), nil
	}
	executions, err := c.inner.ListExecutions(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	c.cache.Add(executionsKey(workflowID), executions)
	return executions, nil
}

// UpdateExecution persists an execution and invalidates its cache
// entries, so pollers watching a live run see fresh logs.
func (c *CachingStore) UpdateExecution(ctx context.Context, exec *models.Execution) error {
	if err := c.inner.UpdateExecution(ctx, exec); err != nil {
		return err
	}
	c.cache.Remove(executionKey(exec.ID))
	c.cache.Remove(executionsKey(exec.WorkflowID))
	return nil
}

// Ping checks the underlying store.
func (c *CachingStore) Ping(ctx context.Context) error {
	return c.inner.Ping(ctx)
}

func (c *CachingStore) invalidateWorkflow(id string) {
	c.cache.Remove(workflowKey(id))
	c.cache.Remove(workflowListKey)
}
