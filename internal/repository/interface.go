// Package repository provides persistence for workflows and executions.
package repository

import (
	"context"
	"errors"

	"workflow-automation/backend/pkg/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Store is the persistence interface for workflows and their executions.
type Store interface {
	// CreateWorkflow inserts a new workflow.
	CreateWorkflow(ctx context.Context, wf *models.Workflow) error
	// GetWorkflow retrieves a workflow by id.
	GetWorkflow(ctx context.Context, id string) (*models.Workflow, error)
	// ListWorkflows returns all workflows, newest first.
	ListWorkflows(ctx context.Context) ([]*models.Workflow, error)
	// UpdateWorkflow replaces a workflow's definition.
	UpdateWorkflow(ctx context.Context, wf *models.Workflow) error
	// DeleteWorkflow removes a workflow and its executions.
	DeleteWorkflow(ctx context.Context, id string) error
	// SetWorkflowStatus updates only the workflow's status field.
	SetWorkflowStatus(ctx context.Context, id string, status models.WorkflowStatus) error

	// CreateExecution inserts a new execution record.
	CreateExecution(ctx context.Context, exec *models.Execution) error
	// GetExecution retrieves an execution by id.
	GetExecution(ctx context.Context, id string) (*models.Execution, error)
	// ListExecutions returns a workflow's executions, newest first.
	ListExecutions(ctx context.Context, workflowID string) ([]*models.Execution, error)
	// UpdateExecution persists an execution's status, logs, and completion time.
	UpdateExecution(ctx context.Context, exec *models.Execution) error

	// Ping checks the store is reachable.
	Ping(ctx context.Context) error
}
