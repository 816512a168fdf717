package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"workflow-automation/backend/pkg/models"
)

// PostgresStore is a PostgreSQL implementation of the Store interface.
// Task lists, connection lists, and execution logs are stored as jsonb.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the workflows and executions tables if absent.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS workflows (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			tasks JSONB NOT NULL DEFAULT '[]',
			connections JSONB NOT NULL DEFAULT '[]',
			status TEXT NOT NULL DEFAULT 'idle',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS idx_workflows_status ON workflows (status);
		CREATE TABLE IF NOT EXISTS executions (
			id UUID PRIMARY KEY,
			workflow_id UUID NOT NULL REFERENCES workflows(id) ON DELETE CASCADE,
			status TEXT NOT NULL DEFAULT 'running',
			logs JSONB NOT NULL DEFAULT '[]',
			started_at TIMESTAMPTZ NOT NULL,
			completed_at TIMESTAMPTZ
		);
		CREATE INDEX IF NOT EXISTS idx_executions_workflow ON executions (workflow_id);
	`)
	return err
}

// CreateWorkflow inserts a new workflow.
func (s *PostgresStore) CreateWorkflow(ctx context.Context, wf *models.Workflow) error {
	tasks, connections, err := marshalGraph(wf)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	wf.CreatedAt, wf.UpdatedAt = now, now
	_, err = s.db.Exec(ctx,
		`INSERT INTO workflows (id, name, description, tasks, connections, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		wf.ID, wf.Name, wf.Description, tasks, connections, wf.Status, wf.CreatedAt, wf.UpdatedAt)
	return err
}

// GetWorkflow retrieves a workflow by id.
func (s *PostgresStore) GetWorkflow(ctx context.Context, id string) (*models.Workflow, error) {
	row := s.db.QueryRow(ctx,
		`SELECT id, name, description, tasks, connections, status, created_at, updated_at
		 FROM workflows WHERE id = $1`, id)
	return scanWorkflow(row)
}

// ListWorkflows returns all workflows, newest first.
func (s *PostgresStore) ListWorkflows(ctx context.Context) ([]*models.Workflow, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, name, description, tasks, connections, status, created_at, updated_at
		 FROM workflows ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workflows []*models.Workflow
	for rows.Next() {
		wf, err := scanWorkflow(rows)
		if err != nil {
			return nil, err
		}
		workflows = append(workflows, wf)
	}
	return workflows, rows.Err()
}

// UpdateWorkflow replaces a workflow's definition.
func (s *PostgresStore) UpdateWorkflow(ctx context.Context, wf *models.Workflow) error {
	tasks, connections, err := marshalGraph(wf)
	if err != nil {
		return err
	}
	wf.UpdatedAt = time.Now().UTC()
	tag, err := s.db.Exec(ctx,
		`UPDATE workflows SET name = $1, description = $2, tasks = $3, connections = $4, updated_at = $5
		 WHERE id = $6`,
		wf.Name, wf.Description, tasks, connections, wf.UpdatedAt, wf.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteWorkflow removes a workflow; executions cascade.
func (s *PostgresStore) DeleteWorkflow(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM workflows WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetWorkflowStatus updates only the workflow's status field.
func (s *PostgresStore) SetWorkflowStatus(ctx context.Context, id string, status models.WorkflowStatus) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE workflows SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateExecution inserts a new execution record.
func (s *PostgresStore) CreateExecution(ctx context.Context, exec *models.Execution) error {
	logs, err := json.Marshal(exec.Logs)
	if err != nil {
		return fmt.Errorf("failed to marshal logs: %w", err)
	}
	_, err = s.db.Exec(ctx,
		`INSERT INTO executions (id, workflow_id, status, logs, started_at, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		exec.ID, exec.WorkflowID, exec.Status, logs, exec.StartedAt, exec.CompletedAt)
	return err
}

// GetExecution retrieves an execution by id.
func (s *PostgresStore) GetExecution(ctx context.Context, id string) (*models.Execution, error) {
	row := s.db.QueryRow(ctx,
		`SELECT id, workflow_id, status, logs, started_at, completed_at
		 FROM executions WHERE id = $1`, id)
	return scanExecution(row)
}

// ListExecutions returns a workflow's executions, newest first.
func (s *PostgresStore) ListExecutions(ctx context.Context, workflowID string) ([]*models.Execution, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, workflow_id, status, logs, started_at, completed_at
		 FROM executions WHERE workflow_id = $1 ORDER BY started_at DESC`, workflowID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var executions []*models.Execution
	for rows.Next() {
		exec, err := scanExecution(rows)
		if err != nil {
			return nil, err
		}
		executions = append(executions, exec)
	}
	return executions, rows.Err()
}

// UpdateExecution persists an execution's status, logs, and completion time.
func (s *PostgresStore) UpdateExecution(ctx context.Context, exec *models.Execution) error {
	logs, err := json.Marshal(exec.Logs)
	if err != nil {
		return fmt.Errorf("failed to marshal logs: %w", err)
	}
	tag, err := s.db.Exec(ctx,
		`UPDATE executions SET status = $1, logs = $2, completed_at = $3 WHERE id = $4`,
		exec.Status, logs, exec.CompletedAt, exec.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Ping checks the store is reachable.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkflow(row rowScanner) (*models.Workflow, error) {
	var wf models.Workflow
	var tasks, connections []byte
	err := row.Scan(&wf.ID, &wf.Name, &wf.Description, &tasks, &connections,
		&wf.Status, &wf.CreatedAt, &wf.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(tasks, &wf.Tasks); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tasks: %w", err)
	}
	if err := json.Unmarshal(connections, &wf.Connections); err != nil {
		return nil, fmt.Errorf("failed to unmarshal connections: %w", err)
	}
	return &wf, nil
}

func scanExecution(row rowScanner) (*models.Execution, error) {
	var exec models.Execution
	var logs []byte
	err := row.Scan(&exec.ID, &exec.WorkflowID, &exec.Status, &logs,
		&exec.StartedAt, &exec.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(logs, &exec.Logs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal logs: %w", err)
	}
	return &exec, nil
}

func marshalGraph(wf *models.Workflow) (tasks, connections []byte, err error) {
	tasks, err = json.Marshal(wf.Tasks)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal tasks: %w", err)
	}
	connections, err = json.Marshal(wf.Connections)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal connections: %w", err)
	}
	return tasks, connections, nil
}
