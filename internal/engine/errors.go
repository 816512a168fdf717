package engine

import (
	"errors"
	"fmt"

	"workflow-automation/backend/pkg/models"
)

// ErrWorkflowRunning is returned by StartRun when the workflow already
// has an in-flight execution.
var ErrWorkflowRunning = errors.New("workflow already has a running execution")

// UnknownTaskError reports a connection endpoint that references a task
// id not present in the workflow.
type UnknownTaskError struct {
	TaskID string
}

func (e *UnknownTaskError) Error() string {
	return fmt.Sprintf("connection references unknown task %q", e.TaskID)
}

// InvalidConnectionError reports an edge whose (source, target) type
// pair is not allowed by the connection rule table.
type InvalidConnectionError struct {
	SourceType models.TaskType
	TargetType models.TaskType
}

func (e *InvalidConnectionError) Error() string {
	return fmt.Sprintf("cannot connect %s to %s", e.SourceType, e.TargetType)
}

// CyclicGraphError reports that the connection set forms a cycle.
type CyclicGraphError struct {
	TaskID string
}

func (e *CyclicGraphError) Error() string {
	return fmt.Sprintf("workflow graph has a cycle through task %q", e.TaskID)
}

// DuplicateInputError reports two or more connections writing the same
// config key of the same target task.
type DuplicateInputError struct {
	TaskID string
	Key    string
}

func (e *DuplicateInputError) Error() string {
	return fmt.Sprintf("task %q receives config key %q from more than one connection", e.TaskID, e.Key)
}

// MissingConfigError reports a task whose required config key is
// neither set nor supplied by an incoming connection.
type MissingConfigError struct {
	TaskID string
	Key    string
}

func (e *MissingConfigError) Error() string {
	return fmt.Sprintf("task %q is missing required config key %q", e.TaskID, e.Key)
}

// UnsupportedTaskTypeError reports a task type with no registered
// capability provider.
type UnsupportedTaskTypeError struct {
	TaskType models.TaskType
}

func (e *UnsupportedTaskTypeError) Error() string {
	return fmt.Sprintf("unsupported task type %q", e.TaskType)
}

// TaskExecutionError is the normalized form of any capability failure
// during a run.
type TaskExecutionError struct {
	TaskID   string
	TaskType models.TaskType
	Err      error
}

func (e *TaskExecutionError) Error() string {
	return fmt.Sprintf("task %q (%s) failed: %v", e.TaskID, e.TaskType, e.Err)
}

func (e *TaskExecutionError) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err came from graph validation, as
// opposed to a failure during execution.
func IsValidationError(err error) bool {
	var (
		unknownTask *UnknownTaskError
		invalidConn *InvalidConnectionError
		cyclic      *CyclicGraphError
		duplicate   *DuplicateInputError
		missing     *MissingConfigError
	)
	return errors.As(err, &unknownTask) ||
		errors.As(err, &invalidConn) ||
		errors.As(err, &cyclic) ||
		errors.As(err, &duplicate) ||
		errors.As(err, &missing)
}
