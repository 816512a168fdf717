package models

import (
	"time"
)

// ExecutionStatus represents the state of one workflow run.
type ExecutionStatus string

const (
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusCompleted ExecutionStatus = "completed"
	ExecutionStatusFailed    ExecutionStatus = "failed"
)

// LogLevel classifies an execution log entry.
type LogLevel string

const (
	LogLevelInfo  LogLevel = "info"
	LogLevelError LogLevel = "error"
)

// LogEntry is one append-only record of a per-task outcome. TaskID is
// empty for run-level entries (e.g. cancellation).
type LogEntry struct {
	TaskID    string   `json:"task_id,omitempty"`
	Message   string   `json:"message"`
	Timestamp string   `json:"timestamp"`
	Level     LogLevel `json:"level"`
}

// Execution is one run of a workflow. Logs are append-only in execution
// order; CompletedAt is set exactly once at finalization and is non-nil
// iff the status is terminal.
type Execution struct {
	ID          string          `json:"id"`
	WorkflowID  string          `json:"workflow_id"`
	Status      ExecutionStatus `json:"status"`
	Logs        []LogEntry      `json:"logs"`
	StartedAt   time.Time       `json:"started_at"`
	CompletedAt *time.Time      `json:"completed_at"`
}

// AppendLog appends an entry stamped with the current time. Timestamps
// are monotonically non-decreasing in append order.
func (e *Execution) AppendLog(taskID, message string, level LogLevel) {
	e.Logs = append(e.Logs, LogEntry{
		TaskID:    taskID,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Level:     level,
	})
}
