// Package models defines the domain models for the workflow automation service.
package models

import (
	"time"
)

// TaskType identifies the capability a task invokes.
type TaskType string

const (
	TaskTypeScraping       TaskType = "scraping"
	TaskTypeSummarization  TaskType = "summarization"
	TaskTypeClassification TaskType = "classification"
	TaskTypeEmail          TaskType = "email"
)

// WorkflowStatus represents the lifecycle state of a workflow.
type WorkflowStatus string

const (
	WorkflowStatusIdle      WorkflowStatus = "idle"
	WorkflowStatusRunning   WorkflowStatus = "running"
	WorkflowStatusCompleted WorkflowStatus = "completed"
	WorkflowStatusFailed    WorkflowStatus = "failed"
)

// Position is canvas layout metadata; it has no effect on execution.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Task is one unit of work inside a workflow. Config keys depend on the
// task type (e.g. summarization reads input_text, max_length, min_length).
type Task struct {
	ID       string         `json:"id"`
	Type     TaskType       `json:"type"`
	Name     string         `json:"name"`
	Config   map[string]any `json:"config"`
	Position Position       `json:"position"`
}

// Connection is a directed edge declaring that the source task's output
// feeds an input field of the target task.
type Connection struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Workflow is a saved graph of tasks and connections, runnable zero or
// more times. Status is mutated only by the execution engine during a run.
type Workflow struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Tasks       []Task         `json:"tasks"`
	Connections []Connection   `json:"connections"`
	Status      WorkflowStatus `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// TaskByID returns the task with the given id, or nil if absent.
func (w *Workflow) TaskByID(id string) *Task {
	for i := range w.Tasks {
		if w.Tasks[i].ID == id {
			return &w.Tasks[i]
		}
	}
	return nil
}
