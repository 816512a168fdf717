package api

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"workflow-automation/backend/internal/engine"
	"workflow-automation/backend/internal/repository"
	"workflow-automation/backend/pkg/models"
)

// ListWorkflows returns a list of all workflows.
// (GET /api/v1/workflows)
func (s *Server) ListWorkflows(c echo.Context) error {
	workflows, err := s.Store.ListWorkflows(c.Request().Context())
	if err != nil {
		return problem(c, http.StatusInternalServerError, "Failed to list workflows", err.Error())
	}
	if workflows == nil {
		workflows = []*models.Workflow{}
	}
	return c.JSON(http.StatusOK, workflows)
}

// CreateWorkflow creates a new workflow.
// (POST /api/v1/workflows)
func (s *Server) CreateWorkflow(c echo.Context) error {
	var wf models.Workflow
	if err := c.Bind(&wf); err != nil {
		return problem(c, http.StatusBadRequest, "Invalid request body", err.Error())
	}

	// Identity, status, and timestamps are server-assigned.
	wf.ID = uuid.New().String()
	wf.Status = models.WorkflowStatusIdle

	if err := s.Store.CreateWorkflow(c.Request().Context(), &wf); err != nil {
		return problem(c, http.StatusInternalServerError, "Failed to save workflow", err.Error())
	}
	return c.JSON(http.StatusCreated, wf)
}

// GetWorkflow returns one workflow.
// (GET /api/v1/workflows/:id)
func (s *Server) GetWorkflow(c echo.Context) error {
	wf, err := s.Store.GetWorkflow(c.Request().Context(), c.Param("id"))
	if err != nil {
		return storeProblem(c, err, "Failed to load workflow")
	}
	return c.JSON(http.StatusOK, wf)
}

// UpdateWorkflow replaces a workflow's definition. Status is not
// client-writable; it only changes through runs.
// (PUT /api/v1/workflows/:id)
func (s *Server) UpdateWorkflow(c echo.Context) error {
	var wf models.Workflow
	if err := c.Bind(&wf); err != nil {
		return problem(c, http.StatusBadRequest, "Invalid request body", err.Error())
	}
	wf.ID = c.Param("id")

	if err := s.Store.UpdateWorkflow(c.Request().Context(), &wf); err != nil {
		return storeProblem(c, err, "Failed to update workflow")
	}

	updated, err := s.Store.GetWorkflow(c.Request().Context(), wf.ID)
	if err != nil {
		return storeProblem(c, err, "Failed to load workflow")
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteWorkflow removes a workflow and its executions.
// (DELETE /api/v1/workflows/:id)
func (s *Server) DeleteWorkflow(c echo.Context) error {
	if err := s.Store.DeleteWorkflow(c.Request().Context(), c.Param("id")); err != nil {
		return storeProblem(c, err, "Failed to delete workflow")
	}
	return c.NoContent(http.StatusNoContent)
}

// ExecuteWorkflow starts an asynchronous run of the workflow.
// (POST /api/v1/workflows/:id/execute)
func (s *Server) ExecuteWorkflow(c echo.Context) error {
	executionID, err := s.Runner.StartRun(c.Request().Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return problem(c, http.StatusNotFound, "Workflow not found", err.Error())
		case errors.Is(err, engine.ErrWorkflowRunning):
			return problem(c, http.StatusConflict, "Workflow already running", err.Error())
		case engine.IsValidationError(err):
			return problem(c, http.StatusBadRequest, "Invalid workflow graph", err.Error())
		default:
			return problem(c, http.StatusInternalServerError, "Failed to start run", err.Error())
		}
	}
	return c.JSON(http.StatusAccepted, map[string]string{
		"execution_id": executionID,
		"status":       "started",
	})
}

// ListExecutions returns a workflow's executions, newest first.
// (GET /api/v1/workflows/:id/executions)
func (s *Server) ListExecutions(c echo.Context) error {
	id := c.Param("id")
	if _, err := s.Store.GetWorkflow(c.Request().Context(), id); err != nil {
		return storeProblem(c, err, "Failed to load workflow")
	}
	executions, err := s.Store.ListExecutions(c.Request().Context(), id)
	if err != nil {
		return problem(c, http.StatusInternalServerError, "Failed to list executions", err.Error())
	}
	if executions == nil {
		executions = []*models.Execution{}
	}
	return c.JSON(http.StatusOK, executions)
}

// GetExecution returns one execution with its logs. Pollers use this to
// watch a live run; partial logs are visible while the run progresses.
// (GET /api/v1/executions/:id)
func (s *Server) GetExecution(c echo.Context) error {
	exec, err := s.Store.GetExecution(c.Request().Context(), c.Param("id"))
	if err != nil {
		return storeProblem(c, err, "Failed to load execution")
	}
	return c.JSON(http.StatusOK, exec)
}

// TaskExecutionRequest is the body of an ad-hoc single-task invocation.
type TaskExecutionRequest struct {
	Type   models.TaskType `json:"type"`
	Config map[string]any  `json:"config"`
}

// ExecuteTask runs a single task outside any workflow, for interactive
// "run this node now" testing. Nothing is persisted.
// (POST /api/v1/tasks/execute)
func (s *Server) ExecuteTask(c echo.Context) error {
	var req TaskExecutionRequest
	if err := c.Bind(&req); err != nil {
		return problem(c, http.StatusBadRequest, "Invalid request body", err.Error())
	}

	output, err := s.Runner.ExecuteTask(c.Request().Context(), req.Type, req.Config)
	if err != nil {
		var unsupported *engine.UnsupportedTaskTypeError
		if errors.As(err, &unsupported) {
			return problem(c, http.StatusBadRequest, "Unsupported task type", err.Error())
		}
		return problem(c, http.StatusUnprocessableEntity, "Task execution failed", err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{"result": output})
}

func storeProblem(c echo.Context, err error, title string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return problem(c, http.StatusNotFound, "Not found", err.Error())
	}
	return problem(c, http.StatusInternalServerError, title, err.Error())
}
