// Package api contains the HTTP handlers for the workflow automation service.
package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"workflow-automation/backend/internal/engine"
	"workflow-automation/backend/internal/logging"
	"workflow-automation/backend/internal/repository"
)

// Server holds the dependencies for the API server.
type Server struct {
	Store  repository.Store
	Runner *engine.Runner
	Logger *logging.Logger
}

// NewServer creates a new Server.
func NewServer(store repository.Store, runner *engine.Runner, logger *logging.Logger) *Server {
	return &Server{Store: store, Runner: runner, Logger: logger}
}

// Register mounts the API routes on the given group.
func (s *Server) Register(g *echo.Group) {
	g.GET("/workflows", s.ListWorkflows)
	g.POST("/workflows", s.CreateWorkflow)
	g.GET("/workflows/:id", s.GetWorkflow)
	g.PUT("/workflows/:id", s.UpdateWorkflow)
	g.DELETE("/workflows/:id", s.DeleteWorkflow)
	g.POST("/workflows/:id/execute", s.ExecuteWorkflow)
	g.GET("/workflows/:id/executions", s.ListExecutions)
	g.GET("/executions/:id", s.GetExecution)
	g.POST("/tasks/execute", s.ExecuteTask)
}

// HealthStatus represents the health check response.
type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
}

// HandleHealth reports service health; degraded when the store is
// unreachable.
func (s *Server) HandleHealth(c echo.Context) error {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Service:   "workflow-automation",
		Version:   "1.0.0",
	}
	code := http.StatusOK
	if err := s.Store.Ping(c.Request().Context()); err != nil {
		status.Status = "degraded"
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, status)
}

// ProblemDetails represents an RFC 7807 Problem Details response.
type ProblemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail"`
	Instance string `json:"instance,omitempty"`
}

// problem writes an RFC 7807 Problem Details JSON error response.
func problem(c echo.Context, status int, title, detail string) error {
	c.Response().Header().Set(echo.HeaderContentType, "application/problem+json")
	return c.JSON(status, ProblemDetails{
		Type:   "about:blank",
		Title:  title,
		Status: status,
		Detail: detail,
	})
}
