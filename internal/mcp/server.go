// Package mcp exposes the workflow run-trigger boundary as MCP tools so
// agent clients can list, run, and inspect workflows.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"workflow-automation/backend/internal/engine"
	"workflow-automation/backend/internal/repository"
	"workflow-automation/backend/pkg/models"
)

type Server struct {
	mcpServer *server.MCPServer
	store     repository.Store
	runner    *engine.Runner
}

func NewServer(store repository.Store, runner *engine.Runner) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"Workflow Automation",
			"1.0.0",
			server.WithToolCapabilities(true),
		),
		store:  store,
		runner: runner,
	}

	s.registerTools()
	return s
}

func (s *Server) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"list_workflows",
			mcp.WithDescription("List all workflows with their status"),
		),
		s.handleListWorkflows,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"run_workflow",
			mcp.WithDescription("Start an asynchronous run of a workflow"),
			mcp.WithString("workflow_id", mcp.Required(), mcp.Description("The ID of the workflow to run")),
		),
		s.handleRunWorkflow,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_execution",
			mcp.WithDescription("Fetch a run's status and log entries"),
			mcp.WithString("execution_id", mcp.Required(), mcp.Description("The ID of the execution")),
		),
		s.handleGetExecution,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"execute_task",
			mcp.WithDescription("Run a single task (scraping, summarization, classification, email) outside any workflow"),
			mcp.WithString("type", mcp.Required(), mcp.Description("The task type")),
			mcp.WithObject("config", mcp.Description("Type-specific task configuration")),
		),
		s.handleExecuteTask,
	)
}

func (s *Server) handleListWorkflows(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	workflows, err := s.store.ListWorkflows(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list workflows: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(workflows)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleRunWorkflow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}

	workflowID, ok := args["workflow_id"].(string)
	if !ok || workflowID == "" {
		return mcp.NewToolResultError("Missing required parameter: workflow_id"), nil
	}

	executionID, err := s.runner.StartRun(ctx, workflowID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to start run: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(map[string]string{"execution_id": executionID, "status": "started"})
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleGetExecution(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}

	executionID, ok := args["execution_id"].(string)
	if !ok || executionID == "" {
		return mcp.NewToolResultError("Missing required parameter: execution_id"), nil
	}

	exec, err := s.store.GetExecution(ctx, executionID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to load execution: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(exec)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleExecuteTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}

	taskType, ok := args["type"].(string)
	if !ok || taskType == "" {
		return mcp.NewToolResultError("Missing required parameter: type"), nil
	}

	config, _ := args["config"].(map[string]interface{})

	output, err := s.runner.ExecuteTask(ctx, models.TaskType(taskType), config)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Task execution failed: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(map[string]any{"result": output})
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// MountHTTPHandlers mounts the MCP endpoints on the given mux.
func MountHTTPHandlers(mux *http.ServeMux, mcpServer *server.MCPServer) {
	// Use SSE server for /mcp/sse and /mcp/message endpoints
	sseServer := server.NewSSEServer(mcpServer, server.WithStaticBasePath("/mcp"))

	mux.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		// Direct POST for tool calls
		if r.Method == http.MethodPost {
			sseServer.ServeHTTP(w, r)
			return
		}
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	// SSE endpoints
	mux.HandleFunc("/mcp/sse", sseServer.ServeHTTP)
	mux.HandleFunc("/mcp/message", sseServer.ServeHTTP)
}
