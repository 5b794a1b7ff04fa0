package handler

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/vigil/demo-requests/internal/demo"
	"github.com/vigil/demo-requests/internal/manager"
)

// Handler exposes the demo request manager as MCP tools.
type Handler struct {
	m *manager.RequestManager
}

func New(m *manager.RequestManager) *Handler {
	return &Handler{m: m}
}

// Register adds the demo request tools to s.
func (h *Handler) Register(s *server.MCPServer) {
	s.AddTool(mcp.NewTool("list_demo_requests",
		mcp.WithDescription("List demo requests, newest first."),
		mcp.WithString("status",
			mcp.Description("Only return requests with this status. Empty or 'all' returns every request."),
		),
		mcp.WithNumber("limit", mcp.Description("Maximum number of requests to return.")),
		mcp.WithNumber("offset", mcp.Description("Number of requests to skip.")),
	), h.ListDemoRequests)

	s.AddTool(mcp.NewTool("get_demo_request",
		mcp.WithDescription("Fetch a single demo request by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("The demo request id")),
	), h.GetDemoRequest)

	s.AddTool(mcp.NewTool("submit_demo_request",
		mcp.WithDescription("Record a new demo request. Missing fields are stored as empty text."),
		mcp.WithString("fullName", mcp.Description("Requester's full name")),
		mcp.WithString("email", mcp.Description("Contact email")),
		mcp.WithString("phone", mcp.Description("Contact phone number")),
		mcp.WithString("organization", mcp.Description("Organization name")),
		mcp.WithString("role", mcp.Description("Requester's role")),
		mcp.WithString("cameras", mcp.Description("Number of cameras to cover")),
		mcp.WithString("message", mcp.Description("Free-form message")),
	), h.SubmitDemoRequest)

	s.AddTool(mcp.NewTool("update_demo_request_status",
		mcp.WithDescription("Set the status of a demo request, e.g. approved or contacted."),
		mcp.WithString("id", mcp.Required(), mcp.Description("The demo request id")),
		mcp.WithString("status", mcp.Required(), mcp.Description("The new status")),
	), h.UpdateDemoRequestStatus)
}

func (h *Handler) ListDemoRequests(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	reqs := h.m.List(ctx, manager.ListOptions{
		Status: request.GetString("status", ""),
		Limit:  request.GetInt("limit", 0),
		Offset: request.GetInt("offset", 0),
	})
	return jsonResult(reqs)
}

func (h *Handler) GetDemoRequest(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id is required"), nil
	}

	req, err := h.m.Get(ctx, id)
	if errors.Is(err, manager.ErrNotFound) {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err != nil {
		return nil, err
	}
	return jsonResult(req)
}

func (h *Handler) SubmitDemoRequest(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req, err := h.m.Submit(ctx, demo.Fields(request.GetArguments()))
	if err != nil {
		return mcp.NewToolResultError("demo request not saved"), nil
	}
	return jsonResult(req)
}

func (h *Handler) UpdateDemoRequestStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id is required"), nil
	}
	status, err := request.RequireString("status")
	if err != nil {
		return mcp.NewToolResultError("status is required"), nil
	}

	updated, err := h.m.SetStatus(ctx, id, status)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]bool{"updated": updated})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}
