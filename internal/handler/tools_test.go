package handler

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/vigil/demo-requests/internal/demo"
	"github.com/vigil/demo-requests/internal/manager"
	"github.com/vigil/demo-requests/internal/store"
)

func setupHandler(t *testing.T, allowed ...string) (*Handler, *store.MemoryStore) {
	t.Helper()
	s := store.NewMemoryStore(store.WithLogger(zerolog.Nop()))
	return New(manager.NewRequestManager(s, nil, allowed)), s
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if res == nil || len(res.Content) == 0 {
		t.Fatal("expected tool result content")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}
	return text.Text
}

func submit(t *testing.T, h *Handler, args map[string]any) demo.Request {
	t.Helper()
	res, err := h.SubmitDemoRequest(context.Background(), callRequest(args))
	if err != nil {
		t.Fatalf("SubmitDemoRequest failed: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, res))
	}
	var req demo.Request
	if err := json.Unmarshal([]byte(resultText(t, res)), &req); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	return req
}

func TestSubmitDemoRequest(t *testing.T) {
	h, _ := setupHandler(t)

	req := submit(t, h, map[string]any{"fullName": "Jane Doe", "email": "jane@x.com", "cameras": 8})
	if req.ID == "" || req.Status != "pending" {
		t.Errorf("unexpected request %+v", req)
	}
	if req.Cameras != "8" {
		t.Errorf("expected cameras '8', got %q", req.Cameras)
	}
	if req.Phone != "" || req.UpdatedAt != nil {
		t.Errorf("expected defaults, got %+v", req)
	}
}

func TestSubmitDemoRequestNotSaved(t *testing.T) {
	h, s := setupHandler(t)
	s.FailWrites(errors.New("disk full"))

	res, err := h.SubmitDemoRequest(context.Background(), callRequest(map[string]any{"fullName": "A"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.IsError || !strings.Contains(resultText(t, res), "not saved") {
		t.Errorf("expected not saved tool error, got %q", resultText(t, res))
	}
}

func TestListDemoRequests(t *testing.T) {
	h, _ := setupHandler(t)
	first := submit(t, h, map[string]any{"fullName": "first"})
	submit(t, h, map[string]any{"fullName": "second"})

	res, err := h.ListDemoRequests(context.Background(), callRequest(map[string]any{}))
	if err != nil {
		t.Fatalf("ListDemoRequests failed: %v", err)
	}
	var reqs []demo.Request
	if err := json.Unmarshal([]byte(resultText(t, res)), &reqs); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if len(reqs) != 2 || reqs[0].FullName != "second" || reqs[1].ID != first.ID {
		t.Errorf("expected newest first, got %+v", reqs)
	}

	res, err = h.ListDemoRequests(context.Background(), callRequest(map[string]any{"limit": float64(1), "offset": float64(1)}))
	if err != nil {
		t.Fatalf("ListDemoRequests failed: %v", err)
	}
	reqs = nil
	json.Unmarshal([]byte(resultText(t, res)), &reqs)
	if len(reqs) != 1 || reqs[0].ID != first.ID {
		t.Errorf("unexpected page %+v", reqs)
	}
}

func TestListDemoRequestsEmpty(t *testing.T) {
	h, _ := setupHandler(t)

	res, err := h.ListDemoRequests(context.Background(), callRequest(nil))
	if err != nil {
		t.Fatalf("ListDemoRequests failed: %v", err)
	}
	if got := resultText(t, res); got != "[]" {
		t.Errorf("expected empty array, got %q", got)
	}
}

func TestGetDemoRequest(t *testing.T) {
	h, _ := setupHandler(t)
	created := submit(t, h, map[string]any{"fullName": "A"})

	res, err := h.GetDemoRequest(context.Background(), callRequest(map[string]any{"id": created.ID}))
	if err != nil {
		t.Fatalf("GetDemoRequest failed: %v", err)
	}
	var got demo.Request
	json.Unmarshal([]byte(resultText(t, res)), &got)
	if got.ID != created.ID {
		t.Errorf("expected id %q, got %q", created.ID, got.ID)
	}

	res, _ = h.GetDemoRequest(context.Background(), callRequest(map[string]any{"id": "missing"}))
	if !res.IsError {
		t.Error("expected tool error for unknown id")
	}

	res, _ = h.GetDemoRequest(context.Background(), callRequest(map[string]any{}))
	if !res.IsError {
		t.Error("expected tool error for missing id")
	}
}

func TestUpdateDemoRequestStatus(t *testing.T) {
	h, _ := setupHandler(t)
	created := submit(t, h, map[string]any{"fullName": "A"})

	tests := []struct {
		name    string
		args    map[string]any
		want    string
		isError bool
	}{
		{"updated", map[string]any{"id": created.ID, "status": "approved"}, `{"updated":true}`, false},
		{"unknown id", map[string]any{"id": "missing", "status": "approved"}, `{"updated":false}`, false},
		{"missing status", map[string]any{"id": created.ID}, "status is required", true},
		{"missing id", map[string]any{"status": "approved"}, "id is required", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := h.UpdateDemoRequestStatus(context.Background(), callRequest(tt.args))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.IsError != tt.isError {
				t.Errorf("expected IsError=%v, got %v", tt.isError, res.IsError)
			}
			if got := resultText(t, res); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestUpdateDemoRequestStatusNotAllowed(t *testing.T) {
	h, _ := setupHandler(t, "pending", "approved")
	created := submit(t, h, map[string]any{"fullName": "A"})

	res, err := h.UpdateDemoRequestStatus(context.Background(), callRequest(map[string]any{"id": created.ID, "status": "maybe"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.IsError || !strings.Contains(resultText(t, res), "status not allowed") {
		t.Errorf("expected allow-list error, got %q", resultText(t, res))
	}
}

func TestRegister(t *testing.T) {
	h, _ := setupHandler(t)
	s := server.NewMCPServer("demo-requests", "test", server.WithToolCapabilities(false))

	// Registering every tool must not panic.
	h.Register(s)
}
