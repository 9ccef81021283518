package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(server *httptest.Server) *Client {
	return &Client{
		baseURL: server.URL,
		token:   "token",
		http: &http.Client{
			Timeout: 2 * time.Second,
		},
	}
}

func TestHistoryQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/history" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.URL.Query().Get("limit") != "50" {
			t.Errorf("limit not propagated: %s", r.URL.RawQuery)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer token" {
			t.Errorf("missing bearer token, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"history":[{"request_id":"r1","prompt":"Q1","created_at":"2026-08-30T10:00:00Z","session_id":"s1","status":"COMPLETED"}]}`))
	}))
	defer server.Close()

	records, err := newTestClient(server).History(context.Background(), 50)
	if err != nil {
		t.Fatalf("History error: %v", err)
	}
	if len(records) != 1 || records[0].RequestID != "r1" || records[0].SessionID != "s1" {
		t.Fatalf("unexpected history window: %+v", records)
	}
	if records[0].CreatedAt.IsZero() {
		t.Fatalf("created_at not decoded")
	}
}

func TestTasksQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/tasks" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tasks":[{"task_id":"r1","status":"PROCESSING","updated_at":"2026-08-30T10:00:05Z","context_history":[{"role":"user","session_id":"s1"}]}]}`))
	}))
	defer server.Close()

	tasks, err := newTestClient(server).Tasks(context.Background(), 0)
	if err != nil {
		t.Fatalf("Tasks error: %v", err)
	}
	if len(tasks) != 1 || tasks[0].TaskID != "r1" {
		t.Fatalf("unexpected task window: %+v", tasks)
	}
	if tasks[0].OwningSession() != "s1" {
		t.Fatalf("context attribution lost: %+v", tasks[0])
	}
}

func TestSystemInfoProbe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/system/info" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"boot_id":"boot-7","version":"1.4.0","pid":42}`))
	}))
	defer server.Close()

	info, err := newTestClient(server).SystemInfo(context.Background())
	if err != nil {
		t.Fatalf("SystemInfo error: %v", err)
	}
	if info.BootID != "boot-7" || info.PID != 42 {
		t.Fatalf("unexpected system info: %+v", info)
	}
}

func TestSubmitPrompt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/tasks" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"request_id":"r9","status":"PENDING"}`))
	}))
	defer server.Close()

	resp, err := newTestClient(server).SubmitPrompt(context.Background(), SubmitPromptRequest{Prompt: "hello", SessionID: "s1"})
	if err != nil {
		t.Fatalf("SubmitPrompt error: %v", err)
	}
	if resp.RequestID != "r9" {
		t.Fatalf("unexpected submit response: %+v", resp)
	}
}

func TestSubmitPromptRequiresPrompt(t *testing.T) {
	c := NewWithBaseURL("http://127.0.0.1:0", "")
	if _, err := c.SubmitPrompt(context.Background(), SubmitPromptRequest{Prompt: "  "}); err == nil {
		t.Fatalf("expected empty prompt to be rejected")
	}
}

func TestAPIErrorDecoding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"backend draining"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server).History(context.Background(), 0)
	apiErr := AsAPIError(err)
	if apiErr == nil {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusServiceUnavailable || apiErr.Message != "backend draining" {
		t.Fatalf("unexpected api error: %+v", apiErr)
	}
}
