// Package client talks to the task-processing backend: the history and
// task queries, the system identity probe, prompt submission, and the
// per-task SSE event stream.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"overseer/internal/config"
	"overseer/internal/types"
)

const defaultBaseURL = "http://127.0.0.1:8844"

type Client struct {
	baseURL   string
	tokenPath string
	token     string
	http      *http.Client
}

func New() (*Client, error) {
	tokenPath, err := config.TokenPath()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:   cfg.BackendBaseURL(),
		tokenPath: tokenPath,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	_ = c.loadToken()
	return c, nil
}

func NewWithBaseURL(baseURL, token string) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SystemInfo is the backend identity probe.
func (c *Client) SystemInfo(ctx context.Context) (*types.SystemInfo, error) {
	var resp types.SystemInfo
	if err := c.doJSON(ctx, http.MethodGet, "/v1/system/info", nil, false, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// History returns the most recent window of submitted requests.
func (c *Client) History(ctx context.Context, limit int) ([]types.HistoryRecord, error) {
	var resp HistoryResponse
	path := "/v1/history"
	if limit > 0 {
		path += "?limit=" + url.QueryEscape(fmt.Sprintf("%d", limit))
	}
	if err := c.doJSON(ctx, http.MethodGet, path, nil, true, &resp); err != nil {
		return nil, err
	}
	return resp.History, nil
}

// Tasks returns the most recent window of task execution records.
func (c *Client) Tasks(ctx context.Context, limit int) ([]types.TaskRecord, error) {
	var resp TasksResponse
	path := "/v1/tasks"
	if limit > 0 {
		path += "?limit=" + url.QueryEscape(fmt.Sprintf("%d", limit))
	}
	if err := c.doJSON(ctx, http.MethodGet, path, nil, true, &resp); err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}

func (c *Client) Task(ctx context.Context, id string) (*types.TaskRecord, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("task id is required")
	}
	var task types.TaskRecord
	if err := c.doJSON(ctx, http.MethodGet, "/v1/tasks/"+url.PathEscape(id), nil, true, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// SubmitPrompt enqueues a prompt and returns the backend-assigned
// request id that correlates the eventual answer.
func (c *Client) SubmitPrompt(ctx context.Context, req SubmitPromptRequest) (*SubmitPromptResponse, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, errors.New("prompt is required")
	}
	var resp SubmitPromptResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/tasks", req, true, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, requireAuth bool, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if requireAuth && c.hasToken() {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) hasToken() bool {
	if strings.TrimSpace(c.token) == "" {
		_ = c.loadToken()
	}
	return strings.TrimSpace(c.token) != ""
}

func (c *Client) loadToken() error {
	if c.tokenPath == "" {
		return nil
	}
	data, err := os.ReadFile(c.tokenPath)
	if err != nil {
		if os.IsNotExist(err) {
			c.token = ""
			return nil
		}
		return err
	}
	c.token = strings.TrimSpace(string(data))
	return nil
}

func decodeAPIError(resp *http.Response) error {
	type errorPayload struct {
		Error string `json:"error"`
	}
	var payload errorPayload
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	if payload.Error != "" {
		return &APIError{StatusCode: resp.StatusCode, Message: payload.Error}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: resp.Status}
}

type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
}

func AsAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return nil
}
