package client

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"overseer/internal/types"
)

// TaskEvents opens the live event stream for one task. Events arrive on
// the returned channel until the stream closes; the cancel func tears
// the subscription down and must be called on every exit path. Events
// that would overrun the channel buffer are dropped rather than blocking
// the reader.
func (c *Client) TaskEvents(ctx context.Context, taskID string) (<-chan types.TaskEvent, func(), error) {
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return nil, nil, fmt.Errorf("task id is required")
	}

	ctx, cancel := context.WithCancel(ctx)
	streamURL := fmt.Sprintf("%s/v1/tasks/%s/events?follow=1", c.baseURL, url.PathEscape(taskID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, streamURL, nil)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	if c.hasToken() {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "text/event-stream")

	// A dedicated client without the query timeout: the stream is
	// long-lived by design.
	httpClient := &http.Client{Transport: c.http.Transport}
	resp, err := httpClient.Do(req)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		cancel()
		return nil, nil, decodeAPIError(resp)
	}

	ch := make(chan types.TaskEvent, 256)
	go func() {
		defer close(ch)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		var dataLines []string

		for scanner.Scan() {
			line := scanner.Text()
			if line == "" {
				if len(dataLines) == 0 {
					continue
				}
				payload := strings.Join(dataLines, "\n")
				dataLines = dataLines[:0]
				var event types.TaskEvent
				if err := json.Unmarshal([]byte(payload), &event); err != nil {
					continue
				}
				if event.TaskID == "" {
					event.TaskID = taskID
				}
				select {
				case ch <- event:
				default:
				}
				continue
			}
			if strings.HasPrefix(line, "data:") {
				dataLines = append(dataLines, strings.TrimSpace(line[len("data:"):]))
			}
		}
	}()

	return ch, cancel, nil
}
