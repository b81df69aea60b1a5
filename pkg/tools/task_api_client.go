package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"resty.dev/v3"
)

// TaskAPIClient creates tasks on the downstream task service. It does not retry.
type TaskAPIClient struct {
	httpClient *resty.Client
}

func NewTaskAPIClient(baseURL string, timeout time.Duration) *TaskAPIClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("User-Agent", "pushpilot-be/1.0").
		SetTimeout(timeout)
	return &TaskAPIClient{httpClient: client}
}

// AuthorizationHeader avoids double-prefixing a credential that already carries "Bearer ".
func AuthorizationHeader(credential string) string {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return ""
	}
	if strings.HasPrefix(credential, "Bearer ") {
		return credential
	}
	return "Bearer " + credential
}

func (c *TaskAPIClient) CreateTask(ctx context.Context, payload map[string]interface{}, credential string) Result {
	req := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload)
	if auth := AuthorizationHeader(credential); auth != "" {
		req.SetHeader("Authorization", auth)
	}

	resp, err := req.Post("/tasks")
	if err != nil {
		if isTimeout(err) {
			return Failure("Request timeout - backend API did not respond in time")
		}
		return Failure(fmt.Sprintf("Error calling backend API: %v", err))
	}

	body := resp.Bytes()
	if resp.StatusCode() >= 200 && resp.StatusCode() < 300 {
		return Result{
			Success:    true,
			Message:    "Task created successfully",
			Data:       decodeBody(body),
			StatusCode: resp.StatusCode(),
		}
	}

	detail := strings.TrimSpace(string(body))
	if detail == "" {
		detail = fmt.Sprintf("HTTP %d", resp.StatusCode())
	}
	return Result{
		Success:    false,
		Error:      "Backend API error: " + detail,
		StatusCode: resp.StatusCode(),
	}
}

func decodeBody(body []byte) interface{} {
	if len(body) == 0 {
		return map[string]interface{}{}
	}
	var data interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return string(body)
	}
	return data
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
