package tools

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"pushpilot-be/internal/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newDispatcher(t *testing.T, handler http.HandlerFunc, timeout time.Duration) (*Dispatcher, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client := NewTaskAPIClient(srv.URL+"/", timeout)
	d := NewDispatcher(NewCreateTaskTool(client)).WithClock(func() time.Time { return fixedNow })
	return d, &calls
}

func TestCreateTaskSchema(t *testing.T) {
	d := NewDispatcher(NewCreateTaskTool(NewTaskAPIClient("http://unused", time.Second)))
	defs := d.Definitions()
	require.Len(t, defs, 1)
	assert.Equal(t, "createTask", defs[0].Name)

	var schema map[string]interface{}
	require.NoError(t, json.Unmarshal(defs[0].Parameters, &schema))
	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, []interface{}{"title"}, schema["required"])

	props := schema["properties"].(map[string]interface{})
	assert.Contains(t, props, "endsOn")
	assert.Equal(t, "number", props["endsOn"].(map[string]interface{})["type"])
	assert.Equal(t, []interface{}{"LOW", "MEDIUM", "HIGH", "URGENT"}, props["priority"].(map[string]interface{})["enum"])
}

func TestValidate(t *testing.T) {
	d := NewDispatcher(NewCreateTaskTool(NewTaskAPIClient("http://unused", time.Second))).
		WithClock(func() time.Time { return fixedNow })

	cases := []struct {
		name string
		args map[string]interface{}
		want string
	}{
		{"missing title", map[string]interface{}{}, "Title is required"},
		{"blank title", map[string]interface{}{"title": "  "}, "Title is required"},
		{"past deadline", map[string]interface{}{"title": "x", "endsOn": float64(fixedNow.Unix() - 60)}, "Deadline must be in the future"},
		{"deadline now", map[string]interface{}{"title": "x", "endsOn": float64(fixedNow.Unix())}, "Deadline must be in the future"},
		{"bad priority", map[string]interface{}{"title": "x", "priority": "CRITICAL"}, "Priority must be one of: LOW, MEDIUM, HIGH, URGENT"},
		{"empty priority", map[string]interface{}{"title": "x", "priority": ""}, "Priority must be one of: LOW, MEDIUM, HIGH, URGENT"},
		{"non-string priority", map[string]interface{}{"title": "x", "priority": float64(2)}, "Priority must be one of: LOW, MEDIUM, HIGH, URGENT"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := d.Validate("createTask", tc.args)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperror.ErrValidation)
			var appErr *apperror.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tc.want, appErr.Message)
		})
	}

	assert.NoError(t, d.Validate("createTask", map[string]interface{}{
		"title": "Write report", "endsOn": float64(fixedNow.Unix() + 3600), "priority": "HIGH", "assignee": nil,
	}))
	assert.ErrorIs(t, d.Validate("deleteEverything", nil), apperror.ErrUnknownTool)
}

func TestExecuteSendsPayloadAndAuthorization(t *testing.T) {
	var gotAuth string
	var gotBody map[string]interface{}
	d, calls := newDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tasks", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		gotAuth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"task-1"}`))
	}, time.Second)

	res := d.Execute(context.Background(), "createTask", map[string]interface{}{
		"title":    "Write report",
		"priority": "HIGH",
		"assignee": nil,
		"labels":   []interface{}{"q1"},
	}, "Bearer abc")

	require.True(t, res.Success, res.Error)
	assert.Equal(t, "Task created successfully", res.Message)
	assert.Equal(t, map[string]interface{}{"id": "task-1"}, res.Data)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
	assert.Equal(t, "Bearer abc", gotAuth)
	assert.NotContains(t, gotBody, "assignee")
	assert.Equal(t, []interface{}{"q1"}, gotBody["labels"])
}

func TestExecuteRejectsBeforeNetwork(t *testing.T) {
	d, calls := newDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}, time.Second)

	res := d.Execute(context.Background(), "createTask", map[string]interface{}{"title": ""}, "tok")
	assert.False(t, res.Success)
	assert.Equal(t, "Title is required", res.Error)

	res = d.Execute(context.Background(), "createTask", map[string]interface{}{"title": "x", "priority": ""}, "tok")
	assert.False(t, res.Success)
	assert.Equal(t, "Priority must be one of: LOW, MEDIUM, HIGH, URGENT", res.Error)

	res = d.Execute(context.Background(), "sendEmail", map[string]interface{}{"title": "x"}, "tok")
	assert.False(t, res.Success)
	assert.Equal(t, "Unknown tool: sendEmail", res.Error)

	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
}

func TestExecuteReportsBackendError(t *testing.T) {
	d, _ := newDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Unauthenticated User"}`))
	}, time.Second)

	res := d.Execute(context.Background(), "createTask", map[string]interface{}{"title": "x"}, "tok")
	assert.False(t, res.Success)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Equal(t, `Backend API error: {"message":"Unauthenticated User"}`, res.Error)
}

func TestExecuteReportsEmptyBackendError(t *testing.T) {
	d, _ := newDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}, time.Second)

	res := d.Execute(context.Background(), "createTask", map[string]interface{}{"title": "x"}, "")
	assert.Equal(t, "Backend API error: HTTP 502", res.Error)
}

func TestExecuteTimeout(t *testing.T) {
	d, _ := newDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}, 50*time.Millisecond)

	res := d.Execute(context.Background(), "createTask", map[string]interface{}{"title": "x"}, "tok")
	assert.False(t, res.Success)
	assert.Equal(t, "Request timeout - backend API did not respond in time", res.Error)
}

func TestExecuteConnectionError(t *testing.T) {
	client := NewTaskAPIClient("http://127.0.0.1:1", time.Second)
	d := NewDispatcher(NewCreateTaskTool(client))

	res := d.Execute(context.Background(), "createTask", map[string]interface{}{"title": "x"}, "tok")
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "Error calling backend API:")
}

func TestAuthorizationHeader(t *testing.T) {
	assert.Equal(t, "Bearer abc", AuthorizationHeader("abc"))
	assert.Equal(t, "Bearer abc", AuthorizationHeader("Bearer abc"))
	assert.Equal(t, "", AuthorizationHeader(" "))
}
