package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"pushpilot-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteDecodesToolCalls(t *testing.T) {
	var captured map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"choices": [{
				"index": 0,
				"finish_reason": "tool_calls",
				"message": {
					"role": "assistant",
					"content": "",
					"tool_calls": [{
						"id": "call_1",
						"type": "function",
						"function": {"name": "createTask", "arguments": "{\"title\":\"buy milk\",\"endsOn\":1741651200}"}
					}]
				}
			}]
		}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider("test-key", srv.URL+"/v1", "gemini-1.5-flash", 0.7)
	out, err := p.Complete(context.Background(),
		[]llm.Message{{Role: "system", Content: "sys"}, {Role: "user", Content: "create task buy milk"}},
		[]llm.ToolDefinition{{Name: "createTask", Description: "Create a task", Parameters: json.RawMessage(`{"type":"object"}`)}},
	)
	require.NoError(t, err)

	require.Len(t, out.ToolCalls, 1)
	assert.Equal(t, "createTask", out.ToolCalls[0].Name)
	assert.Equal(t, "buy milk", out.ToolCalls[0].Arguments["title"])
	assert.Equal(t, float64(1741651200), out.ToolCalls[0].Arguments["endsOn"])

	assert.Equal(t, "gemini-1.5-flash", captured["model"])
	tools := captured["tools"].([]interface{})
	require.Len(t, tools, 1)
	fn := tools[0].(map[string]interface{})["function"].(map[string]interface{})
	assert.Equal(t, "createTask", fn["name"])
}

func TestCompletePlainText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"Hello!"}}]}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider("k", srv.URL, "m", 0.7)
	out, err := p.Complete(context.Background(), []llm.Message{{Role: "user", Content: "hi"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Hello!", out.Text)
	assert.Empty(t, out.ToolCalls)
}

func TestCompleteSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider("k", srv.URL, "m", 0.7)
	_, err := p.Complete(context.Background(), []llm.Message{{Role: "user", Content: "hi"}}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
