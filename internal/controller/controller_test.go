package controller

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pushpilot-be/internal/model"
	"pushpilot-be/internal/pkg/logger"
	"pushpilot-be/internal/pkg/serverutils"
	"pushpilot-be/internal/repository/memory"
	"pushpilot-be/internal/repository/unitofwork"
	"pushpilot-be/internal/service"
	"pushpilot-be/pkg/database"
	"pushpilot-be/pkg/expo"
	"pushpilot-be/pkg/llm"
	"pushpilot-be/pkg/tools"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedLLM struct {
	reply *llm.Completion
	err   error
}

func (s *scriptedLLM) Complete(ctx context.Context, history []llm.Message, defs []llm.ToolDefinition, options ...llm.Option) (*llm.Completion, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.reply, nil
}

type okSender struct{}

func (okSender) Send(ctx context.Context, messages []expo.Message) []expo.Ticket {
	tickets := make([]expo.Ticket, len(messages))
	for i := range messages {
		tickets[i] = expo.Ticket{Status: expo.TicketStatusOk, Id: "t"}
	}
	return tickets
}

type testServer struct {
	app *fiber.App
	llm *scriptedLLM
}

func newTestServer(t *testing.T, dailyLimit int) *testServer {
	t.Helper()
	db, err := database.NewSQLiteMemory()
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	taskAPI := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"task-1"}`))
	}))
	t.Cleanup(taskAPI.Close)

	factory := unitofwork.NewRepositoryFactory(db)
	nop := logger.NewNop()
	rateLimits := memory.NewRateLimitRepository()

	fake := &scriptedLLM{reply: &llm.Completion{Text: "Hello!"}}
	dispatcher := tools.NewDispatcher(tools.NewCreateTaskTool(tools.NewTaskAPIClient(taskAPI.URL, time.Second)))
	limiter := service.NewRateLimiterService(rateLimits, dailyLimit, nop, nil)
	assistant := service.NewAssistantService(factory, limiter, fake, dispatcher, nil, 10*time.Minute, nop, nil)
	push := service.NewPushService(factory, okSender{}, nop, nil)
	tokens := service.NewExpoTokenService(factory, nop, nil)
	housekeeping := service.NewHousekeepingService(factory, rateLimits, push, 30, nop, nil)
	health := service.NewHealthService(db, database.DriverSQLite, nil, nil)

	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	NewHealthController(health, housekeeping, "test").RegisterRoutes(app)
	NewAssistantController(assistant, limiter).RegisterRoutes(app)
	api := app.Group("/api")
	NewExpoTokenController(tokens).RegisterRoutes(api)
	NewNotificationController(push).RegisterRoutes(api)

	return &testServer{app: app, llm: fake}
}

func (s *testServer) do(t *testing.T, method, path, body string, headers ...string) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]interface{}{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func TestChatEndpoints(t *testing.T) {
	s := newTestServer(t, 20)

	status, body := s.do(t, http.MethodPost, "/ai/chat", `{"message":"hi","user_id":"u1"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Hello!", body["message"])
	assert.Equal(t, false, body["requires_confirmation"])
	assert.Equal(t, true, body["success"])
	assert.NotContains(t, body, "pending_action")
	sessionId := body["session_id"].(string)

	s.llm.reply = &llm.Completion{ToolCalls: []llm.ToolCall{{Name: "createTask", Arguments: map[string]interface{}{"title": "Ship it"}}}}
	status, body = s.do(t, http.MethodPost, "/ai/chat", `{"message":"add task ship it","user_id":"u1","session_id":"`+sessionId+`"}`, "Authorization", "Bearer tok")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["requires_confirmation"])
	assert.Equal(t, "I'll create a task 'Ship it' with no deadline. Should I proceed? (yes/no)", body["message"])

	status, body = s.do(t, http.MethodPost, "/ai/chat/confirm?session_id="+sessionId+"&user_id=u1&confirmed=true", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "✅ Task created successfully", body["message"])
	assert.Equal(t, true, body["success"])

	status, body = s.do(t, http.MethodPost, "/ai/chat/confirm", `{"session_id":"`+sessionId+`","user_id":"u1","confirmed":true}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "No pending action to confirm", body["message"])

	status, body = s.do(t, http.MethodGet, "/ai/conversations/"+sessionId+"?user_id=u1", "")
	require.Equal(t, http.StatusOK, status)
	data := body["data"].(map[string]interface{})
	assert.Len(t, data["messages"], 6)
	assert.Equal(t, "RESOLVED", data["state"])
}

func TestChatModelFailureIsGeneric(t *testing.T) {
	s := newTestServer(t, 20)
	s.llm.err = errors.New("dial tcp 10.0.0.5:443: api key sk-SECRET rejected")

	status, body := s.do(t, http.MethodPost, "/ai/chat", `{"message":"hi","user_id":"u1"}`)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "Error processing chat request", body["message"])
	assert.Equal(t, false, body["success"])
}

func TestChatErrorStatuses(t *testing.T) {
	s := newTestServer(t, 1)

	status, body := s.do(t, http.MethodPost, "/ai/chat", `{"user_id":"u1"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, false, body["success"])

	status, _ = s.do(t, http.MethodPost, "/ai/chat", `{"message":"hi","user_id":"u1","session_id":"missing"}`)
	assert.Equal(t, http.StatusNotFound, status)

	status, body = s.do(t, http.MethodPost, "/ai/chat", `{"message":"hi","user_id":"u1"}`)
	require.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, "Daily limit of 1 requests exceeded", body["message"])
	details := body["details"].(map[string]interface{})
	assert.Equal(t, float64(1), details["limit"])
	assert.Equal(t, "00:00:00 UTC tomorrow", details["reset_time"])

	status, body = s.do(t, http.MethodGet, "/ai/rate-limit/u1", "")
	require.Equal(t, http.StatusOK, status)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["current"])
	assert.Equal(t, float64(0), data["remaining"])

	status, _ = s.do(t, http.MethodPost, "/ai/chat/confirm?session_id=x", "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestExpoTokenEndpoints(t *testing.T) {
	s := newTestServer(t, 20)

	status, body := s.do(t, http.MethodPost, "/api/expo-tokens/", `{"user_id":"u1","expo_token":"ExponentPushToken[abc]"}`)
	require.Equal(t, http.StatusCreated, status)
	id := body["data"].(map[string]interface{})["id"].(string)

	status, _ = s.do(t, http.MethodPost, "/api/expo-tokens", `{"user_id":"u1","expo_token":"ExponentPushToken[def]"}`)
	assert.Equal(t, http.StatusOK, status)

	status, body = s.do(t, http.MethodPost, "/api/expo-tokens", `{"user_id":"u2","expo_token":"garbage"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid Expo push token format", body["message"])

	status, body = s.do(t, http.MethodGet, "/api/expo-tokens/"+id, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ExponentPushToken[def]", body["data"].(map[string]interface{})["expo_token"])

	status, _ = s.do(t, http.MethodGet, "/api/expo-tokens/not-an-id", "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(t, http.MethodGet, "/api/expo-tokens/user/u1", "")
	assert.Equal(t, http.StatusOK, status)

	status, body = s.do(t, http.MethodPut, "/api/expo-tokens/"+id, `{}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "No fields to update", body["message"])

	status, body = s.do(t, http.MethodDelete, "/api/expo-tokens/user/u1", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Expo token for user u1 deleted successfully", body["message"])

	status, _ = s.do(t, http.MethodDelete, "/api/expo-tokens/"+id, "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestNotificationEndpoints(t *testing.T) {
	s := newTestServer(t, 20)

	status, body := s.do(t, http.MethodPost, "/api/notifications/send-all", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "No expo tokens found in database", body["message"])

	status, _ = s.do(t, http.MethodPost, "/api/expo-tokens", `{"user_id":"u1","expo_token":"ExponentPushToken[abc]"}`)
	require.Equal(t, http.StatusCreated, status)

	status, body = s.do(t, http.MethodPost, "/api/notifications/send-all", `{"title":"Hi","body":"there"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(1), body["sent"])

	status, body = s.do(t, http.MethodPost, "/api/notifications/send-to-user/u1", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Notification sent to user u1", body["message"])

	status, _ = s.do(t, http.MethodPost, "/api/notifications/send-to-user/ghost", "")
	assert.Equal(t, http.StatusNotFound, status)

	status, body = s.do(t, http.MethodPost, "/api/notifications/send-test", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Test notifications sent! 1 succeeded, 0 failed", body["message"])
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t, 20)

	status, body := s.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "sqlite", body["db_driver"])

	status, body = s.do(t, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "test", body["version"])

	status, body = s.do(t, http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body["data"], "active_conversations")

	status, _ = s.do(t, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, status)
}
