package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"pushpilot-be/internal/dto"
	"pushpilot-be/internal/entity"
	"pushpilot-be/internal/model"
	"pushpilot-be/internal/pkg/apperror"
	"pushpilot-be/internal/pkg/logger"
	"pushpilot-be/internal/repository/memory"
	"pushpilot-be/internal/repository/specification"
	"pushpilot-be/internal/repository/unitofwork"
	"pushpilot-be/pkg/events"
	"pushpilot-be/pkg/llm"
	"pushpilot-be/pkg/tools"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var assistantStart = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type assistantFixture struct {
	svc       IAssistantService
	llm       *fakeLLM
	clock     *testClock
	publisher *fakePublisher
	factory   unitofwork.RepositoryFactory
	db        *gorm.DB
	apiCalls  *int32
	apiAuth   *atomic.Value
}

func newAssistantFixture(t *testing.T, dailyLimit int, apiStatus int) *assistantFixture {
	t.Helper()
	factory, db := newTestFactory(t)
	clock := newTestClock(assistantStart)

	var calls int32
	var auth atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		auth.Store(r.Header.Get("Authorization"))
		w.WriteHeader(apiStatus)
		if apiStatus < 300 {
			_, _ = w.Write([]byte(`{"id":"task-1"}`))
			return
		}
		_, _ = w.Write([]byte(`{"message":"nope"}`))
	}))
	t.Cleanup(srv.Close)

	dispatcher := tools.NewDispatcher(tools.NewCreateTaskTool(tools.NewTaskAPIClient(srv.URL, time.Second))).
		WithClock(clock.Now)
	limiter := NewRateLimiterService(memory.NewRateLimitRepository(), dailyLimit, logger.NewNop(), clock.Now)
	fake := &fakeLLM{}
	pub := &fakePublisher{}

	svc := NewAssistantService(factory, limiter, fake, dispatcher, pub, 10*time.Minute, logger.NewNop(), clock.Now)
	return &assistantFixture{
		svc: svc, llm: fake, clock: clock, publisher: pub, factory: factory, db: db,
		apiCalls: &calls, apiAuth: &auth,
	}
}

func (f *assistantFixture) load(t *testing.T, sessionId string) *entity.Conversation {
	t.Helper()
	c, err := f.factory.NewUnitOfWork(context.Background()).ConversationRepository().FindOne(
		context.Background(), specification.BySessionID{SessionID: sessionId})
	require.NoError(t, err)
	require.NotNil(t, c)
	return c
}

func createTaskReply(args map[string]interface{}) *llm.Completion {
	return &llm.Completion{ToolCalls: []llm.ToolCall{{ID: "call_1", Name: "createTask", Arguments: args}}}
}

func boolPtr(b bool) *bool { return &b }

func TestChatStartsConversation(t *testing.T) {
	f := newAssistantFixture(t, 20, http.StatusCreated)
	f.llm.replies = []*llm.Completion{{Text: "Hello! How can I help?"}}

	res, err := f.svc.Chat(context.Background(), &dto.ChatRequest{Message: "hi", UserId: "u1"}, "tok")
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.False(t, res.RequiresConfirmation)
	assert.Nil(t, res.PendingAction)
	assert.Equal(t, "Hello! How can I help?", res.Message)
	require.NotEmpty(t, res.SessionId)

	c := f.load(t, res.SessionId)
	assert.Equal(t, "u1", c.UserId)
	assert.Equal(t, "tok", c.Credential)
	require.Len(t, c.Messages, 2)
	assert.Equal(t, entity.RoleUser, c.Messages[0].Role)
	assert.Equal(t, "msg_0", c.Messages[0].MessageId)
	assert.Equal(t, "msg_1", c.Messages[1].MessageId)
	assert.Equal(t, 2, c.Metadata.TotalMessages)
	assert.True(t, c.ExpiresAt.Equal(assistantStart.Add(10*time.Minute)))

	require.Len(t, f.llm.prompts, 1)
	prompt := f.llm.prompts[0]
	require.Len(t, prompt, 2)
	assert.Equal(t, "system", prompt[0].Role)
	assert.Equal(t, llm.Message{Role: "user", Content: "hi"}, prompt[1])
}

func TestChatProposesTaskForConfirmation(t *testing.T) {
	f := newAssistantFixture(t, 20, http.StatusCreated)
	deadline := float64(time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC).Unix())
	f.llm.replies = []*llm.Completion{createTaskReply(map[string]interface{}{"title": "Write report", "endsOn": deadline})}

	res, err := f.svc.Chat(context.Background(), &dto.ChatRequest{Message: "creat a taks", UserId: "u1"}, "")
	require.NoError(t, err)

	assert.True(t, res.RequiresConfirmation)
	assert.Equal(t, "I'll create a task 'Write report' with deadline March 05, 2026. Should I proceed? (yes/no)", res.Message)
	require.NotNil(t, res.PendingAction)
	assert.Equal(t, "createTask", res.PendingAction.Action)
	assert.Equal(t, "Write report", res.PendingAction.Data["title"])

	c := f.load(t, res.SessionId)
	assert.Equal(t, 1, c.Metadata.TotalToolCalls)
	assert.Equal(t, entity.ConversationStateAwaitingConfirmation, c.State(f.clock.Now()))
}

func TestChatContinuesWithHistory(t *testing.T) {
	f := newAssistantFixture(t, 20, http.StatusCreated)
	f.llm.replies = []*llm.Completion{{Text: "first"}, {Text: "second"}}

	first, err := f.svc.Chat(context.Background(), &dto.ChatRequest{Message: "one", UserId: "u1"}, "")
	require.NoError(t, err)

	f.clock.Advance(5 * time.Minute)
	second, err := f.svc.Chat(context.Background(), &dto.ChatRequest{Message: "two", UserId: "u1", SessionId: first.SessionId}, "")
	require.NoError(t, err)
	assert.Equal(t, first.SessionId, second.SessionId)

	prompt := f.llm.prompts[1]
	require.Len(t, prompt, 4)
	assert.Equal(t, "first", prompt[2].Content)
	assert.Equal(t, "two", prompt[3].Content)

	c := f.load(t, first.SessionId)
	assert.Len(t, c.Messages, 4)
	assert.True(t, c.ExpiresAt.Equal(assistantStart.Add(15*time.Minute)))
}

func TestChatResolveErrors(t *testing.T) {
	f := newAssistantFixture(t, 20, http.StatusCreated)

	res, err := f.svc.Chat(context.Background(), &dto.ChatRequest{Message: "hi", UserId: "u1"}, "")
	require.NoError(t, err)

	_, err = f.svc.Chat(context.Background(), &dto.ChatRequest{Message: "hi", UserId: "u2", SessionId: res.SessionId}, "")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = f.svc.Chat(context.Background(), &dto.ChatRequest{Message: "hi", UserId: "u1", SessionId: "missing"}, "")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	f.clock.Advance(10 * time.Minute)
	_, err = f.svc.Chat(context.Background(), &dto.ChatRequest{Message: "still here", UserId: "u1", SessionId: res.SessionId}, "")
	require.NoError(t, err, "expiry is strict")

	f.clock.Advance(10*time.Minute + time.Second)
	_, err = f.svc.Chat(context.Background(), &dto.ChatRequest{Message: "late", UserId: "u1", SessionId: res.SessionId}, "")
	assert.ErrorIs(t, err, apperror.ErrExpired)
}

func TestChatRateLimitHasNoSideEffects(t *testing.T) {
	f := newAssistantFixture(t, 1, http.StatusCreated)

	_, err := f.svc.Chat(context.Background(), &dto.ChatRequest{Message: "hi", UserId: "u1"}, "")
	require.NoError(t, err)

	_, err = f.svc.Chat(context.Background(), &dto.ChatRequest{Message: "again", UserId: "u1"}, "")
	require.ErrorIs(t, err, apperror.ErrRateLimitExceeded)

	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Daily limit of 1 requests exceeded", appErr.Message)
	assert.Equal(t, 1, appErr.Details["current_count"])

	var count int64
	require.NoError(t, f.db.Model(&model.Conversation{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	assert.Len(t, f.llm.prompts, 1)

	f.clock.Advance(12 * time.Hour)
	_, err = f.svc.Chat(context.Background(), &dto.ChatRequest{Message: "tomorrow", UserId: "u1"}, "")
	assert.NoError(t, err, "quota resets at UTC midnight")
}

func TestChatModelErrorPersistsNoTurns(t *testing.T) {
	f := newAssistantFixture(t, 20, http.StatusCreated)
	f.llm.err = errors.New("dial tcp 10.0.0.5:443: api key sk-SECRET rejected")

	_, err := f.svc.Chat(context.Background(), &dto.ChatRequest{Message: "hi", UserId: "u1"}, "")
	require.ErrorIs(t, err, apperror.ErrInternal)

	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Error processing chat request", appErr.Message)
	assert.NotContains(t, appErr.Message, "sk-SECRET")
	assert.ErrorContains(t, appErr.Err, "sk-SECRET")

	var rows []model.Conversation
	require.NoError(t, f.db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Empty(t, rows[0].Messages)
}

func TestConfirmExecutesPendingTask(t *testing.T) {
	f := newAssistantFixture(t, 20, http.StatusCreated)
	f.llm.replies = []*llm.Completion{createTaskReply(map[string]interface{}{"title": "Write report"})}

	chat, err := f.svc.Chat(context.Background(), &dto.ChatRequest{Message: "add task", UserId: "u1"}, "stored-token")
	require.NoError(t, err)

	res, err := f.svc.Confirm(context.Background(), &dto.ConfirmRequest{SessionId: chat.SessionId, UserId: "u1", Confirmed: boolPtr(true)}, "")
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.False(t, res.RequiresConfirmation)
	assert.Equal(t, "✅ Task created successfully", res.Message)
	assert.Equal(t, int32(1), atomic.LoadInt32(f.apiCalls))
	assert.Equal(t, "Bearer stored-token", f.apiAuth.Load())

	c := f.load(t, chat.SessionId)
	require.Len(t, c.Messages, 4)
	assert.Equal(t, "yes", c.Messages[2].Content)
	require.NotNil(t, c.Messages[3].ActionResult)
	assert.True(t, c.Messages[3].ActionResult.Success)
	assert.Equal(t, 1, c.Metadata.ActionsCompleted)
	assert.Equal(t, 4, c.Metadata.TotalMessages)
	assert.Equal(t, entity.ConversationStateResolved, c.State(f.clock.Now()))

	published := f.publisher.Published()
	require.Len(t, published, 1)
	assert.Equal(t, events.TypeTaskCreated, published[0].EventType())
	assert.Equal(t, "Write report", published[0].Payload()["title"])

	_, err = f.svc.Confirm(context.Background(), &dto.ConfirmRequest{SessionId: chat.SessionId, UserId: "u1", Confirmed: boolPtr(true)}, "")
	assert.ErrorIs(t, err, apperror.ErrNoPendingAction, "a pending action is consumed once")
}

func TestConfirmPrefersRequestCredential(t *testing.T) {
	f := newAssistantFixture(t, 20, http.StatusCreated)
	f.llm.replies = []*llm.Completion{createTaskReply(map[string]interface{}{"title": "x"})}

	chat, err := f.svc.Chat(context.Background(), &dto.ChatRequest{Message: "add", UserId: "u1"}, "stored")
	require.NoError(t, err)

	_, err = f.svc.Confirm(context.Background(), &dto.ConfirmRequest{SessionId: chat.SessionId, UserId: "u1", Confirmed: boolPtr(true)}, "fresh")
	require.NoError(t, err)
	assert.Equal(t, "Bearer fresh", f.apiAuth.Load())
}

func TestConfirmCancel(t *testing.T) {
	f := newAssistantFixture(t, 20, http.StatusCreated)
	f.llm.replies = []*llm.Completion{createTaskReply(map[string]interface{}{"title": "x"})}

	chat, err := f.svc.Chat(context.Background(), &dto.ChatRequest{Message: "add", UserId: "u1"}, "")
	require.NoError(t, err)

	res, err := f.svc.Confirm(context.Background(), &dto.ConfirmRequest{SessionId: chat.SessionId, UserId: "u1", Confirmed: boolPtr(false)}, "")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "Action cancelled. No changes were made.", res.Message)
	assert.Zero(t, atomic.LoadInt32(f.apiCalls))

	c := f.load(t, chat.SessionId)
	require.Len(t, c.Messages, 4)
	assert.Equal(t, "no", c.Messages[2].Content)
	assert.Zero(t, c.Metadata.ActionsCompleted)
	assert.Empty(t, f.publisher.Published())
}

func TestConfirmReportsFailures(t *testing.T) {
	t.Run("backend error", func(t *testing.T) {
		f := newAssistantFixture(t, 20, http.StatusUnauthorized)
		f.llm.replies = []*llm.Completion{createTaskReply(map[string]interface{}{"title": "x"})}
		chat, err := f.svc.Chat(context.Background(), &dto.ChatRequest{Message: "add", UserId: "u1"}, "")
		require.NoError(t, err)

		res, err := f.svc.Confirm(context.Background(), &dto.ConfirmRequest{SessionId: chat.SessionId, UserId: "u1", Confirmed: boolPtr(true)}, "")
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Equal(t, `❌ Error: Backend API error: {"message":"nope"}`, res.Message)
		assert.Empty(t, f.publisher.Published())
	})

	t.Run("deadline passed before confirm", func(t *testing.T) {
		f := newAssistantFixture(t, 20, http.StatusCreated)
		deadline := float64(assistantStart.Add(time.Minute).Unix())
		f.llm.replies = []*llm.Completion{createTaskReply(map[string]interface{}{"title": "x", "endsOn": deadline})}
		chat, err := f.svc.Chat(context.Background(), &dto.ChatRequest{Message: "add", UserId: "u1"}, "")
		require.NoError(t, err)

		f.clock.Advance(2 * time.Minute)
		res, err := f.svc.Confirm(context.Background(), &dto.ConfirmRequest{SessionId: chat.SessionId, UserId: "u1", Confirmed: boolPtr(true)}, "")
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Equal(t, "❌ Error: Deadline must be in the future", res.Message)
		assert.Zero(t, atomic.LoadInt32(f.apiCalls))
	})
}

func TestConfirmErrors(t *testing.T) {
	f := newAssistantFixture(t, 20, http.StatusCreated)
	f.llm.replies = []*llm.Completion{{Text: "just chatting"}}

	_, err := f.svc.Confirm(context.Background(), &dto.ConfirmRequest{SessionId: "missing", UserId: "u1", Confirmed: boolPtr(true)}, "")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	chat, err := f.svc.Chat(context.Background(), &dto.ChatRequest{Message: "hi", UserId: "u1"}, "")
	require.NoError(t, err)
	_, err = f.svc.Confirm(context.Background(), &dto.ConfirmRequest{SessionId: chat.SessionId, UserId: "u1", Confirmed: boolPtr(true)}, "")
	assert.ErrorIs(t, err, apperror.ErrNoPendingAction)
}

func TestConfirmAfterExpiryIsAllowed(t *testing.T) {
	f := newAssistantFixture(t, 20, http.StatusCreated)
	f.llm.replies = []*llm.Completion{createTaskReply(map[string]interface{}{"title": "x"})}
	chat, err := f.svc.Chat(context.Background(), &dto.ChatRequest{Message: "add", UserId: "u1"}, "")
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	res, err := f.svc.Confirm(context.Background(), &dto.ConfirmRequest{SessionId: chat.SessionId, UserId: "u1", Confirmed: boolPtr(true)}, "")
	require.NoError(t, err)
	assert.True(t, res.Success)
}

func TestGetConversation(t *testing.T) {
	f := newAssistantFixture(t, 20, http.StatusCreated)
	f.llm.replies = []*llm.Completion{createTaskReply(map[string]interface{}{"title": "x"})}
	chat, err := f.svc.Chat(context.Background(), &dto.ChatRequest{Message: "add", UserId: "u1"}, "")
	require.NoError(t, err)

	conv, err := f.svc.GetConversation(context.Background(), chat.SessionId, "u1")
	require.NoError(t, err)
	assert.Equal(t, string(entity.ConversationStateAwaitingConfirmation), conv.State)
	require.Len(t, conv.Messages, 2)
	require.Len(t, conv.Messages[1].ToolCalls, 1)
	assert.Equal(t, "createTask", conv.Messages[1].ToolCalls[0].Name)

	_, err = f.svc.GetConversation(context.Background(), chat.SessionId, "someone-else")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
