package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"pushpilot-be/internal/model"
	"pushpilot-be/internal/repository/unitofwork"
	"pushpilot-be/pkg/database"
	"pushpilot-be/pkg/events"
	"pushpilot-be/pkg/expo"
	"pushpilot-be/pkg/llm"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestFactory(t *testing.T) (unitofwork.RepositoryFactory, *gorm.DB) {
	t.Helper()
	db, err := database.NewSQLiteMemory()
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return unitofwork.NewRepositoryFactory(db), db
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock(start time.Time) *testClock {
	return &testClock{now: start}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeLLM struct {
	replies []*llm.Completion
	err     error
	prompts [][]llm.Message
}

func (f *fakeLLM) Complete(ctx context.Context, history []llm.Message, tools []llm.ToolDefinition, options ...llm.Option) (*llm.Completion, error) {
	f.prompts = append(f.prompts, history)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.replies) == 0 {
		return &llm.Completion{Text: "ok"}, nil
	}
	reply := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	return reply, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (f *fakePublisher) Publish(ctx context.Context, event events.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakePublisher) Published() []events.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]events.Event(nil), f.events...)
}

// fakeSender answers ok for every message except tokens listed in reject.
type fakeSender struct {
	mu     sync.Mutex
	reject map[string]string
	sent   []expo.Message
}

func (f *fakeSender) Send(ctx context.Context, messages []expo.Message) []expo.Ticket {
	f.mu.Lock()
	defer f.mu.Unlock()
	tickets := make([]expo.Ticket, len(messages))
	for i, m := range messages {
		f.sent = append(f.sent, m)
		if reason, ok := f.reject[m.To]; ok {
			tickets[i] = expo.Ticket{Status: expo.TicketStatusError, Message: reason}
			continue
		}
		tickets[i] = expo.Ticket{Status: expo.TicketStatusOk, Id: "ticket-" + m.To}
	}
	return tickets
}

func (f *fakeSender) Sent() []expo.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]expo.Message(nil), f.sent...)
}
