package chat

import (
	"context"
	"sync"

	"github.com/Windi-Fikriyansyah/joki-chat/models"
)

// MockTranscriptSource is a scriptable TranscriptSource for testing store
// and poller behavior without a server.
type MockTranscriptSource struct {
	mu sync.Mutex

	ConversationsFn func(ctx context.Context) ([]models.Conversation, error)
	MessagesFn      func(ctx context.Context, conversationID string, limit int) ([]models.Message, error)
	SendFn          func(ctx context.Context, conversationID, text string) (models.Message, error)
	UnreadFn        func(ctx context.Context) (int, error)

	ListMessagesCalls int
	SendCalls         int
	UnreadCalls       int
}

// NewMockTranscriptSource creates a mock whose unset hooks return empty
// results.
func NewMockTranscriptSource() *MockTranscriptSource {
	return &MockTranscriptSource{}
}

// Calls returns a consistent snapshot of the per-operation call counters.
func (m *MockTranscriptSource) Calls() (listMessages, send, unread int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ListMessagesCalls, m.SendCalls, m.UnreadCalls
}

// ListConversations implements TranscriptSource.
func (m *MockTranscriptSource) ListConversations(ctx context.Context) ([]models.Conversation, error) {
	if m.ConversationsFn != nil {
		return m.ConversationsFn(ctx)
	}
	return nil, nil
}

// ListMessages implements TranscriptSource.
func (m *MockTranscriptSource) ListMessages(ctx context.Context, conversationID string, limit int) ([]models.Message, error) {
	m.mu.Lock()
	m.ListMessagesCalls++
	m.mu.Unlock()
	if m.MessagesFn != nil {
		return m.MessagesFn(ctx, conversationID, limit)
	}
	return nil, nil
}

// SendMessage implements TranscriptSource.
func (m *MockTranscriptSource) SendMessage(ctx context.Context, conversationID, text string) (models.Message, error) {
	m.mu.Lock()
	m.SendCalls++
	m.mu.Unlock()
	if m.SendFn != nil {
		return m.SendFn(ctx, conversationID, text)
	}
	return models.Message{}, nil
}

// UnreadCount implements TranscriptSource.
func (m *MockTranscriptSource) UnreadCount(ctx context.Context) (int, error) {
	m.mu.Lock()
	m.UnreadCalls++
	m.mu.Unlock()
	if m.UnreadFn != nil {
		return m.UnreadFn(ctx)
	}
	return 0, nil
}
