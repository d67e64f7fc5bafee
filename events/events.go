package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Operations reported in TreeChanged events
const (
	OperationImport      = "import"
	OperationAddCategory = "add_category"
	OperationAddFeed     = "add_feed"
)

// TreeChanged is published after an operation mutated the feed hierarchy
type TreeChanged struct {
	ID         string    `json:"id"`
	Operation  string    `json:"operation"`
	Success    bool      `json:"success"`
	Message    string    `json:"message,omitempty"`
	Categories int       `json:"categories"`
	Feeds      int       `json:"feeds"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewTreeChanged creates an event with a fresh id and timestamp
func NewTreeChanged(operation string, success bool, message string) TreeChanged {
	return TreeChanged{
		ID:         uuid.NewString(),
		Operation:  operation,
		Success:    success,
		Message:    message,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher delivers tree change notifications
type Publisher interface {
	PublishTreeChanged(ctx context.Context, event TreeChanged) error
	Close() error
}

// NoopPublisher drops every event
type NoopPublisher struct{}

func (NoopPublisher) PublishTreeChanged(ctx context.Context, event TreeChanged) error {
	return nil
}

func (NoopPublisher) Close() error {
	return nil
}

// MockPublisher records published events for tests
type MockPublisher struct {
	mu     sync.Mutex
	events []TreeChanged
	Err    error
}

func (m *MockPublisher) PublishTreeChanged(ctx context.Context, event TreeChanged) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.events = append(m.events, event)
	return nil
}

func (m *MockPublisher) Close() error {
	return nil
}

// Events returns a copy of the recorded events
func (m *MockPublisher) Events() []TreeChanged {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]TreeChanged(nil), m.events...)
}
