package messaging

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.uber.org/atomic"
)

// Published is a message recorded by Memory.
type Published struct {
	Destination string
	Message     OutgoingMessage
	At          time.Time
}

// Memory records published messages in process.
type Memory struct {
	mu       sync.Mutex
	messages []Published
	closed   *atomic.Bool
}

// NewMemory returns an empty recording publisher.
func NewMemory() *Memory {
	return &Memory{closed: atomic.NewBool(false)}
}

// Publish records msg.
func (m *Memory) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	if err := checkPublish(ctx, destination); err != nil {
		return PublishResult{}, err
	}
	if m.closed.Load() {
		return PublishResult{}, ErrClosed
	}

	now := time.Now()

	m.mu.Lock()
	m.messages = append(m.messages, Published{Destination: destination, Message: msg, At: now})
	m.mu.Unlock()

	return PublishResult{Topic: destination, Timestamp: now}, nil
}

// Messages returns a copy of everything published so far.
func (m *Memory) Messages() []Published {
	m.mu.Lock()
	defer m.mu.Unlock()

	return slices.Clone(m.messages)
}

// Close stops accepting messages.
func (m *Memory) Close() error {
	m.closed.Store(true)
	return nil
}

// Noop drops every message.
type Noop struct{}

// NewNoop returns the publisher used when no broker is configured.
func NewNoop() *Noop {
	return &Noop{}
}

// Publish discards msg.
func (*Noop) Publish(ctx context.Context, destination string, _ OutgoingMessage) (PublishResult, error) {
	if err := checkPublish(ctx, destination); err != nil {
		return PublishResult{}, err
	}
	return PublishResult{Topic: destination}, nil
}

// Close is a no-op.
func (*Noop) Close() error {
	return nil
}
