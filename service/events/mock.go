package events

import (
	"context"
	"sync"
)

// MockPublisher records published events for use in tests.
type MockPublisher struct {
	mu     sync.Mutex
	Events []*PaymentEvent

	// PublishErr, when set, is returned by PublishPaymentEvent.
	PublishErr error
}

// NewMockPublisher creates an empty MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) PublishPaymentEvent(_ context.Context, event *PaymentEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PublishErr != nil {
		return m.PublishErr
	}
	m.Events = append(m.Events, event)
	return nil
}

func (m *MockPublisher) Close() error {
	return nil
}

// Published returns a snapshot of the events published so far.
func (m *MockPublisher) Published() []*PaymentEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*PaymentEvent, len(m.Events))
	copy(out, m.Events)
	return out
}
