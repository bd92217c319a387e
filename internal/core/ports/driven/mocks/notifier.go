package mocks

import "sync"

// Notification is a single captured toast message.
type Notification struct {
	Level   string
	Message string
}

// MockNotifier is a mock implementation of Notifier that records
// every message it receives, in order.
type MockNotifier struct {
	mu            sync.Mutex
	notifications []Notification
}

// NewMockNotifier creates a new MockNotifier
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) Success(message string) {
	m.record("success", message)
}

func (m *MockNotifier) Error(message string) {
	m.record("error", message)
}

func (m *MockNotifier) Info(message string) {
	m.record("info", message)
}

func (m *MockNotifier) record(level, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications = append(m.notifications, Notification{Level: level, Message: message})
}

// Helper methods for testing

func (m *MockNotifier) Notifications() []Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Notification, len(m.notifications))
	copy(out, m.notifications)
	return out
}

// Last returns the most recent notification, or a zero value if none.
func (m *MockNotifier) Last() Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.notifications) == 0 {
		return Notification{}
	}
	return m.notifications[len(m.notifications)-1]
}

func (m *MockNotifier) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications = nil
}

func (m *MockNotifier) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.notifications)
}
