package mocks

import (
	"context"
	"sync"

	"github.com/khabar-news/khabar/internal/mail"
	"github.com/khabar-news/khabar/internal/models"
)

// MockMailer captures sent messages
type MockMailer struct {
	mu        sync.Mutex
	Name      string
	SendError error
	Sent      []mail.Message
}

// Verify interface compliance
var _ mail.Mailer = (*MockMailer)(nil)

func (m *MockMailer) Send(ctx context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, msg)
	return m.SendError
}

func (m *MockMailer) Provider() string {
	if m.Name == "" {
		return "mock"
	}
	return m.Name
}

// SendCalls returns how many messages were attempted
func (m *MockMailer) SendCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}

// MockMailerFactory hands out one MockMailer and records the settings it was given
type MockMailerFactory struct {
	Mailer   *MockMailer
	NewError error
	Settings []models.DeliverySettings
}

// Verify interface compliance
var _ mail.Factory = (*MockMailerFactory)(nil)

func NewMockMailerFactory() *MockMailerFactory {
	return &MockMailerFactory{Mailer: &MockMailer{}}
}

func (f *MockMailerFactory) New(settings models.DeliverySettings) (mail.Mailer, error) {
	f.Settings = append(f.Settings, settings)
	if f.NewError != nil {
		return nil, f.NewError
	}
	f.Mailer.Name = settings.EmailService
	return f.Mailer, nil
}
