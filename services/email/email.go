// Package email sends transactional mail: signup codes, welcome and
// enrollment notices.
package email

import (
	"context"
	"sync"

	"devlaunch/logger"
)

type Message struct {
	To      string
	Name    string
	Subject string
	HTML    string
	Text    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// ConsoleSender logs messages instead of delivering them and keeps a copy
// for inspection.
type ConsoleSender struct {
	log *logger.Logger

	mu   sync.Mutex
	sent []Message
}

func NewConsoleSender(log *logger.Logger) *ConsoleSender {
	return &ConsoleSender{log: log.With("service", "ConsoleEmail")}
}

func (s *ConsoleSender) Send(_ context.Context, msg Message) error {
	s.log.Info("Email", "to", msg.To, "subject", msg.Subject, "body", msg.Text)
	s.mu.Lock()
	s.sent = append(s.sent, msg)
	s.mu.Unlock()
	return nil
}

// Sent returns the messages seen so far.
func (s *ConsoleSender) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.sent))
	copy(out, s.sent)
	return out
}
