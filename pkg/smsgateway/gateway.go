// Package smsgateway contains the SMS providers the notification service
// can route messages through.
package smsgateway

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Delivery states reported by GetDeliveryStatus
const (
	StatusDelivered = "DELIVERED"
	StatusSent      = "SENT"
	StatusUnknown   = "UNKNOWN"
)

// ErrNotConfigured is returned when a gateway has no usable credentials
var ErrNotConfigured = errors.New("sms gateway not configured")

// Gateway represents an SMS gateway interface
type Gateway interface {
	SendSMS(ctx context.Context, to, message string) (string, error)
	GetDeliveryStatus(ctx context.Context, messageID string) (string, error)
}

// BalanceChecker is implemented by gateways that expose an account balance
type BalanceChecker interface {
	CheckBalance(ctx context.Context) (decimal.Decimal, error)
}

// ProviderError is a failure reported by the provider itself, as opposed
// to a transport error
type ProviderError struct {
	Gateway string
	Code    string
	Message string
}

func (e *ProviderError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("%s: %s", e.Gateway, e.Message)
	}
	return fmt.Sprintf("%s: %s (code %s)", e.Gateway, e.Message, e.Code)
}

// MockGateway records messages instead of sending them
type MockGateway struct {
	Name string
	// Err, when set, is returned by every SendSMS call
	Err error

	mu   sync.Mutex
	sent []SentMessage
}

// SentMessage is a message captured by MockGateway
type SentMessage struct {
	ID      string
	To      string
	Message string
}

// NewMockGateway creates a new Mock SMS gateway
func NewMockGateway(name string) *MockGateway {
	return &MockGateway{Name: name}
}

// SendSMS sends an SMS using the Mock gateway
func (g *MockGateway) SendSMS(ctx context.Context, to, message string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if g.Err != nil {
		return "", g.Err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	id := fmt.Sprintf("%s-MOCK-MSG-%d-%d", g.Name, time.Now().UnixNano(), len(g.sent))
	g.sent = append(g.sent, SentMessage{ID: id, To: to, Message: message})
	return id, nil
}

// GetDeliveryStatus gets the delivery status of an SMS from the Mock gateway
func (g *MockGateway) GetDeliveryStatus(context.Context, string) (string, error) {
	return StatusDelivered, nil
}

// CheckBalance reports a fixed balance
func (g *MockGateway) CheckBalance(context.Context) (decimal.Decimal, error) {
	return decimal.NewFromInt(1000), nil
}

// Sent returns a copy of the captured messages
func (g *MockGateway) Sent() []SentMessage {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]SentMessage(nil), g.sent...)
}
