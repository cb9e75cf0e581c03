// Package events carries domain events between services and background
// workers. Subjects follow NATS conventions: dot separated tokens, "*" matches
// one token and ">" matches the remainder.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type Message struct {
	Subject string
	Data    []byte
}

type Handler func(ctx context.Context, m Message)

type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

type Subscription interface {
	Unsubscribe() error
}

type Bus interface {
	Publisher
	Subscribe(subject string, h Handler) (Subscription, error)
	Close() error
}

// PublishJSON marshals v and publishes it.
func PublishJSON(ctx context.Context, p Publisher, subject string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", subject, err)
	}
	return p.Publish(ctx, subject, b)
}

// Subject joins tokens with dots.
func Subject(tokens ...string) string {
	return strings.Join(tokens, ".")
}

// LastToken returns the final token of subject, e.g. the user id of
// medibook.notification.changed.<id>.
func LastToken(subject string) string {
	if i := strings.LastIndexByte(subject, '.'); i >= 0 {
		return subject[i+1:]
	}
	return subject
}

// Match reports whether subject matches pattern.
func Match(pattern, subject string) bool {
	p := strings.Split(pattern, ".")
	s := strings.Split(subject, ".")
	for i, tok := range p {
		if tok == ">" {
			return len(s) > i
		}
		if i >= len(s) {
			return false
		}
		if tok != "*" && tok != s[i] {
			return false
		}
	}
	return len(p) == len(s)
}

// AppointmentEvent is published on appointment create, update and cancel.
type AppointmentEvent struct {
	AppointmentID string    `json:"appointment_id"`
	PatientUserID string    `json:"patient_user_id"`
	DoctorUserID  string    `json:"doctor_user_id"`
	WorkDate      time.Time `json:"work_date"`
	WorkShift     string    `json:"work_shift"`
	Status        string    `json:"status"`
}

// PaymentEvent is published when the gateway reports a paid order.
type PaymentEvent struct {
	OrderID       string `json:"order_id"`
	AppointmentID string `json:"appointment_id"`
	Amount        int64  `json:"amount"`
	TransID       int64  `json:"trans_id"`
}

// Notification change operations.
const (
	OpCreated = "created"
	OpUpdated = "updated"
	OpDeleted = "deleted"
	OpRead    = "read"
)

// NotificationEvent is published on <SubjectNotificationChanged>.<userID>.
type NotificationEvent struct {
	UserID         string `json:"user_id"`
	NotificationID string `json:"notification_id,omitempty"`
	Op             string `json:"op"`
}
