package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/medibook/medibook_backend/internal/repo"
	"github.com/medibook/medibook_backend/pkg/authorize"
	"github.com/medibook/medibook_backend/pkg/constants"
	"github.com/medibook/medibook_backend/pkg/events"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreateRequest struct {
	// UserID is the recipient user.
	UserID        string
	PatientID     string
	DoctorID      string
	AppointmentID string
	Content       string
	RecipientType repo.RecipientType
	NewDate       *time.Time
	NewWorkShift  repo.Shift
}

type ListRequest struct {
	UnreadOnly bool
	Limit      int
}

// Snapshot is what the push channel sends after every change.
type Snapshot struct {
	UnreadCount   int64                `json:"unread_count"`
	Notifications []*repo.Notification `json:"notifications"`
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*repo.Notification, error)
	Get(ctx context.Context, actor authorize.Actor, id string) (*repo.Notification, error)
	List(ctx context.Context, actor authorize.Actor, req ListRequest) ([]*repo.Notification, error)
	Update(ctx context.Context, actor authorize.Actor, id, content string) (*repo.Notification, error)
	Delete(ctx context.Context, actor authorize.Actor, id string) error
	MarkRead(ctx context.Context, actor authorize.Actor, id string) (*repo.Notification, error)
	MarkAllRead(ctx context.Context, actor authorize.Actor) (int64, error)
	UnreadCount(ctx context.Context, actor authorize.Actor) (int64, error)
	Snapshot(ctx context.Context, userID string, limit int) (*Snapshot, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type notificationService struct {
	db  *repo.Client
	bus events.Publisher
	now func() time.Time
}

func New(db *repo.Client, bus events.Publisher) Service {
	return &notificationService{db: db, bus: bus, now: time.Now}
}

// scope limits listings to the caller's own inbox; admins see everything.
func scope(actor authorize.Actor) repo.NotificationFilter {
	switch actor.Role {
	case authorize.RoleDoctor:
		return repo.NotificationFilter{UserID: actor.UserID.String(), RecipientType: repo.RecipientDoctor}
	case authorize.RolePatient:
		return repo.NotificationFilter{UserID: actor.UserID.String(), RecipientType: repo.RecipientPatient}
	}
	return repo.NotificationFilter{}
}

// inbox is the caller's own notifications; read state is personal, so admins
// get their own inbox here rather than the global view.
func inbox(actor authorize.Actor) repo.NotificationFilter {
	if actor.IsAdmin() {
		return repo.NotificationFilter{UserID: actor.UserID.String()}
	}
	return scope(actor)
}

func clampLimit(n int) int {
	if n < 1 {
		return defaultLimit
	}
	if n > maxLimit {
		return maxLimit
	}
	return n
}

func (s *notificationService) publish(ctx context.Context, userID, notifID, op string) {
	if s.bus == nil || userID == "" {
		return
	}
	subject := events.Subject(constants.SubjectNotificationChanged, userID)
	ev := events.NotificationEvent{UserID: userID, NotificationID: notifID, Op: op}
	if err := events.PublishJSON(ctx, s.bus, subject, ev); err != nil {
		slog.Warn("publish notification change failed", "user_id", userID, "op", op, "error", err)
	}
}

func (s *notificationService) Create(ctx context.Context, req CreateRequest) (*repo.Notification, error) {
	req.Content = strings.TrimSpace(req.Content)
	if req.UserID == "" || req.Content == "" {
		return nil, ErrInvalidInput
	}
	if req.RecipientType != repo.RecipientPatient && req.RecipientType != repo.RecipientDoctor {
		return nil, ErrInvalidInput
	}
	if req.NewWorkShift != "" && !req.NewWorkShift.Valid() {
		return nil, ErrInvalidInput
	}

	if _, err := s.db.User.Get(ctx, req.UserID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrRecipientNotFound
		}
		return nil, fmt.Errorf("get recipient: %w", err)
	}

	n := &repo.Notification{
		ID:            repo.NewID(),
		UserID:        req.UserID,
		PatientID:     req.PatientID,
		DoctorID:      req.DoctorID,
		AppointmentID: req.AppointmentID,
		Content:       req.Content,
		RecipientType: req.RecipientType,
		NewDate:       req.NewDate,
		NewWorkShift:  req.NewWorkShift,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.db.Notification.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}

	s.publish(ctx, n.UserID, n.ID, events.OpCreated)
	return n, nil
}

func (s *notificationService) Get(ctx context.Context, actor authorize.Actor, id string) (*repo.Notification, error) {
	n, err := s.db.Notification.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get notification: %w", err)
	}
	if !actor.IsAdmin() && n.UserID != actor.UserID.String() {
		return nil, ErrUnauthorized
	}
	return n, nil
}

func (s *notificationService) List(ctx context.Context, actor authorize.Actor, req ListRequest) ([]*repo.Notification, error) {
	f := scope(actor)
	f.UnreadOnly = req.UnreadOnly
	f.Limit = clampLimit(req.Limit)

	ns, err := s.db.Notification.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return ns, nil
}

func (s *notificationService) Update(ctx context.Context, actor authorize.Actor, id, content string) (*repo.Notification, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrInvalidInput
	}
	n, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	n.Content = content
	if err := s.db.Notification.Update(ctx, n); err != nil {
		return nil, fmt.Errorf("update notification: %w", err)
	}
	s.publish(ctx, n.UserID, n.ID, events.OpUpdated)
	return n, nil
}

func (s *notificationService) Delete(ctx context.Context, actor authorize.Actor, id string) error {
	n, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.db.Notification.Delete(ctx, n.ID); err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	s.publish(ctx, n.UserID, n.ID, events.OpDeleted)
	return nil
}

func (s *notificationService) MarkRead(ctx context.Context, actor authorize.Actor, id string) (*repo.Notification, error) {
	n, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if n.IsRead {
		return n, nil
	}
	n.IsRead = true
	if err := s.db.Notification.Update(ctx, n); err != nil {
		return nil, fmt.Errorf("mark notification read: %w", err)
	}
	s.publish(ctx, n.UserID, n.ID, events.OpRead)
	return n, nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, actor authorize.Actor) (int64, error) {
	f := inbox(actor)
	n, err := s.db.Notification.MarkAllRead(ctx, f)
	if err != nil {
		return 0, fmt.Errorf("mark all read: %w", err)
	}
	if n > 0 {
		s.publish(ctx, f.UserID, "", events.OpRead)
	}
	return n, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, actor authorize.Actor) (int64, error) {
	f := inbox(actor)
	f.UnreadOnly = true
	n, err := s.db.Notification.Count(ctx, f)
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return n, nil
}

func (s *notificationService) Snapshot(ctx context.Context, userID string, limit int) (*Snapshot, error) {
	f := repo.NotificationFilter{UserID: userID, UnreadOnly: true}
	count, err := s.db.Notification.Count(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("count unread: %w", err)
	}
	ns, err := s.db.Notification.List(ctx, repo.NotificationFilter{UserID: userID, Limit: clampLimit(limit)})
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	if ns == nil {
		ns = []*repo.Notification{}
	}
	return &Snapshot{UnreadCount: count, Notifications: ns}, nil
}
