package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"vastconnect-api/metrics"
	"vastconnect-api/models"
	"vastconnect-api/realtime"
	"vastconnect-api/repositories"
	"vastconnect-api/utils"
)

// Notifier schedules a fan-out after a mutation has committed. It must not
// block the caller.
type Notifier interface {
	Dispatch(params models.CreateNotificationParams)
}

// Publisher pushes an event to a user's open channels.
type Publisher interface {
	Publish(ctx context.Context, userID string, event realtime.Event) (int, error)
}

// NotificationMailer is the optional email sink.
type NotificationMailer interface {
	SendNotificationEmail(recipient models.User, notification models.NotificationResponse) error
}

// Only conversation activity is worth an email.
var emailedTypes = map[models.NotificationType]bool{
	models.NotificationTypePostComment:  true,
	models.NotificationTypeCommentReply: true,
}

type NotificationService struct {
	repo      *repositories.NotificationRepository
	publisher Publisher
	mailer    NotificationMailer
	logger    *slog.Logger
}

// NewNotificationService wires the store and the real-time hub. mailer may
// be nil.
func NewNotificationService(repo *repositories.NotificationRepository, publisher Publisher, mailer NotificationMailer, logger *slog.Logger) *NotificationService {
	return &NotificationService{
		repo:      repo,
		publisher: publisher,
		mailer:    mailer,
		logger:    logger,
	}
}

// Notify persists a notification and then pushes it to the recipient.
// Self-notifications are skipped and return (nil, nil). A failed push
// returns the stored notification together with a DeliveryFailure error.
func (s *NotificationService) Notify(ctx context.Context, params models.CreateNotificationParams) (*models.Notification, error) {
	if err := params.Validate(); err != nil {
		metrics.NotificationsFailed.WithLabelValues("validate").Inc()
		return nil, utils.Validation("%v", err)
	}
	if params.IsSelf() {
		metrics.NotificationsSuppressed.WithLabelValues(string(params.Type)).Inc()
		return nil, nil
	}

	notification := &models.Notification{
		ID:        uuid.New().String(),
		Type:      params.Type,
		UserID:    params.UserID,
		ActorID:   params.ActorID,
		PostID:    params.PostID,
		CommentID: params.CommentID,
		RealmID:   params.RealmID,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		metrics.NotificationsFailed.WithLabelValues("persist").Inc()
		return nil, fmt.Errorf("persist notification: %w", err)
	}
	metrics.NotificationsPersisted.WithLabelValues(string(params.Type)).Inc()

	if loaded, err := s.repo.FindByID(ctx, notification.ID); err == nil {
		notification = loaded
	} else {
		s.logger.Warn("reload notification", "notification_id", notification.ID, "error", err)
	}
	payload := notification.ToResponse()

	pushErr := s.push(ctx, notification, payload)
	s.email(notification, payload)

	return notification, pushErr
}

func (s *NotificationService) push(ctx context.Context, notification *models.Notification, payload models.NotificationResponse) error {
	if s.publisher == nil {
		return nil
	}

	event := realtime.Event{Name: realtime.EventReceiveNotification, Data: payload}
	_, err := s.publisher.Publish(ctx, notification.UserID, event)
	if err == nil {
		metrics.NotificationsDelivered.WithLabelValues(string(notification.Type)).Inc()
		return nil
	}

	reason := "failed"
	if errors.Is(err, realtime.ErrNoSubscribers) {
		reason = "no_subscribers"
	} else if errors.Is(err, context.DeadlineExceeded) {
		reason = "timeout"
	}
	metrics.NotificationsDropped.WithLabelValues(string(notification.Type), reason).Inc()
	return utils.DeliveryFailure(err, "notification %s not pushed", notification.ID)
}

func (s *NotificationService) email(notification *models.Notification, payload models.NotificationResponse) {
	if s.mailer == nil || !emailedTypes[notification.Type] || notification.Recipient.Email == "" {
		return
	}
	if err := s.mailer.SendNotificationEmail(notification.Recipient, payload); err != nil {
		metrics.NotificationsFailed.WithLabelValues("email").Inc()
		s.logger.Warn("notification email failed", "notification_id", notification.ID, "error", err)
	}
}

// List returns a page of the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID string, page, limit int) (*models.PaginatedNotifications, error) {
	notifications, total, err := s.repo.ListForUser(ctx, userID, page, limit)
	if err != nil {
		return nil, utils.Internal(err, "failed to fetch notifications")
	}

	responses := make([]models.NotificationResponse, 0, len(notifications))
	for i := range notifications {
		responses = append(responses, notifications[i].ToResponse())
	}

	return &models.PaginatedNotifications{
		Notifications: responses,
		Page:          page,
		Limit:         limit,
		Total:         total,
		HasMore:       utils.HasMore(page, limit, total),
		TotalPages:    utils.TotalPages(total, limit),
	}, nil
}

// notFoundOr maps a missing row to NotFound and anything else to Internal.
func notFoundOr(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.NotFound(format, args...)
	}
	return utils.Internal(err, "database lookup failed")
}
