package repositories

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"vastconnect-api/models"
	"vastconnect-api/utils"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(notification).Error
}

func (r *NotificationRepository) withRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Actor").
		Preload("Post").
		Preload("Comment").
		Preload("Realm")
}

// FindByID loads a notification with everything its payload renders,
// including the recipient for email delivery.
func (r *NotificationRepository) FindByID(ctx context.Context, id string) (*models.Notification, error) {
	var notification models.Notification
	err := r.withRelations(r.db.WithContext(ctx)).
		Preload("Recipient").
		Where("id = ?", id).
		First(&notification).Error
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

// ListForUser returns a page of the user's notifications, newest first.
func (r *NotificationRepository) ListForUser(ctx context.Context, userID string, page, limit int) ([]models.Notification, int64, error) {
	db := r.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.Notification{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	notifications := make([]models.Notification, 0, limit)
	err := r.withRelations(db).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Offset(utils.Offset(page, limit)).
		Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}
