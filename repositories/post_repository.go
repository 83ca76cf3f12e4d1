package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"vastconnect-api/models"
)

// PostRepository covers the parts of posts the comment tree and post likes
// need. Post CRUD lives in the content service.
type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) FindByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *PostRepository) AddLike(ctx context.Context, userID, postID string) error {
	like := models.PostLike{UserID: userID, PostID: postID, CreatedAt: time.Now()}
	return insertUnique(r.db.WithContext(ctx), &like, "user_id = ? AND post_id = ?", userID, postID)
}

func (r *PostRepository) RemoveLike(ctx context.Context, userID, postID string) error {
	return deleteExisting(r.db.WithContext(ctx), &models.PostLike{}, "user_id = ? AND post_id = ?", userID, postID)
}

func (r *PostRepository) CountLikes(ctx context.Context, postID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PostLike{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}

// insertUnique creates row unless a row matching the key already exists,
// mapping both the pre-check and a lost insert race to ErrAlreadyExists.
func insertUnique(db *gorm.DB, row interface{}, key string, args ...interface{}) error {
	exists := func() (bool, error) {
		var count int64
		err := db.Model(row).Where(key, args...).Count(&count).Error
		return count > 0, err
	}

	if found, err := exists(); err != nil {
		return err
	} else if found {
		return ErrAlreadyExists
	}

	if err := db.Omit(clause.Associations).Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyExists
		}
		if found, checkErr := exists(); checkErr == nil && found {
			return ErrAlreadyExists
		}
		return err
	}
	return nil
}

// deleteExisting reports gorm.ErrRecordNotFound when nothing matched.
func deleteExisting(db *gorm.DB, model interface{}, key string, args ...interface{}) error {
	result := db.Where(key, args...).Delete(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
