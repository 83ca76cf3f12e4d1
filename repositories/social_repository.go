package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"
	"vastconnect-api/models"
)

// SocialRepository stores the follow graph and realm memberships.
type SocialRepository struct {
	db *gorm.DB
}

func NewSocialRepository(db *gorm.DB) *SocialRepository {
	return &SocialRepository{db: db}
}

func (r *SocialRepository) FindUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *SocialRepository) FindRealm(ctx context.Context, id string) (*models.Realm, error) {
	var realm models.Realm
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&realm).Error; err != nil {
		return nil, err
	}
	return &realm, nil
}

func (r *SocialRepository) Follow(ctx context.Context, followerID, followingID string) error {
	follow := models.Follow{FollowerID: followerID, FollowingID: followingID, CreatedAt: time.Now()}
	return insertUnique(r.db.WithContext(ctx), &follow, "follower_id = ? AND following_id = ?", followerID, followingID)
}

func (r *SocialRepository) Unfollow(ctx context.Context, followerID, followingID string) error {
	return deleteExisting(r.db.WithContext(ctx), &models.Follow{}, "follower_id = ? AND following_id = ?", followerID, followingID)
}

func (r *SocialRepository) JoinRealm(ctx context.Context, joinerID, realmID string) error {
	join := models.RealmJoin{JoinerID: joinerID, RealmID: realmID, CreatedAt: time.Now()}
	return insertUnique(r.db.WithContext(ctx), &join, "joiner_id = ? AND realm_id = ?", joinerID, realmID)
}

func (r *SocialRepository) LeaveRealm(ctx context.Context, joinerID, realmID string) error {
	return deleteExisting(r.db.WithContext(ctx), &models.RealmJoin{}, "joiner_id = ? AND realm_id = ?", joinerID, realmID)
}
