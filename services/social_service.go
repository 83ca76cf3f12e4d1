package services

import (
	"context"
	"errors"

	"vastconnect-api/models"
	"vastconnect-api/repositories"
	"vastconnect-api/utils"
)

// SocialService handles follows, realm membership and post likes, the
// mutations behind the follow, realm_join and post_like notifications.
type SocialService struct {
	social   *repositories.SocialRepository
	posts    *repositories.PostRepository
	notifier Notifier
}

func NewSocialService(social *repositories.SocialRepository, posts *repositories.PostRepository, notifier Notifier) *SocialService {
	return &SocialService{
		social:   social,
		posts:    posts,
		notifier: notifier,
	}
}

func (s *SocialService) Follow(ctx context.Context, followerID, followingID string) error {
	if followerID == followingID {
		return utils.Validation("cannot follow yourself")
	}
	if _, err := s.social.FindUser(ctx, followingID); err != nil {
		return notFoundOr(err, "user %s not found", followingID)
	}

	if err := s.social.Follow(ctx, followerID, followingID); err != nil {
		return uniqueErr(err, "already following this user", "failed to follow user")
	}

	s.notifier.Dispatch(models.FollowNotification(followerID, followingID))
	return nil
}

func (s *SocialService) Unfollow(ctx context.Context, followerID, followingID string) error {
	if err := s.social.Unfollow(ctx, followerID, followingID); err != nil {
		return notFoundOr(err, "follow relationship not found")
	}
	return nil
}

func (s *SocialService) JoinRealm(ctx context.Context, userID, realmID string) error {
	realm, err := s.social.FindRealm(ctx, realmID)
	if err != nil {
		return notFoundOr(err, "realm %s not found", realmID)
	}

	if err := s.social.JoinRealm(ctx, userID, realmID); err != nil {
		return uniqueErr(err, "already a member of this realm", "failed to join realm")
	}

	s.notifier.Dispatch(models.RealmJoinNotification(userID, realm.CreatorID, realmID))
	return nil
}

func (s *SocialService) LeaveRealm(ctx context.Context, userID, realmID string) error {
	if err := s.social.LeaveRealm(ctx, userID, realmID); err != nil {
		return notFoundOr(err, "realm membership not found")
	}
	return nil
}

func (s *SocialService) LikePost(ctx context.Context, userID, postID string) error {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return notFoundOr(err, "post %s not found", postID)
	}

	if err := s.posts.AddLike(ctx, userID, postID); err != nil {
		return uniqueErr(err, "post already liked", "failed to like post")
	}

	s.notifier.Dispatch(models.PostLikeNotification(userID, post.AuthorID, postID))
	return nil
}

func (s *SocialService) UnlikePost(ctx context.Context, userID, postID string) error {
	if err := s.posts.RemoveLike(ctx, userID, postID); err != nil {
		return notFoundOr(err, "like not found")
	}
	return nil
}

func uniqueErr(err error, conflict, internal string) error {
	if errors.Is(err, repositories.ErrAlreadyExists) {
		return utils.Conflict("%s", conflict)
	}
	return utils.Internal(err, internal)
}
