// File: /models/notification.go
package models

import (
	"errors"
	"fmt"
	"time"
)

type NotificationType string

const (
	NotificationTypeFollow       NotificationType = "follow"
	NotificationTypeRealmJoin    NotificationType = "realm_join"
	NotificationTypePostLike     NotificationType = "post_like"
	NotificationTypePostComment  NotificationType = "post_comment"
	NotificationTypeCommentLike  NotificationType = "comment_like"
	NotificationTypeCommentReply NotificationType = "comment_reply"
)

// Notification is written once, as a side effect of a mutation, and never
// updated afterwards.
type Notification struct {
	ID        string           `json:"id" gorm:"primaryKey;size:191"`
	Type      NotificationType `json:"type" gorm:"not null;size:50"`
	UserID    string           `json:"user_id" gorm:"not null;size:191;index:idx_notifications_user_created,priority:1"` // Who receives the notification
	ActorID   string           `json:"actor_id" gorm:"not null;size:191"`                                                // Who performed the action
	PostID    *string          `json:"post_id" gorm:"size:191"`
	CommentID *string          `json:"comment_id" gorm:"size:191"`
	RealmID   *string          `json:"realm_id" gorm:"size:191"`
	CreatedAt time.Time        `json:"created_at" gorm:"index:idx_notifications_user_created,priority:2"`

	// Relationships
	Recipient User     `json:"-" gorm:"foreignKey:UserID"`
	Actor     User     `json:"actor" gorm:"foreignKey:ActorID"`
	Post      *Post    `json:"post,omitempty" gorm:"foreignKey:PostID"`
	Comment   *Comment `json:"comment,omitempty" gorm:"foreignKey:CommentID"`
	Realm     *Realm   `json:"realm,omitempty" gorm:"foreignKey:RealmID"`
}

// NotificationResponse is both the REST representation and the payload
// pushed to subscribers.
type NotificationResponse struct {
	ID        string              `json:"id"`
	Type      NotificationType    `json:"type"`
	UserID    string              `json:"user_id"`
	Actor     UserSummary         `json:"actor"`
	PostID    *string             `json:"post_id,omitempty"`
	CommentID *string             `json:"comment_id,omitempty"`
	RealmID   *string             `json:"realm_id,omitempty"`
	Source    *NotificationSource `json:"source,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
	Message   string              `json:"message"`
	TimeAgo   string              `json:"time_ago"`
}

// NotificationSource summarises the post, comment or realm a notification
// points at.
type NotificationSource struct {
	Kind     string  `json:"kind"`
	ID       string  `json:"id"`
	Excerpt  string  `json:"excerpt"`
	ImageURL *string `json:"image_url,omitempty"`
}

// PaginatedNotifications represents paginated notification response
type PaginatedNotifications struct {
	Notifications []NotificationResponse `json:"notifications"`
	Page          int                    `json:"page"`
	Limit         int                    `json:"limit"`
	Total         int64                  `json:"total"`
	HasMore       bool                   `json:"has_more"`
	TotalPages    int                    `json:"total_pages"`
}

// CreateNotificationParams for creating new notifications
type CreateNotificationParams struct {
	Type      NotificationType `json:"type"`
	ActorID   string           `json:"actor_id"`
	UserID    string           `json:"user_id"`
	PostID    *string          `json:"post_id,omitempty"`
	CommentID *string          `json:"comment_id,omitempty"`
	RealmID   *string          `json:"realm_id,omitempty"`
}

// IsSelf reports whether the actor would notify themselves.
func (p CreateNotificationParams) IsSelf() bool {
	return p.ActorID == p.UserID
}

// Validate checks that the params carry exactly the reference the type needs.
func (p CreateNotificationParams) Validate() error {
	if p.ActorID == "" || p.UserID == "" {
		return errors.New("actor and recipient are required")
	}

	refs := 0
	for _, ref := range []*string{p.PostID, p.CommentID, p.RealmID} {
		if ref != nil {
			refs++
		}
	}

	var want *string
	switch p.Type {
	case NotificationTypeFollow:
		if refs != 0 {
			return errors.New("follow notifications carry no reference")
		}
		return nil
	case NotificationTypeRealmJoin:
		want = p.RealmID
	case NotificationTypePostLike, NotificationTypePostComment:
		want = p.PostID
	case NotificationTypeCommentLike, NotificationTypeCommentReply:
		want = p.CommentID
	default:
		return fmt.Errorf("unknown notification type %q", p.Type)
	}

	if want == nil || *want == "" || refs != 1 {
		return fmt.Errorf("%s notifications need exactly one matching reference", p.Type)
	}
	return nil
}

// Helpers for the six notification types

func FollowNotification(followerID, followedID string) CreateNotificationParams {
	return CreateNotificationParams{
		Type:    NotificationTypeFollow,
		ActorID: followerID,
		UserID:  followedID,
	}
}

func RealmJoinNotification(joinerID, creatorID, realmID string) CreateNotificationParams {
	return CreateNotificationParams{
		Type:    NotificationTypeRealmJoin,
		ActorID: joinerID,
		UserID:  creatorID,
		RealmID: &realmID,
	}
}

func PostLikeNotification(likerID, authorID, postID string) CreateNotificationParams {
	return CreateNotificationParams{
		Type:    NotificationTypePostLike,
		ActorID: likerID,
		UserID:  authorID,
		PostID:  &postID,
	}
}

func PostCommentNotification(commenterID, authorID, postID string) CreateNotificationParams {
	return CreateNotificationParams{
		Type:    NotificationTypePostComment,
		ActorID: commenterID,
		UserID:  authorID,
		PostID:  &postID,
	}
}

func CommentLikeNotification(likerID, authorID, commentID string) CreateNotificationParams {
	return CreateNotificationParams{
		Type:      NotificationTypeCommentLike,
		ActorID:   likerID,
		UserID:    authorID,
		CommentID: &commentID,
	}
}

// CommentReplyNotification references the comment that was replied to.
func CommentReplyNotification(replierID, parentAuthorID, parentCommentID string) CreateNotificationParams {
	return CreateNotificationParams{
		Type:      NotificationTypeCommentReply,
		ActorID:   replierID,
		UserID:    parentAuthorID,
		CommentID: &parentCommentID,
	}
}

// GetNotificationMessage returns a human-readable message for the notification
func (n *Notification) GetNotificationMessage() string {
	switch n.Type {
	case NotificationTypeFollow:
		return "started following you"
	case NotificationTypeRealmJoin:
		return "joined your realm"
	case NotificationTypePostLike:
		return "liked your post"
	case NotificationTypePostComment:
		return "commented on your post"
	case NotificationTypeCommentLike:
		return "liked your comment"
	case NotificationTypeCommentReply:
		return "replied to your comment"
	default:
		return "interacted with your content"
	}
}

// GetTimeAgo returns a human-readable time difference
func (n *Notification) GetTimeAgo(now time.Time) string {
	diff := now.Sub(n.CreatedAt)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return plural(int(diff.Minutes()), "minute")
	case diff < 24*time.Hour:
		return plural(int(diff.Hours()), "hour")
	case diff < 7*24*time.Hour:
		return plural(int(diff.Hours()/24), "day")
	case diff < 30*24*time.Hour:
		return plural(int(diff.Hours()/(24*7)), "week")
	default:
		return plural(int(diff.Hours()/(24*30)), "month")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

const sourceExcerptLength = 80

// ToResponse converts Notification to NotificationResponse. Relationships
// that were not loaded, or whose target has since been deleted, leave
// Source empty.
func (n *Notification) ToResponse() NotificationResponse {
	response := NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		UserID:    n.UserID,
		Actor:     n.Actor.Summary(),
		PostID:    n.PostID,
		CommentID: n.CommentID,
		RealmID:   n.RealmID,
		CreatedAt: n.CreatedAt,
		Message:   n.GetNotificationMessage(),
		TimeAgo:   n.GetTimeAgo(time.Now()),
	}
	if response.Actor.ID == "" {
		response.Actor.ID = n.ActorID
	}

	switch {
	case n.Post != nil:
		response.Source = &NotificationSource{
			Kind:     "post",
			ID:       n.Post.ID,
			Excerpt:  excerpt(n.Post.Title, sourceExcerptLength),
			ImageURL: n.Post.ImageUrls.First(),
		}
	case n.Comment != nil:
		response.Source = &NotificationSource{
			Kind:    "comment",
			ID:      n.Comment.ID,
			Excerpt: excerpt(n.Comment.Content, sourceExcerptLength),
		}
	case n.Realm != nil:
		response.Source = &NotificationSource{
			Kind:    "realm",
			ID:      n.Realm.ID,
			Excerpt: excerpt(n.Realm.Name, sourceExcerptLength),
		}
	}

	return response
}

func excerpt(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
