// File: /models/user.go
package models

import (
	"time"
)

// User is owned by the account service; only what comments and
// notifications render is kept here.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;size:191"`
	Username  string    `json:"username" gorm:"uniqueIndex;not null;size:50"`
	Email     string    `json:"-" gorm:"uniqueIndex;not null;size:255"`
	Password  string    `json:"-" gorm:"not null;size:255"`
	AvatarURL *string   `json:"avatar_url" gorm:"size:500"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserSummary is the public projection of a user embedded in other payloads.
type UserSummary struct {
	ID        string  `json:"id"`
	Username  string  `json:"username"`
	AvatarURL *string `json:"avatar_url"`
}

func (u User) Summary() UserSummary {
	return UserSummary{
		ID:        u.ID,
		Username:  u.Username,
		AvatarURL: u.AvatarURL,
	}
}

type Follow struct {
	FollowerID  string    `json:"follower_id" gorm:"primaryKey;size:191"`
	FollowingID string    `json:"following_id" gorm:"primaryKey;size:191;index"`
	CreatedAt   time.Time `json:"created_at"`
}
