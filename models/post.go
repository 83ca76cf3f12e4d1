// File: /models/post.go
package models

import (
	"time"
)

type Post struct {
	ID        string      `json:"id" gorm:"primaryKey;size:191"`
	AuthorID  string      `json:"author_id" gorm:"not null;size:191;index"`
	RealmID   *string     `json:"realm_id" gorm:"size:191;index"`
	Title     string      `json:"title" gorm:"not null;size:255"`
	Content   string      `json:"content" gorm:"type:text"`
	ImageUrls StringSlice `json:"image_urls"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`

	Author User `json:"author" gorm:"foreignKey:AuthorID"`
}

type PostLike struct {
	UserID    string    `json:"user_id" gorm:"primaryKey;size:191"`
	PostID    string    `json:"post_id" gorm:"primaryKey;size:191;index"`
	CreatedAt time.Time `json:"created_at"`
}
