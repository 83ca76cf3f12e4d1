package models

import (
	"fmt"
	"time"
)

// Comment is a node in a post's comment tree. ParentID is nil for root
// comments. LikeCount and NestedCount are never stored; tree queries fill
// them by counting like rows and direct children.
type Comment struct {
	ID        string    `json:"id" gorm:"primaryKey;size:191"`
	PostID    string    `json:"post_id" gorm:"not null;size:191;index:idx_comments_post_parent,priority:1"`
	UserID    string    `json:"user_id" gorm:"not null;size:191;index"`
	ParentID  *string   `json:"parent_id" gorm:"size:191;index;index:idx_comments_post_parent,priority:2"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	LikeCount   int64 `json:"like_count" gorm:"->;-:migration"`
	NestedCount int64 `json:"nested_count" gorm:"->;-:migration"`

	User User `json:"user" gorm:"foreignKey:UserID"`
}

func (c *Comment) IsRoot() bool {
	return c.ParentID == nil
}

type CommentLike struct {
	UserID    string    `json:"user_id" gorm:"primaryKey;size:191"`
	CommentID string    `json:"comment_id" gorm:"primaryKey;size:191;index"`
	CreatedAt time.Time `json:"created_at"`

	User User `json:"user" gorm:"foreignKey:UserID"`
}

type CommentSortField string

const (
	SortByCreatedAt      CommentSortField = "createdAt"
	SortByLikes          CommentSortField = "likes"
	SortByNestedComments CommentSortField = "nestedComments"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseCommentSortField accepts the public sort names and their aliases.
// An empty value selects createdAt.
func ParseCommentSortField(raw string) (CommentSortField, error) {
	switch raw {
	case "", "createdAt":
		return SortByCreatedAt, nil
	case "likes", "likeCount":
		return SortByLikes, nil
	case "nestedComments", "directChildCount":
		return SortByNestedComments, nil
	default:
		return "", fmt.Errorf("invalid sortField %q: must be one of createdAt, likes, nestedComments", raw)
	}
}

// ParseSortOrder accepts asc or desc. An empty value selects desc.
func ParseSortOrder(raw string) (SortOrder, error) {
	switch raw {
	case "", "desc":
		return SortDesc, nil
	case "asc":
		return SortAsc, nil
	default:
		return "", fmt.Errorf("invalid sortOrder %q: must be asc or desc", raw)
	}
}

// CommentListOptions selects one page of a comment listing.
type CommentListOptions struct {
	Page      int
	Limit     int
	SortField CommentSortField
	SortOrder SortOrder
}

// PaginatedComments is the response for root and nested listings.
type PaginatedComments struct {
	Comments   []Comment `json:"comments"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	Total      int64     `json:"total"`
	HasMore    bool      `json:"has_more"`
	TotalPages int       `json:"total_pages"`
}

// CommentDeleteResult reports what a delete removed so clients can patch
// cached reply counts.
type CommentDeleteResult struct {
	CommentID  string  `json:"comment_id"`
	ParentID   *string `json:"parent_id"`
	Deleted    int64   `json:"deleted"`
	Reattached int64   `json:"reattached"`
	Cascade    bool    `json:"cascade"`
}
