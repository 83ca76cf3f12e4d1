// Package testutil builds in-memory stores and fixtures for package tests.
package testutil

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"vastconnect-api/database"
	"vastconnect-api/models"
)

// NewDB opens a private in-memory SQLite database with the full schema.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, uuid.NewString()[:8])

	dialector, err := database.Dialector("sqlite", dsn)
	if err != nil {
		t.Fatalf("dialector: %v", err)
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// One connection keeps the shared in-memory database alive and
	// serialises writers.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// Logger discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func CreateUser(t testing.TB, db *gorm.DB, username string) models.User {
	t.Helper()
	user := models.User{
		ID:       uuid.NewString(),
		Username: username,
		Email:    username + "@example.com",
		Password: "hash",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

func CreateRealm(t testing.TB, db *gorm.DB, creatorID, name string) models.Realm {
	t.Helper()
	realm := models.Realm{ID: uuid.NewString(), Name: name, CreatorID: creatorID}
	if err := db.Create(&realm).Error; err != nil {
		t.Fatalf("create realm: %v", err)
	}
	return realm
}

func CreatePost(t testing.TB, db *gorm.DB, authorID, title string) models.Post {
	t.Helper()
	post := models.Post{
		ID:        uuid.NewString(),
		AuthorID:  authorID,
		Title:     title,
		ImageUrls: models.StringSlice{"https://cdn.example.com/" + title + ".png"},
	}
	if err := db.Create(&post).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}
	return post
}

// CreateComment inserts a comment directly, bypassing the service layer.
// A zero at uses the current time.
func CreateComment(t testing.TB, db *gorm.DB, postID, userID string, parentID *string, content string, at time.Time) models.Comment {
	t.Helper()
	if at.IsZero() {
		at = time.Now()
	}
	comment := models.Comment{
		ID:        uuid.NewString(),
		PostID:    postID,
		UserID:    userID,
		ParentID:  parentID,
		Content:   content,
		CreatedAt: at,
		UpdatedAt: at,
	}
	if err := db.Create(&comment).Error; err != nil {
		t.Fatalf("create comment: %v", err)
	}
	return comment
}

func LikeComment(t testing.TB, db *gorm.DB, userID, commentID string) {
	t.Helper()
	if err := db.Create(&models.CommentLike{UserID: userID, CommentID: commentID}).Error; err != nil {
		t.Fatalf("like comment: %v", err)
	}
}

func Ptr[T any](v T) *T {
	return &v
}
