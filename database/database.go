// File: /database/database.go
package database

import (
	"fmt"
	"log/slog"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"vastconnect-api/models"
)

// Dialector picks the gorm driver for the configured backend.
func Dialector(driver, databaseURL string) (gorm.Dialector, error) {
	switch driver {
	case "mysql", "":
		return mysql.Open(databaseURL), nil
	case "postgres", "postgresql":
		return postgres.Open(databaseURL), nil
	case "sqlite":
		return sqlite.Open(databaseURL), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

func Initialize(driver, databaseURL string, debug bool) (*gorm.DB, error) {
	dialector, err := Dialector(driver, databaseURL)
	if err != nil {
		return nil, err
	}

	logLevel := logger.Warn
	if debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                                   logger.Default.LogMode(logLevel),
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Realm{},
		&models.RealmJoin{},
		&models.Post{},
		&models.PostLike{},
		&models.Comment{},
		&models.CommentLike{},
		&models.Notification{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	addCustomIndexes(db)
	addDatabaseConstraints(db)

	return nil
}

type customIndex struct {
	model any
	name  string
	stmt  string
}

var customIndexes = []customIndex{
	{&models.Comment{}, "idx_comments_parent_created", "CREATE INDEX idx_comments_parent_created ON comments(parent_id, created_at)"},
	{&models.Post{}, "idx_posts_author_created", "CREATE INDEX idx_posts_author_created ON posts(author_id, created_at)"},
}

// Only missing indexes are created, so the plain CREATE INDEX works on every
// backend. Failures are logged.
func addCustomIndexes(db *gorm.DB) {
	migrator := db.Migrator()
	for _, idx := range customIndexes {
		if migrator.HasIndex(idx.model, idx.name) {
			continue
		}
		if err := db.Exec(idx.stmt).Error; err != nil {
			slog.Warn("could not create index", "index", idx.name, "error", err)
		}
	}
}

func addDatabaseConstraints(db *gorm.DB) {
	if db.Dialector.Name() == "sqlite" {
		return
	}

	// Prevent self-following
	if db.Migrator().HasConstraint(&models.Follow{}, "ck_follows_no_self_follow") {
		return
	}
	if err := db.Exec("ALTER TABLE follows ADD CONSTRAINT ck_follows_no_self_follow CHECK (follower_id <> following_id)").Error; err != nil {
		slog.Warn("could not add check constraint for follows", "error", err)
	}
}
