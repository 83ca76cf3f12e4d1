package database_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"vastconnect-api/database"
	"vastconnect-api/models"
	"vastconnect-api/testutil"
)

func TestDialector(t *testing.T) {
	for _, driver := range []string{"mysql", "postgres", "sqlite"} {
		if _, err := database.Dialector(driver, "dsn"); err != nil {
			t.Errorf("Dialector(%q) error: %v", driver, err)
		}
	}
	if _, err := database.Dialector("oracle", "dsn"); err == nil {
		t.Error("expected error for unsupported driver")
	}
}

func TestSeedData(t *testing.T) {
	db := testutil.NewDB(t)

	if err := database.SeedData(db, 42); err != nil {
		t.Fatalf("SeedData: %v", err)
	}

	var users, posts, replies int64
	db.Model(&models.User{}).Count(&users)
	db.Model(&models.Post{}).Count(&posts)
	db.Model(&models.Comment{}).Where("parent_id IS NOT NULL").Count(&replies)

	if users != 8 || posts != 6 {
		t.Errorf("users=%d posts=%d, want 8 and 6", users, posts)
	}
	if replies == 0 {
		t.Error("expected nested replies to be seeded")
	}

	// A second run must leave the data alone.
	if err := database.SeedData(db, 7); err != nil {
		t.Fatalf("second SeedData: %v", err)
	}
	var again int64
	db.Model(&models.User{}).Count(&again)
	if again != users {
		t.Errorf("user count changed from %d to %d", users, again)
	}
}

func TestMigrateIsRepeatable(t *testing.T) {
	db := testutil.NewDB(t)

	var logs bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, nil)))
	t.Cleanup(func() { slog.SetDefault(previous) })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
	if strings.Contains(logs.String(), "could not create index") {
		t.Errorf("existing indexes were recreated: %s", logs.String())
	}

	for _, idx := range []struct {
		model any
		name  string
	}{
		{&models.Comment{}, "idx_comments_parent_created"},
		{&models.Post{}, "idx_posts_author_created"},
	} {
		if !db.Migrator().HasIndex(idx.model, idx.name) {
			t.Errorf("index %s missing", idx.name)
		}
	}
}
