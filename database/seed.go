package database

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"vastconnect-api/models"
)

const seedPassword = "password123"

// SeedData populates an empty database with users, realms, posts and
// threaded comments for development.
func SeedData(db *gorm.DB, seed int64) error {
	var userCount int64
	if err := db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		return err
	}
	if userCount > 0 {
		slog.Info("database already has data, skipping seed")
		return nil
	}

	faker := gofakeit.New(seed)

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		users := make([]models.User, 0, 8)
		for i := 0; i < 8; i++ {
			avatar := faker.ImageURL(128, 128)
			users = append(users, models.User{
				ID:        uuid.New().String(),
				Username:  fmt.Sprintf("%s%d", faker.Username(), i),
				Email:     fmt.Sprintf("user%d.%s", i, faker.Email()),
				Password:  string(hash),
				AvatarURL: &avatar,
			})
		}
		if err := tx.Create(&users).Error; err != nil {
			return fmt.Errorf("seed users: %w", err)
		}

		realms := make([]models.Realm, 0, 3)
		for i := 0; i < 3; i++ {
			realms = append(realms, models.Realm{
				ID:          uuid.New().String(),
				Name:        fmt.Sprintf("%s %d", faker.Hobby(), i),
				Description: faker.Sentence(12),
				CreatorID:   users[i].ID,
			})
		}
		if err := tx.Create(&realms).Error; err != nil {
			return fmt.Errorf("seed realms: %w", err)
		}

		base := time.Now().Add(-48 * time.Hour)
		for i := 0; i < 6; i++ {
			realmID := realms[i%len(realms)].ID
			post := models.Post{
				ID:        uuid.New().String(),
				AuthorID:  users[i%len(users)].ID,
				RealmID:   &realmID,
				Title:     faker.Sentence(6),
				Content:   faker.Paragraph(2, 3, 12, "\n"),
				ImageUrls: models.StringSlice{faker.ImageURL(640, 480)},
				CreatedAt: base.Add(time.Duration(i) * time.Hour),
			}
			if err := tx.Create(&post).Error; err != nil {
				return fmt.Errorf("seed post: %w", err)
			}
			if err := seedThread(tx, faker, users, post, post.CreatedAt); err != nil {
				return err
			}
		}

		slog.Info("database seeded", "users", len(users), "realms", len(realms))
		return nil
	})
}

// seedThread writes a few root comments, each with a short chain of replies
// and one sibling, so nested pagination and subtree counts have depth.
func seedThread(tx *gorm.DB, faker *gofakeit.Faker, users []models.User, post models.Post, start time.Time) error {
	at := start
	next := func() time.Time {
		at = at.Add(time.Duration(faker.Number(1, 30)) * time.Minute)
		return at
	}

	for r := 0; r < faker.Number(2, 4); r++ {
		root := newSeedComment(faker, users, post.ID, nil, next())
		if err := tx.Create(&root).Error; err != nil {
			return fmt.Errorf("seed comment: %w", err)
		}

		parent := root
		for depth := 0; depth < faker.Number(1, 3); depth++ {
			parentID := parent.ID
			reply := newSeedComment(faker, users, post.ID, &parentID, next())
			sibling := newSeedComment(faker, users, post.ID, &parentID, next())
			if err := tx.Create([]*models.Comment{&reply, &sibling}).Error; err != nil {
				return fmt.Errorf("seed reply: %w", err)
			}
			parent = reply
		}
	}
	return nil
}

func newSeedComment(faker *gofakeit.Faker, users []models.User, postID string, parentID *string, at time.Time) models.Comment {
	return models.Comment{
		ID:        uuid.New().String(),
		PostID:    postID,
		UserID:    users[faker.Number(0, len(users)-1)].ID,
		ParentID:  parentID,
		Content:   faker.Sentence(faker.Number(4, 14)),
		CreatedAt: at,
		UpdatedAt: at,
	}
}
