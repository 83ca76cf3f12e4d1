package repositories_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"vastconnect-api/models"
	"vastconnect-api/repositories"
	"vastconnect-api/testutil"
)

func TestNotificationListNewestFirst(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := repositories.NewNotificationRepository(db)

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	post := testutil.CreatePost(t, db, alice.ID, "hello")

	base := time.Now().Add(-time.Hour)
	var ids []string
	for i := 0; i < 5; i++ {
		n := models.Notification{
			ID:        uuid.NewString(),
			Type:      models.NotificationTypePostLike,
			UserID:    alice.ID,
			ActorID:   bob.ID,
			PostID:    &post.ID,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.Create(ctx, &n); err != nil {
			t.Fatal(err)
		}
		ids = append(ids, n.ID)
	}
	// Someone else's notification must not leak into alice's list.
	other := models.FollowNotification(alice.ID, bob.ID)
	if err := repo.Create(ctx, &models.Notification{ID: uuid.NewString(), Type: other.Type, UserID: other.UserID, ActorID: other.ActorID, CreatedAt: time.Now()}); err != nil {
		t.Fatal(err)
	}

	first, total, err := repo.ListForUser(ctx, alice.ID, 1, 3)
	if err != nil {
		t.Fatal(err)
	}
	second, _, err := repo.ListForUser(ctx, alice.ID, 2, 3)
	if err != nil {
		t.Fatal(err)
	}
	if total != 5 || len(first) != 3 || len(second) != 2 {
		t.Fatalf("total=%d first=%d second=%d", total, len(first), len(second))
	}

	got := append(first, second...)
	for i, n := range got {
		if want := ids[len(ids)-1-i]; n.ID != want {
			t.Errorf("position %d: got %s, want %s", i, n.ID, want)
		}
		if n.Actor.Username != "bob" || n.Post == nil || n.Post.ID != post.ID {
			t.Errorf("relations not loaded on %s", n.ID)
		}
	}

	loaded, err := repo.FindByID(ctx, ids[0])
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Recipient.ID != alice.ID {
		t.Errorf("recipient not preloaded: %+v", loaded.Recipient)
	}
}

func TestSocialRepositoryUniqueness(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	social := repositories.NewSocialRepository(db)
	posts := repositories.NewPostRepository(db)

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	realm := testutil.CreateRealm(t, db, alice.ID, "gophers")
	post := testutil.CreatePost(t, db, alice.ID, "hello")

	steps := []struct {
		name   string
		add    func() error
		remove func() error
	}{
		{"follow", func() error { return social.Follow(ctx, bob.ID, alice.ID) }, func() error { return social.Unfollow(ctx, bob.ID, alice.ID) }},
		{"realm", func() error { return social.JoinRealm(ctx, bob.ID, realm.ID) }, func() error { return social.LeaveRealm(ctx, bob.ID, realm.ID) }},
		{"post like", func() error { return posts.AddLike(ctx, bob.ID, post.ID) }, func() error { return posts.RemoveLike(ctx, bob.ID, post.ID) }},
	}

	for _, step := range steps {
		t.Run(step.name, func(t *testing.T) {
			if err := step.add(); err != nil {
				t.Fatal(err)
			}
			if err := step.add(); !errors.Is(err, repositories.ErrAlreadyExists) {
				t.Errorf("duplicate add: %v", err)
			}
			if err := step.remove(); err != nil {
				t.Fatal(err)
			}
			if err := step.remove(); err == nil {
				t.Error("second remove should fail")
			}
		})
	}

	if _, err := social.FindRealm(ctx, realm.ID); err != nil {
		t.Errorf("FindRealm: %v", err)
	}
	if _, err := social.FindUser(ctx, fmt.Sprintf("missing-%d", 1)); err == nil {
		t.Error("FindUser should fail for unknown id")
	}
}
