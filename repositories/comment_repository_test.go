package repositories_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"
	"vastconnect-api/models"
	"vastconnect-api/repositories"
	"vastconnect-api/testutil"
)

type treeFixture struct {
	db     *gorm.DB
	repo   *repositories.CommentRepository
	author models.User
	post   models.Post
	root   models.Comment
	a, b   models.Comment
	a1     models.Comment
}

// newTree builds root -> {a, b}, a -> {a1, a2, a3}: five descendants of root.
func newTree(t *testing.T) treeFixture {
	t.Helper()
	db := testutil.NewDB(t)
	author := testutil.CreateUser(t, db, "author")
	post := testutil.CreatePost(t, db, author.ID, "trees")

	base := time.Now().Add(-time.Hour)
	root := testutil.CreateComment(t, db, post.ID, author.ID, nil, "root", base)
	a := testutil.CreateComment(t, db, post.ID, author.ID, &root.ID, "a", base.Add(time.Minute))
	b := testutil.CreateComment(t, db, post.ID, author.ID, &root.ID, "b", base.Add(2*time.Minute))
	a1 := testutil.CreateComment(t, db, post.ID, author.ID, &a.ID, "a1", base.Add(3*time.Minute))
	testutil.CreateComment(t, db, post.ID, author.ID, &a.ID, "a2", base.Add(4*time.Minute))
	testutil.CreateComment(t, db, post.ID, author.ID, &a.ID, "a3", base.Add(5*time.Minute))

	return treeFixture{
		db:     db,
		repo:   repositories.NewCommentRepository(db),
		author: author,
		post:   post,
		root:   root,
		a:      a,
		b:      b,
		a1:     a1,
	}
}

func TestCountDescendants(t *testing.T) {
	f := newTree(t)
	ctx := context.Background()

	tests := []struct {
		id   string
		want int64
	}{
		{f.root.ID, 5},
		{f.a.ID, 3},
		{f.b.ID, 0},
		{"missing", 0},
	}

	for _, tt := range tests {
		cte, err := f.repo.CountDescendants(ctx, tt.id)
		if err != nil {
			t.Fatalf("CountDescendants(%s): %v", tt.id, err)
		}
		walk, err := f.repo.CountDescendantsWalk(ctx, tt.id)
		if err != nil {
			t.Fatalf("CountDescendantsWalk(%s): %v", tt.id, err)
		}
		if cte != tt.want || walk != tt.want {
			t.Errorf("count(%s): cte=%d walk=%d, want %d", tt.id, cte, walk, tt.want)
		}
	}
}

func TestCountDescendantsDeepChain(t *testing.T) {
	f := newTree(t)
	ctx := context.Background()

	parent := f.a1
	for i := 0; i < 6; i++ {
		parent = testutil.CreateComment(t, f.db, f.post.ID, f.author.ID, &parent.ID, fmt.Sprintf("deep %d", i), time.Time{})
	}

	cte, err := f.repo.CountDescendants(ctx, f.root.ID)
	if err != nil {
		t.Fatal(err)
	}
	walk, err := f.repo.CountDescendantsWalk(ctx, f.root.ID)
	if err != nil {
		t.Fatal(err)
	}
	if cte != 11 || walk != 11 {
		t.Errorf("cte=%d walk=%d, want 11", cte, walk)
	}
}

func TestFindByIDIncludesCounts(t *testing.T) {
	f := newTree(t)
	ctx := context.Background()
	liker := testutil.CreateUser(t, f.db, "liker")
	testutil.LikeComment(t, f.db, liker.ID, f.a.ID)
	testutil.LikeComment(t, f.db, f.author.ID, f.a.ID)

	got, err := f.repo.FindByID(ctx, f.a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.LikeCount != 2 || got.NestedCount != 3 {
		t.Errorf("likes=%d nested=%d, want 2 and 3", got.LikeCount, got.NestedCount)
	}
	if got.User.Username != "author" {
		t.Errorf("author not preloaded: %+v", got.User)
	}

	if _, err := f.repo.FindByID(ctx, "missing"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestListPaginationCoversEverySortKey(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := repositories.NewCommentRepository(db)
	author := testutil.CreateUser(t, db, "author")
	post := testutil.CreatePost(t, db, author.ID, "paging")

	likers := make([]models.User, 3)
	for i := range likers {
		likers[i] = testutil.CreateUser(t, db, fmt.Sprintf("liker%d", i))
	}

	// Several roots share a timestamp and like/child counts so the
	// tie-break decides their order.
	base := time.Now().Add(-time.Hour)
	want := map[string]bool{}
	for i := 0; i < 8; i++ {
		at := base.Add(time.Duration(i/2) * time.Minute)
		root := testutil.CreateComment(t, db, post.ID, author.ID, nil, fmt.Sprintf("root %d", i), at)
		want[root.ID] = true
		for l := 0; l < i%3; l++ {
			testutil.LikeComment(t, db, likers[l].ID, root.ID)
		}
		for c := 0; c < i%2; c++ {
			testutil.CreateComment(t, db, post.ID, author.ID, &root.ID, "reply", at.Add(time.Second))
		}
	}

	fields := []models.CommentSortField{models.SortByCreatedAt, models.SortByLikes, models.SortByNestedComments}
	orders := []models.SortOrder{models.SortAsc, models.SortDesc}

	for _, field := range fields {
		for _, order := range orders {
			t.Run(fmt.Sprintf("%s_%s", field, order), func(t *testing.T) {
				seen := map[string]bool{}
				for page := 1; ; page++ {
					opts := models.CommentListOptions{Page: page, Limit: 3, SortField: field, SortOrder: order}
					comments, total, err := repo.ListRoots(ctx, post.ID, opts)
					if err != nil {
						t.Fatal(err)
					}
					if total != int64(len(want)) {
						t.Fatalf("total = %d, want %d", total, len(want))
					}
					if len(comments) > opts.Limit {
						t.Fatalf("page %d has %d rows", page, len(comments))
					}
					if len(comments) == 0 {
						break
					}
					for _, c := range comments {
						if seen[c.ID] {
							t.Fatalf("comment %s returned twice", c.ID)
						}
						if c.ParentID != nil {
							t.Fatalf("non-root comment %s in root listing", c.ID)
						}
						seen[c.ID] = true
					}
				}
				if len(seen) != len(want) {
					t.Errorf("saw %d comments, want %d", len(seen), len(want))
				}
			})
		}
	}
}

func TestListOrdersByLikes(t *testing.T) {
	f := newTree(t)
	ctx := context.Background()
	liker := testutil.CreateUser(t, f.db, "liker")
	testutil.LikeComment(t, f.db, liker.ID, f.b.ID)

	opts := models.CommentListOptions{Page: 1, Limit: 5, SortField: models.SortByLikes, SortOrder: models.SortDesc}
	comments, _, err := f.repo.ListChildren(ctx, f.root.ID, opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(comments) != 2 || comments[0].ID != f.b.ID {
		t.Fatalf("expected b first, got %+v", comments)
	}

	opts.SortField = models.SortByNestedComments
	comments, _, err = f.repo.ListChildren(ctx, f.root.ID, opts)
	if err != nil {
		t.Fatal(err)
	}
	if comments[0].ID != f.a.ID || comments[0].NestedCount != 3 {
		t.Fatalf("expected a first with 3 replies, got %+v", comments[0])
	}
}

func TestListChildrenOfLeafIsEmpty(t *testing.T) {
	f := newTree(t)
	opts := models.CommentListOptions{Page: 1, Limit: 5, SortField: models.SortByCreatedAt, SortOrder: models.SortDesc}

	comments, total, err := f.repo.ListChildren(context.Background(), f.b.ID, opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(comments) != 0 || total != 0 {
		t.Errorf("got %d comments, total %d", len(comments), total)
	}
	if comments == nil {
		t.Error("empty page should be an empty slice, not nil")
	}
}

func TestListAllSpansPostsAndDepths(t *testing.T) {
	f := newTree(t)
	ctx := context.Background()
	other := testutil.CreatePost(t, f.db, f.author.ID, "other")
	testutil.CreateComment(t, f.db, other.ID, f.author.ID, nil, "elsewhere", time.Time{})

	opts := models.CommentListOptions{Page: 1, Limit: 4, SortField: models.SortByCreatedAt, SortOrder: models.SortAsc}
	first, total, err := f.repo.ListAll(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	opts.Page = 2
	second, _, err := f.repo.ListAll(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}

	if total != 7 || len(first) != 4 || len(second) != 3 {
		t.Fatalf("total=%d pages=%d+%d, want 7 = 4+3", total, len(first), len(second))
	}
	seen := map[string]bool{}
	for _, c := range append(first, second...) {
		if seen[c.ID] {
			t.Errorf("comment %s listed twice", c.ID)
		}
		seen[c.ID] = true
	}
	if first[0].ID != f.root.ID || second[2].Content != "elsewhere" {
		t.Errorf("order: first=%s last=%s", first[0].Content, second[2].Content)
	}
}

func TestUpdateContent(t *testing.T) {
	f := newTree(t)
	ctx := context.Background()
	now := time.Now().Add(time.Minute)

	if err := f.repo.UpdateContent(ctx, f.b.ID, "edited", now); err != nil {
		t.Fatal(err)
	}
	got, err := f.repo.FindByID(ctx, f.b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Content != "edited" {
		t.Errorf("content = %q", got.Content)
	}
	if !got.UpdatedAt.After(got.CreatedAt) {
		t.Errorf("updated_at %v should be after created_at %v", got.UpdatedAt, got.CreatedAt)
	}

	if err := f.repo.UpdateContent(ctx, "missing", "x", now); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestUpdateContentUnchangedRow(t *testing.T) {
	f := newTree(t)
	ctx := context.Background()

	// Report zero affected rows the way MySQL does for an identical rewrite.
	err := f.db.Callback().Update().After("gorm:update").Register("test:changed_rows", func(tx *gorm.DB) {
		tx.RowsAffected = 0
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := f.repo.UpdateContent(ctx, f.b.ID, f.b.Content, f.b.UpdatedAt); err != nil {
		t.Errorf("rewriting identical content: %v", err)
	}
	if err := f.repo.UpdateContent(ctx, "missing", "x", time.Now()); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestDeleteReattachesChildren(t *testing.T) {
	f := newTree(t)
	ctx := context.Background()
	testutil.LikeComment(t, f.db, f.author.ID, f.a.ID)

	result, err := f.repo.Delete(ctx, f.a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if result.Deleted != 1 || result.Reattached != 3 {
		t.Errorf("result = %+v, want 1 deleted and 3 reattached", result)
	}
	if result.ParentID == nil || *result.ParentID != f.root.ID {
		t.Errorf("ParentID = %v", result.ParentID)
	}

	// a's three replies now hang off root, b is untouched.
	count, err := f.repo.CountDescendants(ctx, f.root.ID)
	if err != nil {
		t.Fatal(err)
	}
	if count != 4 {
		t.Errorf("root descendants = %d, want 4", count)
	}

	var likes int64
	f.db.Model(&models.CommentLike{}).Where("comment_id = ?", f.a.ID).Count(&likes)
	if likes != 0 {
		t.Errorf("likes of deleted comment remain: %d", likes)
	}

	if _, err := f.repo.Delete(ctx, f.a.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("second delete should be not found, got %v", err)
	}
}

func TestDeleteRootPromotesReplies(t *testing.T) {
	f := newTree(t)
	ctx := context.Background()

	if _, err := f.repo.Delete(ctx, f.root.ID); err != nil {
		t.Fatal(err)
	}

	opts := models.CommentListOptions{Page: 1, Limit: 10, SortField: models.SortByCreatedAt, SortOrder: models.SortAsc}
	roots, total, err := f.repo.ListRoots(ctx, f.post.ID, opts)
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 || roots[0].ID != f.a.ID || roots[1].ID != f.b.ID {
		t.Errorf("roots after delete = %+v", roots)
	}
}

func TestDeleteSubtree(t *testing.T) {
	f := newTree(t)
	ctx := context.Background()
	testutil.LikeComment(t, f.db, f.author.ID, f.a1.ID)

	result, err := f.repo.DeleteSubtree(ctx, f.a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if result.Deleted != 4 || !result.Cascade {
		t.Errorf("result = %+v, want 4 deleted", result)
	}

	remaining, err := f.repo.CountByPost(ctx, f.post.ID)
	if err != nil {
		t.Fatal(err)
	}
	if remaining != 2 {
		t.Errorf("remaining comments = %d, want 2", remaining)
	}

	var likes int64
	f.db.Model(&models.CommentLike{}).Count(&likes)
	if likes != 0 {
		t.Errorf("orphaned likes = %d", likes)
	}
}

func TestAddLikeIsUnique(t *testing.T) {
	f := newTree(t)
	ctx := context.Background()
	liker := testutil.CreateUser(t, f.db, "liker")

	if err := f.repo.AddLike(ctx, liker.ID, f.b.ID); err != nil {
		t.Fatal(err)
	}
	if err := f.repo.AddLike(ctx, liker.ID, f.b.ID); !errors.Is(err, repositories.ErrAlreadyExists) {
		t.Errorf("second like: expected ErrAlreadyExists, got %v", err)
	}

	count, err := f.repo.CountLikes(ctx, f.b.ID)
	if err != nil || count != 1 {
		t.Errorf("likes = %d, %v", count, err)
	}

	if err := f.repo.RemoveLike(ctx, liker.ID, f.b.ID); err != nil {
		t.Fatal(err)
	}
	if err := f.repo.RemoveLike(ctx, liker.ID, f.b.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("second unlike: expected ErrRecordNotFound, got %v", err)
	}
}

func TestConcurrentLikesKeepOne(t *testing.T) {
	f := newTree(t)
	ctx := context.Background()
	liker := testutil.CreateUser(t, f.db, "liker")

	var wg sync.WaitGroup
	errs := make(chan error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- f.repo.AddLike(ctx, liker.ID, f.b.ID)
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, repositories.ErrAlreadyExists):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Errorf("%d likes succeeded, want 1", succeeded)
	}
}

func TestListLikers(t *testing.T) {
	f := newTree(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		u := testutil.CreateUser(t, f.db, fmt.Sprintf("fan%d", i))
		if err := f.repo.AddLike(ctx, u.ID, f.a.ID); err != nil {
			t.Fatal(err)
		}
	}

	users, total, err := f.repo.ListLikers(ctx, f.a.ID, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 || len(users) != 2 {
		t.Errorf("total=%d page=%d", total, len(users))
	}
}
