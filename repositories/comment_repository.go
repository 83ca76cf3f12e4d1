package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"vastconnect-api/models"
	"vastconnect-api/utils"
)

// ErrAlreadyExists is returned when a uniqueness key is already taken.
var ErrAlreadyExists = errors.New("record already exists")

// Derived counts are computed per row, never stored.
const commentColumns = "comments.*, " +
	"(SELECT COUNT(*) FROM comment_likes WHERE comment_likes.comment_id = comments.id) AS like_count, " +
	"(SELECT COUNT(*) FROM comments AS children WHERE children.parent_id = comments.id) AS nested_count"

const subtreeCountSQL = `WITH RECURSIVE subtree AS (
	SELECT id FROM comments WHERE parent_id = ?
	UNION ALL
	SELECT c.id FROM comments c INNER JOIN subtree s ON c.parent_id = s.id
)
SELECT COUNT(*) FROM subtree`

// Keeps IN lists well below driver placeholder limits.
const batchSize = 500

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error
}

// FindByID loads a comment with its author and derived counts.
func (r *CommentRepository) FindByID(ctx context.Context, id string) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).
		Select(commentColumns).
		Preload("User").
		Where("comments.id = ?", id).
		First(&comment).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *CommentRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// ListRoots returns one page of a post's root comments and the total number
// of root comments.
func (r *CommentRepository) ListRoots(ctx context.Context, postID string, opts models.CommentListOptions) ([]models.Comment, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		return db.Where("comments.post_id = ? AND comments.parent_id IS NULL", postID)
	}
	return r.list(ctx, scope, opts)
}

// ListChildren returns one page of the direct replies to parentID.
func (r *CommentRepository) ListChildren(ctx context.Context, parentID string, opts models.CommentListOptions) ([]models.Comment, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		return db.Where("comments.parent_id = ?", parentID)
	}
	return r.list(ctx, scope, opts)
}

// ListAll returns one page of every comment across all posts.
func (r *CommentRepository) ListAll(ctx context.Context, opts models.CommentListOptions) ([]models.Comment, int64, error) {
	return r.list(ctx, func(db *gorm.DB) *gorm.DB { return db }, opts)
}

func (r *CommentRepository) list(ctx context.Context, scope func(*gorm.DB) *gorm.DB, opts models.CommentListOptions) ([]models.Comment, int64, error) {
	db := r.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.Comment{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	comments := make([]models.Comment, 0, opts.Limit)
	if total == 0 {
		return comments, 0, nil
	}

	err := db.Model(&models.Comment{}).
		Select(commentColumns).
		Scopes(scope).
		Preload("User").
		Order(orderClause(opts.SortField, opts.SortOrder)).
		Offset(utils.Offset(opts.Page, opts.Limit)).
		Limit(opts.Limit).
		Find(&comments).Error
	if err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

// orderClause builds a total order: the requested key first, then creation
// time and id ascending so equal keys page deterministically.
func orderClause(field models.CommentSortField, order models.SortOrder) string {
	dir := "DESC"
	if order == models.SortAsc {
		dir = "ASC"
	}

	switch field {
	case models.SortByLikes:
		return fmt.Sprintf("like_count %s, comments.created_at ASC, comments.id ASC", dir)
	case models.SortByNestedComments:
		return fmt.Sprintf("nested_count %s, comments.created_at ASC, comments.id ASC", dir)
	default:
		return fmt.Sprintf("comments.created_at %s, comments.id ASC", dir)
	}
}

// CountDescendants counts every comment below id with one recursive query.
func (r *CommentRepository) CountDescendants(ctx context.Context, id string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Raw(subtreeCountSQL, id).Scan(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountDescendantsWalk counts the same set as CountDescendants one tree
// level per query.
func (r *CommentRepository) CountDescendantsWalk(ctx context.Context, id string) (int64, error) {
	ids, err := r.descendantIDs(r.db.WithContext(ctx), id)
	if err != nil {
		return 0, err
	}
	return int64(len(ids)), nil
}

func (r *CommentRepository) descendantIDs(db *gorm.DB, id string) ([]string, error) {
	var all []string
	seen := map[string]struct{}{id: {}}
	frontier := []string{id}

	for len(frontier) > 0 {
		var next []string
		for _, chunk := range chunks(frontier, batchSize) {
			var ids []string
			if err := db.Model(&models.Comment{}).Where("parent_id IN ?", chunk).Pluck("id", &ids).Error; err != nil {
				return nil, err
			}
			for _, childID := range ids {
				if _, ok := seen[childID]; ok {
					continue
				}
				seen[childID] = struct{}{}
				next = append(next, childID)
			}
		}
		all = append(all, next...)
		frontier = next
	}
	return all, nil
}

// CountByPost counts all comments on a post at any depth.
func (r *CommentRepository) CountByPost(ctx context.Context, postID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Comment{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}

// UpdateContent rewrites the content and bumps updated_at. It reports
// gorm.ErrRecordNotFound only when no comment has the id.
func (r *CommentRepository) UpdateContent(ctx context.Context, id, content string, now time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"content":    content,
			"updated_at": now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	// MySQL reports changed rows, so an identical rewrite also affects none.
	exists, err := r.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes one comment and its likes. Its direct replies move up to
// the deleted comment's parent, becoming roots when it was a root.
func (r *CommentRepository) Delete(ctx context.Context, id string) (*models.CommentDeleteResult, error) {
	result := &models.CommentDeleteResult{CommentID: id}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var target models.Comment
		if err := tx.Select("id", "parent_id").Where("id = ?", id).First(&target).Error; err != nil {
			return err
		}
		result.ParentID = target.ParentID

		if err := tx.Where("comment_id = ?", id).Delete(&models.CommentLike{}).Error; err != nil {
			return err
		}

		var newParent interface{} = gorm.Expr("NULL")
		if target.ParentID != nil {
			newParent = *target.ParentID
		}
		moved := tx.Model(&models.Comment{}).Where("parent_id = ?", id).UpdateColumn("parent_id", newParent)
		if moved.Error != nil {
			return moved.Error
		}
		result.Reattached = moved.RowsAffected

		deleted := tx.Where("id = ?", id).Delete(&models.Comment{})
		if deleted.Error != nil {
			return deleted.Error
		}
		result.Deleted = deleted.RowsAffected
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteSubtree removes a comment, every descendant and all their likes.
func (r *CommentRepository) DeleteSubtree(ctx context.Context, id string) (*models.CommentDeleteResult, error) {
	result := &models.CommentDeleteResult{CommentID: id, Cascade: true}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var target models.Comment
		if err := tx.Select("id", "parent_id").Where("id = ?", id).First(&target).Error; err != nil {
			return err
		}
		result.ParentID = target.ParentID

		descendants, err := r.descendantIDs(tx, id)
		if err != nil {
			return err
		}

		for _, chunk := range chunks(append([]string{id}, descendants...), batchSize) {
			if err := tx.Where("comment_id IN ?", chunk).Delete(&models.CommentLike{}).Error; err != nil {
				return err
			}
			deleted := tx.Where("id IN ?", chunk).Delete(&models.Comment{})
			if deleted.Error != nil {
				return deleted.Error
			}
			result.Deleted += deleted.RowsAffected
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AddLike records a like. A second like by the same user reports
// ErrAlreadyExists, whether caught by the pre-check or by the primary key
// when two requests race.
func (r *CommentRepository) AddLike(ctx context.Context, userID, commentID string) error {
	like := models.CommentLike{UserID: userID, CommentID: commentID, CreatedAt: time.Now()}
	return insertUnique(r.db.WithContext(ctx), &like, "user_id = ? AND comment_id = ?", userID, commentID)
}

// RemoveLike deletes a like, reporting gorm.ErrRecordNotFound when there was
// none.
func (r *CommentRepository) RemoveLike(ctx context.Context, userID, commentID string) error {
	return deleteExisting(r.db.WithContext(ctx), &models.CommentLike{}, "user_id = ? AND comment_id = ?", userID, commentID)
}

func (r *CommentRepository) CountLikes(ctx context.Context, commentID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.CommentLike{}).Where("comment_id = ?", commentID).Count(&count).Error
	return count, err
}

// ListLikers returns the users who liked a comment, most recent first.
func (r *CommentRepository) ListLikers(ctx context.Context, commentID string, page, limit int) ([]models.User, int64, error) {
	db := r.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.CommentLike{}).Where("comment_id = ?", commentID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	users := make([]models.User, 0, limit)
	err := db.Model(&models.User{}).
		Joins("JOIN comment_likes ON comment_likes.user_id = users.id").
		Where("comment_likes.comment_id = ?", commentID).
		Order("comment_likes.created_at DESC, users.id ASC").
		Offset(utils.Offset(page, limit)).
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func chunks(ids []string, size int) [][]string {
	var out [][]string
	for len(ids) > size {
		out = append(out, ids[:size])
		ids = ids[size:]
	}
	if len(ids) > 0 {
		out = append(out, ids)
	}
	return out
}
