package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"vastconnect-api/models"
	"vastconnect-api/repositories"
	"vastconnect-api/utils"
)

const (
	CountStrategyCTE  = "cte"
	CountStrategyWalk = "walk"

	DefaultRootLimit   = 10
	DefaultNestedLimit = 5
)

// ListQuery is a listing request as it arrives from the transport, before
// the sort parameters are validated.
type ListQuery struct {
	Page      int
	Limit     int
	SortField string
	SortOrder string
}

// CommentService owns the comment tree: listings, subtree counts and every
// mutation, each followed by the matching notification.
type CommentService struct {
	comments      *repositories.CommentRepository
	posts         *repositories.PostRepository
	notifier      Notifier
	countStrategy string
	logger        *slog.Logger
	now           func() time.Time
}

func NewCommentService(comments *repositories.CommentRepository, posts *repositories.PostRepository, notifier Notifier, countStrategy string, logger *slog.Logger) *CommentService {
	if countStrategy != CountStrategyWalk {
		countStrategy = CountStrategyCTE
	}
	return &CommentService{
		comments:      comments,
		posts:         posts,
		notifier:      notifier,
		countStrategy: countStrategy,
		logger:        logger,
		now:           time.Now,
	}
}

func listOptions(q ListQuery) (models.CommentListOptions, error) {
	field, err := models.ParseCommentSortField(q.SortField)
	if err != nil {
		return models.CommentListOptions{}, utils.Validation("%v", err)
	}
	order, err := models.ParseSortOrder(q.SortOrder)
	if err != nil {
		return models.CommentListOptions{}, utils.Validation("%v", err)
	}
	if q.Limit < 1 || q.Limit > utils.MaxLimit {
		return models.CommentListOptions{}, utils.Validation("limit must be between 1 and %d", utils.MaxLimit)
	}
	if err := utils.ValidatePage(q.Page, q.Limit); err != nil {
		return models.CommentListOptions{}, err
	}
	return models.CommentListOptions{Page: q.Page, Limit: q.Limit, SortField: field, SortOrder: order}, nil
}

func paginated(comments []models.Comment, total int64, opts models.CommentListOptions) *models.PaginatedComments {
	return &models.PaginatedComments{
		Comments:   comments,
		Page:       opts.Page,
		Limit:      opts.Limit,
		Total:      total,
		HasMore:    utils.HasMore(opts.Page, opts.Limit, total),
		TotalPages: utils.TotalPages(total, opts.Limit),
	}
}

// GetRootComments lists a post's top-level comments.
func (s *CommentService) GetRootComments(ctx context.Context, postID string, q ListQuery) (*models.PaginatedComments, error) {
	opts, err := listOptions(q)
	if err != nil {
		return nil, err
	}
	if _, err := s.posts.FindByID(ctx, postID); err != nil {
		return nil, notFoundOr(err, "post %s not found", postID)
	}

	comments, total, err := s.comments.ListRoots(ctx, postID, opts)
	if err != nil {
		return nil, utils.Internal(err, "failed to fetch comments")
	}
	return paginated(comments, total, opts), nil
}

// GetAllComments lists comments across every post, at any depth.
func (s *CommentService) GetAllComments(ctx context.Context, q ListQuery) (*models.PaginatedComments, error) {
	opts, err := listOptions(q)
	if err != nil {
		return nil, err
	}

	comments, total, err := s.comments.ListAll(ctx, opts)
	if err != nil {
		return nil, utils.Internal(err, "failed to fetch comments")
	}
	return paginated(comments, total, opts), nil
}

// GetNestedComments lists the direct replies to a comment, one level deep.
func (s *CommentService) GetNestedComments(ctx context.Context, parentID string, q ListQuery) (*models.PaginatedComments, error) {
	opts, err := listOptions(q)
	if err != nil {
		return nil, err
	}
	if err := s.requireComment(ctx, parentID); err != nil {
		return nil, err
	}

	comments, total, err := s.comments.ListChildren(ctx, parentID, opts)
	if err != nil {
		return nil, utils.Internal(err, "failed to fetch replies")
	}
	return paginated(comments, total, opts), nil
}

// GetFullNestedCount counts all descendants of a comment at any depth.
func (s *CommentService) GetFullNestedCount(ctx context.Context, commentID string) (int64, error) {
	if err := s.requireComment(ctx, commentID); err != nil {
		return 0, err
	}

	var (
		count int64
		err   error
	)
	if s.countStrategy == CountStrategyWalk {
		count, err = s.comments.CountDescendantsWalk(ctx, commentID)
	} else {
		count, err = s.comments.CountDescendants(ctx, commentID)
	}
	if err != nil {
		return 0, utils.Internal(err, "failed to count replies")
	}
	return count, nil
}

func (s *CommentService) GetComment(ctx context.Context, commentID string) (*models.Comment, error) {
	comment, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		return nil, notFoundOr(err, "comment %s not found", commentID)
	}
	return comment, nil
}

// GetCommentLikers lists the users who liked a comment.
func (s *CommentService) GetCommentLikers(ctx context.Context, commentID string, page, limit int) ([]models.UserSummary, int64, error) {
	if err := s.requireComment(ctx, commentID); err != nil {
		return nil, 0, err
	}
	users, total, err := s.comments.ListLikers(ctx, commentID, page, limit)
	if err != nil {
		return nil, 0, utils.Internal(err, "failed to fetch likes")
	}

	summaries := make([]models.UserSummary, 0, len(users))
	for _, u := range users {
		summaries = append(summaries, u.Summary())
	}
	return summaries, total, nil
}

// GetPostCommentCount counts every comment on a post regardless of depth.
func (s *CommentService) GetPostCommentCount(ctx context.Context, postID string) (int64, error) {
	if _, err := s.posts.FindByID(ctx, postID); err != nil {
		return 0, notFoundOr(err, "post %s not found", postID)
	}
	count, err := s.comments.CountByPost(ctx, postID)
	if err != nil {
		return 0, utils.Internal(err, "failed to count comments")
	}
	return count, nil
}

// AddRootComment creates a top-level comment and notifies the post author.
func (s *CommentService) AddRootComment(ctx context.Context, userID, postID, content string) (*models.Comment, error) {
	content, err := utils.CleanComment(content)
	if err != nil {
		return nil, err
	}
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, notFoundOr(err, "post %s not found", postID)
	}

	comment, err := s.create(ctx, userID, postID, nil, content)
	if err != nil {
		return nil, err
	}

	s.notifier.Dispatch(models.PostCommentNotification(userID, post.AuthorID, postID))
	return comment, nil
}

// AddNestedComment replies to parentID, which must be a comment on the same
// post, and notifies the parent's author.
func (s *CommentService) AddNestedComment(ctx context.Context, userID, postID, parentID, content string) (*models.Comment, error) {
	content, err := utils.CleanComment(content)
	if err != nil {
		return nil, err
	}
	if postID == "" {
		return nil, utils.Validation("postId is required")
	}

	parent, err := s.comments.FindByID(ctx, parentID)
	if err != nil {
		return nil, notFoundOr(err, "comment %s not found", parentID)
	}
	if parent.PostID != postID {
		return nil, utils.NotFound("comment %s not found on post %s", parentID, postID)
	}

	comment, err := s.create(ctx, userID, postID, &parent.ID, content)
	if err != nil {
		return nil, err
	}

	s.notifier.Dispatch(models.CommentReplyNotification(userID, parent.UserID, parent.ID))
	return comment, nil
}

func (s *CommentService) create(ctx context.Context, userID, postID string, parentID *string, content string) (*models.Comment, error) {
	now := s.now()
	comment := &models.Comment{
		ID:        uuid.New().String(),
		PostID:    postID,
		UserID:    userID,
		ParentID:  parentID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, utils.Internal(err, "failed to create comment")
	}

	created, err := s.comments.FindByID(ctx, comment.ID)
	if err != nil {
		s.logger.Warn("reload created comment", "comment_id", comment.ID, "error", err)
		return comment, nil
	}
	return created, nil
}

// UpdateCommentContent replaces a comment's text. Ownership is checked by
// the caller.
func (s *CommentService) UpdateCommentContent(ctx context.Context, commentID, content string) (*models.Comment, error) {
	content, err := utils.CleanComment(content)
	if err != nil {
		return nil, err
	}
	if err := s.comments.UpdateContent(ctx, commentID, content, s.now()); err != nil {
		return nil, notFoundOr(err, "comment %s not found", commentID)
	}
	return s.GetComment(ctx, commentID)
}

// DeleteComment removes one comment, re-attaching its replies to its parent,
// or with cascade the whole subtree.
func (s *CommentService) DeleteComment(ctx context.Context, commentID string, cascade bool) (*models.CommentDeleteResult, error) {
	var (
		result *models.CommentDeleteResult
		err    error
	)
	if cascade {
		result, err = s.comments.DeleteSubtree(ctx, commentID)
	} else {
		result, err = s.comments.Delete(ctx, commentID)
	}
	if err != nil {
		return nil, notFoundOr(err, "comment %s not found", commentID)
	}

	s.logger.Info("comment deleted", "comment_id", commentID, "cascade", cascade,
		"deleted", result.Deleted, "reattached", result.Reattached)
	return result, nil
}

// AddCommentLike likes a comment once per user and notifies its author.
func (s *CommentService) AddCommentLike(ctx context.Context, userID, commentID string) error {
	comment, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		return notFoundOr(err, "comment %s not found", commentID)
	}

	if err := s.comments.AddLike(ctx, userID, commentID); err != nil {
		if errors.Is(err, repositories.ErrAlreadyExists) {
			return utils.Conflict("comment already liked")
		}
		return utils.Internal(err, "failed to like comment")
	}

	s.notifier.Dispatch(models.CommentLikeNotification(userID, comment.UserID, commentID))
	return nil
}

func (s *CommentService) RemoveCommentLike(ctx context.Context, userID, commentID string) error {
	if err := s.comments.RemoveLike(ctx, userID, commentID); err != nil {
		return notFoundOr(err, "like not found")
	}
	return nil
}

// IsOwner reports whether userID wrote the comment.
func (s *CommentService) IsOwner(ctx context.Context, commentID, userID string) (bool, error) {
	comment, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		return false, notFoundOr(err, "comment %s not found", commentID)
	}
	return comment.UserID == userID, nil
}

func (s *CommentService) requireComment(ctx context.Context, commentID string) error {
	exists, err := s.comments.Exists(ctx, commentID)
	if err != nil {
		return utils.Internal(err, "failed to load comment")
	}
	if !exists {
		return utils.NotFound("comment %s not found", commentID)
	}
	return nil
}
