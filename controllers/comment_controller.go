package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"vastconnect-api/middleware"
	"vastconnect-api/services"
	"vastconnect-api/utils"
)

type CommentController struct {
	comments *services.CommentService
}

func NewCommentController(comments *services.CommentService) *CommentController {
	return &CommentController{comments: comments}
}

type CommentRequest struct {
	Comment string `json:"comment" binding:"required"`
}

type NestedCommentRequest struct {
	PostID  string `json:"postId" binding:"required"`
	Comment string `json:"comment" binding:"required"`
}

type CountResponse struct {
	Count int64 `json:"count"`
}

// listQuery reads paging and sorting from the query string. Sort values are
// validated by the service.
func listQuery(c *gin.Context, defaultLimit int) (services.ListQuery, error) {
	page, limit, err := utils.ParsePagination(c, defaultLimit)
	if err != nil {
		return services.ListQuery{}, err
	}
	return services.ListQuery{
		Page:      page,
		Limit:     limit,
		SortField: c.Query("sortField"),
		SortOrder: c.Query("sortOrder"),
	}, nil
}

func bindBody(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		utils.SendValidationError(c, err.Error())
		return false
	}
	return true
}

func (cc *CommentController) GetAllComments(c *gin.Context) {
	q, err := listQuery(c, 20)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	result, err := cc.comments.GetAllComments(c.Request.Context(), q)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	utils.SendPaginated(c, result.Comments, result.Page, result.Limit, result.Total)
}

func (cc *CommentController) GetComment(c *gin.Context) {
	comment, err := cc.comments.GetComment(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	utils.SendSuccess(c, "Comment retrieved successfully", comment)
}

func (cc *CommentController) UpdateComment(c *gin.Context) {
	var req CommentRequest
	if !bindBody(c, &req) {
		return
	}

	comment, err := cc.comments.UpdateCommentContent(c.Request.Context(), c.Param("id"), req.Comment)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	utils.SendSuccess(c, "Comment updated successfully", comment)
}

func (cc *CommentController) DeleteComment(c *gin.Context) {
	cascade := false
	if raw := c.Query("cascade"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			utils.SendValidationError(c, "cascade must be a boolean")
			return
		}
		cascade = parsed
	}

	result, err := cc.comments.DeleteComment(c.Request.Context(), c.Param("id"), cascade)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	utils.SendSuccess(c, "Comment deleted successfully", result)
}

func (cc *CommentController) GetLikers(c *gin.Context) {
	page, limit, err := utils.ParsePagination(c, 20)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	users, total, err := cc.comments.GetCommentLikers(c.Request.Context(), c.Param("id"), page, limit)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	utils.SendPaginated(c, users, page, limit, total)
}

func (cc *CommentController) GetNestedComments(c *gin.Context) {
	q, err := listQuery(c, services.DefaultNestedLimit)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	result, err := cc.comments.GetNestedComments(c.Request.Context(), c.Param("id"), q)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	utils.SendPaginated(c, result.Comments, result.Page, result.Limit, result.Total)
}

func (cc *CommentController) GetNestedCount(c *gin.Context) {
	count, err := cc.comments.GetFullNestedCount(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	utils.SendSuccess(c, "Nested comment count retrieved successfully", CountResponse{Count: count})
}

func (cc *CommentController) AddNestedComment(c *gin.Context) {
	var req NestedCommentRequest
	if !bindBody(c, &req) {
		return
	}

	userID := c.GetString(middleware.UserIDKey)
	comment, err := cc.comments.AddNestedComment(c.Request.Context(), userID, req.PostID, c.Param("id"), req.Comment)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	utils.SendCreated(c, "Reply added successfully", comment)
}

func (cc *CommentController) LikeComment(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)
	if err := cc.comments.AddCommentLike(c.Request.Context(), userID, c.Param("id")); err != nil {
		utils.SendAppError(c, err)
		return
	}
	utils.SendCreated(c, "Comment liked successfully", nil)
}

func (cc *CommentController) UnlikeComment(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)
	if err := cc.comments.RemoveCommentLike(c.Request.Context(), userID, c.Param("id")); err != nil {
		utils.SendAppError(c, err)
		return
	}
	utils.SendSuccess(c, "Comment unliked successfully", nil)
}

func (cc *CommentController) GetRootComments(c *gin.Context) {
	q, err := listQuery(c, services.DefaultRootLimit)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	result, err := cc.comments.GetRootComments(c.Request.Context(), c.Param("id"), q)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	utils.SendPaginated(c, result.Comments, result.Page, result.Limit, result.Total)
}

func (cc *CommentController) GetPostCommentCount(c *gin.Context) {
	count, err := cc.comments.GetPostCommentCount(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	utils.SendSuccess(c, "Comment count retrieved successfully", CountResponse{Count: count})
}

func (cc *CommentController) AddRootComment(c *gin.Context) {
	var req CommentRequest
	if !bindBody(c, &req) {
		return
	}

	userID := c.GetString(middleware.UserIDKey)
	comment, err := cc.comments.AddRootComment(c.Request.Context(), userID, c.Param("id"), req.Comment)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	utils.SendCreated(c, "Comment added successfully", comment)
}
