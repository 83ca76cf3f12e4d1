// File: /utils/response.go
package utils

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	Total      int64       `json:"total"`
	HasMore    bool        `json:"has_more"`
	TotalPages int         `json:"total_pages"`
}

func SendError(c *gin.Context, status int, err string) {
	c.JSON(status, ErrorResponse{
		Error: err,
		Code:  status,
	})
}

func SendValidationError(c *gin.Context, err string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   string(KindValidation),
		Message: err,
		Code:    http.StatusBadRequest,
	})
}

// SendAppError renders err according to its kind. Internal errors are logged
// and replaced with a generic message.
func SendAppError(c *gin.Context, err error) {
	var appErr *AppError
	if !errors.As(err, &appErr) || appErr.Kind == KindInternal || appErr.Kind == KindDeliveryFailure {
		slog.Error("request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Internal server error",
			Message: "An unexpected error occurred",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	status := appErr.Kind.HTTPStatus()
	c.JSON(status, ErrorResponse{
		Error:   string(appErr.Kind),
		Message: appErr.Message,
		Code:    status,
	})
}

func SendSuccess(c *gin.Context, message string, data interface{}) {
	response := SuccessResponse{
		Message: message,
	}
	if data != nil {
		response.Data = data
	}
	c.JSON(http.StatusOK, response)
}

func SendCreated(c *gin.Context, message string, data interface{}) {
	response := SuccessResponse{
		Message: message,
		Data:    data,
	}
	c.JSON(http.StatusCreated, response)
}

func SendPaginated(c *gin.Context, data interface{}, page, limit int, total int64) {
	totalPages := TotalPages(total, limit)

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:       data,
		Page:       page,
		Limit:      limit,
		Total:      total,
		HasMore:    HasMore(page, limit, total),
		TotalPages: totalPages,
	})
}
