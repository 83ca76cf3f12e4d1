package utils

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPage = 1
	MaxLimit    = 50

	// MaxOffset caps (page-1)*limit so offsets stay within what every
	// backend accepts.
	MaxOffset = math.MaxInt32
)

// ParsePagination reads page and limit from the query string. Absent values
// take the defaults; present values that are not positive integers, or a
// limit above MaxLimit, are rejected.
func ParsePagination(c *gin.Context, defaultLimit int) (page, limit int, err error) {
	page, err = parsePositive(c, "page", DefaultPage)
	if err != nil {
		return 0, 0, err
	}
	limit, err = parsePositive(c, "limit", defaultLimit)
	if err != nil {
		return 0, 0, err
	}
	if limit > MaxLimit {
		return 0, 0, Validation("limit must be at most %d", MaxLimit)
	}
	if err := ValidatePage(page, limit); err != nil {
		return 0, 0, err
	}
	return page, limit, nil
}

// ValidatePage rejects pages whose offset would pass MaxOffset.
func ValidatePage(page, limit int) error {
	if page < 1 {
		return Validation("page must be a positive integer")
	}
	if limit > 0 && page-1 > MaxOffset/limit {
		return Validation("page %d is out of range", page)
	}
	return nil
}

func parsePositive(c *gin.Context, key string, defaultValue int) (int, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return 0, Validation("%s must be a positive integer", key)
	}
	return value, nil
}

func Offset(page, limit int) int {
	return (page - 1) * limit
}

func TotalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// HasMore reports whether rows exist past the given page.
func HasMore(page, limit int, total int64) bool {
	return int64(page)*int64(limit) < total
}
