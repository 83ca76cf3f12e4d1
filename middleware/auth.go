package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"vastconnect-api/utils"
)

// UserIDKey is the gin context key holding the authenticated user's ID.
const UserIDKey = "user_id"

// AuthMiddleware accepts an HS256 token from the Authorization header or,
// for WebSocket upgrades, the token query parameter.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			abortUnauthorized(c, "authorization token required")
			return
		}

		userID, err := ParseToken(token, secret)
		if err != nil {
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// ParseToken validates a token and returns its user ID, read from the
// user_id claim or, failing that, sub.
func ParseToken(token, secret string) (string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", jwt.ErrTokenInvalidClaims
	}
	if userID, _ := claims["user_id"].(string); userID != "" {
		return userID, nil
	}
	if sub, _ := claims["sub"].(string); sub != "" {
		return sub, nil
	}
	return "", jwt.ErrTokenInvalidClaims
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(header[len("Bearer "):])
	}
	return c.Query("token")
}

func abortUnauthorized(c *gin.Context, message string) {
	utils.SendAppError(c, utils.Unauthorized("%s", message))
	c.Abort()
}

// OwnershipChecker reports whether a user wrote a comment.
type OwnershipChecker interface {
	IsOwner(ctx context.Context, commentID, userID string) (bool, error)
}

// RequireCommentOwner lets the request through only when the authenticated
// user wrote the comment named by the :id path parameter.
func RequireCommentOwner(checker OwnershipChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, err := checker.IsOwner(c.Request.Context(), c.Param("id"), c.GetString(UserIDKey))
		if err != nil {
			utils.SendAppError(c, err)
			c.Abort()
			return
		}
		if !owner {
			utils.SendAppError(c, utils.Forbidden("you can only modify your own comments"))
			c.Abort()
			return
		}
		c.Next()
	}
}
