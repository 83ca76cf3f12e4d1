// File: /routes/routes.go
package routes

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"vastconnect-api/config"
	"vastconnect-api/controllers"
	"vastconnect-api/metrics"
	"vastconnect-api/middleware"
	"vastconnect-api/realtime"
	"vastconnect-api/services"
)

// Dependencies are the long-lived services the HTTP layer calls into.
type Dependencies struct {
	Comments      *services.CommentService
	Social        *services.SocialService
	Notifications *services.NotificationService
	Hub           *realtime.Hub
	Logger        *slog.Logger
}

func SetupRoutes(r *gin.Engine, cfg *config.Config, deps Dependencies) error {
	// Controllers
	commentController := controllers.NewCommentController(deps.Comments)
	socialController := controllers.NewSocialController(deps.Social)
	notificationController := controllers.NewNotificationController(deps.Notifications)
	realtimeController := controllers.NewRealtimeController(deps.Hub, deps.Logger)

	limiter, err := middleware.NewRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst, cfg.RateLimitClients)
	if err != nil {
		return err
	}

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// API version 1
	v1 := r.Group("/api/v1")

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		// Real-time channel, authenticated through ?token=
		protected.GET("/ws", realtimeController.Connect)

		api := protected.Group("/")
		api.Use(limiter.Middleware(), middleware.ValidateJSON())

		ownerOnly := middleware.RequireCommentOwner(deps.Comments)

		// Comment routes
		comments := api.Group("/comments")
		{
			comments.GET("", commentController.GetAllComments)
			comments.GET("/:id", commentController.GetComment)
			comments.PUT("/:id", ownerOnly, commentController.UpdateComment)
			comments.DELETE("/:id", ownerOnly, commentController.DeleteComment)
			comments.GET("/:id/liked", commentController.GetLikers)
			comments.GET("/:id/nested", commentController.GetNestedComments)
			comments.GET("/:id/nested/count", commentController.GetNestedCount)
			comments.POST("/:id/nested", commentController.AddNestedComment)
			comments.POST("/:id/like", commentController.LikeComment)
			comments.DELETE("/:id/like", commentController.UnlikeComment)
		}

		// Post routes
		posts := api.Group("/posts")
		{
			posts.GET("/:id/comments", commentController.GetRootComments)
			posts.GET("/:id/comments/count", commentController.GetPostCommentCount)
			posts.POST("/:id/comment", commentController.AddRootComment)
			posts.POST("/:id/like", socialController.LikePost)
			posts.DELETE("/:id/like", socialController.UnlikePost)
		}

		// User routes
		users := api.Group("/users")
		{
			users.POST("/:id/follow", socialController.FollowUser)
			users.DELETE("/:id/follow", socialController.UnfollowUser)
		}

		// Realm routes
		realms := api.Group("/realms")
		{
			realms.POST("/:id/join", socialController.JoinRealm)
			realms.DELETE("/:id/join", socialController.LeaveRealm)
		}

		// Notification routes
		notifications := api.Group("/notifications")
		{
			notifications.GET("", notificationController.GetNotifications)
		}
	}

	return nil
}
