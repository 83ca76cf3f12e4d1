package controllers

import (
	"github.com/gin-gonic/gin"
	"vastconnect-api/middleware"
	"vastconnect-api/services"
	"vastconnect-api/utils"
)

// SocialController serves post likes, follows and realm membership.
type SocialController struct {
	social *services.SocialService
}

func NewSocialController(social *services.SocialService) *SocialController {
	return &SocialController{social: social}
}

func (sc *SocialController) LikePost(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)
	if err := sc.social.LikePost(c.Request.Context(), userID, c.Param("id")); err != nil {
		utils.SendAppError(c, err)
		return
	}
	utils.SendCreated(c, "Post liked successfully", nil)
}

func (sc *SocialController) UnlikePost(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)
	if err := sc.social.UnlikePost(c.Request.Context(), userID, c.Param("id")); err != nil {
		utils.SendAppError(c, err)
		return
	}
	utils.SendSuccess(c, "Post unliked successfully", nil)
}

func (sc *SocialController) FollowUser(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)
	if err := sc.social.Follow(c.Request.Context(), userID, c.Param("id")); err != nil {
		utils.SendAppError(c, err)
		return
	}
	utils.SendCreated(c, "User followed successfully", nil)
}

func (sc *SocialController) UnfollowUser(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)
	if err := sc.social.Unfollow(c.Request.Context(), userID, c.Param("id")); err != nil {
		utils.SendAppError(c, err)
		return
	}
	utils.SendSuccess(c, "User unfollowed successfully", nil)
}

func (sc *SocialController) JoinRealm(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)
	if err := sc.social.JoinRealm(c.Request.Context(), userID, c.Param("id")); err != nil {
		utils.SendAppError(c, err)
		return
	}
	utils.SendCreated(c, "Joined realm successfully", nil)
}

func (sc *SocialController) LeaveRealm(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)
	if err := sc.social.LeaveRealm(c.Request.Context(), userID, c.Param("id")); err != nil {
		utils.SendAppError(c, err)
		return
	}
	utils.SendSuccess(c, "Left realm successfully", nil)
}
