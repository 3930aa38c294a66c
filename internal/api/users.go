package api

import (
	"net/http"

	"bookstore-service/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) getProfile(c *gin.Context) {
	p := principalFrom(c)

	user, err := h.users.GetProfile(c.Request.Context(), p.UserID)
	if err != nil {
		respondError(c, err, "Failed to fetch user profile")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) updateProfile(c *gin.Context) {
	p := principalFrom(c)

	var req service.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Username and email are required")
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), p.UserID, &req)
	if err != nil {
		respondError(c, err, "Failed to update user profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully", "user": user})
}

func (h *Handler) changePassword(c *gin.Context) {
	p := principalFrom(c)

	var req service.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Current password and new password are required")
		return
	}

	if err := h.users.ChangePassword(c.Request.Context(), p.UserID, &req); err != nil {
		respondError(c, err, "Failed to change password")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}
