package api

import (
	"net/http"
	"time"

	"bookstore-service/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) signup(c *gin.Context) {
	var req service.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Please fill all the fields!")
		return
	}

	user, err := h.auth.Signup(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Something went wrong!")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "User created successfully!", "user": user})
}

func (h *Handler) login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Please provide both email and password")
		return
	}

	result, err := h.auth.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Something went wrong!")
		return
	}

	maxAge := int(time.Until(result.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(authCookie, result.Token, maxAge, "/", "", h.secureCookies, true)

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful!",
		"user": gin.H{
			"id":       result.User.ID,
			"username": result.User.Username,
			"email":    result.User.Email,
			"role":     result.User.Role,
		},
		"token":     result.Token,
		"expiresAt": result.ExpiresAt,
	})
}

func (h *Handler) logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context(), bearerToken(c)); err != nil {
		respondError(c, err, "Failed to log out")
		return
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(authCookie, "", -1, "/", "", h.secureCookies, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful!"})
}
