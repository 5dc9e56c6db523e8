package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Windi-Fikriyansyah/joki-chat/config"
	"github.com/Windi-Fikriyansyah/joki-chat/middleware"
	"github.com/Windi-Fikriyansyah/joki-chat/models"
	"github.com/Windi-Fikriyansyah/joki-chat/utils"
)

// UpdateProfileRequest represents the request body for updating a profile
type UpdateProfileRequest struct {
	Name  string `json:"name" binding:"omitempty"`
	Email string `json:"email" binding:"omitempty,email"`
}

// Me handles GET /api/v1/me - returns the session user's profile
func Me(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	db := config.GetDB()
	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, "USER_NOT_FOUND", "User profile not found")
		return
	}

	utils.RespondData(c, http.StatusOK, user)
}

// UpdateMe handles PUT /api/v1/me - edits the session user's profile
func UpdateMe(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data")
		return
	}

	db := config.GetDB()
	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, "USER_NOT_FOUND", "User profile not found")
		return
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != "" {
		user.Email = req.Email
	}

	if err := db.Save(&user).Error; err != nil {
		errMsg := strings.ToLower(err.Error())
		if strings.Contains(errMsg, "duplicate") || strings.Contains(errMsg, "unique") {
			utils.RespondError(c, http.StatusConflict, "EMAIL_TAKEN", "A user with this email already exists")
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update profile")
		return
	}

	utils.RespondData(c, http.StatusOK, user)
}
