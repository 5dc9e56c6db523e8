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

// SubmitReviewRequest represents the request body for reviewing a job offer
type SubmitReviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

// SubmitReview handles POST /api/v1/job-offers/:id/review - records the
// client's rating for a completed offer. At most one review per offer.
func SubmitReview(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	offerID := c.Param("id")
	if offerID == "" {
		utils.RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Job offer ID is required")
		return
	}

	var req SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data")
		return
	}

	if req.Rating < 1 || req.Rating > 5 {
		utils.RespondError(c, http.StatusBadRequest, "INVALID_RATING", "Rating must be between 1 and 5")
		return
	}

	db := config.GetDB()
	var offer models.JobOffer
	if err := db.First(&offer, "id = ?", offerID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, "OFFER_NOT_FOUND", "Job offer not found")
		return
	}

	// Only the client side of the offer may review it
	if offer.ClientID != userID {
		utils.RespondError(c, http.StatusForbidden, "FORBIDDEN", "You do not have permission to review this offer")
		return
	}

	review := models.Review{
		JobOfferID: offer.ID,
		ReviewerID: userID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	}
	if err := db.Create(&review).Error; err != nil {
		// Duplicate submissions hit the unique index on job_offer_id
		// (works with both PostgreSQL and SQLite)
		errMsg := strings.ToLower(err.Error())
		if strings.Contains(errMsg, "duplicate") || strings.Contains(errMsg, "unique") {
			utils.RespondError(c, http.StatusConflict, "ALREADY_REVIEWED", "This offer has already been reviewed")
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create review")
		return
	}

	if err := db.Model(&offer).Update("status", "completed").Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update offer status")
		return
	}

	utils.RespondData(c, http.StatusCreated, review)
}
