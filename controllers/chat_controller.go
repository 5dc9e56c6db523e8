package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/joki-chat/config"
	"github.com/Windi-Fikriyansyah/joki-chat/middleware"
	"github.com/Windi-Fikriyansyah/joki-chat/models"
	"github.com/Windi-Fikriyansyah/joki-chat/utils"
)

// CreateConversationRequest represents the request body for starting a conversation
type CreateConversationRequest struct {
	SellerID  string `json:"seller_id" binding:"required"`
	ProductID *uint  `json:"product_id"`
}

// SendMessageRequest represents the request body for sending a message
type SendMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

// defaultMessagePageSize bounds a message history page when the client
// does not pass an explicit limit
const defaultMessagePageSize = 50

// ListConversations handles GET /api/v1/chat/conversations - lists the
// session user's conversations, newest activity first
func ListConversations(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	db := config.GetDB()
	var conversations []models.Conversation
	if err := db.Where("client_id = ? OR freelancer_id = ?", userID, userID).
		Preload("Client").
		Preload("Freelancer").
		Order("last_message_at DESC").
		Find(&conversations).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch conversations")
		return
	}

	// Fill the per-viewer computed fields: preview of the newest message
	// and how many of the other party's messages are still unread
	for i := range conversations {
		var last models.Message
		if err := db.Where("conversation_id = ?", conversations[i].ID).
			Order("created_at DESC, id DESC").
			First(&last).Error; err == nil {
			conversations[i].LastMessagePreview = last.Text
		}

		var unread int64
		if err := db.Model(&models.Message{}).
			Where("conversation_id = ? AND sender_id <> ? AND is_read = ?", conversations[i].ID, userID, false).
			Count(&unread).Error; err != nil {
			utils.RespondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to count unread messages")
			return
		}
		conversations[i].UnreadCount = unread
	}

	utils.RespondData(c, http.StatusOK, conversations)
}

// CreateConversation handles POST /api/v1/chat/conversations - finds or
// creates the conversation between the session user and a seller
func CreateConversation(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	var req CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data")
		return
	}

	if req.SellerID == userID {
		utils.RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Cannot start a conversation with yourself")
		return
	}

	db := config.GetDB()

	// Verify the seller exists
	var seller models.User
	if err := db.First(&seller, "id = ?", req.SellerID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, "USER_NOT_FOUND", "Seller not found")
		return
	}

	// One thread per pair of people regardless of who opened it; product is
	// informational
	var conversation models.Conversation
	err = db.Where("(client_id = ? AND freelancer_id = ?) OR (client_id = ? AND freelancer_id = ?)",
		userID, req.SellerID, req.SellerID, userID).
		First(&conversation).Error
	switch {
	case err == nil:
		utils.RespondData(c, http.StatusOK, conversation)
		return
	case err != gorm.ErrRecordNotFound:
		utils.RespondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to look up conversation")
		return
	}

	conversation = models.Conversation{
		ClientID:      userID,
		FreelancerID:  req.SellerID,
		ProductID:     req.ProductID,
		LastMessageAt: time.Now(),
	}
	if err := db.Create(&conversation).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create conversation")
		return
	}

	utils.RespondData(c, http.StatusCreated, conversation)
}

// ListMessages handles GET /api/v1/chat/conversations/:id/messages - returns
// an ascending page of the newest messages and marks the other party's
// messages as read
func ListMessages(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	conversation, ok := loadParticipantConversation(c, userID)
	if !ok {
		return
	}

	limit := defaultMessagePageSize
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	// Fetch the newest page, then reverse into ascending transcript order
	db := config.GetDB()
	var page []models.Message
	if err := db.Where("conversation_id = ?", conversation.ID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&page).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch messages")
		return
	}
	for i, j := 0, len(page)-1; i < j; i, j = i+1, j-1 {
		page[i], page[j] = page[j], page[i]
	}

	// Opening a conversation resets its unread state server-side
	if err := db.Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND is_read = ?", conversation.ID, userID, false).
		Update("is_read", true).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to mark messages read")
		return
	}

	utils.RespondData(c, http.StatusOK, page)
}

// SendMessage handles POST /api/v1/chat/conversations/:id/messages - appends
// a text message to the conversation
func SendMessage(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	conversation, ok := loadParticipantConversation(c, userID)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data")
		return
	}

	db := config.GetDB()
	message := models.Message{
		ConversationID: conversation.ID,
		SenderID:       userID,
		Kind:           models.KindText,
		Text:           req.Text,
	}
	if err := db.Create(&message).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create message")
		return
	}

	if err := db.Model(&conversation).Update("last_message_at", message.CreatedAt).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update conversation")
		return
	}

	utils.RespondData(c, http.StatusCreated, message)
}

// UnreadCount handles GET /api/v1/chat/unread-count - returns the total
// number of unread messages addressed to the session user
func UnreadCount(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	db := config.GetDB()
	var count int64
	if err := db.Model(&models.Message{}).
		Joins("JOIN conversations ON conversations.id = messages.conversation_id").
		Where("(conversations.client_id = ? OR conversations.freelancer_id = ?)", userID, userID).
		Where("messages.sender_id <> ? AND messages.is_read = ?", userID, false).
		Count(&count).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to count unread messages")
		return
	}

	utils.RespondData(c, http.StatusOK, count)
}

// loadParticipantConversation fetches the conversation in the :id URL
// parameter and verifies the user participates in it. Responds with the
// appropriate error envelope and returns ok=false when it does not.
func loadParticipantConversation(c *gin.Context, userID string) (models.Conversation, bool) {
	conversationID := c.Param("id")
	if conversationID == "" {
		utils.RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Conversation ID is required")
		return models.Conversation{}, false
	}

	db := config.GetDB()
	var conversation models.Conversation
	if err := db.First(&conversation, "id = ?", conversationID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, "CONVERSATION_NOT_FOUND", "Conversation not found")
		return models.Conversation{}, false
	}

	if !conversation.HasParticipant(userID) {
		utils.RespondError(c, http.StatusForbidden, "FORBIDDEN", "You do not have access to this conversation")
		return models.Conversation{}, false
	}

	return conversation, true
}
