package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Windi-Fikriyansyah/joki-chat/models"
)

// ListConversations fetches the session user's conversations, newest
// activity first.
func (c *Client) ListConversations(ctx context.Context) ([]models.Conversation, error) {
	var conversations []models.Conversation
	if err := c.do(ctx, http.MethodGet, "/chat/conversations", nil, &conversations); err != nil {
		return nil, err
	}
	return conversations, nil
}

// CreateConversation finds or creates the conversation with the given
// seller, optionally tied to a product listing.
func (c *Client) CreateConversation(ctx context.Context, sellerID string, productID *uint) (models.Conversation, error) {
	body := map[string]interface{}{"seller_id": sellerID}
	if productID != nil {
		body["product_id"] = *productID
	}

	var conversation models.Conversation
	if err := c.do(ctx, http.MethodPost, "/chat/conversations", body, &conversation); err != nil {
		return models.Conversation{}, err
	}
	return conversation, nil
}

// ListMessages fetches the newest page of a conversation's history in
// ascending transcript order. Fetching also marks the conversation read
// server-side. Message kinds are normalized so an unrecognized kind renders
// as an unsupported message instead of failing.
func (c *Client) ListMessages(ctx context.Context, conversationID string, limit int) ([]models.Message, error) {
	path := fmt.Sprintf("/chat/conversations/%s/messages", url.PathEscape(conversationID))
	if limit > 0 {
		path = fmt.Sprintf("%s?limit=%d", path, limit)
	}

	var messages []models.Message
	if err := c.do(ctx, http.MethodGet, path, nil, &messages); err != nil {
		return nil, err
	}
	for i := range messages {
		messages[i].Kind = models.NormalizeKind(string(messages[i].Kind))
	}
	return messages, nil
}

// SendMessage appends a text message to the conversation and returns the
// server-confirmed copy with its issued id and timestamp.
func (c *Client) SendMessage(ctx context.Context, conversationID, text string) (models.Message, error) {
	path := fmt.Sprintf("/chat/conversations/%s/messages", url.PathEscape(conversationID))

	var message models.Message
	if err := c.do(ctx, http.MethodPost, path, map[string]string{"text": text}, &message); err != nil {
		return models.Message{}, err
	}
	message.Kind = models.NormalizeKind(string(message.Kind))
	return message, nil
}

// UnreadCount fetches the total number of unread messages for the session.
func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	var count int
	if err := c.do(ctx, http.MethodGet, "/chat/unread-count", nil, &count); err != nil {
		return 0, err
	}
	return count, nil
}

// SubmitReview posts the client's rating for a job offer.
func (c *Client) SubmitReview(ctx context.Context, offerID string, rating int, comment string) (models.Review, error) {
	path := fmt.Sprintf("/job-offers/%s/review", url.PathEscape(offerID))
	body := map[string]interface{}{"rating": rating, "comment": comment}

	var review models.Review
	if err := c.do(ctx, http.MethodPost, path, body, &review); err != nil {
		return models.Review{}, err
	}
	return review, nil
}

// Me fetches the session user's profile.
func (c *Client) Me(ctx context.Context) (models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// UpdateMe edits the session user's profile. Empty fields are left as is.
func (c *Client) UpdateMe(ctx context.Context, name, email string) (models.User, error) {
	body := map[string]string{}
	if name != "" {
		body["name"] = name
	}
	if email != "" {
		body["email"] = email
	}

	var user models.User
	if err := c.do(ctx, http.MethodPut, "/me", body, &user); err != nil {
		return models.User{}, err
	}
	return user, nil
}
