package httpdto

import "github.com/JabulaniUsen/new-leenk/internal/feed"

type SendMessageRequest struct {
	ConversationID string `json:"conversation_id" binding:"required"`
	Content        string `json:"content"`
	ImageURL       string `json:"image_url"`
	ReplyToID      string `json:"reply_to_id"`
}

type CustomerSendMessageRequest struct {
	ConversationID string `json:"conversation_id" binding:"required"`
	CustomerEmail  string `json:"customer_email" binding:"required,email"`
	Content        string `json:"content"`
	ImageURL       string `json:"image_url"`
	ReplyToID      string `json:"reply_to_id"`
}

type EditMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

type PageResponse struct {
	Messages   []feed.MessageRecord `json:"messages"`
	NextCursor string               `json:"next_cursor,omitempty"`
	HasMore    bool                 `json:"has_more"`
}
