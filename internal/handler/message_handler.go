package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/JabulaniUsen/new-leenk/internal/domain"
	"github.com/JabulaniUsen/new-leenk/internal/feed"
	"github.com/JabulaniUsen/new-leenk/internal/pagination"
	"github.com/JabulaniUsen/new-leenk/internal/services"
	"github.com/JabulaniUsen/new-leenk/internal/transport/httpdto"
	leenk_errors "github.com/JabulaniUsen/new-leenk/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type MessageHandler struct {
	messages *services.MessageService
	pager    *pagination.Engine
}

func NewMessageHandler(messages *services.MessageService, pager *pagination.Engine) *MessageHandler {
	return &MessageHandler{messages: messages, pager: pager}
}

// Send handles a business-authored message; the sender is the authenticated
// business.
func (h *MessageHandler) Send(c *gin.Context) {
	var req httpdto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	businessID, ok := services.BusinessIDFromContext(c.Request.Context())
	if !ok {
		respondError(c, leenk_errors.ErrNotAuthenticated)
		return
	}

	in, err := h.sendInput(req.ConversationID, req.Content, req.ImageURL, req.ReplyToID)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}
	in.SenderType = domain.SenderBusiness
	in.SenderID = businessID

	msg, err := h.messages.Send(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(feed.RecordFromMessage(msg)))
}

// CustomerSend handles the public widget's send path. The customer is
// identified by the conversation's email; their sender id is derived from it.
func (h *MessageHandler) CustomerSend(c *gin.Context) {
	var req httpdto.CustomerSendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	in, err := h.sendInput(req.ConversationID, req.Content, req.ImageURL, req.ReplyToID)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}
	in.SenderType = domain.SenderCustomer
	in.SenderID = CustomerSenderID(req.CustomerEmail)

	msg, err := h.messages.Send(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(feed.RecordFromMessage(msg)))
}

// Page serves one page of history, oldest first, with the next cursor.
func (h *MessageHandler) Page(c *gin.Context) {
	conversationID, err := parseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid conversation id", "INVALID_REQUEST"))
		return
	}

	cursor, err := pagination.Decode(c.Query("cursor"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid cursor", "INVALID_REQUEST"))
		return
	}

	page, err := h.pager.FetchPage(c.Request.Context(), conversationID, cursor, pagination.DefaultPageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := httpdto.PageResponse{
		Messages: make([]feed.MessageRecord, len(page.Items)),
		HasMore:  page.HasMore,
	}
	for i, m := range page.Items {
		resp.Messages[i] = feed.RecordFromMessage(m)
	}
	if page.NextCursor != nil {
		raw, err := json.Marshal(page.NextCursor)
		if err != nil {
			respondError(c, err)
			return
		}
		resp.NextCursor = string(raw)
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(resp))
}

func (h *MessageHandler) Edit(c *gin.Context) {
	messageID, err := parseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid message id", "INVALID_REQUEST"))
		return
	}
	var req httpdto.EditMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}
	businessID, ok := services.BusinessIDFromContext(c.Request.Context())
	if !ok {
		respondError(c, leenk_errors.ErrNotAuthenticated)
		return
	}

	msg, err := h.messages.Edit(c.Request.Context(), businessID, messageID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(feed.RecordFromMessage(msg)))
}

func (h *MessageHandler) Delete(c *gin.Context) {
	messageID, err := parseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid message id", "INVALID_REQUEST"))
		return
	}
	businessID, ok := services.BusinessIDFromContext(c.Request.Context())
	if !ok {
		respondError(c, leenk_errors.ErrNotAuthenticated)
		return
	}

	if err := h.messages.Delete(c.Request.Context(), businessID, messageID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}

func (h *MessageHandler) sendInput(conversationID, content, imageURL, replyToID string) (services.SendMessageInput, error) {
	convID, err := parseUUID(conversationID)
	if err != nil {
		return services.SendMessageInput{}, err
	}
	in := services.SendMessageInput{
		ConversationID: convID,
		Content:        content,
		ImageURL:       imageURL,
	}
	if replyToID != "" {
		replyID, err := parseUUID(replyToID)
		if err != nil {
			return services.SendMessageInput{}, err
		}
		in.ReplyToID = &replyID
	}
	return in, nil
}

// CustomerSenderID derives a stable sender id from the customer's email, the
// customer's identity key.
func CustomerSenderID(email string) uuid.UUID {
	email = strings.ToLower(strings.TrimSpace(email))
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(email))
}
