package handler

import (
	"net/http"

	"github.com/JabulaniUsen/new-leenk/internal/autoreply"
	"github.com/JabulaniUsen/new-leenk/internal/services"
	"github.com/JabulaniUsen/new-leenk/internal/transport/httpdto"
	leenk_errors "github.com/JabulaniUsen/new-leenk/pkg/errors"
	"github.com/JabulaniUsen/new-leenk/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ConversationHandler struct {
	conversations *services.ConversationService
	trigger       *autoreply.Trigger
	log           *logger.Logger
}

func NewConversationHandler(conversations *services.ConversationService, trigger *autoreply.Trigger, log *logger.Logger) *ConversationHandler {
	return &ConversationHandler{conversations: conversations, trigger: trigger, log: log}
}

// Open is the customer widget's entry point: find or create the conversation
// for (business, customer email) and fire the one-shot welcome trigger.
func (h *ConversationHandler) Open(c *gin.Context) {
	var req httpdto.OpenConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}
	businessID, err := parseUUID(req.BusinessID)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid business_id", "INVALID_REQUEST"))
		return
	}

	conv, _, err := h.conversations.FindOrCreate(c.Request.Context(), businessID, req.CustomerEmail, req.CustomerName, req.CustomerPhone)
	if err != nil {
		respondError(c, err)
		return
	}

	// Best effort: entering the conversation must not fail because the
	// welcome message could not be sent.
	if err := h.trigger.MaybeSendAway(c.Request.Context(), businessID, conv.ID); err != nil {
		h.log.Errorf("conversation: away trigger for %s: %v", conv.ID, err)
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.NewConversationResponse(conv)))
}

func (h *ConversationHandler) List(c *gin.Context) {
	businessID, ok := services.BusinessIDFromContext(c.Request.Context())
	if !ok {
		respondError(c, leenk_errors.ErrNotAuthenticated)
		return
	}

	summaries, err := h.conversations.Summaries(c.Request.Context(), businessID)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]httpdto.SummaryResponse, len(summaries))
	for i, s := range summaries {
		resp[i] = httpdto.NewSummaryResponse(s)
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(resp))
}

func (h *ConversationHandler) Get(c *gin.Context) {
	businessID, conversationID, ok := h.authedConversation(c)
	if !ok {
		return
	}
	conv, err := h.conversations.Get(c.Request.Context(), businessID, conversationID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.NewConversationResponse(conv)))
}

func (h *ConversationHandler) Pin(c *gin.Context) {
	businessID, conversationID, ok := h.authedConversation(c)
	if !ok {
		return
	}
	var req httpdto.PinConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}
	if err := h.conversations.SetPinned(c.Request.Context(), businessID, conversationID, req.Pinned); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}

func (h *ConversationHandler) UpdateProfile(c *gin.Context) {
	businessID, conversationID, ok := h.authedConversation(c)
	if !ok {
		return
	}
	var req httpdto.UpdateCustomerProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}
	conv, err := h.conversations.UpdateProfile(c.Request.Context(), businessID, conversationID, req.CustomerName, req.CustomerPhone)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.NewConversationResponse(conv)))
}

func (h *ConversationHandler) MarkRead(c *gin.Context) {
	businessID, conversationID, ok := h.authedConversation(c)
	if !ok {
		return
	}
	updated, err := h.conversations.MarkRead(c.Request.Context(), businessID, conversationID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"updated": updated}))
}

func (h *ConversationHandler) Delete(c *gin.Context) {
	businessID, conversationID, ok := h.authedConversation(c)
	if !ok {
		return
	}
	if err := h.conversations.Delete(c.Request.Context(), businessID, conversationID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}

func (h *ConversationHandler) authedConversation(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	businessID, authed := services.BusinessIDFromContext(c.Request.Context())
	if !authed {
		respondError(c, leenk_errors.ErrNotAuthenticated)
		return uuid.Nil, uuid.Nil, false
	}
	conversationID, err := parseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid conversation id", "INVALID_REQUEST"))
		return uuid.Nil, uuid.Nil, false
	}
	return businessID, conversationID, true
}
