package handler

import (
	"net/http"

	"github.com/JabulaniUsen/new-leenk/internal/services"
	"github.com/JabulaniUsen/new-leenk/internal/transport/httpdto"
	leenk_errors "github.com/JabulaniUsen/new-leenk/pkg/errors"

	"github.com/gin-gonic/gin"
)

type BroadcastHandler struct {
	service *services.BroadcastService
}

func NewBroadcastHandler(service *services.BroadcastService) *BroadcastHandler {
	return &BroadcastHandler{service: service}
}

func (h *BroadcastHandler) Send(c *gin.Context) {
	businessID, ok := services.BusinessIDFromContext(c.Request.Context())
	if !ok {
		respondError(c, leenk_errors.ErrNotAuthenticated)
		return
	}
	var req httpdto.BroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}
	sent, err := h.service.Send(c.Request.Context(), businessID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.BroadcastResponse{Sent: sent}))
}
