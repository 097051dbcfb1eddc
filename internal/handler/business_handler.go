package handler

import (
	"net/http"

	"github.com/JabulaniUsen/new-leenk/internal/services"
	"github.com/JabulaniUsen/new-leenk/internal/transport/httpdto"
	leenk_errors "github.com/JabulaniUsen/new-leenk/pkg/errors"

	"github.com/gin-gonic/gin"
)

type BusinessHandler struct {
	service *services.BusinessService
}

func NewBusinessHandler(service *services.BusinessService) *BusinessHandler {
	return &BusinessHandler{service: service}
}

func (h *BusinessHandler) Me(c *gin.Context) {
	businessID, ok := services.BusinessIDFromContext(c.Request.Context())
	if !ok {
		respondError(c, leenk_errors.ErrNotAuthenticated)
		return
	}
	biz, err := h.service.Get(c.Request.Context(), businessID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.NewBusinessResponse(biz)))
}

// Public returns the customer-visible slice of a business profile for the
// widget; no auth required.
func (h *BusinessHandler) Public(c *gin.Context) {
	businessID, err := parseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid business id", "INVALID_REQUEST"))
		return
	}
	biz, err := h.service.Get(c.Request.Context(), businessID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{
		"id":            biz.ID,
		"business_name": biz.BusinessName,
		"business_logo": biz.BusinessLogo,
		"online":        biz.Online,
	}))
}

func (h *BusinessHandler) UpdateProfile(c *gin.Context) {
	businessID, ok := services.BusinessIDFromContext(c.Request.Context())
	if !ok {
		respondError(c, leenk_errors.ErrNotAuthenticated)
		return
	}
	var req httpdto.UpdateBusinessProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}
	biz, err := h.service.UpdateProfile(c.Request.Context(), businessID, req.BusinessName, req.Phone, req.Address, req.BusinessLogo)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.NewBusinessResponse(biz)))
}

func (h *BusinessHandler) UpdateAwaySettings(c *gin.Context) {
	businessID, ok := services.BusinessIDFromContext(c.Request.Context())
	if !ok {
		respondError(c, leenk_errors.ErrNotAuthenticated)
		return
	}
	var req httpdto.UpdateAwaySettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}
	biz, err := h.service.UpdateAwaySettings(c.Request.Context(), businessID, req.AwayMessage, req.Enabled)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.NewBusinessResponse(biz)))
}

func (h *BusinessHandler) SetOnline(c *gin.Context) {
	businessID, ok := services.BusinessIDFromContext(c.Request.Context())
	if !ok {
		respondError(c, leenk_errors.ErrNotAuthenticated)
		return
	}
	var req httpdto.SetOnlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}
	if err := h.service.SetOnline(c.Request.Context(), businessID, req.Online); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}
