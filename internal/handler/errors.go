package handler

import (
	"errors"
	"net/http"

	"github.com/JabulaniUsen/new-leenk/internal/transport/httpdto"
	leenk_errors "github.com/JabulaniUsen/new-leenk/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, leenk_errors.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
	case errors.Is(err, leenk_errors.ErrUnauthorized):
		c.JSON(http.StatusForbidden, httpdto.NewErrorResponse("forbidden", "FORBIDDEN"))
	case errors.Is(err, leenk_errors.ErrNotFound):
		c.JSON(http.StatusNotFound, httpdto.NewErrorResponse("not found", "NOT_FOUND"))
	case errors.Is(err, leenk_errors.ErrAlreadyExists):
		c.JSON(http.StatusConflict, httpdto.NewErrorResponse("already exists", "ALREADY_EXISTS"))
	case errors.Is(err, leenk_errors.ErrInvalidInput), errors.Is(err, leenk_errors.ErrEmptyMessage):
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse(err.Error(), "INVALID_REQUEST"))
	default:
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse("store error", "STORE_ERROR"))
	}
}

func parseUUID(value string) (uuid.UUID, error) {
	return uuid.Parse(value)
}
