package handler

import (
	"io"
	"net/http"

	"github.com/JabulaniUsen/new-leenk/internal/storage"
	"github.com/JabulaniUsen/new-leenk/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

const maxUploadBytes = 10 << 20 // 10 MiB

type UploadHandler struct {
	storage *storage.Client
}

func NewUploadHandler(client *storage.Client) *UploadHandler {
	return &UploadHandler{storage: client}
}

// Upload accepts a multipart image and returns its public URL for use as a
// message's image_url.
func (h *UploadHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("missing file", "INVALID_REQUEST"))
		return
	}
	defer file.Close()

	if header.Size > maxUploadBytes {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("file too large", "INVALID_REQUEST"))
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		respondError(c, err)
		return
	}

	contentType := header.Header.Get("Content-Type")
	url, err := h.storage.Upload(c.Request.Context(), data, contentType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"url": url}))
}
