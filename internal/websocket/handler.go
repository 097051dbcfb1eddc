package websocket

import (
	"context"
	"net/http"

	"github.com/JabulaniUsen/new-leenk/internal/feed"
	"github.com/JabulaniUsen/new-leenk/internal/services"
	"github.com/JabulaniUsen/new-leenk/internal/transport/httpdto"
	"github.com/JabulaniUsen/new-leenk/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Handler upgrades HTTP requests and bridges the change feed onto the socket.
// Each connection holds its own feed subscription for its scope.
type Handler struct {
	auth *services.AuthService
	feed *feed.Feed
	log  *logger.Logger
}

func NewHandler(auth *services.AuthService, f *feed.Feed, log *logger.Logger) *Handler {
	return &Handler{auth: auth, feed: f, log: log}
}

// ConnectBusiness streams every change across the authenticated business's
// conversations. The token rides the query string because browser WebSocket
// clients cannot set headers.
func (h *Handler) ConnectBusiness(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}
	businessID, err := h.auth.ParseToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}
	h.serve(c, feed.BusinessScope(businessID))
}

// ConnectConversation streams one conversation's changes; this is the widget's
// live channel and needs no account.
func (h *Handler) ConnectConversation(c *gin.Context) {
	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid conversation id", "INVALID_REQUEST"))
		return
	}
	h.serve(c, feed.ConversationScope(conversationID))
}

func (h *Handler) serve(c *gin.Context, scope feed.Scope) {
	sub, err := h.feed.Subscribe(c.Request.Context(), scope)
	if err != nil {
		h.log.Errorf("websocket: subscribe %s: %v", scope.Channel(), err)
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse("store error", "STORE_ERROR"))
		return
	}
	defer sub.Close()

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := NewClient(conn)
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	go client.WriteLoop(ctx)
	go func() {
		for ev := range sub.Events() {
			client.Enqueue(ev)
		}
		cancel()
	}()

	client.ReadLoop()
}
