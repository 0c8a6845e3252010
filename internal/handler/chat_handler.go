package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"chesslounge/backend/internal/auth"
	"chesslounge/backend/internal/chat"
	"chesslounge/backend/internal/hub"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ChannelTokenIssuer is implemented by realtime.Centrifugo.
type ChannelTokenIssuer interface {
	ConnectionToken(subject string) (string, error)
}

// region --- DTOs ---

// SendMessageInput is the body of a new chat message.
type SendMessageInput struct {
	Message     string          `json:"message" example:"@ai what is en passant"`
	MessageType string          `json:"messageType" example:"text"`
	GameDetail  json.RawMessage `json:"gameDetail" swaggertype:"object"`
}

// ConnectionTokenResponse carries a real-time connection token.
type ConnectionTokenResponse struct {
	Token string `json:"token"`
}

// endregion

// ChatHandler serves the global chat room.
type ChatHandler struct {
	feed      *chat.Feed
	pipeline  *chat.Pipeline
	tokens    ChannelTokenIssuer
	hub       *hub.Hub
	channel   string
	heartbeat time.Duration
	logger    *zap.Logger
}

func NewChatHandler(feed *chat.Feed, pipeline *chat.Pipeline, tokens ChannelTokenIssuer, h *hub.Hub, channel string, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		feed:      feed,
		pipeline:  pipeline,
		tokens:    tokens,
		hub:       h,
		channel:   channel,
		heartbeat: 25 * time.Second,
		logger:    logger,
	}
}

// GetMessages godoc
// @Summary      List chat messages
// @Description  Returns messages newest first. Pass the previous page's nextCursor as before to page back. The first page honours If-None-Match.
// @Tags         chat
// @Produce      json
// @Param        before  query  int  false  "Return messages older than this id"
// @Param        limit   query  int  false  "Page size (1-60, default 30)"
// @Param        If-None-Match  header  string  false  "ETag of the newest message already held"
// @Success      200  {object}  MessagesResponse
// @Success      304
// @Failure      400  {object}  MessageResponse
// @Failure      500  {object}  MessageResponse
// @Router       /chat/getMessages [get]
func (h *ChatHandler) GetMessages(c *gin.Context) {
	page, err := h.feed.List(c.Request.Context(), c.Query("before"), c.Query("limit"), c.GetHeader("If-None-Match"))
	if err != nil {
		respondChatError(c, h.logger, err, "Failed to fetch messages")
		return
	}

	if page.LatestID != nil {
		c.Header("ETag", chat.ETag(*page.LatestID))
	}
	if page.NotModified {
		c.Status(http.StatusNotModified)
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.JSON(http.StatusOK, NewMessagesResponse(page))
}

// SendMessage godoc
// @Summary      Post a chat message
// @Description  Stores a message and broadcasts it. Messages starting with "@ai " also get an answer from the AI assistant.
// @Tags         chat
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body SendMessageInput true "Message"
// @Success      201  {object}  chat.MessageView
// @Failure      400  {object}  MessageResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      413  {object}  MessageResponse
// @Failure      429  {object}  MessageResponse
// @Failure      500  {object}  MessageResponse
// @Router       /chat/sendMessage [post]
func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID, _ := auth.UserID(c)

	var input SendMessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, MessageResponse{Message: "Message cannot be empty."})
		return
	}

	view, err := h.pipeline.Post(c.Request.Context(), chat.PostInput{
		AuthorID:   userID,
		Body:       input.Message,
		Type:       input.MessageType,
		GameDetail: input.GameDetail,
	})
	if err != nil {
		respondChatError(c, h.logger, err, "Unable to send message right now.")
		return
	}
	c.JSON(http.StatusCreated, view)
}

// GetConnectionToken godoc
// @Summary      Get a real-time connection token
// @Description  Signs a token that lets the client subscribe to the chat channel.
// @Tags         chat
// @Produce      json
// @Success      200  {object}  ConnectionTokenResponse
// @Failure      500  {object}  MessageResponse
// @Router       /chat/get_connection_token [get]
func (h *ChatHandler) GetConnectionToken(c *gin.Context) {
	userID, _ := auth.UserID(c)
	token, err := h.tokens.ConnectionToken(userID)
	if err != nil {
		respondChatError(c, h.logger, err, "Unable to issue connection token")
		return
	}
	c.JSON(http.StatusOK, ConnectionTokenResponse{Token: token})
}

// Stream godoc
// @Summary      Stream chat messages
// @Description  Server-sent events carrying every new message, for clients without the real-time gateway.
// @Tags         chat
// @Produce      text/event-stream
// @Success      200
// @Router       /chat/stream [get]
func (h *ChatHandler) Stream(c *gin.Context) {
	client := make(hub.Client, 16)
	h.hub.Subscribe(h.channel, client)
	defer h.hub.Unsubscribe(h.channel, client)

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case msg, ok := <-client:
			if !ok {
				return false
			}
			c.SSEvent("message", string(msg))
			return true
		case <-ticker.C:
			c.SSEvent("ping", "")
			return true
		}
	})
}
