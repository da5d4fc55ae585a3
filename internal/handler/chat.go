package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type chatResponse struct {
	Response string `json:"response"`
}

// Chat godoc
// @Summary      Chat about Bitcoin
// @Description  Routes the message by intent: news questions return a scored news digest, everything else goes to the assistant model
// @Tags         chat
// @Accept       json
// @Produce      json
// @Param        request  body  chatRequest  true  "Chat message with optional session id"
// @Success      200  {object}  chatResponse
// @Failure      400  {object}  map[string]string
// @Router       /api/chat [post]
func (h *Handler) Chat(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.chat")
	defer span.End()

	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}
	span.SetAttributes(attribute.String("session_id", req.SessionID))

	reply := h.chatService.Reply(ctx, req.SessionID, req.Message)
	c.JSON(http.StatusOK, chatResponse{Response: reply})
}

// Predict godoc
// @Summary      Predict Bitcoin prices
// @Description  Parses the forecast horizon from the message and returns a rendered price forecast
// @Tags         chat
// @Accept       json
// @Produce      json
// @Param        request  body  chatRequest  true  "Prediction request message"
// @Success      200  {object}  chatResponse
// @Failure      400  {object}  map[string]string
// @Router       /api/predict [post]
func (h *Handler) Predict(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.predict")
	defer span.End()

	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	reply := h.predictService.Reply(ctx, req.Message)
	c.JSON(http.StatusOK, chatResponse{Response: reply})
}
