package handlers

import (
	"net/http"

	"battleship/internal/logger"
	"battleship/internal/service"
	"battleship/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// WS upgrades to a websocket that pushes the caller's view of ?game=.
func (h *Handler) WS(c *gin.Context) {
	// JWT from query
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
		return
	}

	playerID, err := service.ParseJWT(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	gameID := c.Query("game")
	if gameID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "game required"})
		return
	}

	sub, view, err := h.subscribe(c, gameID, playerID)
	if err != nil {
		respondError(c, err)
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if h.AllowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == h.AllowedOrigin
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Hub.Unsubscribe(sub)
		logger.Warn("ws upgrade error", "error", err)
		return
	}

	client := ws.NewClient(playerID, conn, h.Hub, sub)
	go client.Run(view)
}
