package handlers

import (
	"io"
	"time"

	"battleship/internal/ws"

	"github.com/gin-gonic/gin"
)

const sseKeepAlive = 15 * time.Second

// Events streams the caller's masked view over server-sent events until the
// client goes away.
func (h *Handler) Events(c *gin.Context) {
	gameID := c.Param("id")
	sub, view, err := h.subscribe(c, gameID, getPlayerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	defer h.Hub.Unsubscribe(sub)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	c.SSEvent(ws.MsgConnected, ws.ConnectedMessage(gameID))
	c.SSEvent(ws.MsgGameUpdate, ws.UpdateMessage(view))
	c.Writer.Flush()

	keepAlive := time.NewTicker(sseKeepAlive)
	defer keepAlive.Stop()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case <-sub.Done():
			return false
		case msg := <-sub.Updates():
			c.SSEvent(msg.Type, msg)
			return true
		case <-keepAlive.C:
			c.SSEvent(ws.MsgPing, gin.H{"time": time.Now().Unix()})
			return true
		}
	})
}
