package handlers

import (
	"battleship/internal/game"
	"battleship/internal/http/middleware"
	"battleship/internal/service"
	"battleship/internal/ws"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Games         *service.GameService
	Hub           *ws.Hub
	AllowedOrigin string
}

func NewHandler(games *service.GameService, hub *ws.Hub, allowedOrigin string) *Handler {
	return &Handler{
		Games:         games,
		Hub:           hub,
		AllowedOrigin: allowedOrigin,
	}
}

// getPlayerID reads the player id set by the JWT middleware.
func getPlayerID(c *gin.Context) string {
	return middleware.PlayerID(c)
}

// subscribe registers playerID for pushes on gameID and returns the view to
// start from. The view is read after subscribing, so a move committed in
// between is either in the view or delivered to the subscriber.
func (h *Handler) subscribe(c *gin.Context, gameID, playerID string) (*ws.Subscriber, *game.View, error) {
	view, err := h.Games.State(c.Request.Context(), gameID, playerID)
	if err != nil {
		return nil, nil, err
	}

	sub := h.Hub.Subscribe(gameID, view.You)
	view, err = h.Games.State(c.Request.Context(), gameID, playerID)
	if err != nil {
		h.Hub.Unsubscribe(sub)
		return nil, nil, err
	}
	return sub, view, nil
}
