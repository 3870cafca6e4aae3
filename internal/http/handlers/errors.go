package handlers

import (
	"context"
	"errors"
	"net/http"

	"battleship/internal/game"
	"battleship/internal/logger"
	"battleship/internal/repository"

	"github.com/gin-gonic/gin"
)

// respondError maps expected game errors to a status with their message.
// Anything else is logged and reported as a generic failure.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	msg := ""

	switch {
	case errors.Is(err, repository.ErrNotFound):
		status, msg = http.StatusNotFound, "game not found"
	case errors.Is(err, game.ErrUnknownPlayer):
		status, msg = http.StatusForbidden, "you are not a player in this game"
	case errors.Is(err, repository.ErrPreconditionFailed):
		status, msg = http.StatusConflict, "game changed, please try again"
	case errors.Is(err, game.ErrNotYourTurn),
		errors.Is(err, game.ErrInvalidPhase),
		errors.Is(err, game.ErrGameFull):
		status, msg = http.StatusConflict, err.Error()
	case errors.Is(err, game.ErrInvalidPlacement),
		errors.Is(err, game.ErrInvalidAttack):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, context.Canceled):
		c.Abort()
		return
	}

	if status == http.StatusInternalServerError {
		logger.Error("request failed", "path", c.FullPath(), "game_id", c.Param("id"), "error", err)
		msg = "internal error"
	}
	c.JSON(status, gin.H{"error": msg})
}
