package handlers

import (
	"net/http"
	"strconv"

	"battleship/internal/game"

	"github.com/gin-gonic/gin"
)

type placeShipRequest struct {
	ShipType   game.ShipType `json:"ship_type" binding:"required"`
	Row        *int          `json:"row" binding:"required"`
	Col        *int          `json:"col" binding:"required"`
	Horizontal bool          `json:"horizontal"`
}

type attackRequest struct {
	Row *int `json:"row" binding:"required"`
	Col *int `json:"col" binding:"required"`
}

// CreateGame opens a game for the caller. Anonymous callers get a new
// identity and token in the response.
func (h *Handler) CreateGame(c *gin.Context) {
	sess, err := h.Games.CreateGame(c.Request.Context(), getPlayerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sess)
}

func (h *Handler) FindMatch(c *gin.Context) {
	sess, err := h.Games.FindMatch(c.Request.Context(), getPlayerID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if sess.Created {
		status = http.StatusCreated
	}
	c.JSON(status, sess)
}

func (h *Handler) JoinGame(c *gin.Context) {
	sess, err := h.Games.JoinGame(c.Request.Context(), c.Param("id"), getPlayerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *Handler) PlaceShip(c *gin.Context) {
	var req placeShipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ship_type, row and col are required"})
		return
	}

	res, err := h.Games.PlaceShip(c.Request.Context(), c.Param("id"), getPlayerID(c), req.ShipType, *req.Row, *req.Col, req.Horizontal)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Attack(c *gin.Context) {
	var req attackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "row and col are required"})
		return
	}

	res, err := h.Games.Attack(c.Request.Context(), c.Param("id"), getPlayerID(c), *req.Row, *req.Col)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) GetGame(c *gin.Context) {
	view, err := h.Games.State(c.Request.Context(), c.Param("id"), getPlayerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"game": view})
}

// Poll long-polls for a version newer than ?since=.
func (h *Handler) Poll(c *gin.Context) {
	var since int64
	if v := c.Query("since"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "since must be a version number"})
			return
		}
		since = n
	}

	res, err := h.Games.Poll(c.Request.Context(), c.Param("id"), getPlayerID(c), since)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Rematch(c *gin.Context) {
	view, err := h.Games.Rematch(c.Request.Context(), c.Param("id"), getPlayerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"game": view})
}

func (h *Handler) OpenGames(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	games, err := h.Games.OpenGames(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"games": games, "count": len(games)})
}

// MyGames returns the caller's finished games, newest first.
func (h *Handler) MyGames(c *gin.Context) {
	games, err := h.Games.History(c.Request.Context(), getPlayerID(c), 50)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"games": games})
}
