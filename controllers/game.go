package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anyoshi/bingo-live/game"
	"github.com/anyoshi/bingo-live/services"
)

// GameController exposes the user intents over REST. Every handler maps
// 1:1 to a session operation; confirmation flows are carried by explicit
// flags so the confirmation UI stays on the client.
type GameController struct {
	Session *services.Session
}

func NewGameController(s *services.Session) *GameController {
	return &GameController{Session: s}
}

// GetState returns the current game document.
func (gc *GameController) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"state":    gc.Session.State(),
		"autoDraw": gc.Session.AutoDrawRunning(),
	})
}

// Draw performs a single draw.
func (gc *GameController) Draw(c *gin.Context) {
	state, out, err := gc.Session.DrawOne(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ball":      out.Ball,
		"exhausted": out.Exhausted,
		"state":     state,
	})
}

// ToggleAutoDraw starts or stops the automatic draw.
func (gc *GameController) ToggleAutoDraw(c *gin.Context) {
	running, err := gc.Session.ToggleAutoDraw()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"autoDraw": running})
}

// RegisterCard registers or overwrites a card.
func (gc *GameController) RegisterCard(c *gin.Context) {
	var req struct {
		CardID    string `json:"card_id"`
		Numbers   []int  `json:"numbers"`
		Overwrite bool   `json:"overwrite"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := gc.Session.RegisterCard(c.Request.Context(), req.CardID, req.Numbers, req.Overwrite)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"card_id": id})
}

// CardProgress reports the per-card analysis panel data.
func (gc *GameController) CardProgress(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"cards": gc.Session.Progress()})
}

// ChangeConfiguration switches the pool size.
func (gc *GameController) ChangeConfiguration(c *gin.Context) {
	var req struct {
		PoolMax int  `json:"pool_max" binding:"required"`
		Confirm bool `json:"confirm"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	state, err := gc.Session.ChangeConfiguration(c.Request.Context(), req.PoolMax, req.Confirm)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state})
}

// Reset restarts the game, optionally keeping cards.
func (gc *GameController) Reset(c *gin.Context) {
	var req struct {
		KeepCards bool `json:"keep_cards"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	state, err := gc.Session.ResetGame(c.Request.Context(), req.KeepCards)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state})
}

// respondError maps engine and store errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	var verr *game.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": verr.Msg, "kind": verr.Kind})
	case errors.Is(err, game.ErrWinnerAlreadyFound):
		c.JSON(http.StatusConflict, gin.H{"error": "Game already has a winner"})
	case errors.Is(err, game.ErrCardExists):
		c.JSON(http.StatusConflict, gin.H{"error": "Card id already exists; set overwrite to replace it"})
	case errors.Is(err, game.ErrConfirmRequired):
		c.JSON(http.StatusConflict, gin.H{"error": "Drawn balls will be discarded; set confirm to continue"})
	case errors.Is(err, game.ErrUnsupportedPoolSize):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported pool size"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Operation failed"})
	}
}
