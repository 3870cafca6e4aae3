package game

import "errors"

var (
	ErrInvalidPhase     = errors.New("invalid game phase")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrInvalidPlacement = errors.New("invalid ship placement")
	ErrInvalidAttack    = errors.New("invalid attack")
	ErrGameFull         = errors.New("game is full")
	ErrUnknownPlayer    = errors.New("player is not part of this game")
)
