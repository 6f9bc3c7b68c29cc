package game

import "errors"

// Validation and not-found errors surfaced to the requesting client as
// structured error events. Race no-ops (stale timers, duplicate submits)
// are deliberately not errors.
var (
	ErrPlayerNotFound   = errors.New("player not found in room")
	ErrGameInProgress   = errors.New("game is already in progress")
	ErrRoomFull         = errors.New("room is full")
	ErrNameTaken        = errors.New("that name is already taken")
	ErrNotHost          = errors.New("only the host can do that")
	ErrNotEnoughPlayers = errors.New("you need at least 2 players to start")
	ErrWrongPhase       = errors.New("action not allowed in the current phase")
	ErrNotDisconnected  = errors.New("player is not disconnected")
	ErrReconnectExpired = errors.New("reconnection time window has expired")
)
