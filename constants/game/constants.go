package game_constants

import "time"

// Round/roster limits
const MinPlayersToStart = 2
const DefaultMaxPlayers = 6
const DefaultTotalRounds = 5
const MaxLobbyEvents = 50

// Game modes
const (
	GameModeNormal = "normal"
	GameModeMayhem = "mayhem"
)

// Phase durations. Each phase auto-advances when its timer expires,
// even if some players never acted.
const (
	QUESTION_TIMEOUT       = 90 * time.Second
	VOTING_TIMEOUT         = 60 * time.Second
	VOTE_SELECTION_TIMEOUT = 45 * time.Second
)

// How long a disconnected player keeps their seat before being purged.
const ReconnectGraceWindow = 30 * time.Second

// TTL for room snapshots in Redis
const RoomSnapshotTTL = 24 * time.Hour

// Timestamp backdate applied when entering the question phase, so the
// client countdown never starts ahead of the reveal animation.
const QuestionPhaseBackdate = 2 * time.Second
