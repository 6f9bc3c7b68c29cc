package game_flow

import (
	"log"
	"math/rand"
	"time"

	game_constants "github.com/StylizedAce/DaiMaouLiarGame/constants/game"
	redis_models "github.com/StylizedAce/DaiMaouLiarGame/models/redis"
	"github.com/StylizedAce/DaiMaouLiarGame/services/game"
	"github.com/StylizedAce/DaiMaouLiarGame/services/locks"
	"github.com/StylizedAce/DaiMaouLiarGame/services/questions"
	"github.com/StylizedAce/DaiMaouLiarGame/services/redis"
	"github.com/StylizedAce/DaiMaouLiarGame/services/scheduler"
	socketio_types "github.com/StylizedAce/DaiMaouLiarGame/services/socket_io/types"
	socketio_utils "github.com/StylizedAce/DaiMaouLiarGame/services/socket_io/utils"
	gamesync "github.com/StylizedAce/DaiMaouLiarGame/services/sync"
)

// GameFlow bundles every collaborator the room engine needs: the room
// store, the socket server, the phase scheduler, the per-room lock
// registry, the question provider and the optional finished-game archive.
// One instance is built in main and handed to every handler; there is no
// ambient global state.
type GameFlow struct {
	Redis     *redis.RedisClient
	Sio       *socketio_types.SocketServer
	Scheduler *scheduler.PhaseScheduler
	Locks     *locks.Registry
	Questions questions.Provider
	Archive   *gamesync.SyncManager // nil when no database is configured
	Rng       *rand.Rand
}

func New(rc *redis.RedisClient, sio *socketio_types.SocketServer,
	sched *scheduler.PhaseScheduler, lockRegistry *locks.Registry,
	provider questions.Provider, archive *gamesync.SyncManager,
	rng *rand.Rand) *GameFlow {
	return &GameFlow{
		Redis:     rc,
		Sio:       sio,
		Scheduler: sched,
		Locks:     lockRegistry,
		Questions: provider,
		Archive:   archive,
		Rng:       rng,
	}
}

// ArmPhaseTimer schedules the auto-advance for the room's current phase.
// Arming replaces any pending timer, so the manual-transition path and
// the timer path both call this right after a phase change.
func (gf *GameFlow) ArmPhaseTimer(room *redis_models.GameRoom) {
	roomID := room.ID
	round := room.CurrentRound

	switch room.Phase {
	case redis_models.PhaseQuestion:
		gf.Scheduler.Schedule(roomID, game_constants.QUESTION_TIMEOUT, func() {
			gf.AdvanceToVotingIfUndone(roomID, round)
		})
	case redis_models.PhaseVoting:
		gf.Scheduler.Schedule(roomID, game_constants.VOTING_TIMEOUT, func() {
			gf.AdvanceToVoteSelectionIfUndone(roomID, round)
		})
	case redis_models.PhaseVoteSelection:
		gf.Scheduler.Schedule(roomID, game_constants.VOTE_SELECTION_TIMEOUT, func() {
			gf.HandleRoundTransitionIfUndone(roomID, round)
		})
	default:
		gf.Scheduler.Cancel(roomID)
	}
}

// AdvanceToVotingIfUndone ends the question phase unless a faster manual
// transition already did. expectedRound < 0 skips the round check
// (client-driven expiry events don't know the round).
func (gf *GameFlow) AdvanceToVotingIfUndone(roomID string, expectedRound int) {
	mu := gf.Locks.Obtain(roomID)
	mu.Lock()

	room, err := gf.Redis.GetGameRoom(roomID)
	if err != nil {
		// Room deleted while the timer was pending
		log.Printf("[VOTING-ADVANCE-INFO] Room %s not found, dropping timer: %v", roomID, err)
		mu.Unlock()
		return
	}
	if expectedRound >= 0 && room.CurrentRound != expectedRound {
		log.Printf("[VOTING-ADVANCE-WARN] Round mismatch - current: %d, expected: %d. Ignoring stale timeout.",
			room.CurrentRound, expectedRound)
		mu.Unlock()
		return
	}
	if !game.AdvanceToVoting(room, time.Now()) {
		log.Printf("[VOTING-ADVANCE-INFO] Room %s already past question phase, skipping", roomID)
		mu.Unlock()
		return
	}
	if err := gf.Redis.SaveGameRoom(room); err != nil {
		// Abort: never broadcast a state that failed to persist
		log.Printf("[VOTING-ADVANCE-ERROR] Error saving room %s: %v", roomID, err)
		mu.Unlock()
		return
	}
	mu.Unlock()

	socketio_utils.BroadcastRoomState(gf.Sio, room)
	gf.ArmPhaseTimer(room)
}

// AdvanceToVoteSelectionIfUndone ends the voting phase with the same
// stale-timer guard.
func (gf *GameFlow) AdvanceToVoteSelectionIfUndone(roomID string, expectedRound int) {
	mu := gf.Locks.Obtain(roomID)
	mu.Lock()

	room, err := gf.Redis.GetGameRoom(roomID)
	if err != nil {
		log.Printf("[VOTE-SELECT-ADVANCE-INFO] Room %s not found, dropping timer: %v", roomID, err)
		mu.Unlock()
		return
	}
	if expectedRound >= 0 && room.CurrentRound != expectedRound {
		log.Printf("[VOTE-SELECT-ADVANCE-WARN] Round mismatch - current: %d, expected: %d. Ignoring stale timeout.",
			room.CurrentRound, expectedRound)
		mu.Unlock()
		return
	}
	if !game.AdvanceToVoteSelection(room, time.Now()) {
		log.Printf("[VOTE-SELECT-ADVANCE-INFO] Room %s already past voting phase, skipping", roomID)
		mu.Unlock()
		return
	}
	if err := gf.Redis.SaveGameRoom(room); err != nil {
		log.Printf("[VOTE-SELECT-ADVANCE-ERROR] Error saving room %s: %v", roomID, err)
		mu.Unlock()
		return
	}
	mu.Unlock()

	socketio_utils.BroadcastRoomState(gf.Sio, room)
	gf.ArmPhaseTimer(room)
}

// HandleRoundTransitionIfUndone resolves a finished vote_selection phase:
// scores the round, then starts the next round or moves to results.
func (gf *GameFlow) HandleRoundTransitionIfUndone(roomID string, expectedRound int) {
	mu := gf.Locks.Obtain(roomID)
	mu.Lock()

	room, err := gf.Redis.GetGameRoom(roomID)
	if err != nil {
		log.Printf("[ROUND-TRANSITION-INFO] Room %s not found, dropping timer: %v", roomID, err)
		mu.Unlock()
		return
	}
	if expectedRound >= 0 && room.CurrentRound != expectedRound {
		log.Printf("[ROUND-TRANSITION-WARN] Round mismatch - current: %d, expected: %d. Ignoring stale timeout.",
			room.CurrentRound, expectedRound)
		mu.Unlock()
		return
	}

	// Draw the next pair up front; it goes unused when the game ends.
	pair, err := gf.Questions.Draw(room.Language, room.UsedQuestionIDs)
	if err != nil {
		log.Printf("[ROUND-TRANSITION-ERROR] Error drawing question pair for room %s: %v", roomID, err)
		mu.Unlock()
		return
	}

	advanced, finished := game.ResolveRound(room, pair, gf.Rng, time.Now())
	if !advanced {
		log.Printf("[ROUND-TRANSITION-INFO] Room %s not in vote_selection, skipping", roomID)
		mu.Unlock()
		return
	}
	if err := gf.Redis.SaveGameRoom(room); err != nil {
		log.Printf("[ROUND-TRANSITION-ERROR] Error saving room %s: %v", roomID, err)
		mu.Unlock()
		return
	}
	mu.Unlock()

	socketio_utils.BroadcastRoomState(gf.Sio, room)
	gf.ArmPhaseTimer(room)

	if finished {
		log.Printf("[ROUND-TRANSITION] Game over for room %s after round %d", roomID, room.CurrentRound)
		gf.archiveGame(room)
	}
}

// DeleteRoom tears down a room: snapshot, pending timer and lock entry.
// Callers must not hold the room's lock.
func (gf *GameFlow) DeleteRoom(roomID string) {
	gf.Scheduler.Cancel(roomID)
	if err := gf.Redis.DeleteGameRoom(roomID); err != nil {
		log.Printf("[ROOM-DELETE-ERROR] Error deleting room %s: %v", roomID, err)
	}
	gf.Locks.Forget(roomID)
	log.Printf("[ROOM-DELETE] Room %s has been removed", roomID)
}

// archiveGame records a finished game in the archive database, when one
// is configured. Failures are logged and never affect the game.
func (gf *GameFlow) archiveGame(room *redis_models.GameRoom) {
	if gf.Archive == nil {
		return
	}
	if err := gf.Archive.ArchiveFinishedGame(room); err != nil {
		log.Printf("[ARCHIVE-ERROR] Error archiving game %s: %v", room.ID, err)
	}
}
