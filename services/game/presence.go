package game

import (
	"fmt"
	"time"

	game_constants "github.com/StylizedAce/DaiMaouLiarGame/constants/game"
	redis_models "github.com/StylizedAce/DaiMaouLiarGame/models/redis"
)

// DisconnectOutcome tells the transport layer what happened to the room
// after a player dropped, so it can delete snapshots, notify sockets and
// re-arm timers outside this package.
type DisconnectOutcome struct {
	PlayerID   string
	PlayerName string

	// RemovedOutright is set for waiting-phase drops, where the seat is
	// freed immediately instead of entering the grace window.
	RemovedOutright bool

	// SoloKick names the last active player left mid-game; the room is
	// deleted after they are notified.
	SoloKick *redis_models.Player

	// DeleteRoom means the snapshot must be removed instead of saved.
	DeleteRoom bool

	// PhaseAdvanced means the shrunken active roster satisfied the current
	// phase's completion condition and the room moved on; the caller must
	// re-arm the next phase timer.
	PhaseAdvanced bool
}

// HandleDisconnect applies the full disconnect policy to a room snapshot.
//
// Waiting rooms drop the seat immediately. Mid-game the seat survives for
// the grace window with a UI snapshot for rejoin; the player's answer is
// withdrawn only while answers are still hidden (question phase), while
// votes, ready signals and liar-vote casts are removed unconditionally
// since they can be redone after a rejoin.
func HandleDisconnect(room *redis_models.GameRoom, playerID string, now time.Time) (DisconnectOutcome, error) {
	player := room.FindPlayer(playerID)
	if player == nil {
		return DisconnectOutcome{}, ErrPlayerNotFound
	}
	out := DisconnectOutcome{PlayerID: playerID, PlayerName: player.Name}

	if room.Phase == redis_models.PhaseWaiting {
		out.RemovedOutright = true
		room.AppendLobbyEvent(game_constants.MaxLobbyEvents,
			fmt.Sprintf("%s has left the game.", player.Name))
		if _, err := RemovePlayer(room, playerID); err != nil {
			return out, err
		}
		if len(room.Players) == 0 {
			out.DeleteRoom = true
		}
		return out, nil
	}

	// Mark the seat disconnected, keeping it for a possible rejoin.
	_, hadSubmitted := room.Answers[playerID]
	player.Disconnected = true
	player.DisconnectedAt = now.UnixMilli()
	player.SocketID = ""
	player.HadSubmitted = hadSubmitted
	player.WasReady = isReady(room, playerID)
	room.AppendLobbyEvent(game_constants.MaxLobbyEvents,
		fmt.Sprintf("%s has disconnected.", player.Name))

	if room.Phase == redis_models.PhaseQuestion {
		delete(room.Answers, playerID)
	}
	clearPlayerRoundData(room, playerID, false)

	PurgeExpired(room, now)

	active := room.ActivePlayers()
	if len(active) == 0 {
		out.DeleteRoom = true
		return out, nil
	}
	// A solo game cannot continue; notify and tear down. The results
	// screen is exempt so a lone survivor can still read the scores and
	// request a new game.
	if len(active) == 1 && room.Phase != redis_models.PhaseResults {
		out.SoloKick = active[0]
		out.DeleteRoom = true
		return out, nil
	}

	if room.FindPlayer(room.HostID) == nil || room.HostID == playerID {
		reassignHost(room)
	}

	out.PhaseAdvanced = RecheckPhaseCompletion(room, now)
	return out, nil
}

// clearPlayerRoundData withdraws the redoable round inputs of a player:
// legacy vote, ready signal and liar-vote casts, plus the tally entry of
// votes received against them. withAnswer additionally drops a committed
// answer (used for permanent removal, not grace-window disconnects).
func clearPlayerRoundData(room *redis_models.GameRoom, playerID string, withAnswer bool) {
	if withAnswer {
		delete(room.Answers, playerID)
	}
	delete(room.Votes, playerID)
	room.ReadyToVote = removeString(room.ReadyToVote, playerID)
	for target, voters := range room.LiarVotes {
		room.LiarVotes[target] = removeString(voters, playerID)
	}
	delete(room.LiarVotes, playerID)
}

// PurgeExpired permanently removes seats whose grace window has elapsed.
func PurgeExpired(room *redis_models.GameRoom, now time.Time) []*redis_models.Player {
	var expired []*redis_models.Player
	for _, p := range room.Players {
		if p.Disconnected &&
			now.Sub(time.UnixMilli(p.DisconnectedAt)) > game_constants.ReconnectGraceWindow {
			expired = append(expired, p)
		}
	}
	for _, p := range expired {
		if _, err := RemovePlayer(room, p.ID); err == nil {
			room.AppendLobbyEvent(game_constants.MaxLobbyEvents,
				fmt.Sprintf("%s has been removed (reconnect timeout).", p.Name))
		}
	}
	return expired
}

// ReconnectResult carries the pre-disconnect UI snapshot back to the
// rejoining client.
type ReconnectResult struct {
	Player       *redis_models.Player
	HadSubmitted bool
	WasReady     bool
}

// HandleReconnect restores a disconnected seat within the grace window.
func HandleReconnect(room *redis_models.GameRoom, playerID, socketID string, now time.Time) (ReconnectResult, error) {
	player := room.FindPlayer(playerID)
	if player == nil {
		return ReconnectResult{}, ErrPlayerNotFound
	}
	if !player.Disconnected {
		return ReconnectResult{}, ErrNotDisconnected
	}
	if now.Sub(time.UnixMilli(player.DisconnectedAt)) > game_constants.ReconnectGraceWindow {
		return ReconnectResult{}, ErrReconnectExpired
	}

	result := ReconnectResult{
		Player:       player,
		HadSubmitted: player.HadSubmitted,
		WasReady:     player.WasReady,
	}

	player.Disconnected = false
	player.DisconnectedAt = 0
	player.SocketID = socketID
	player.HadSubmitted = false
	player.WasReady = false

	room.AppendLobbyEvent(game_constants.MaxLobbyEvents,
		fmt.Sprintf("%s has reconnected.", player.Name))
	return result, nil
}

func isReady(room *redis_models.GameRoom, playerID string) bool {
	for _, id := range room.ReadyToVote {
		if id == playerID {
			return true
		}
	}
	return false
}
