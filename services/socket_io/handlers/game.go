package handlers

import (
	"log"
	"time"

	redis_models "github.com/StylizedAce/DaiMaouLiarGame/models/redis"
	"github.com/StylizedAce/DaiMaouLiarGame/services/game"
	socketio_utils "github.com/StylizedAce/DaiMaouLiarGame/services/socket_io/utils"
	"github.com/StylizedAce/DaiMaouLiarGame/services/socket_io/utils/game_flow"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
)

// HandleStartGame launches the first round of a waiting room.
func HandleStartGame(gf *game_flow.GameFlow, client *socket.Socket) func(args ...interface{}) {
	return func(args ...interface{}) {
		data, ok := socketio_utils.ExtractPayload(args)
		if !ok {
			client.Emit("error", gin.H{"error": "Missing request payload"})
			return
		}

		roomID := socketio_utils.GetString(data, "roomId")
		playerID := socketio_utils.GetString(data, "playerId")
		if roomID == "" || playerID == "" {
			client.Emit("error", gin.H{"error": "Room ID and player ID are required."})
			return
		}

		log.Printf("[START] Start game request: room %s, player %s", roomID, playerID)

		mu := gf.Locks.Obtain(roomID)
		mu.Lock()

		room, err := gf.Redis.GetGameRoom(roomID)
		if err != nil {
			client.Emit("error", gin.H{"error": "Room not found."})
			mu.Unlock()
			return
		}

		// A settings payload sent alongside start wins over the lobby values.
		if settingsData, ok := socketio_utils.GetMap(data, "settings"); ok {
			settings := ParseSettings(settingsData, room.Settings)
			if err := game.UpdateSettings(room, playerID, settings); err != nil {
				client.Emit("error", gin.H{"error": "Only the host can start the game."})
				mu.Unlock()
				return
			}
		}

		pair, err := gf.Questions.Draw(room.Language, room.UsedQuestionIDs)
		if err != nil {
			log.Printf("[START-ERROR] No question pair for room %s: %v", roomID, err)
			client.Emit("error", gin.H{"error": "No questions available for this language."})
			mu.Unlock()
			return
		}

		if err := game.StartGame(room, playerID, pair, gf.Rng, time.Now()); err != nil {
			switch err {
			case game.ErrNotHost:
				client.Emit("error", gin.H{"error": "Only the host can start the game."})
			case game.ErrNotEnoughPlayers:
				client.Emit("error", gin.H{"error": "Not enough players to start the game."})
			default:
				client.Emit("error", gin.H{"error": "The game has already started."})
			}
			mu.Unlock()
			return
		}

		if err := gf.Redis.SaveGameRoom(room); err != nil {
			log.Printf("[START-ERROR] Error saving room %s: %v", roomID, err)
			client.Emit("error", gin.H{"error": "Error starting game"})
			mu.Unlock()
			return
		}
		mu.Unlock()

		gf.Sio.Sio_server.To(socket.Room(roomID)).Emit("game_starting", gin.H{"roomId": roomID})
		socketio_utils.BroadcastRoomState(gf.Sio, room)
		gf.ArmPhaseTimer(room)
		log.Printf("[START-SUCCESS] Room %s started round 1", roomID)
	}
}

// roundAction is a phase-guarded mutation applied under the room lock.
// transitioned reports that the room moved to a new phase whose timer must
// be re-armed.
type roundAction func(room *redis_models.GameRoom, playerID string, now time.Time) (transitioned bool, err error)

// applyRoundAction runs the shared lock/load/mutate/save/broadcast sequence
// used by every mid-round player input.
func applyRoundAction(gf *game_flow.GameFlow, client *socket.Socket, tag, roomID, playerID string, action roundAction) {
	if roomID == "" || playerID == "" {
		client.Emit("error", gin.H{"error": "Room ID and player ID are required."})
		return
	}

	mu := gf.Locks.Obtain(roomID)
	mu.Lock()

	room, err := gf.Redis.GetGameRoom(roomID)
	if err != nil {
		client.Emit("error", gin.H{"error": "Room not found."})
		mu.Unlock()
		return
	}

	transitioned, err := action(room, playerID, time.Now())
	if err != nil {
		emitRoundActionError(client, err)
		mu.Unlock()
		return
	}

	if err := gf.Redis.SaveGameRoom(room); err != nil {
		log.Printf("[%s-ERROR] Error saving room %s: %v", tag, roomID, err)
		client.Emit("error", gin.H{"error": "Error updating game state"})
		mu.Unlock()
		return
	}
	mu.Unlock()

	socketio_utils.BroadcastRoomState(gf.Sio, room)
	if transitioned {
		gf.ArmPhaseTimer(room)
	}
}

func emitRoundActionError(client *socket.Socket, err error) {
	switch err {
	case game.ErrWrongPhase:
		client.Emit("error", gin.H{"error": "That action is not allowed in the current phase."})
	case game.ErrPlayerNotFound:
		client.Emit("error", gin.H{"error": "Player not found in room."})
	default:
		client.Emit("error", gin.H{"error": err.Error()})
	}
}

// HandleSubmitAnswer records a player's answer during the question phase.
func HandleSubmitAnswer(gf *game_flow.GameFlow, client *socket.Socket) func(args ...interface{}) {
	return func(args ...interface{}) {
		data, ok := socketio_utils.ExtractPayload(args)
		if !ok {
			client.Emit("error", gin.H{"error": "Missing request payload"})
			return
		}

		roomID := socketio_utils.GetString(data, "roomId")
		playerID := socketio_utils.GetString(data, "playerId")
		answer := game.SanitizeString(socketio_utils.GetString(data, "answer"))
		if answer == "" {
			client.Emit("error", gin.H{"error": "Answer cannot be empty."})
			return
		}

		applyRoundAction(gf, client, "ANSWER", roomID, playerID,
			func(room *redis_models.GameRoom, playerID string, now time.Time) (bool, error) {
				return game.SubmitAnswer(room, playerID, answer, now)
			})
	}
}

// HandleRemoveAnswer withdraws a previously submitted answer so it can be
// rewritten before the question timer runs out.
func HandleRemoveAnswer(gf *game_flow.GameFlow, client *socket.Socket) func(args ...interface{}) {
	return func(args ...interface{}) {
		data, ok := socketio_utils.ExtractPayload(args)
		if !ok {
			client.Emit("error", gin.H{"error": "Missing request payload"})
			return
		}

		roomID := socketio_utils.GetString(data, "roomId")
		playerID := socketio_utils.GetString(data, "playerId")

		applyRoundAction(gf, client, "ANSWER-REMOVE", roomID, playerID,
			func(room *redis_models.GameRoom, playerID string, now time.Time) (bool, error) {
				return false, game.RemoveAnswer(room, playerID)
			})
	}
}

// HandleSubmitVote records a legacy answer vote during the voting phase.
func HandleSubmitVote(gf *game_flow.GameFlow, client *socket.Socket) func(args ...interface{}) {
	return func(args ...interface{}) {
		data, ok := socketio_utils.ExtractPayload(args)
		if !ok {
			client.Emit("error", gin.H{"error": "Missing request payload"})
			return
		}

		roomID := socketio_utils.GetString(data, "roomId")
		playerID := socketio_utils.GetString(data, "playerId")
		votedForID := socketio_utils.GetString(data, "votedForId")
		if votedForID == "" {
			client.Emit("error", gin.H{"error": "A vote target is required."})
			return
		}

		applyRoundAction(gf, client, "VOTE", roomID, playerID,
			func(room *redis_models.GameRoom, playerID string, now time.Time) (bool, error) {
				return false, game.SubmitVote(room, playerID, votedForID)
			})
	}
}

// HandleReadyToVote marks a player ready to leave the discussion and vote
// on the imposter.
func HandleReadyToVote(gf *game_flow.GameFlow, client *socket.Socket) func(args ...interface{}) {
	return func(args ...interface{}) {
		data, ok := socketio_utils.ExtractPayload(args)
		if !ok {
			client.Emit("error", gin.H{"error": "Missing request payload"})
			return
		}

		roomID := socketio_utils.GetString(data, "roomId")
		playerID := socketio_utils.GetString(data, "playerId")

		applyRoundAction(gf, client, "READY", roomID, playerID,
			func(room *redis_models.GameRoom, playerID string, now time.Time) (bool, error) {
				return game.MarkReadyToVote(room, playerID, now)
			})
	}
}

// HandleLiarVote records an accusation during the vote_selection phase.
func HandleLiarVote(gf *game_flow.GameFlow, client *socket.Socket) func(args ...interface{}) {
	return func(args ...interface{}) {
		data, ok := socketio_utils.ExtractPayload(args)
		if !ok {
			client.Emit("error", gin.H{"error": "Missing request payload"})
			return
		}

		roomID := socketio_utils.GetString(data, "roomId")
		playerID := socketio_utils.GetString(data, "playerId")
		targetID := socketio_utils.GetString(data, "targetPlayerId")
		if targetID == "" {
			client.Emit("error", gin.H{"error": "An accusation target is required."})
			return
		}

		applyRoundAction(gf, client, "LIAR-VOTE", roomID, playerID,
			func(room *redis_models.GameRoom, playerID string, now time.Time) (bool, error) {
				return false, game.CastLiarVote(room, playerID, targetID)
			})
	}
}

// HandleRoundTransition lets a client nudge the round forward once the
// vote_selection countdown it rendered has elapsed. The round guard inside
// the flow makes duplicate nudges harmless.
func HandleRoundTransition(gf *game_flow.GameFlow, client *socket.Socket) func(args ...interface{}) {
	return func(args ...interface{}) {
		data, ok := socketio_utils.ExtractPayload(args)
		if !ok {
			client.Emit("error", gin.H{"error": "Missing request payload"})
			return
		}

		roomID := socketio_utils.GetString(data, "roomId")
		if roomID == "" {
			client.Emit("error", gin.H{"error": "Room ID is required."})
			return
		}

		gf.HandleRoundTransitionIfUndone(roomID, -1)
	}
}

// HandleVotingTimerExpired is the client-side echo of the voting countdown.
func HandleVotingTimerExpired(gf *game_flow.GameFlow, client *socket.Socket) func(args ...interface{}) {
	return func(args ...interface{}) {
		data, ok := socketio_utils.ExtractPayload(args)
		if !ok {
			client.Emit("error", gin.H{"error": "Missing request payload"})
			return
		}

		roomID := socketio_utils.GetString(data, "roomId")
		if roomID == "" {
			client.Emit("error", gin.H{"error": "Room ID is required."})
			return
		}

		gf.AdvanceToVoteSelectionIfUndone(roomID, -1)
	}
}
