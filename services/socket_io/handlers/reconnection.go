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

// HandleRejoinGame restores a disconnected seat within the grace window.
// The client gets a full state snapshot plus the submission/readiness
// flags captured at disconnect time so its UI can resume where it was.
func HandleRejoinGame(gf *game_flow.GameFlow, client *socket.Socket) func(args ...interface{}) {
	return func(args ...interface{}) {
		data, ok := socketio_utils.ExtractPayload(args)
		if !ok {
			client.Emit("reconnect_player", gin.H{
				"success": false,
				"error":   "Missing request payload",
			})
			return
		}

		roomID := socketio_utils.GetString(data, "roomId")
		playerID := socketio_utils.GetString(data, "playerId")
		language := socketio_utils.GetString(data, "language")

		log.Printf("[REJOIN] Rejoin request: socket %s, room %s, player %s",
			client.Id(), roomID, playerID)

		mu := gf.Locks.Obtain(roomID)
		mu.Lock()

		room, err := gf.Redis.GetGameRoom(roomID)
		if err != nil {
			client.Emit("reconnect_player", gin.H{
				"success": false,
				"error":   "The room you were trying to reach doesn't exist anymore.",
			})
			mu.Unlock()
			return
		}

		// A client that switched languages would render the wrong prompts.
		if language != "" && language != room.Language {
			client.Emit("reconnect_player", gin.H{
				"success": false,
				"error":   "Language mismatch with the running game.",
			})
			mu.Unlock()
			return
		}

		result, err := game.HandleReconnect(room, playerID, string(client.Id()), time.Now())
		if err != nil {
			emitRejoinError(client, err)
			mu.Unlock()
			return
		}

		if err := gf.Redis.SaveGameRoom(room); err != nil {
			log.Printf("[REJOIN-ERROR] Error saving room %s: %v", roomID, err)
			client.Emit("reconnect_player", gin.H{
				"success": false,
				"error":   "Error rejoining room",
			})
			mu.Unlock()
			return
		}
		mu.Unlock()

		client.Join(socket.Room(roomID))
		gf.Sio.BindPlayer(string(client.Id()), roomID, playerID)

		client.Emit("reconnect_player", gin.H{
			"success":      true,
			"gameState":    game.RoomState(room),
			"playerId":     playerID,
			"hadSubmitted": result.HadSubmitted,
			"wasReady":     result.WasReady,
			"language":     room.Language,
		})
		if room.Phase == redis_models.PhaseQuestion {
			client.Emit("personal_game_info", game.PersonalInfo(room, playerID))
		}

		socketio_utils.BroadcastRoomState(gf.Sio, room)
		log.Printf("[REJOIN-SUCCESS] %s rejoined room %s", result.Player.Name, roomID)
	}
}

func emitRejoinError(client *socket.Socket, err error) {
	switch err {
	case game.ErrPlayerNotFound:
		client.Emit("reconnect_player", gin.H{
			"success": false,
			"error":   "Player not found in room.",
		})
	case game.ErrNotDisconnected:
		client.Emit("reconnect_player", gin.H{
			"success": false,
			"error":   "Player is not disconnected.",
		})
	case game.ErrReconnectExpired:
		client.Emit("reconnect_player", gin.H{
			"success": false,
			"error":   "Reconnect window has expired.",
		})
	default:
		client.Emit("reconnect_player", gin.H{
			"success": false,
			"error":   err.Error(),
		})
	}
}
