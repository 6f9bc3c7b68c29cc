package handlers

import (
	"log"
	"sync"
	"time"

	game_constants "github.com/StylizedAce/DaiMaouLiarGame/constants/game"
	redis_models "github.com/StylizedAce/DaiMaouLiarGame/models/redis"
	"github.com/StylizedAce/DaiMaouLiarGame/services/game"
	"github.com/StylizedAce/DaiMaouLiarGame/services/questions"
	socketio_utils "github.com/StylizedAce/DaiMaouLiarGame/services/socket_io/utils"
	"github.com/StylizedAce/DaiMaouLiarGame/services/socket_io/utils/game_flow"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
)

// HandleCreateRoom creates a room with the requester seated as host.
func HandleCreateRoom(gf *game_flow.GameFlow, client *socket.Socket) func(args ...interface{}) {
	return func(args ...interface{}) {
		data, ok := socketio_utils.ExtractPayload(args)
		if !ok {
			client.Emit("error", gin.H{"error": "Missing request payload"})
			return
		}

		roomID := game.SanitizeString(socketio_utils.GetString(data, "roomId"))
		name := game.SanitizeString(socketio_utils.GetString(data, "name"))
		avatar := socketio_utils.GetString(data, "avatar")
		language := socketio_utils.GetString(data, "language")
		if language == "" {
			language = questions.DefaultLanguage
		}

		log.Printf("[CREATE] Create room request: socket %s, room %s, name %s", client.Id(), roomID, name)

		if roomID == "" || name == "" || avatar == "" {
			client.Emit("error", gin.H{"error": "Room ID, name, and user avatar are required."})
			return
		}

		mu := gf.Locks.Obtain(roomID)
		mu.Lock()

		exists, err := gf.Redis.GameRoomExists(roomID)
		if err != nil {
			log.Printf("[CREATE-ERROR] Error checking room existence: %v", err)
			client.Emit("error", gin.H{"error": "Error creating room"})
			mu.Unlock()
			return
		}
		if exists {
			client.Emit("error", gin.H{"error": "Room already exists."})
			mu.Unlock()
			return
		}

		room := game.NewRoom(roomID, language, name, avatar, string(client.Id()))
		if err := gf.Redis.SaveGameRoom(room); err != nil {
			log.Printf("[CREATE-ERROR] Error saving room %s: %v", roomID, err)
			client.Emit("error", gin.H{"error": "Error creating room"})
			mu.Unlock()
			return
		}
		mu.Unlock()

		client.Join(socket.Room(roomID))
		gf.Sio.BindPlayer(string(client.Id()), roomID, room.HostID)

		client.Emit("join_confirmation", gin.H{"playerId": room.HostID, "roomId": roomID})
		socketio_utils.BroadcastRoomState(gf.Sio, room)
		log.Printf("[CREATE-SUCCESS] Room %s created by %s", roomID, name)
	}
}

// HandleJoinRoom seats a new player in a waiting room.
func HandleJoinRoom(gf *game_flow.GameFlow, client *socket.Socket) func(args ...interface{}) {
	return func(args ...interface{}) {
		data, ok := socketio_utils.ExtractPayload(args)
		if !ok {
			client.Emit("error", gin.H{"error": "Missing request payload"})
			return
		}

		roomID := game.SanitizeString(socketio_utils.GetString(data, "roomId"))
		name := game.SanitizeString(socketio_utils.GetString(data, "name"))
		avatar := socketio_utils.GetString(data, "avatar")

		log.Printf("[JOIN] Join request: socket %s, room %s, name %s", client.Id(), roomID, name)

		if roomID == "" || name == "" || avatar == "" {
			client.Emit("error", gin.H{"error": "Room ID, name, and user avatar are required."})
			return
		}

		mu := gf.Locks.Obtain(roomID)
		mu.Lock()

		room, err := gf.Redis.GetGameRoom(roomID)
		if err != nil {
			client.Emit("error", gin.H{"error": "The room you were trying to reach doesn't exist anymore."})
			mu.Unlock()
			return
		}

		player, err := game.AddPlayer(room, name, avatar, string(client.Id()))
		if err != nil {
			emitJoinError(client, err)
			mu.Unlock()
			return
		}

		if err := gf.Redis.SaveGameRoom(room); err != nil {
			log.Printf("[JOIN-ERROR] Error saving room %s: %v", roomID, err)
			client.Emit("error", gin.H{"error": "Error joining room"})
			mu.Unlock()
			return
		}
		mu.Unlock()

		client.Join(socket.Room(roomID))
		gf.Sio.BindPlayer(string(client.Id()), roomID, player.ID)

		client.Emit("join_confirmation", gin.H{"playerId": player.ID, "roomId": roomID})
		socketio_utils.BroadcastRoomState(gf.Sio, room)
		log.Printf("[JOIN-SUCCESS] %s joined room %s", name, roomID)
	}
}

func emitJoinError(client *socket.Socket, err error) {
	switch err {
	case game.ErrGameInProgress:
		client.Emit("error", gin.H{"error": "Game is already in progress."})
	case game.ErrRoomFull:
		client.Emit("error", gin.H{"error": "The room you were trying to reach seems full."})
	case game.ErrNameTaken:
		client.Emit("error", gin.H{"error": "That name is already taken."})
	default:
		client.Emit("error", gin.H{"error": err.Error()})
	}
}

// HandleLeaveRoom removes a voluntarily leaving player.
func HandleLeaveRoom(gf *game_flow.GameFlow, client *socket.Socket) func(args ...interface{}) {
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

		log.Printf("[LEAVE] Leave request: socket %s, room %s, player %s", client.Id(), roomID, playerID)

		mu := gf.Locks.Obtain(roomID)
		mu.Lock()

		room, err := gf.Redis.GetGameRoom(roomID)
		if err != nil {
			client.Emit("error", gin.H{"error": "The room you were trying to reach doesn't exist anymore."})
			mu.Unlock()
			return
		}

		player := room.FindPlayer(playerID)
		if player == nil {
			client.Emit("error", gin.H{"error": "Player not found in room."})
			mu.Unlock()
			return
		}
		// The leave must come from the socket that owns the seat
		if player.SocketID != string(client.Id()) {
			client.Emit("error", gin.H{"error": "Invalid player credentials."})
			mu.Unlock()
			return
		}

		room.AppendLobbyEvent(game_constants.MaxLobbyEvents, player.Name+" has left the game.")
		if _, err := game.RemovePlayer(room, playerID); err != nil {
			client.Emit("error", gin.H{"error": "Player not found in room."})
			mu.Unlock()
			return
		}

		client.Leave(socket.Room(roomID))
		gf.Sio.UnbindPlayer(string(client.Id()))
		client.Emit("leave_confirmation", gin.H{"message": "Successfully left the room."})

		finishDeparture(gf, room, mu)
	}
}

// finishDeparture handles the common tail of a permanent mid-room removal:
// empty and solo rooms are torn down, a shrunken roster may complete the
// current phase, and survivors get the fresh state. Called with the room
// lock held; unlocks it.
func finishDeparture(gf *game_flow.GameFlow, room *redis_models.GameRoom, mu *sync.Mutex) {
	roomID := room.ID
	active := room.ActivePlayers()

	if len(room.Players) == 0 || len(active) == 0 {
		mu.Unlock()
		gf.DeleteRoom(roomID)
		return
	}

	if room.Phase != redis_models.PhaseWaiting && room.Phase != redis_models.PhaseResults &&
		len(active) == 1 {
		solo := active[0]
		mu.Unlock()
		if soloSocket, ok := gf.Sio.GetConnection(solo.SocketID); ok {
			soloSocket.Emit("solo_player_kick", gin.H{
				"message": "Not enough players to continue.",
			})
			soloSocket.Leave(socket.Room(roomID))
			gf.Sio.UnbindPlayer(solo.SocketID)
		}
		gf.DeleteRoom(roomID)
		return
	}

	advanced := game.RecheckPhaseCompletion(room, time.Now())

	if err := gf.Redis.SaveGameRoom(room); err != nil {
		log.Printf("[DEPART-ERROR] Error saving room %s: %v", roomID, err)
		mu.Unlock()
		return
	}
	mu.Unlock()

	socketio_utils.BroadcastRoomState(gf.Sio, room)
	if advanced {
		gf.ArmPhaseTimer(room)
	}
}

// HandleKickPlayer lets the host remove another player from the room.
func HandleKickPlayer(gf *game_flow.GameFlow, client *socket.Socket) func(args ...interface{}) {
	return func(args ...interface{}) {
		data, ok := socketio_utils.ExtractPayload(args)
		if !ok {
			client.Emit("error", gin.H{"error": "Missing request payload"})
			return
		}

		roomID := socketio_utils.GetString(data, "roomId")
		targetID := socketio_utils.GetString(data, "targetPlayerId")
		byID := socketio_utils.GetString(data, "byPlayerId")

		log.Printf("[KICK] %s is trying to kick %s from %s", byID, targetID, roomID)

		mu := gf.Locks.Obtain(roomID)
		mu.Lock()

		room, err := gf.Redis.GetGameRoom(roomID)
		if err != nil {
			client.Emit("error", gin.H{"error": "Room not found."})
			mu.Unlock()
			return
		}
		if byID != room.HostID {
			client.Emit("error", gin.H{"error": "Only the host can kick players."})
			mu.Unlock()
			return
		}

		target := room.FindPlayer(targetID)
		if target == nil {
			client.Emit("error", gin.H{"error": "Player to kick not found."})
			mu.Unlock()
			return
		}
		targetSocketID := target.SocketID
		targetName := target.Name

		room.AppendLobbyEvent(game_constants.MaxLobbyEvents, targetName+" was kicked from the game.")
		if _, err := game.RemovePlayer(room, targetID); err != nil {
			client.Emit("error", gin.H{"error": "Player to kick not found."})
			mu.Unlock()
			return
		}

		if targetSocket, ok := gf.Sio.GetConnection(targetSocketID); ok {
			targetSocket.Emit("kicked_from_room", gin.H{"message": "You have been removed from the game."})
			targetSocket.Leave(socket.Room(roomID))
			gf.Sio.UnbindPlayer(targetSocketID)
		}

		log.Printf("[KICK-SUCCESS] %s kicked from room %s", targetName, roomID)
		finishDeparture(gf, room, mu)
	}
}

// HandleUpdateSettings applies a host's settings change in the lobby.
func HandleUpdateSettings(gf *game_flow.GameFlow, client *socket.Socket) func(args ...interface{}) {
	return func(args ...interface{}) {
		data, ok := socketio_utils.ExtractPayload(args)
		if !ok {
			client.Emit("error", gin.H{"error": "Missing request payload"})
			return
		}

		roomID := socketio_utils.GetString(data, "roomId")
		playerID := socketio_utils.GetString(data, "playerId")
		settingsData, hasSettings := socketio_utils.GetMap(data, "settings")
		if roomID == "" || playerID == "" || !hasSettings {
			client.Emit("error", gin.H{"error": "Room ID, player ID and settings are required."})
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

		settings := ParseSettings(settingsData, room.Settings)
		if err := game.UpdateSettings(room, playerID, settings); err != nil {
			client.Emit("error", gin.H{"error": "Only the host can update settings."})
			mu.Unlock()
			return
		}

		if err := gf.Redis.SaveGameRoom(room); err != nil {
			log.Printf("[SETTINGS-ERROR] Error saving room %s: %v", roomID, err)
			client.Emit("error", gin.H{"error": "Error updating settings"})
			mu.Unlock()
			return
		}
		mu.Unlock()

		socketio_utils.BroadcastRoomState(gf.Sio, room)
	}
}

// ParseSettings merges a settings payload over the room's current values.
func ParseSettings(data map[string]interface{}, current redis_models.RoomSettings) redis_models.RoomSettings {
	settings := current
	settings.MaxPlayers = socketio_utils.GetInt(data, "playerCount", current.MaxPlayers)
	settings.TotalRounds = socketio_utils.GetInt(data, "totalRounds", current.TotalRounds)
	if mode := socketio_utils.GetString(data, "gameMode"); mode != "" {
		settings.GameMode = mode
	}
	return settings
}

// HandleNewGame returns a finished room to the lobby for another game.
func HandleNewGame(gf *game_flow.GameFlow, client *socket.Socket) func(args ...interface{}) {
	return func(args ...interface{}) {
		data, ok := socketio_utils.ExtractPayload(args)
		if !ok {
			client.Emit("error", gin.H{"error": "Missing request payload"})
			return
		}

		roomID := socketio_utils.GetString(data, "roomId")
		playerID := socketio_utils.GetString(data, "playerId")

		mu := gf.Locks.Obtain(roomID)
		mu.Lock()

		room, err := gf.Redis.GetGameRoom(roomID)
		if err != nil {
			client.Emit("error", gin.H{"error": "Room not found."})
			mu.Unlock()
			return
		}

		if err := game.ResetForNewGame(room, playerID); err != nil {
			switch err {
			case game.ErrNotHost:
				client.Emit("error", gin.H{"error": "Only the host can start a new game."})
			default:
				client.Emit("error", gin.H{"error": "The game is still running."})
			}
			mu.Unlock()
			return
		}

		if err := gf.Redis.SaveGameRoom(room); err != nil {
			log.Printf("[NEW-GAME-ERROR] Error saving room %s: %v", roomID, err)
			client.Emit("error", gin.H{"error": "Error starting a new game"})
			mu.Unlock()
			return
		}
		mu.Unlock()

		gf.Sio.Sio_server.To(socket.Room(roomID)).Emit("new_game_started", gin.H{"roomId": roomID})
		socketio_utils.BroadcastRoomState(gf.Sio, room)
		log.Printf("[NEW-GAME] Room %s returned to the lobby", roomID)
	}
}
