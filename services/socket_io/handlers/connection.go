package handlers

import (
	"log"
	"time"

	"github.com/StylizedAce/DaiMaouLiarGame/services/game"
	socketio_utils "github.com/StylizedAce/DaiMaouLiarGame/services/socket_io/utils"
	"github.com/StylizedAce/DaiMaouLiarGame/services/socket_io/utils/game_flow"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
)

// HandleDisconnecting applies the disconnect policy when a transport drops.
// The socket-to-seat index makes this a direct lookup instead of a scan
// over every room.
func HandleDisconnecting(gf *game_flow.GameFlow, client *socket.Socket) func(args ...interface{}) {
	return func(args ...interface{}) {
		socketID := string(client.Id())
		defer gf.Sio.RemoveConnection(socketID)

		ref, ok := gf.Sio.LookupPlayer(socketID)
		if !ok {
			return
		}
		gf.Sio.UnbindPlayer(socketID)

		log.Printf("[DISCONNECT] Socket %s dropped (room %s, player %s)",
			socketID, ref.RoomID, ref.PlayerID)

		mu := gf.Locks.Obtain(ref.RoomID)
		mu.Lock()

		room, err := gf.Redis.GetGameRoom(ref.RoomID)
		if err != nil {
			mu.Unlock()
			return
		}

		outcome, err := game.HandleDisconnect(room, ref.PlayerID, time.Now())
		if err != nil {
			log.Printf("[DISCONNECT-WARN] Room %s: %v", ref.RoomID, err)
			mu.Unlock()
			return
		}

		if outcome.DeleteRoom {
			soloSocketID := ""
			if outcome.SoloKick != nil {
				soloSocketID = outcome.SoloKick.SocketID
			}
			mu.Unlock()

			if soloSocketID != "" {
				if soloSocket, ok := gf.Sio.GetConnection(soloSocketID); ok {
					soloSocket.Emit("solo_player_kick", gin.H{
						"message": "Not enough players to continue.",
					})
					soloSocket.Leave(socket.Room(ref.RoomID))
					gf.Sio.UnbindPlayer(soloSocketID)
				}
			}
			gf.DeleteRoom(ref.RoomID)
			log.Printf("[DISCONNECT] Room %s deleted after %s dropped",
				ref.RoomID, outcome.PlayerName)
			return
		}

		if err := gf.Redis.SaveGameRoom(room); err != nil {
			log.Printf("[DISCONNECT-ERROR] Error saving room %s: %v", ref.RoomID, err)
			mu.Unlock()
			return
		}
		mu.Unlock()

		socketio_utils.BroadcastRoomState(gf.Sio, room)
		if outcome.PhaseAdvanced {
			gf.ArmPhaseTimer(room)
		}
	}
}
