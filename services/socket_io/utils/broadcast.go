package socketio_utils

import (
	"log"

	redis_models "github.com/StylizedAce/DaiMaouLiarGame/models/redis"
	"github.com/StylizedAce/DaiMaouLiarGame/services/game"
	socketio_types "github.com/StylizedAce/DaiMaouLiarGame/services/socket_io/types"

	"github.com/zishang520/socket.io/v2/socket"
)

// BroadcastRoomState pushes the shared projection to everyone in the
// room, plus the private role/question payload to each connected seat
// during the question phase. Callers must NOT hold the room lock: the
// snapshot passed in was captured under the lock, so clients receive a
// self-consistent (if possibly stale-by-one-update) view.
func BroadcastRoomState(sio *socketio_types.SocketServer, room *redis_models.GameRoom) {
	state := game.RoomState(room)
	log.Printf("[STATE] Broadcasting state for room %s, phase %s", room.ID, room.Phase)

	sio.Sio_server.To(socket.Room(room.ID)).Emit("update_game_state", state)

	if room.Phase == redis_models.PhaseQuestion {
		for _, p := range room.Players {
			if p.SocketID == "" {
				continue
			}
			if client, ok := sio.GetConnection(p.SocketID); ok {
				client.Emit("personal_game_info", game.PersonalInfo(room, p.ID))
			}
		}
	}
}
