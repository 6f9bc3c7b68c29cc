package socket_io

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/StylizedAce/DaiMaouLiarGame/services/socket_io/handlers"
	socketio_types "github.com/StylizedAce/DaiMaouLiarGame/services/socket_io/types"
	"github.com/StylizedAce/DaiMaouLiarGame/services/socket_io/utils/game_flow"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io/v2/socket"
)

// Start mounts the socket.io endpoint on the router and wires every game
// event to its handler. sio must be the same server instance gf carries.
func Start(router *gin.Engine, sio *socketio_types.SocketServer, gf *game_flow.GameFlow) {
	c := socket.DefaultServerOptions()
	c.SetServeClient(true)
	// Generous ping settings keep flaky mobile clients inside the
	// reconnect grace window instead of churning through it.
	c.SetPingInterval(5 * time.Second)
	c.SetPingTimeout(3 * time.Second)
	c.SetMaxHttpBufferSize(1000000)
	c.SetConnectTimeout(10 * time.Second)
	c.SetTransports(types.NewSet("polling", "websocket"))
	c.SetCors(&types.Cors{
		Origin:      "*",
		Credentials: true,
	})

	sio.Sio_server = socket.NewServer(nil, nil)
	sio.Sio_server.On("connection", func(clients ...interface{}) {
		client := clients[0].(*socket.Socket)
		sio.AddConnection(string(client.Id()), client)
		log.Printf("[CONNECT] Socket %s connected", client.Id())

		// Room lifecycle
		client.On("create_room", handlers.HandleCreateRoom(gf, client))
		client.On("join_room", handlers.HandleJoinRoom(gf, client))
		client.On("leave_room", handlers.HandleLeaveRoom(gf, client))
		client.On("kick_player", handlers.HandleKickPlayer(gf, client))
		client.On("update_settings", handlers.HandleUpdateSettings(gf, client))
		client.On("new_game", handlers.HandleNewGame(gf, client))

		// Round flow
		client.On("start_game", handlers.HandleStartGame(gf, client))
		client.On("submit_answer", handlers.HandleSubmitAnswer(gf, client))
		client.On("remove_answer", handlers.HandleRemoveAnswer(gf, client))
		client.On("submit_vote", handlers.HandleSubmitVote(gf, client))
		client.On("ready_to_vote", handlers.HandleReadyToVote(gf, client))
		client.On("liar_vote", handlers.HandleLiarVote(gf, client))
		client.On("round_transition", handlers.HandleRoundTransition(gf, client))
		client.On("voting_timer_expired", handlers.HandleVotingTimerExpired(gf, client))

		// Presence
		client.On("rejoin_game", handlers.HandleRejoinGame(gf, client))
		client.On("disconnecting", handlers.HandleDisconnecting(gf, client))
	})

	router.POST("/socket.io/*f", gin.WrapH(sio.Sio_server.ServeHandler(c)))
	router.GET("/socket.io/*f", gin.WrapH(sio.Sio_server.ServeHandler(c)))

	SignalC := make(chan os.Signal, 1)
	signal.Notify(SignalC, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		for s := range SignalC {
			switch s {
			case syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT:
				sio.Sio_server.Close(nil)
				os.Exit(0)
			}
		}
	}()

	log.Println("Socket server started")
}
