package socketio_types

import (
	"sync"

	"github.com/zishang520/socket.io/v2/socket"
)

// PlayerRef points a transport connection back to its seat, so a
// disconnect resolves to (room, player) in O(1) instead of scanning rooms.
type PlayerRef struct {
	RoomID   string
	PlayerID string
}

// SocketServer is a struct that contains the socket.io server, a map of
// socket connections and the presence index binding sockets to seats.
type SocketServer struct {
	Sio_server *socket.Server
	// Map to track socket id -> socket connections
	Connections map[string]*socket.Socket
	// Map to track socket id -> (room id, player id)
	playerIndex map[string]PlayerRef
	mutex       sync.RWMutex
}

func NewSocketServer() *SocketServer {
	return &SocketServer{
		Connections: make(map[string]*socket.Socket),
		playerIndex: make(map[string]PlayerRef),
	}
}

// Add methods to manage connections
func (s *SocketServer) AddConnection(socketID string, client *socket.Socket) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.Connections[socketID] = client
}

func (s *SocketServer) RemoveConnection(socketID string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.Connections, socketID)
	delete(s.playerIndex, socketID)
}

func (s *SocketServer) GetConnection(socketID string) (*socket.Socket, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	client, exists := s.Connections[socketID]
	return client, exists
}

// BindPlayer records which seat a socket occupies. Called on create, join
// and rejoin.
func (s *SocketServer) BindPlayer(socketID, roomID, playerID string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.playerIndex[socketID] = PlayerRef{RoomID: roomID, PlayerID: playerID}
}

// LookupPlayer resolves a socket to its seat.
func (s *SocketServer) LookupPlayer(socketID string) (PlayerRef, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	ref, exists := s.playerIndex[socketID]
	return ref, exists
}

// UnbindPlayer drops a socket's seat binding (leave, kick).
func (s *SocketServer) UnbindPlayer(socketID string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.playerIndex, socketID)
}
