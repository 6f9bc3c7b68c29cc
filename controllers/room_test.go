package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	redis_models "github.com/StylizedAce/DaiMaouLiarGame/models/redis"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// fakeStore is a RoomReader backed by a map.
type fakeStore struct {
	rooms map[string]*redis_models.GameRoom
	err   error
}

func (f *fakeStore) GetAllRoomIDs() ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	ids := make([]string, 0, len(f.rooms))
	for id := range f.rooms {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeStore) GetGameRoom(roomID string) (*redis_models.GameRoom, error) {
	room, ok := f.rooms[roomID]
	if !ok {
		return nil, errors.New("room not found")
	}
	return room, nil
}

func setupRouter(store *fakeStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/ping", Ping)
	router.GET("/rooms", ListRooms(store))
	router.GET("/rooms/:room_id", GetRoomInfo(store))
	return router
}

func TestPing(t *testing.T) {
	router := setupRouter(&fakeStore{})

	req, _ := http.NewRequest("GET", "/ping", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pong")
}

func TestListRooms(t *testing.T) {
	store := &fakeStore{rooms: map[string]*redis_models.GameRoom{
		"room1": {ID: "room1"},
		"room2": {ID: "room2"},
	}}
	router := setupRouter(store)

	req, _ := http.NewRequest("GET", "/rooms", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(2), response["count"])
	assert.ElementsMatch(t, []interface{}{"room1", "room2"}, response["rooms"])
}

func TestListRoomsStoreError(t *testing.T) {
	router := setupRouter(&fakeStore{err: errors.New("redis down")})

	req, _ := http.NewRequest("GET", "/rooms", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetRoomInfo(t *testing.T) {
	room := &redis_models.GameRoom{
		ID:    "room1",
		Phase: redis_models.PhaseWaiting,
		Players: []*redis_models.Player{
			{ID: "p0", Name: "Alice"},
			{ID: "p1", Name: "Bob", Disconnected: true},
		},
		HostID:       "p0",
		Language:     "en",
		CurrentRound: 1,
		Settings: redis_models.RoomSettings{
			MaxPlayers:  6,
			TotalRounds: 5,
			GameMode:    "normal",
		},
	}
	store := &fakeStore{rooms: map[string]*redis_models.GameRoom{"room1": room}}
	router := setupRouter(store)

	req, _ := http.NewRequest("GET", "/rooms/room1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "room1", response["roomId"])
	assert.Equal(t, "waiting", response["phase"])
	assert.Equal(t, "Alice", response["hostName"])
	assert.Equal(t, float64(1), response["playerCount"], "disconnected seats are not counted")
	assert.Equal(t, true, response["joinable"])
	assert.NotContains(t, response, "imposterIds")
}

func TestGetRoomInfoNotJoinableMidGame(t *testing.T) {
	room := &redis_models.GameRoom{
		ID:      "room1",
		Phase:   redis_models.PhaseQuestion,
		Players: []*redis_models.Player{{ID: "p0", Name: "Alice"}},
		HostID:  "p0",
		Settings: redis_models.RoomSettings{
			MaxPlayers: 6,
		},
	}
	store := &fakeStore{rooms: map[string]*redis_models.GameRoom{"room1": room}}
	router := setupRouter(store)

	req, _ := http.NewRequest("GET", "/rooms/room1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, false, response["joinable"])
}

func TestGetRoomInfoNotFound(t *testing.T) {
	router := setupRouter(&fakeStore{})

	req, _ := http.NewRequest("GET", "/rooms/ghost", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
