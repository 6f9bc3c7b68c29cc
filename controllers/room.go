package controllers

import (
	"net/http"

	game_constants "github.com/StylizedAce/DaiMaouLiarGame/constants/game"
	redis_models "github.com/StylizedAce/DaiMaouLiarGame/models/redis"

	"github.com/gin-gonic/gin"
)

// RoomReader is the read-only slice of the room store the REST surface
// needs; *redis.RedisClient implements it.
type RoomReader interface {
	GetAllRoomIDs() ([]string, error)
	GetGameRoom(roomID string) (*redis_models.GameRoom, error)
}

// Ping responds to health checks.
func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// ListRooms returns the ids of every live room.
func ListRooms(store RoomReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		ids, err := store.GetAllRoomIDs()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing rooms: " + err.Error()})
			return
		}
		if ids == nil {
			ids = []string{}
		}
		c.JSON(http.StatusOK, gin.H{
			"rooms": ids,
			"count": len(ids),
		})
	}
}

// GetRoomInfo returns the public lobby card for a single room: enough for
// a join screen, nothing from the hidden game state.
func GetRoomInfo(store RoomReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		roomID := c.Param("room_id")

		room, err := store.GetGameRoom(roomID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
			return
		}

		active := room.ActivePlayers()
		joinable := room.Phase == redis_models.PhaseWaiting &&
			len(room.Players) < room.Settings.MaxPlayers

		c.JSON(http.StatusOK, gin.H{
			"roomId":       room.ID,
			"phase":        string(room.Phase),
			"hostName":     room.PlayerName(room.HostID),
			"playerCount":  len(active),
			"maxPlayers":   room.Settings.MaxPlayers,
			"gameMode":     room.Settings.GameMode,
			"language":     room.Language,
			"currentRound": room.CurrentRound,
			"totalRounds":  room.Settings.TotalRounds,
			"joinable":     joinable,
			"minPlayers":   game_constants.MinPlayersToStart,
		})
	}
}
