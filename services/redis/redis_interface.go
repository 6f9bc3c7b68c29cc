package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	game_constants "github.com/StylizedAce/DaiMaouLiarGame/constants/game"
	redis_models "github.com/StylizedAce/DaiMaouLiarGame/models/redis"
	redis_utils "github.com/StylizedAce/DaiMaouLiarGame/services/redis/utils"

	"github.com/redis/go-redis/v9"
)

// RedisClient is the room store. Each live room is one JSON snapshot
// under "room:{id}".
type RedisClient struct {
	Client *redis.Client
	Ctx    context.Context
}

// NewRedisClient creates a new Redis client instance
func NewRedisClient(Addr string, DB int) *RedisClient {
	var client *redis.Client
	if Addr != "localhost:6379" {
		log.Println("Connecting to remote Redis...")
		opt, err := redis.ParseURL(Addr)
		if err != nil {
			panic("Error parsing Redis URL")
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{
			Addr: Addr,
			DB:   DB,
		})
	}
	return &RedisClient{
		Client: client,
		Ctx:    context.Background(),
	}
}

// SaveGameRoom stores a room snapshot in Redis.
// Key format: "room:{id}"
// TTL: 24 hours
func (rc *RedisClient) SaveGameRoom(room *redis_models.GameRoom) error {
	key := redis_utils.FormatRoomKey(room.ID)
	data, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("error marshaling room data: %v", err)
	}
	return rc.Client.Set(rc.Ctx, key, data, game_constants.RoomSnapshotTTL).Err()
}

// GetGameRoom retrieves a room snapshot from Redis.
// Key format: "room:{id}"
// Returns: GameRoom struct or error
func (rc *RedisClient) GetGameRoom(roomID string) (*redis_models.GameRoom, error) {
	key := redis_utils.FormatRoomKey(roomID)
	data, err := rc.Client.Get(rc.Ctx, key).Bytes()
	if err != nil {
		return nil, fmt.Errorf("error getting room data: %v", err)
	}

	var room redis_models.GameRoom
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, fmt.Errorf("error unmarshaling room data: %v", err)
	}
	return &room, nil
}

// GameRoomExists reports whether a room id is currently live.
func (rc *RedisClient) GameRoomExists(roomID string) (bool, error) {
	key := redis_utils.FormatRoomKey(roomID)
	n, err := rc.Client.Exists(rc.Ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("error checking room existence: %v", err)
	}
	return n > 0, nil
}

// DeleteGameRoom removes a room snapshot from Redis.
// Key format: "room:{id}"
func (rc *RedisClient) DeleteGameRoom(roomID string) error {
	return rc.CleanupKeys([]string{redis_utils.FormatRoomKey(roomID)})
}

// GetAllRoomIDs lists the ids of every live room.
func (rc *RedisClient) GetAllRoomIDs() ([]string, error) {
	var roomIDs []string
	iter := rc.Client.Scan(rc.Ctx, 0, redis_utils.FormatRoomKey("*"), 0).Iterator()
	for iter.Next(rc.Ctx) {
		roomIDs = append(roomIDs, redis_utils.RoomIDFromKey(iter.Val()))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("error scanning room keys: %v", err)
	}
	return roomIDs, nil
}
