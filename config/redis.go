package config

import (
	"log"
	"os"

	"github.com/StylizedAce/DaiMaouLiarGame/services/redis"
)

// Connect_redis connects to the room store using REDIS_URL, falling back
// to a local instance when unset.
func Connect_redis() (*redis.RedisClient, error) {
	redisUri := os.Getenv("REDIS_URL")
	redisClient, err := redis.InitRedis(redisUri, 0)
	if err != nil {
		return nil, err
	}
	log.Println("Redis connection established")
	return redisClient, nil
}
