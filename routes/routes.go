package routes

import (
	"github.com/StylizedAce/DaiMaouLiarGame/controllers"
	"github.com/StylizedAce/DaiMaouLiarGame/services/redis"

	"github.com/gin-gonic/gin"
)

// SetupRoutes configures the REST surface. The socket.io endpoint is
// mounted separately by the socket server.
func SetupRoutes(router *gin.Engine, redisClient *redis.RedisClient) {
	api := router.Group("/")

	api.GET("/ping", controllers.Ping)

	api.GET("/rooms", controllers.ListRooms(redisClient))

	api.GET("/rooms/:room_id", controllers.GetRoomInfo(redisClient))
}
