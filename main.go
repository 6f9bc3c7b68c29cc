package main

import (
	"log"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/StylizedAce/DaiMaouLiarGame/config"
	"github.com/StylizedAce/DaiMaouLiarGame/middleware"
	"github.com/StylizedAce/DaiMaouLiarGame/routes"
	"github.com/StylizedAce/DaiMaouLiarGame/services/locks"
	"github.com/StylizedAce/DaiMaouLiarGame/services/questions"
	"github.com/StylizedAce/DaiMaouLiarGame/services/redis"
	"github.com/StylizedAce/DaiMaouLiarGame/services/scheduler"
	"github.com/StylizedAce/DaiMaouLiarGame/services/socket_io"
	socketio_types "github.com/StylizedAce/DaiMaouLiarGame/services/socket_io/types"
	"github.com/StylizedAce/DaiMaouLiarGame/services/socket_io/utils/game_flow"
	gamesync "github.com/StylizedAce/DaiMaouLiarGame/services/sync"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

type lockedSource struct {
	mu  sync.Mutex
	src rand.Source64
}

func (s *lockedSource) Int63() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Int63()
}

func (s *lockedSource) Uint64() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Uint64()
}

func (s *lockedSource) Seed(seed int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.src.Seed(seed)
}

func main() {
	godotenv.Load()
	log.Println("Setting up server...")

	if os.Getenv("PROD") == "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	// The archive database is optional; rooms live entirely in Redis.
	var archive *gamesync.SyncManager
	if os.Getenv("POSTGRES_HOST") != "" {
		gormDB, err := config.ConnectGORM()
		if err != nil {
			log.Fatalf("Error connecting to PostgreSQL: %v", err)
		}
		if os.Getenv("MIGRATE_POSTGRES") == "true" {
			log.Println("Migrating PostgreSQL database...")
			if err := config.MigrateDatabase(gormDB); err != nil {
				log.Printf("Warning: Database migration failed: %v", err)
			}
		}
		sqlDB, err := gormDB.DB()
		if err != nil {
			log.Fatalf("Error reading GORM PostgreSQL instance: %v", err)
		}
		defer sqlDB.Close()
		archive = gamesync.NewSyncManager(gormDB)
	} else {
		log.Println("POSTGRES_HOST unset, finished games will not be archived")
	}

	redisClient, err := config.Connect_redis()
	if err != nil {
		log.Fatalf("Error connecting to Redis: %v", err)
	}
	defer redis.CloseRedis(redisClient)

	// Phase timers for different rooms fire on separate goroutines and
	// share this rng, so the source has to be locked.
	rng := rand.New(&lockedSource{src: rand.NewSource(time.Now().UnixNano()).(rand.Source64)})

	provider, err := questions.NewCSVProvider(rng)
	if err != nil {
		log.Fatalf("Error loading question pairs: %v", err)
	}

	sio := socketio_types.NewSocketServer()
	gf := game_flow.New(redisClient, sio, scheduler.NewPhaseScheduler(),
		locks.NewRegistry(), provider, archive, rng)

	r := gin.Default()

	middleware.SetUpMiddleware(r)
	routes.SetupRoutes(r, redisClient)
	socket_io.Start(r, sio, gf)

	port := os.Getenv("PORT")
	if port == "" {
		if os.Getenv("USE_HTTPS") == "true" {
			port = "443"
		} else {
			port = "8080"
		}
	}

	if os.Getenv("USE_HTTPS") == "true" {
		certFile := os.Getenv("TLS_CERT_FILE")
		keyFile := os.Getenv("TLS_KEY_FILE")
		if err := r.RunTLS(":"+port, certFile, keyFile); err != nil {
			log.Fatalf("Error starting server: %v", err)
		}
	} else {
		if err := r.Run(":" + port); err != nil {
			log.Fatalf("Error starting server: %v", err)
		}
	}
}
