package sync

import (
	"encoding/json"
	"fmt"
	"time"

	postgres_models "github.com/StylizedAce/DaiMaouLiarGame/models/postgres"
	redis_models "github.com/StylizedAce/DaiMaouLiarGame/models/redis"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SyncManager copies finished games out of Redis into PostgreSQL, so the
// room snapshot can expire without losing the result.
type SyncManager struct {
	db *gorm.DB
}

// NewSyncManager creates a new instance of the synchronization manager
func NewSyncManager(db *gorm.DB) *SyncManager {
	return &SyncManager{db: db}
}

// ArchiveFinishedGame writes one GameRecord row for a room that reached
// the results phase. Scores are stored keyed by display name, since
// player ids are meaningless once the room is gone.
func (sm *SyncManager) ArchiveFinishedGame(room *redis_models.GameRoom) error {
	if room.Results == nil {
		return fmt.Errorf("room %s has no results to archive", room.ID)
	}

	scoresByName := make(map[string]int, len(room.Results.TotalScores))
	for playerID, score := range room.Results.TotalScores {
		scoresByName[room.PlayerName(playerID)] = score
	}
	scores, err := json.Marshal(scoresByName)
	if err != nil {
		return fmt.Errorf("error marshaling final scores: %v", err)
	}

	record := postgres_models.GameRecord{
		RoomID:       room.ID,
		Language:     room.Language,
		GameMode:     room.Settings.GameMode,
		RoundsPlayed: room.Results.FinalRound,
		GameComplete: room.Results.GameComplete,
		Reason:       room.Results.Reason,
		Scores:       datatypes.JSON(scores),
		FinishedAt:   time.Now(),
	}

	if err := sm.db.Create(&record).Error; err != nil {
		return fmt.Errorf("error inserting game record: %v", err)
	}
	return nil
}
