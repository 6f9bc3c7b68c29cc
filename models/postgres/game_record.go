package postgres

import (
	"time"

	"gorm.io/datatypes"
)

// GameRecord archives one finished game. Rooms themselves live only in
// Redis; this table is the durable trace left behind when a room reaches
// the results phase.
type GameRecord struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	RoomID       string         `gorm:"index;not null" json:"room_id"`
	Language     string         `json:"language"`
	GameMode     string         `json:"game_mode"`
	RoundsPlayed int            `json:"rounds_played"`
	GameComplete bool           `json:"game_complete"`
	Reason       string         `json:"reason"`
	Scores       datatypes.JSON `json:"scores"` // player name -> total score
	FinishedAt   time.Time      `json:"finished_at"`
}
