package model

import (
	"time"

	"gorm.io/datatypes"
)

// GameResult is the final table of a finished game. Live room state is never
// written anywhere; only this summary survives the room.
type GameResult struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	RoomCode   string `gorm:"index;not null"`
	Rounds     int
	Standings  datatypes.JSON // []{playerId, playerName, isBot, score}
	FinishedAt time.Time
	CreatedAt  time.Time
}

// ChatReport records a player's report of a chat message, with the reported
// text captured verbatim since the room's chat buffer is ephemeral.
type ChatReport struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	RoomCode   string `gorm:"index;not null"`
	MessageID  string `gorm:"not null"`
	ReporterID string `gorm:"not null"`
	AuthorID   string
	Text       string
	Reason     string
	CreatedAt  time.Time
}
