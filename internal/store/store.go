package store

import (
	"encoding/json"

	"ohhell-service/internal/game"
	"ohhell-service/internal/model"

	"gorm.io/gorm"
)

// Store archives finished-game artifacts. It satisfies game.Archiver.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) SaveGameResult(result game.Result) error {
	standings, err := json.Marshal(result.Standings)
	if err != nil {
		return err
	}
	return s.db.Create(&model.GameResult{
		RoomCode:   result.RoomCode,
		Rounds:     result.Rounds,
		Standings:  standings,
		FinishedAt: result.FinishedAt,
	}).Error
}

func (s *Store) SaveChatReport(report game.Report) error {
	return s.db.Create(&model.ChatReport{
		RoomCode:   report.RoomCode,
		MessageID:  report.MessageID,
		ReporterID: report.ReporterID,
		AuthorID:   report.AuthorID,
		Text:       report.Text,
		Reason:     report.Reason,
	}).Error
}

// ResultsForRoom lists the archived results for a room code, newest first.
func (s *Store) ResultsForRoom(roomCode string) ([]model.GameResult, error) {
	var results []model.GameResult
	err := s.db.Where("room_code = ?", roomCode).Order("id DESC").Find(&results).Error
	return results, err
}
