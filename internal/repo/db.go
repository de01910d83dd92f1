package repo

import (
	"ohhell-service/internal/config"
	"ohhell-service/internal/model"
	"ohhell-service/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// InitDB opens the results database when a DSN is configured. Without one
// the service runs fine; game results and chat reports are simply dropped.
func InitDB() {
	dsn := config.GlobalConfig.Database.DSN
	if dsn == "" {
		logger.Log.Info("no database configured, result persistence disabled")
		return
	}

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		logger.Log.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := DB.AutoMigrate(&model.GameResult{}, &model.ChatReport{}); err != nil {
		logger.Log.Fatal("Failed to migrate database", zap.Error(err))
	}
}
