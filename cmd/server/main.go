package main

import (
	"flag"
	"fmt"

	"ohhell-service/internal/api"
	"ohhell-service/internal/config"
	"ohhell-service/internal/game"
	"ohhell-service/internal/registry"
	"ohhell-service/internal/repo"
	"ohhell-service/internal/store"
	"ohhell-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config.yaml", "path to config file")
	flag.Parse()

	// 1. Load Config
	config.LoadConfig(configPath)

	// 2. Init Logger
	logger.InitLogger(config.GlobalConfig.Server.Mode)
	defer logger.Log.Sync()

	logger.Log.Info("Starting server...", zap.String("mode", config.GlobalConfig.Server.Mode))

	// 3. Init DB & Redis
	repo.InitDB()
	repo.InitRedis()

	var archiver game.Archiver
	if repo.DB != nil {
		archiver = store.New(repo.DB)
	}

	gameCfg := config.GlobalConfig.Game
	reg := registry.New(game.Options{
		GraceTimeout: gameCfg.GraceTimeout,
		ExpireAfter:  gameCfg.RoomExpiry,
		RevealDelay:  gameCfg.RevealDelay,
		BotDelayMin:  gameCfg.BotDelayMin,
		BotDelayMax:  gameCfg.BotDelayMax,
		Archiver:     archiver,
	}, repo.RDB)

	// 4. Init Router
	if config.GlobalConfig.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	// Register Routes
	api.RegisterRoutes(r, reg)

	// 5. Start Server
	addr := fmt.Sprintf(":%s", config.GlobalConfig.Server.Port)
	logger.Log.Info("Server listening", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		logger.Log.Fatal("Server failed to start", zap.Error(err))
	}
}
