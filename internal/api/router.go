package api

import (
	"time"

	"ohhell-service/internal/registry"
	"ohhell-service/internal/ws"
	"ohhell-service/pkg/response"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, reg *registry.Registry) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	wsHandler := ws.NewHandler(reg)

	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{"message": "pong"})
	})

	r.GET("/ws", wsHandler.HandleWS)

	v1 := r.Group("/ohhell/v1")
	{
		v1.GET("/stats", func(c *gin.Context) {
			rooms, players := reg.Stats()
			response.Success(c, gin.H{"rooms": rooms, "players": players})
		})
	}
}
