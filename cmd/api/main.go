package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/NobreTrajes/os-control/internal/config"
	dbpkg "github.com/NobreTrajes/os-control/internal/db"
	"github.com/NobreTrajes/os-control/internal/logger"
	"github.com/NobreTrajes/os-control/internal/routes"
	"github.com/NobreTrajes/os-control/internal/validators"
)

func main() {

	cfg := config.Load()

	logger.Init(cfg.IsProduction())
	defer logger.Sync()

	validators.RegisterCPFValidation()

	db := dbpkg.NewDB(cfg)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	routes.RegisterRoutes(r, db, cfg)

	logger.Log.Info("server running", zap.String("addr", cfg.Addr()))
	if err := r.Run(cfg.Addr()); err != nil {
		logger.Log.Fatal("failed to start server", zap.Error(err))
	}
}
