package main

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/youruser/cardforge/internal/api"
	"github.com/youruser/cardforge/internal/util"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Sugar()

	assetsDir := os.Getenv("ASSETS_DIR")
	if assetsDir == "" {
		assetsDir = "assets"
	}
	if err := util.EnsureDir(assetsDir + "/channels"); err != nil {
		log.Fatalw("cannot create assets dir", "dir", assetsDir, "err", err)
	}

	outputDir := os.Getenv("OUTPUT_DIR")
	if outputDir == "" {
		outputDir = "output"
	}
	if err := util.EnsureDir(outputDir); err != nil {
		log.Fatalw("cannot create output dir", "dir", outputDir, "err", err)
	}

	r := gin.Default()
	api.RegisterRoutes(r, api.NewServer(log, assetsDir, outputDir))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Infow("starting server",
		"addr", "http://localhost:"+port,
		"assets", assetsDir,
		"output", outputDir)
	if err := r.Run(":" + port); err != nil && err != http.ErrServerClosed {
		log.Fatalw("server stopped", "err", err)
	}
}
