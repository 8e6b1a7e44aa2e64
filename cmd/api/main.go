package main

import (
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"grid-backtest/internal/api/handlers"
	"grid-backtest/internal/api/middleware"
	"grid-backtest/internal/config"
	"grid-backtest/internal/metrics"
	"grid-backtest/internal/util"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		bootLog := util.NewLogger("info")
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}
	log := util.NewLogger(cfg.Server.LogLevel)

	if os.Getenv("POLYGON_API_KEY") == "" {
		log.Warn().Msg("POLYGON_API_KEY is not set; remote backtests will fail, CSV uploads still work")
	}

	if os.Getenv("API_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.Logger(log))
	router.Use(middleware.CORS())
	router.Use(middleware.ErrorHandler())

	backtestHandler := handlers.NewBacktestHandler(cfg, log)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := router.Group("/api/v1")
	{
		api.GET("/backtest", backtestHandler.Run)
		api.POST("/backtest/csv", backtestHandler.RunCSV)
		api.GET("/export", backtestHandler.Export)
	}

	// Serve the built SPA when present, with API routes excluded from the
	// index.html fallback.
	staticDir := cfg.Server.StaticDir
	if _, err := os.Stat(staticDir); err == nil {
		router.Static("/assets", staticDir+"/assets")
		router.StaticFile("/favicon.ico", staticDir+"/favicon.ico")
		router.NoRoute(func(c *gin.Context) {
			if strings.HasPrefix(c.Request.URL.Path, "/api") {
				c.JSON(404, gin.H{"error": "Not found"})
				return
			}
			c.File(staticDir + "/index.html")
		})
		log.Info().Str("dir", staticDir).Msg("serving static files")
	} else {
		log.Info().Str("dir", staticDir).Msg("static directory not found, skipping static file serving")
	}

	addr := ":" + cfg.Server.Port
	log.Info().Str("addr", addr).Msg("starting API server")
	if err := router.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
