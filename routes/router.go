package routes

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ametel/pressbox/config"
	"github.com/ametel/pressbox/controllers"
	"github.com/ametel/pressbox/middleware"
	"github.com/ametel/pressbox/repository"
	"github.com/ametel/pressbox/services"
	"github.com/ametel/pressbox/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace the default console logger with a file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	store := repository.NewGormArticleStore(db)
	queries := repository.NewQueryBuilder()
	tokens := utils.NewDeleteTokenIssuer(cfg.SessionSecret)
	svc := services.NewArticleService(store, queries, tokens, cfg.PageSize, 0)

	articleController := controllers.NewArticleController(svc, tokens)
	statsController := controllers.NewStatsController(db)

	article := r.Group("/article")
	article.Use(middleware.Session())

	article.GET("/", articleController.Index)
	article.GET("/admin", articleController.Admin)
	article.GET("/stats", statsController.GetStats)
	article.GET("/historique", articleController.History)
	article.GET("/new", articleController.NewForm)
	article.GET("/:id", articleController.Show)
	article.GET("/:id/edit", articleController.EditForm)

	writes := article.Group("")
	writes.Use(middleware.RateLimitMiddleware())
	writes.POST("/new", articleController.Create)
	writes.POST("/:id/edit", articleController.Edit)
	writes.POST("/:id/toggle", articleController.Toggle)
	writes.POST("/:id", articleController.Delete)

	return r
}
