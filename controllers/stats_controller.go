package controllers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ametel/pressbox/models"
	"github.com/ametel/pressbox/utils"
)

// StatsController provides aggregate counters for the admin dashboard.
type StatsController struct {
	db *gorm.DB
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db}
}

// GetStats returns article totals and the summed view count.
func (s *StatsController) GetStats(ctx *gin.Context) {
	var articleCount int64
	var publishedCount int64
	var totalViews int64

	if err := s.db.Model(&models.Article{}).Count(&articleCount).Error; err != nil {
		// Fallback to 0 instead of failing the whole endpoint
		articleCount = 0
	}

	if err := s.db.Model(&models.Article{}).Where("published = ?", true).Count(&publishedCount).Error; err != nil {
		publishedCount = 0
	}

	if err := s.db.Model(&models.Article{}).
		Select("COALESCE(SUM(views),0)").
		Scan(&totalViews).Error; err != nil {
		totalViews = 0
	}

	utils.Success(ctx, gin.H{
		"article_count":   articleCount,
		"published_count": publishedCount,
		"draft_count":     articleCount - publishedCount,
		"total_views":     totalViews,
	})
}
