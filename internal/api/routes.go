package api

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"jobfit/internal/config"
)

// RegisterRoutes 注册 API 路由，不包含 /api 前缀。
func RegisterRoutes(
	router *gin.Engine,
	db *gorm.DB,
	redisClient *redis.Client,
	storageClient ObjectStorage,
	checker EligibilityChecker,
	cfg *config.Config,
) {
	checkHandler := NewCheckHandler(db, redisClient, storageClient, checker,
		cfg.Clamd.Address, cfg.Upload.MaxBytes, cfg.Upload.MaxChecksPerDay)
	historyHandler := NewHistoryHandler(db, storageClient)

	v1 := router.Group("/v1")
	{
		eligibilityGroup := v1.Group("/eligibility")
		{
			eligibilityGroup.POST("/check", checkHandler.CheckEligibility)
			eligibilityGroup.GET("/checks", historyHandler.ListChecks)
			eligibilityGroup.GET("/checks/:id", historyHandler.GetCheck)
			eligibilityGroup.GET("/checks/:id/resume-link", historyHandler.GetResumeLink)
		}
	}
}
