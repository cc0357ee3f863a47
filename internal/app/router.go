package app

import (
	"edutrack_backend/internal/config"
	"edutrack_backend/internal/middleware"
	"edutrack_backend/internal/model"
	"edutrack_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/auth/register", c.auth.Register)
		public.POST("/auth/login", c.auth.Login)
	}

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.GET("/auth/me", c.auth.Me)

		progress := authGroup.Group("/progress")
		{
			progress.POST("/activity", c.activity.LogActivity)
			progress.GET("/summary", c.analytics.GetSummary)
			progress.GET("/streak", c.streak.GetStreak)
			progress.POST("/streak/freeze", c.streak.UseFreeze)
			progress.GET("/points", c.points.GetPoints)
			progress.GET("/badges", c.badge.GetEarnedBadges)
			progress.GET("/badges/catalog", c.badge.GetCatalog)
			progress.GET("/leaderboard", c.leaderboard.GetLeaderboard)
			progress.GET("/leaderboard/rank", c.leaderboard.GetRank)
			progress.GET("/analytics", c.analytics.GetUserAnalytics)

			// 教师端聚合视图
			teacher := progress.Group("")
			teacher.Use(middleware.RoleMiddleware(model.Teacher))
			{
				teacher.GET("/dashboard", c.dashboard.GetDashboard)
				teacher.GET("/dashboard/at-risk", c.dashboard.GetAtRiskStudents)
			}
		}
	}
}
