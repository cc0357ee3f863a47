package controller

import (
	"time"

	"edutrack_backend/internal/service"
	"edutrack_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct {
	AnalyticsService *service.AnalyticsService
}

func NewAnalyticsController(analyticsService *service.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{AnalyticsService: analyticsService}
}

// @Summary 个人进度总览
// @Description 返回连续天数、积分等级与徽章数的汇总
// @Tags 学习分析
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/progress/summary [get]
func (c *AnalyticsController) GetSummary(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	summary, err := c.AnalyticsService.GetSummary(claims.UserID, time.Now())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, summary)
}

// @Summary 个人学习分析
// @Description 返回近 30 天参与度、学习趋势与流失风险评估
// @Tags 学习分析
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/progress/analytics [get]
func (c *AnalyticsController) GetUserAnalytics(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	analytics, err := c.AnalyticsService.GetUserAnalytics(claims.UserID, time.Now())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, analytics)
}
