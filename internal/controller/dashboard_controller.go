package controller

import (
	"time"

	"edutrack_backend/internal/service"
	"edutrack_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	AnalyticsService *service.AnalyticsService
}

func NewDashboardController(analyticsService *service.AnalyticsService) *DashboardController {
	return &DashboardController{AnalyticsService: analyticsService}
}

// @Summary 教师仪表盘
// @Description 返回班级整体活跃度、连续分布与头部学生
// @Tags 教师端
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/progress/dashboard [get]
func (c *DashboardController) GetDashboard(ctx *gin.Context) {
	dashboard, err := c.AnalyticsService.GetTeacherDashboard(time.Now())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, dashboard)
}

// @Summary 断签风险学生名单
// @Description 返回今天尚未学习、连续记录面临中断的学生
// @Tags 教师端
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/progress/dashboard/at-risk [get]
func (c *DashboardController) GetAtRiskStudents(ctx *gin.Context) {
	students, err := c.AnalyticsService.GetAtRiskStudents(time.Now())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, students)
}
