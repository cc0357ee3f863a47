package controller

import (
	"errors"
	"time"

	"edutrack_backend/internal/service"
	"edutrack_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type StreakController struct {
	StreakService *service.StreakService
}

func NewStreakController(streakService *service.StreakService) *StreakController {
	return &StreakController{StreakService: streakService}
}

// @Summary 查询连续学习状态
// @Description 返回当前连续天数、历史最长、冻结余量与断签风险
// @Tags 学习进度
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/progress/streak [get]
func (c *StreakController) GetStreak(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	state, err := c.StreakService.GetOrInit(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, c.StreakService.View(state, time.Now()))
}

// @Summary 使用连续冻结
// @Description 为当天消耗一枚冻结，保护连续记录不因缺勤中断
// @Tags 学习进度
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/progress/streak/freeze [post]
func (c *StreakController) UseFreeze(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	now := time.Now()
	state, err := c.StreakService.UseFreeze(claims.UserID, now)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrNoFreezeAvailable):
			util.BadRequest(ctx, err.Error())
		case errors.Is(err, util.ErrConcurrencyConflict):
			util.ServiceUnavailable(ctx, "系统繁忙，请稍后重试")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, c.StreakService.View(state, now))
}
