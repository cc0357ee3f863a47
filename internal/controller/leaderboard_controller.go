package controller

import (
	"errors"
	"strconv"
	"time"

	"edutrack_backend/internal/service"
	"edutrack_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type LeaderboardController struct {
	LeaderboardService *service.LeaderboardService
}

func NewLeaderboardController(leaderboardService *service.LeaderboardService) *LeaderboardController {
	return &LeaderboardController{LeaderboardService: leaderboardService}
}

// @Summary 查询排行榜
// @Description 按维度与时间窗口返回排行榜前若干名
// @Tags 排行榜
// @Produce json
// @Security BearerAuth
// @Param scope query string false "排行维度 streak|points" default(streak)
// @Param window query string false "时间窗口 daily|weekly|monthly|all_time" default(all_time)
// @Param limit query int false "返回数量" default(10)
// @Success 200 {object} util.Response
// @Router /api/progress/leaderboard [get]
func (c *LeaderboardController) GetLeaderboard(ctx *gin.Context) {
	scope := ctx.DefaultQuery("scope", service.ScopeStreak)
	window := ctx.DefaultQuery("window", service.WindowAllTime)
	limit := 0
	if limitStr := ctx.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil {
			limit = l
		}
	}

	entries, err := c.LeaderboardService.GetLeaderboard(ctx.Request.Context(), scope, window, limit, time.Now())
	if err != nil {
		if errors.Is(err, util.ErrInvalidScope) || errors.Is(err, util.ErrInvalidWindow) {
			util.BadRequest(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, entries)
}

// @Summary 查询个人排名
// @Description 返回指定用户在完整排序中的名次
// @Tags 排行榜
// @Produce json
// @Security BearerAuth
// @Param scope query string false "排行维度 streak|points" default(streak)
// @Param window query string false "时间窗口 daily|weekly|monthly|all_time" default(all_time)
// @Success 200 {object} util.Response
// @Router /api/progress/leaderboard/rank [get]
func (c *LeaderboardController) GetRank(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	scope := ctx.DefaultQuery("scope", service.ScopeStreak)
	window := ctx.DefaultQuery("window", service.WindowAllTime)

	rank, err := c.LeaderboardService.GetRank(claims.UserID, scope, window, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, util.ErrInvalidScope), errors.Is(err, util.ErrInvalidWindow):
			util.BadRequest(ctx, err.Error())
		case errors.Is(err, util.ErrUserNotFound):
			util.NotFound(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, rank)
}
