package controller

import (
	"errors"
	"time"

	"edutrack_backend/internal/model"
	"edutrack_backend/internal/service"
	"edutrack_backend/internal/util"
	"edutrack_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

type ActivityController struct {
	ActivityService *service.ActivityService
}

func NewActivityController(activityService *service.ActivityService) *ActivityController {
	return &ActivityController{ActivityService: activityService}
}

type logActivityRequest struct {
	ActivityType    string `json:"activityType" binding:"required"`
	DurationSeconds int    `json:"durationSeconds"`
}

// @Summary 记录学习活动
// @Description 记录一次学习活动并联动更新连续天数、积分与徽章
// @Tags 学习进度
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body logActivityRequest true "活动信息"
// @Success 201 {object} util.Response
// @Router /api/progress/activity [post]
func (c *ActivityController) LogActivity(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req logActivityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.ActivityService.LogActivity(claims.UserID, model.ActivityType(req.ActivityType), req.DurationSeconds, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, util.ErrInvalidActivityType), errors.Is(err, util.ErrInvalidDuration):
			util.BadRequest(ctx, err.Error())
		case errors.Is(err, util.ErrConcurrencyConflict):
			util.ServiceUnavailable(ctx, "系统繁忙，请稍后重试")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	monitoring.ActivityCounter.WithLabelValues(req.ActivityType).Inc()
	for _, badge := range result.NewBadges {
		monitoring.BadgeCounter.WithLabelValues(badge.BadgeType).Inc()
	}

	util.Created(ctx, result)
}
