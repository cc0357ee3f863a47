package service

import (
	"errors"
	"time"

	"edutrack_backend/internal/model"
	"edutrack_backend/internal/repository"
	"edutrack_backend/internal/util"
	"edutrack_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// maxTxAttempts 并发冲突时流水线的最大重试次数
const maxTxAttempts = 3

// activityPoints 各活动类型的基础积分
var activityPoints = map[model.ActivityType]int{
	model.ActivityLessonComplete:    10,
	model.ActivityQuizComplete:      15,
	model.ActivityChallengeComplete: 25,
	model.ActivityContentView:       2,
	model.ActivityVideoWatched:      5,
	model.ActivityAssignmentSubmit:  20,
	model.ActivityDiscussionPost:    5,
}

// ActivityService 学习活动入口，驱动连续天数、积分与徽章的联动更新
type ActivityService struct {
	DB     *gorm.DB
	Repo   *repository.ActivityRepository
	Streak *StreakService
	Points *PointsService
	Badge  *BadgeService
	Locks  *KeyedMutex
}

func NewActivityService(db *gorm.DB, streak *StreakService, points *PointsService, badge *BadgeService, locks *KeyedMutex) *ActivityService {
	return &ActivityService{
		DB:     db,
		Repo:   repository.NewActivityRepository(db),
		Streak: streak,
		Points: points,
		Badge:  badge,
		Locks:  locks,
	}
}

// LogActivity 记录一次学习活动
// 事件、连续天数、积分、徽章在同一事务内原子更新，冲突时整体重试
func (s *ActivityService) LogActivity(userID uint, activityType model.ActivityType, durationSeconds int, now time.Time) (*model.ActivityResult, error) {
	if !model.ValidActivityType(activityType) {
		return nil, util.ErrInvalidActivityType
	}
	if durationSeconds < 0 {
		return nil, util.ErrInvalidDuration
	}

	unlock := s.Locks.Lock(userID)
	defer unlock()

	var result *model.ActivityResult
	var err error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		result, err = s.logOnce(userID, activityType, durationSeconds, now)
		if !errors.Is(err, util.ErrConcurrencyConflict) {
			return result, err
		}
		logger.Log.Warn("活动流水线并发冲突，重试",
			zap.Uint("user_id", userID),
			zap.Int("attempt", attempt+1))
	}
	return nil, util.ErrConcurrencyConflict
}

func (s *ActivityService) logOnce(userID uint, activityType model.ActivityType, durationSeconds int, now time.Time) (*model.ActivityResult, error) {
	basePoints := activityPoints[activityType]
	occurred := now.UTC()

	var result model.ActivityResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		event := model.ActivityEvent{
			UserID:          userID,
			ActivityType:    activityType,
			OccurredAt:      occurred,
			DurationSeconds: durationSeconds,
			PointsEarned:    basePoints,
		}
		if err := tx.Create(&event).Error; err != nil {
			return err
		}

		st, err := s.Streak.RecordDay(tx, userID, now)
		if err != nil {
			return err
		}
		ledger, err := s.Points.AwardTx(tx, userID, basePoints)
		if err != nil {
			return err
		}

		snap := &badgeSnapshot{Streak: st, Ledger: ledger, EventTime: occurred}
		newBadges, err := s.Badge.EvaluateTx(tx, userID, snap)
		if err != nil {
			return err
		}

		// 徽章奖励积分计入后重新读取账本
		if len(newBadges) > 0 {
			if err := tx.Where("user_id = ?", userID).First(ledger).Error; err != nil {
				return err
			}
		}

		result = model.ActivityResult{
			Streak:       s.Streak.View(st, now),
			Points:       s.Points.View(ledger),
			PointsEarned: basePoints,
			NewBadges:    newBadges,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
