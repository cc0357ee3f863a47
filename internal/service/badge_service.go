package service

import (
	"errors"
	"time"

	"edutrack_backend/internal/model"
	"edutrack_backend/internal/repository"

	"gorm.io/gorm"
)

// BadgeService 徽章发放引擎
type BadgeService struct {
	Repo   *repository.BadgeRepository
	Points *PointsService
}

func NewBadgeService(db *gorm.DB, points *PointsService) *BadgeService {
	return &BadgeService{Repo: repository.NewBadgeRepository(db), Points: points}
}

// badgeSnapshot 单次评估使用的用户状态快照
type badgeSnapshot struct {
	Streak    *model.StreakState
	Ledger    *model.PointsLedger
	EventTime time.Time
}

// criteriaHandlers 徽章条件类型到判定函数的映射
// 新增条件类型时在这里注册，未注册的类型一律不发放
var criteriaHandlers = map[model.CriteriaKind]func(tx *gorm.DB, def *model.BadgeDefinition, snap *badgeSnapshot) (bool, error){
	model.CriteriaStreakDays: func(_ *gorm.DB, def *model.BadgeDefinition, snap *badgeSnapshot) (bool, error) {
		return snap.Streak.CurrentStreak >= def.Threshold, nil
	},
	model.CriteriaTotalPoints: func(_ *gorm.DB, def *model.BadgeDefinition, snap *badgeSnapshot) (bool, error) {
		return snap.Ledger.TotalPoints >= def.Threshold, nil
	},
	model.CriteriaActiveDays: func(_ *gorm.DB, def *model.BadgeDefinition, snap *badgeSnapshot) (bool, error) {
		return snap.Streak.TotalActiveDays >= def.Threshold, nil
	},
	model.CriteriaActivityCount: func(tx *gorm.DB, def *model.BadgeDefinition, snap *badgeSnapshot) (bool, error) {
		var count int64
		err := tx.Model(&model.ActivityEvent{}).
			Where("user_id = ? AND activity_type = ?", snap.Streak.UserID, def.ActivityType).
			Count(&count).Error
		if err != nil {
			return false, err
		}
		return count >= int64(def.Threshold), nil
	},
	model.CriteriaBeforeHour: func(_ *gorm.DB, def *model.BadgeDefinition, snap *badgeSnapshot) (bool, error) {
		return snap.EventTime.UTC().Hour() < def.Threshold, nil
	},
	model.CriteriaAfterHour: func(_ *gorm.DB, def *model.BadgeDefinition, snap *badgeSnapshot) (bool, error) {
		return snap.EventTime.UTC().Hour() >= def.Threshold, nil
	},
}

// EvaluateTx 在事务内评估全部徽章定义，返回本次新获得的徽章
// 唯一索引保证同一徽章不会重复发放，重复插入按已发放跳过
func (s *BadgeService) EvaluateTx(tx *gorm.DB, userID uint, snap *badgeSnapshot) ([]model.BadgeDefinition, error) {
	var defs []model.BadgeDefinition
	if err := tx.Order("id ASC").Find(&defs).Error; err != nil {
		return nil, err
	}

	earned := make(map[string]bool)
	var rows []model.EarnedBadge
	if err := tx.Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		earned[row.BadgeType] = true
	}

	var newly []model.BadgeDefinition
	for i := range defs {
		def := &defs[i]
		if earned[def.BadgeType] {
			continue
		}
		handler, ok := criteriaHandlers[def.CriteriaKind]
		if !ok {
			continue
		}
		met, err := handler(tx, def, snap)
		if err != nil {
			return nil, err
		}
		if !met {
			continue
		}

		eb := model.EarnedBadge{UserID: userID, BadgeType: def.BadgeType, EarnedAt: snap.EventTime}
		if err := tx.Create(&eb).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				continue
			}
			return nil, err
		}
		if def.PointsValue > 0 {
			if _, err := s.Points.AwardTx(tx, userID, def.PointsValue); err != nil {
				return nil, err
			}
		}
		newly = append(newly, *def)
	}
	return newly, nil
}

// ListEarned 查询用户已获得的徽章及获得时间
func (s *BadgeService) ListEarned(userID uint) ([]repository.EarnedWithDefinition, error) {
	return s.Repo.FindEarnedByUser(userID)
}

// Catalog 返回全部徽章目录
func (s *BadgeService) Catalog() ([]model.BadgeDefinition, error) {
	return s.Repo.FindAllDefinitions()
}
