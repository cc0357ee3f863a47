package service

import (
	"errors"
	"time"

	"edutrack_backend/internal/model"
	"edutrack_backend/internal/repository"
	"edutrack_backend/internal/util"

	"gorm.io/gorm"
)

// StreakService 连续学习天数管理
type StreakService struct {
	DB             *gorm.DB
	Repo           *repository.StreakRepository
	Locks          *KeyedMutex
	InitialFreezes int
}

func NewStreakService(db *gorm.DB, locks *KeyedMutex, initialFreezes int) *StreakService {
	return &StreakService{
		DB:             db,
		Repo:           repository.NewStreakRepository(db),
		Locks:          locks,
		InitialFreezes: initialFreezes,
	}
}

// GetOrInit 查询用户连续状态，未初始化时返回零值（不落库）
func (s *StreakService) GetOrInit(userID uint) (*model.StreakState, error) {
	st, err := s.Repo.FindByUser(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &model.StreakState{
				UserID:          userID,
				FreezeAvailable: s.InitialFreezes,
			}, nil
		}
		return nil, err
	}
	return st, nil
}

// View 构造对外展示的连续状态视图
func (s *StreakService) View(st *model.StreakState, now time.Time) model.StreakView {
	v := model.StreakView{
		CurrentStreak:   st.CurrentStreak,
		LongestStreak:   st.LongestStreak,
		FreezeAvailable: st.FreezeAvailable,
		TotalActiveDays: st.TotalActiveDays,
		AtRisk:          st.AtRisk(now),
	}
	if st.LastActiveDate != nil {
		d := model.DateOf(*st.LastActiveDate)
		v.LastActiveDate = &d
	}
	return v
}

// RecordDay 在事务内把一次活动计入连续天数
// 同一天重复活动不再累加；隔天 +1；跨天缺口若全部被冻结覆盖则连续保留，否则重置为 1
func (s *StreakService) RecordDay(tx *gorm.DB, userID uint, now time.Time) (*model.StreakState, error) {
	day := model.DateOf(now)

	var st model.StreakState
	err := tx.Where("user_id = ?", userID).First(&st).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		st = model.StreakState{
			UserID:          userID,
			CurrentStreak:   1,
			LongestStreak:   1,
			LastActiveDate:  &day,
			FreezeAvailable: s.InitialFreezes,
			TotalActiveDays: 1,
		}
		if err := tx.Create(&st).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, util.ErrConcurrencyConflict
			}
			return nil, err
		}
		return &st, nil
	}

	last := model.DateOf(*st.LastActiveDate)
	gap := daysBetween(last, day)
	if gap <= 0 {
		// 当天已计入
		return &st, nil
	}

	switch {
	case gap == 1:
		st.CurrentStreak++
	case allFrozen(st.FreezeUsedDates, last, day):
		// 缺口全部被冻结覆盖，冻结天也计入连续
		st.CurrentStreak += gap
	default:
		st.CurrentStreak = 1
	}
	st.TotalActiveDays++
	st.LastActiveDate = &day
	if st.CurrentStreak > st.LongestStreak {
		st.LongestStreak = st.CurrentStreak
	}

	if err := casUpdateStreak(tx, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// UseFreeze 为当天消耗一枚连续冻结
// 当天已冻结或当前不处于断签风险时为幂等成功；无可用冻结时返回错误
func (s *StreakService) UseFreeze(userID uint, now time.Time) (*model.StreakState, error) {
	unlock := s.Locks.Lock(userID)
	defer unlock()

	key := model.DateOf(now).Format(model.DateFormat)
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		st, err := s.Repo.FindByUser(userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// 从未活动的用户没有可保护的连续，按无操作成功处理
				return s.GetOrInit(userID)
			}
			return nil, err
		}
		if st.FreezeUsedDates.Contains(key) || !st.AtRisk(now) {
			return st, nil
		}
		if st.FreezeAvailable <= 0 {
			return nil, util.ErrNoFreezeAvailable
		}

		st.FreezeAvailable--
		st.FreezeUsedDates = append(st.FreezeUsedDates, key)
		err = casUpdateStreak(s.DB, st)
		if err == nil {
			return st, nil
		}
		if !errors.Is(err, util.ErrConcurrencyConflict) {
			return nil, err
		}
	}
	return nil, util.ErrConcurrencyConflict
}

// casUpdateStreak 基于版本号的条件写，版本不匹配视为并发冲突
func casUpdateStreak(tx *gorm.DB, st *model.StreakState) error {
	oldVersion := st.Version
	st.Version = oldVersion + 1
	res := tx.Model(&model.StreakState{}).
		Where("id = ? AND version = ?", st.ID, oldVersion).
		Select("current_streak", "longest_streak", "last_active_date",
			"freeze_available", "freeze_used_dates", "total_active_days", "version").
		Updates(st)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		st.Version = oldVersion
		return util.ErrConcurrencyConflict
	}
	return nil
}

// daysBetween 两个日历日之间的整天数
func daysBetween(from, to time.Time) int {
	return int(to.Sub(from) / (24 * time.Hour))
}

// allFrozen 判断 (from, to) 开区间内的每一天是否都已冻结
func allFrozen(frozen model.DateSet, from, to time.Time) bool {
	for d := from.AddDate(0, 0, 1); d.Before(to); d = d.AddDate(0, 0, 1) {
		if !frozen.Contains(d.Format(model.DateFormat)) {
			return false
		}
	}
	return true
}
