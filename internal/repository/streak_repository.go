package repository

import (
	"edutrack_backend/internal/model"

	"gorm.io/gorm"
)

type StreakRepository struct {
	DB *gorm.DB
}

func NewStreakRepository(db *gorm.DB) *StreakRepository {
	return &StreakRepository{DB: db}
}

func (r *StreakRepository) FindByUser(userID uint) (*model.StreakState, error) {
	var state model.StreakState
	err := r.DB.Where("user_id = ?", userID).First(&state).Error
	if err != nil {
		return nil, err
	}
	return &state, nil
}

func (r *StreakRepository) FindAll() ([]model.StreakState, error) {
	var states []model.StreakState
	err := r.DB.Find(&states).Error
	if err != nil {
		return nil, err
	}
	return states, nil
}

// FindTopByStreak 连续天数排行，平分按最长纪录降序、最近活跃日升序、注册时间升序
// 排序完全确定，相同快照下两次调用结果一致
func (r *StreakRepository) FindTopByStreak(limit int) ([]model.StreakState, error) {
	var states []model.StreakState
	err := r.DB.
		Joins("JOIN users ON users.id = streak_states.user_id").
		Where("streak_states.current_streak > 0").
		Order("streak_states.current_streak DESC, streak_states.longest_streak DESC, streak_states.last_active_date ASC, users.created_at ASC, streak_states.user_id ASC").
		Limit(limit).
		Find(&states).Error
	if err != nil {
		return nil, err
	}
	return states, nil
}

// CountBetterThan 按连续天数排序中严格优于给定状态的用户数
// getRank = 1 + 该计数，不需要物化整个排行
func (r *StreakRepository) CountBetterThan(state *model.StreakState, user *model.User) (int64, error) {
	var count int64
	err := r.DB.Model(&model.StreakState{}).
		Joins("JOIN users ON users.id = streak_states.user_id").
		Where(`streak_states.current_streak > ?
			OR (streak_states.current_streak = ? AND streak_states.longest_streak > ?)
			OR (streak_states.current_streak = ? AND streak_states.longest_streak = ? AND streak_states.last_active_date < ?)
			OR (streak_states.current_streak = ? AND streak_states.longest_streak = ? AND streak_states.last_active_date = ? AND users.created_at < ?)`,
			state.CurrentStreak,
			state.CurrentStreak, state.LongestStreak,
			state.CurrentStreak, state.LongestStreak, state.LastActiveDate,
			state.CurrentStreak, state.LongestStreak, state.LastActiveDate, user.CreatedAt,
		).
		Count(&count).Error
	return count, err
}

// CountStates 有活动记录（存在状态行）的用户数
func (r *StreakRepository) CountStates() (int64, error) {
	var count int64
	err := r.DB.Model(&model.StreakState{}).Count(&count).Error
	return count, err
}

// ByUserIDs 批量取连续状态
func (r *StreakRepository) ByUserIDs(ids []uint) (map[uint]model.StreakState, error) {
	states := make(map[uint]model.StreakState, len(ids))
	if len(ids) == 0 {
		return states, nil
	}

	var rows []model.StreakState
	if err := r.DB.Where("user_id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, st := range rows {
		states[st.UserID] = st
	}
	return states, nil
}
