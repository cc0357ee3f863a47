package repository

import (
	"time"

	"edutrack_backend/internal/model"

	"gorm.io/gorm"
)

type PointsRepository struct {
	DB *gorm.DB
}

func NewPointsRepository(db *gorm.DB) *PointsRepository {
	return &PointsRepository{DB: db}
}

func (r *PointsRepository) FindByUser(userID uint) (*model.PointsLedger, error) {
	var ledger model.PointsLedger
	err := r.DB.Where("user_id = ?", userID).First(&ledger).Error
	if err != nil {
		return nil, err
	}
	return &ledger, nil
}

// FindTopByTotal 终身积分排行，平分按活跃天数降序、注册时间升序
func (r *PointsRepository) FindTopByTotal(limit int) ([]model.PointsLedger, error) {
	var ledgers []model.PointsLedger
	err := r.DB.
		Joins("JOIN users ON users.id = points_ledgers.user_id").
		Joins("LEFT JOIN streak_states ON streak_states.user_id = points_ledgers.user_id").
		Where("points_ledgers.total_points > 0").
		Order("points_ledgers.total_points DESC, streak_states.total_active_days DESC, users.created_at ASC, points_ledgers.user_id ASC").
		Limit(limit).
		Find(&ledgers).Error
	if err != nil {
		return nil, err
	}
	return ledgers, nil
}

// CountTotalsGreater 终身积分严格更高的用户数
func (r *PointsRepository) CountTotalsGreater(total int) (int64, error) {
	var count int64
	err := r.DB.Model(&model.PointsLedger{}).Where("total_points > ?", total).Count(&count).Error
	return count, err
}

// UsersWithTotal 终身积分恰好相等的用户，平分决胜用
func (r *PointsRepository) UsersWithTotal(total int) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.PointsLedger{}).
		Select("user_id").
		Where("total_points = ?", total).
		Scan(&ids).Error
	return ids, err
}

// TotalsByUserIDs 批量取终身积分，窗口排行的次级分数用
func (r *PointsRepository) TotalsByUserIDs(ids []uint) (map[uint]int, error) {
	totals := make(map[uint]int, len(ids))
	if len(ids) == 0 {
		return totals, nil
	}

	var ledgers []model.PointsLedger
	if err := r.DB.Where("user_id IN ?", ids).Find(&ledgers).Error; err != nil {
		return nil, err
	}
	for _, l := range ledgers {
		totals[l.UserID] = l.TotalPoints
	}
	return totals, nil
}

// CountZeroPointsCreatedBefore 终身积分为零（含无账本行）且注册更早的用户数
func (r *PointsRepository) CountZeroPointsCreatedBefore(createdAt time.Time) (int64, error) {
	var count int64
	err := r.DB.Model(&model.User{}).
		Joins("LEFT JOIN points_ledgers ON points_ledgers.user_id = users.id").
		Where("COALESCE(points_ledgers.total_points, 0) = 0 AND users.created_at < ?", createdAt).
		Count(&count).Error
	return count, err
}

// CountWindowInactiveBetter 窗口内无活动的用户里，终身积分更高或同分注册更早的人数
// 窗口排名里零分用户的平局裁决用
func (r *PointsRepository) CountWindowInactiveBetter(since time.Time, total int, createdAt time.Time) (int64, error) {
	sub := r.DB.Model(&model.ActivityEvent{}).
		Select("DISTINCT user_id").
		Where("occurred_at >= ?", since)

	var count int64
	err := r.DB.Model(&model.User{}).
		Joins("LEFT JOIN points_ledgers ON points_ledgers.user_id = users.id").
		Where("users.id NOT IN (?)", sub).
		Where("COALESCE(points_ledgers.total_points, 0) > ? OR (COALESCE(points_ledgers.total_points, 0) = ? AND users.created_at < ?)",
			total, total, createdAt).
		Count(&count).Error
	return count, err
}
