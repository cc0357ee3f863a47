package repository

import (
	"edutrack_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type ActivityRepository struct {
	DB *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{DB: db}
}

func (r *ActivityRepository) FindByUserSince(userID uint, since time.Time) ([]model.ActivityEvent, error) {
	var events []model.ActivityEvent
	err := r.DB.Where("user_id = ? AND occurred_at >= ?", userID, since).
		Order("occurred_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

// UserScore 时间窗内按用户聚合的积分
type UserScore struct {
	UserID uint
	Score  int
}

// WindowScores 窗口内有活动的用户及其积分和，按积分降序
func (r *ActivityRepository) WindowScores(since time.Time, limit int) ([]UserScore, error) {
	var scores []UserScore
	q := r.DB.Model(&model.ActivityEvent{}).
		Select("user_id, SUM(points_earned) AS score").
		Where("occurred_at >= ?", since).
		Group("user_id").
		Order("score DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Scan(&scores).Error
	return scores, err
}

// ScoreForUser 单个用户窗口内的积分和
func (r *ActivityRepository) ScoreForUser(userID uint, since time.Time) (int, error) {
	var score *int
	err := r.DB.Model(&model.ActivityEvent{}).
		Select("SUM(points_earned)").
		Where("user_id = ? AND occurred_at >= ?", userID, since).
		Scan(&score).Error
	if err != nil || score == nil {
		return 0, err
	}
	return *score, nil
}

// CountScoresGreater 窗口内积分严格高于 score 的用户数
func (r *ActivityRepository) CountScoresGreater(since time.Time, score int) (int64, error) {
	var count int64
	sub := r.DB.Model(&model.ActivityEvent{}).
		Select("user_id, SUM(points_earned) AS score").
		Where("occurred_at >= ?", since).
		Group("user_id").
		Having("SUM(points_earned) > ?", score)
	err := r.DB.Table("(?) AS windowed", sub).Count(&count).Error
	return count, err
}

// UsersWithScore 窗口内积分恰好等于 score 的用户，平分决胜用
func (r *ActivityRepository) UsersWithScore(since time.Time, score int) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.ActivityEvent{}).
		Select("user_id").
		Where("occurred_at >= ?", since).
		Group("user_id").
		Having("SUM(points_earned) = ?", score).
		Scan(&ids).Error
	return ids, err
}
