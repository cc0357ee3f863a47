package repository

import (
	"time"

	"edutrack_backend/internal/model"

	"gorm.io/gorm"
)

type BadgeRepository struct {
	DB *gorm.DB
}

func NewBadgeRepository(db *gorm.DB) *BadgeRepository {
	return &BadgeRepository{DB: db}
}

func (r *BadgeRepository) FindAllDefinitions() ([]model.BadgeDefinition, error) {
	var defs []model.BadgeDefinition
	err := r.DB.Order("id ASC").Find(&defs).Error
	if err != nil {
		return nil, err
	}
	return defs, nil
}

// EarnedWithDefinition 已获得徽章连同目录信息
type EarnedWithDefinition struct {
	model.BadgeDefinition
	EarnedAt time.Time `json:"earnedAt"`
}

func (r *BadgeRepository) FindEarnedByUser(userID uint) ([]EarnedWithDefinition, error) {
	var rows []EarnedWithDefinition
	err := r.DB.Model(&model.BadgeDefinition{}).
		Select("badge_definitions.*, earned_badges.earned_at AS earned_at").
		Joins("JOIN earned_badges ON earned_badges.badge_type = badge_definitions.badge_type").
		Where("earned_badges.user_id = ?", userID).
		Order("earned_badges.earned_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *BadgeRepository) CountEarnedByUser(userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.EarnedBadge{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
