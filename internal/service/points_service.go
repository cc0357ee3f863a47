package service

import (
	"errors"

	"edutrack_backend/internal/model"
	"edutrack_backend/internal/repository"
	"edutrack_backend/internal/util"

	"gorm.io/gorm"
)

// PointsService 积分账本管理
type PointsService struct {
	DB   *gorm.DB
	Repo *repository.PointsRepository
}

func NewPointsService(db *gorm.DB) *PointsService {
	return &PointsService{DB: db, Repo: repository.NewPointsRepository(db)}
}

// GetLedger 查询用户积分账本，未初始化时返回零值（不落库）
func (s *PointsService) GetLedger(userID uint) (*model.PointsLedger, error) {
	ledger, err := s.Repo.FindByUser(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &model.PointsLedger{UserID: userID}, nil
		}
		return nil, err
	}
	return ledger, nil
}

// View 构造对外展示的积分视图，等级由累计积分推导
func (s *PointsService) View(ledger *model.PointsLedger) model.PointsView {
	return model.PointsView{
		TotalPoints:       ledger.TotalPoints,
		Level:             ledger.Level(),
		PointsToNextLevel: ledger.PointsToNextLevel(),
		LevelProgress:     ledger.LevelProgress(),
	}
}

// AwardTx 在事务内为用户累加积分，金额不允许为负
func (s *PointsService) AwardTx(tx *gorm.DB, userID uint, amount int) (*model.PointsLedger, error) {
	if amount < 0 {
		return nil, util.ErrInvalidAmount
	}

	var ledger model.PointsLedger
	err := tx.Where("user_id = ?", userID).First(&ledger).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		ledger = model.PointsLedger{UserID: userID, TotalPoints: amount}
		if err := tx.Create(&ledger).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, util.ErrConcurrencyConflict
			}
			return nil, err
		}
		return &ledger, nil
	}

	if amount == 0 {
		return &ledger, nil
	}

	oldVersion := ledger.Version
	ledger.TotalPoints += amount
	ledger.Version = oldVersion + 1
	res := tx.Model(&model.PointsLedger{}).
		Where("id = ? AND version = ?", ledger.ID, oldVersion).
		Select("total_points", "version").
		Updates(&ledger)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, util.ErrConcurrencyConflict
	}
	return &ledger, nil
}
