package database

import (
	"edutrack_backend/internal/config"
	"edutrack_backend/internal/model"
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Info),
		TranslateError: true,
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	return db, nil
}

// Migrate 建表并播种徽章目录
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.User{},
		&model.ActivityEvent{},
		&model.StreakState{},
		&model.PointsLedger{},
		&model.BadgeDefinition{},
		&model.EarnedBadge{},
	)
	if err != nil {
		return err
	}

	return SeedBadgeCatalog(db)
}

// SeedBadgeCatalog 缺失的默认徽章补齐，已存在的不覆盖
func SeedBadgeCatalog(db *gorm.DB) error {
	for _, def := range model.DefaultBadges {
		var count int64
		if err := db.Model(&model.BadgeDefinition{}).Where("badge_type = ?", def.BadgeType).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			if err := db.Create(&def).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
