package model

import (
	"time"
)

// DateSet 以 "2006-01-02" 字符串保存的日期集合，JSON 序列化入库
type DateSet []string

func (s DateSet) Contains(date string) bool {
	for _, d := range s {
		if d == date {
			return true
		}
	}
	return false
}

// StreakState 每个用户一行，记录连续学习状态
// Version 字段用于乐观锁，更新必须走条件写
// swagger:model StreakState
type StreakState struct {
	BaseModel
	UserID          uint       `gorm:"uniqueIndex;not null" json:"userId"`
	CurrentStreak   int        `gorm:"default:0" json:"currentStreak"`
	LongestStreak   int        `gorm:"default:0" json:"longestStreak"`
	LastActiveDate  *time.Time `json:"lastActiveDate"`
	FreezeAvailable int        `gorm:"default:0" json:"freezeAvailable"`
	FreezeUsedDates DateSet    `gorm:"serializer:json" json:"freezeUsedDates"`
	TotalActiveDays int        `gorm:"default:0" json:"totalActiveDays"`
	Version         int64      `gorm:"default:0" json:"-"`
}

func (StreakState) TableName() string {
	return "streak_states"
}

// AtRisk 派生状态：今天还没有活动且当前连续天数大于 0
// 当天已用冻结卡视为不在风险中
func (s *StreakState) AtRisk(today time.Time) bool {
	if s.CurrentStreak == 0 || s.LastActiveDate == nil {
		return false
	}
	day := DateOf(today)
	if !s.LastActiveDate.Before(day) {
		return false
	}
	return !s.FreezeUsedDates.Contains(day.Format(DateFormat))
}

// DateFormat 平台统一的日历日格式
const DateFormat = "2006-01-02"

// DateOf 按平台固定的 UTC 时区截断到日历日
func DateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
