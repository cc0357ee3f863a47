package model

import (
	"time"
)

type BadgeRarity string

const (
	RarityCommon    BadgeRarity = "common"
	RarityUncommon  BadgeRarity = "uncommon"
	RarityRare      BadgeRarity = "rare"
	RarityEpic      BadgeRarity = "epic"
	RarityLegendary BadgeRarity = "legendary"
)

type BadgeCategory string

const (
	CategoryStreak     BadgeCategory = "streak"
	CategoryCompletion BadgeCategory = "completion"
	CategoryPoints     BadgeCategory = "points"
	CategoryEngagement BadgeCategory = "engagement"
)

// CriteriaKind 徽章判定规则的封闭枚举
// 每种规则在 service 层有对应的判定函数，新增规则需要同步注册
type CriteriaKind string

const (
	CriteriaStreakDays    CriteriaKind = "streak_days"
	CriteriaTotalPoints   CriteriaKind = "total_points"
	CriteriaActivityCount CriteriaKind = "activity_count"
	CriteriaActiveDays    CriteriaKind = "active_days"
	CriteriaBeforeHour    CriteriaKind = "before_hour"
	CriteriaAfterHour     CriteriaKind = "after_hour"
)

// BadgeDefinition 徽章目录，静态数据，启动时播种
// swagger:model BadgeDefinition
type BadgeDefinition struct {
	BaseModel
	BadgeType    string        `gorm:"size:64;uniqueIndex;not null" json:"badgeType"`
	Name         string        `gorm:"size:100;not null" json:"name"`
	Icon         string        `gorm:"size:16" json:"icon"`
	Description  string        `gorm:"size:255" json:"description"`
	Category     BadgeCategory `gorm:"size:20" json:"category"`
	Rarity       BadgeRarity   `gorm:"size:20;default:'common'" json:"rarity"`
	PointsValue  int           `gorm:"default:10" json:"pointsValue"`
	CriteriaKind CriteriaKind  `gorm:"size:32;not null" json:"criteriaKind"`
	Threshold    int           `gorm:"default:0" json:"threshold"`
	ActivityType ActivityType  `gorm:"size:32" json:"activityType,omitempty"`
}

func (BadgeDefinition) TableName() string {
	return "badge_definitions"
}

// EarnedBadge 用户获得的徽章，(user_id, badge_type) 唯一
// 唯一索引是幂等性的强制点，不依赖调用方自律
// swagger:model EarnedBadge
type EarnedBadge struct {
	BaseModel
	UserID    uint      `gorm:"index;not null;uniqueIndex:idx_user_badge_type"`
	BadgeType string    `gorm:"size:64;not null;uniqueIndex:idx_user_badge_type" json:"badgeType"`
	EarnedAt  time.Time `gorm:"not null" json:"earnedAt"`
}

func (EarnedBadge) TableName() string {
	return "earned_badges"
}

// DefaultBadges 默认徽章目录
var DefaultBadges = []BadgeDefinition{
	{BadgeType: "first_flame", Name: "First Flame", Icon: "🔥", Description: "Complete your first day of learning", Category: CategoryStreak, Rarity: RarityCommon, PointsValue: 10, CriteriaKind: CriteriaStreakDays, Threshold: 1},
	{BadgeType: "week_warrior", Name: "Week Warrior", Icon: "⚡", Description: "Maintain a 7-day learning streak", Category: CategoryStreak, Rarity: RarityUncommon, PointsValue: 50, CriteriaKind: CriteriaStreakDays, Threshold: 7},
	{BadgeType: "fortnight_fighter", Name: "Fortnight Fighter", Icon: "💪", Description: "Maintain a 14-day learning streak", Category: CategoryStreak, Rarity: RarityRare, PointsValue: 100, CriteriaKind: CriteriaStreakDays, Threshold: 14},
	{BadgeType: "monthly_master", Name: "Monthly Master", Icon: "🏆", Description: "Maintain a 30-day learning streak", Category: CategoryStreak, Rarity: RarityEpic, PointsValue: 250, CriteriaKind: CriteriaStreakDays, Threshold: 30},
	{BadgeType: "century_champion", Name: "Century Champion", Icon: "👑", Description: "Maintain a 100-day learning streak", Category: CategoryStreak, Rarity: RarityLegendary, PointsValue: 1000, CriteriaKind: CriteriaStreakDays, Threshold: 100},
	{BadgeType: "quiz_starter", Name: "Quiz Starter", Icon: "📝", Description: "Complete your first quiz", Category: CategoryCompletion, Rarity: RarityCommon, PointsValue: 10, CriteriaKind: CriteriaActivityCount, Threshold: 1, ActivityType: ActivityQuizComplete},
	{BadgeType: "quiz_expert", Name: "Quiz Expert", Icon: "🎯", Description: "Complete 50 quizzes", Category: CategoryCompletion, Rarity: RarityRare, PointsValue: 150, CriteriaKind: CriteriaActivityCount, Threshold: 50, ActivityType: ActivityQuizComplete},
	{BadgeType: "dedicated_learner", Name: "Dedicated Learner", Icon: "📚", Description: "Learn on 30 different days", Category: CategoryEngagement, Rarity: RarityRare, PointsValue: 120, CriteriaKind: CriteriaActiveDays, Threshold: 30},
	{BadgeType: "point_collector", Name: "Point Collector", Icon: "💎", Description: "Accumulate 1000 points", Category: CategoryPoints, Rarity: RarityUncommon, PointsValue: 75, CriteriaKind: CriteriaTotalPoints, Threshold: 1000},
	{BadgeType: "early_bird", Name: "Early Bird", Icon: "🌅", Description: "Complete an activity before 7 AM", Category: CategoryEngagement, Rarity: RarityCommon, PointsValue: 15, CriteriaKind: CriteriaBeforeHour, Threshold: 7},
	{BadgeType: "night_owl", Name: "Night Owl", Icon: "🦉", Description: "Complete an activity after 10 PM", Category: CategoryEngagement, Rarity: RarityCommon, PointsValue: 15, CriteriaKind: CriteriaAfterHour, Threshold: 22},
}
