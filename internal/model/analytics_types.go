package model

import "time"

// LeaderboardEntry 排行榜条目，按需计算不落库
type LeaderboardEntry struct {
	Rank           int    `json:"rank"`
	UserID         uint   `json:"userId"`
	Name           string `json:"name"`
	Score          int    `json:"score"`
	SecondaryScore int    `json:"secondaryScore"`
}

// RankResult 单个用户在完整排序中的位置
type RankResult struct {
	UserID uint   `json:"userId"`
	Scope  string `json:"scope"`
	Window string `json:"window"`
	Rank   int    `json:"rank"`
	Score  int    `json:"score"`
}

// StreakView 对外的连续学习状态视图
type StreakView struct {
	CurrentStreak   int        `json:"currentStreak"`
	LongestStreak   int        `json:"longestStreak"`
	LastActiveDate  *time.Time `json:"lastActiveDate"`
	FreezeAvailable int        `json:"freezeAvailable"`
	TotalActiveDays int        `json:"totalActiveDays"`
	AtRisk          bool       `json:"atRisk"`
}

// PointsView 对外的积分视图，等级信息即时派生
type PointsView struct {
	TotalPoints       int     `json:"totalPoints"`
	Level             int     `json:"level"`
	PointsToNextLevel int     `json:"pointsToNextLevel"`
	LevelProgress     float64 `json:"levelProgress"`
}

// ActivityResult 记录活动后的汇总返回
type ActivityResult struct {
	Streak       StreakView        `json:"streak"`
	Points       PointsView        `json:"points"`
	PointsEarned int               `json:"pointsEarned"`
	NewBadges    []BadgeDefinition `json:"newBadges"`
}

// ProgressSummary 学生首页的进度摘要
type ProgressSummary struct {
	CurrentStreak   int     `json:"currentStreak"`
	LongestStreak   int     `json:"longestStreak"`
	AtRisk          bool    `json:"atRisk"`
	TotalPoints     int     `json:"totalPoints"`
	Level           int     `json:"level"`
	LevelProgress   float64 `json:"levelProgress"`
	BadgesEarned    int     `json:"badgesEarned"`
	TotalActiveDays int     `json:"totalActiveDays"`
}

// EngagementSummary 最近 30 天的参与度统计
type EngagementSummary struct {
	TotalActivities    int            `json:"totalActivities"`
	TotalTimeSeconds   int            `json:"totalTimeSeconds"`
	AvgDailyActivities float64        `json:"avgDailyActivities"`
	ActivityBreakdown  map[string]int `json:"activityBreakdown"`
}

// Predictions 基于参与度的简单预测
type Predictions struct {
	EngagementLevel  string   `json:"engagementLevel"`
	ConsistencyScore int      `json:"consistencyScore"`
	Trend            string   `json:"trend"`
	RiskOfDropout    string   `json:"riskOfDropout"`
	RiskScore        int      `json:"riskScore"`
	Recommendations  []string `json:"recommendations"`
}

// UserAnalytics 学生分析视图
type UserAnalytics struct {
	Streak      StreakView        `json:"streak"`
	Engagement  EngagementSummary `json:"engagement"`
	Points      PointsView        `json:"points"`
	BadgeCount  int               `json:"badgeCount"`
	Predictions Predictions       `json:"predictions"`
}

// TopPerformer 教师仪表盘中的头部学生
type TopPerformer struct {
	UserID        uint   `json:"userId"`
	Name          string `json:"name"`
	CurrentStreak int    `json:"currentStreak"`
	LongestStreak int    `json:"longestStreak"`
}

// TeacherDashboard 教师端聚合视图
type TeacherDashboard struct {
	TotalStudents      int            `json:"totalStudents"`
	ActiveToday        int            `json:"activeToday"`
	ActiveTodayPercent float64        `json:"activeTodayPercent"`
	AtRiskCount        int            `json:"atRiskCount"`
	AvgStreak          float64        `json:"avgStreak"`
	StreakDistribution map[string]int `json:"streakDistribution"`
	TopPerformers      []TopPerformer `json:"topPerformers"`
}

// AtRiskStudent 有断签风险的学生
type AtRiskStudent struct {
	UserID        uint       `json:"userId"`
	Name          string     `json:"name"`
	CurrentStreak int        `json:"currentStreak"`
	LastActivity  *time.Time `json:"lastActivity"`
}
