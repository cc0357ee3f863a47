package service

import (
	"math"
	"time"

	"edutrack_backend/internal/model"
	"edutrack_backend/internal/repository"

	"gorm.io/gorm"
)

// analyticsWindowDays 参与度分析的回看窗口
const analyticsWindowDays = 30

// AnalyticsService 学习分析与教师仪表盘
type AnalyticsService struct {
	ActivityRepo *repository.ActivityRepository
	StreakRepo   *repository.StreakRepository
	BadgeRepo    *repository.BadgeRepository
	UserRepo     *repository.UserRepository
	Streak       *StreakService
	Points       *PointsService
}

func NewAnalyticsService(db *gorm.DB, streak *StreakService, points *PointsService) *AnalyticsService {
	return &AnalyticsService{
		ActivityRepo: repository.NewActivityRepository(db),
		StreakRepo:   repository.NewStreakRepository(db),
		BadgeRepo:    repository.NewBadgeRepository(db),
		UserRepo:     repository.NewUserRepository(db),
		Streak:       streak,
		Points:       points,
	}
}

// GetSummary 个人进度总览
func (s *AnalyticsService) GetSummary(userID uint, now time.Time) (*model.ProgressSummary, error) {
	state, err := s.Streak.GetOrInit(userID)
	if err != nil {
		return nil, err
	}
	ledger, err := s.Points.GetLedger(userID)
	if err != nil {
		return nil, err
	}
	badgeCount, err := s.BadgeRepo.CountEarnedByUser(userID)
	if err != nil {
		return nil, err
	}
	return &model.ProgressSummary{
		CurrentStreak:   state.CurrentStreak,
		LongestStreak:   state.LongestStreak,
		AtRisk:          state.AtRisk(now),
		TotalPoints:     ledger.TotalPoints,
		Level:           ledger.Level(),
		LevelProgress:   ledger.LevelProgress(),
		BadgesEarned:    int(badgeCount),
		TotalActiveDays: state.TotalActiveDays,
	}, nil
}

// GetUserAnalytics 近 30 天参与度、趋势与流失风险
func (s *AnalyticsService) GetUserAnalytics(userID uint, now time.Time) (*model.UserAnalytics, error) {
	since := now.Add(-analyticsWindowDays * 24 * time.Hour)
	events, err := s.ActivityRepo.FindByUserSince(userID, since)
	if err != nil {
		return nil, err
	}
	state, err := s.Streak.GetOrInit(userID)
	if err != nil {
		return nil, err
	}
	ledger, err := s.Points.GetLedger(userID)
	if err != nil {
		return nil, err
	}
	badgeCount, err := s.BadgeRepo.CountEarnedByUser(userID)
	if err != nil {
		return nil, err
	}

	engagement := summarizeEngagement(events)
	predictions := predict(events, state, now)

	return &model.UserAnalytics{
		Streak:      s.Streak.View(state, now),
		Engagement:  engagement,
		Points:      s.Points.View(ledger),
		BadgeCount:  int(badgeCount),
		Predictions: predictions,
	}, nil
}

func summarizeEngagement(events []model.ActivityEvent) model.EngagementSummary {
	breakdown := make(map[string]int)
	totalTime := 0
	for _, e := range events {
		breakdown[string(e.ActivityType)]++
		totalTime += e.DurationSeconds
	}
	avg := float64(len(events)) / analyticsWindowDays
	return model.EngagementSummary{
		TotalActivities:    len(events),
		TotalTimeSeconds:   totalTime,
		AvgDailyActivities: math.Round(avg*100) / 100,
		ActivityBreakdown:  breakdown,
	}
}

func predict(events []model.ActivityEvent, state *model.StreakState, now time.Time) model.Predictions {
	avg := float64(len(events)) / analyticsWindowDays
	engagementLevel := "low"
	if avg >= 1.0 {
		engagementLevel = "high"
	} else if avg >= 0.3 {
		engagementLevel = "moderate"
	}

	activeDays := make(map[string]bool)
	for _, e := range events {
		activeDays[e.OccurredAt.Format(model.DateFormat)] = true
	}
	consistency := len(activeDays) * 100 / analyticsWindowDays
	if consistency > 100 {
		consistency = 100
	}

	// 前后 15 天对比，绝对变化不超过 2 视为持平
	mid := now.Add(-analyticsWindowDays / 2 * 24 * time.Hour)
	firstHalf, secondHalf := 0, 0
	for _, e := range events {
		if e.OccurredAt.Before(mid) {
			firstHalf++
		} else {
			secondHalf++
		}
	}
	trend := "stable"
	if secondHalf-firstHalf > 2 {
		trend = "increasing"
	} else if firstHalf-secondHalf > 2 {
		trend = "decreasing"
	}

	daysSince := analyticsWindowDays
	if state.LastActiveDate != nil {
		daysSince = daysBetween(model.DateOf(*state.LastActiveDate), model.DateOf(now))
		if daysSince < 0 {
			daysSince = 0
		}
	}
	atRisk := state.AtRisk(now)

	recency := daysSince
	if recency > 7 {
		recency = 7
	}
	riskScore := recency*40/7 + (100-consistency)*40/100
	if atRisk {
		riskScore += 20
	}
	risk := "low"
	if riskScore > 66 {
		risk = "high"
	} else if riskScore > 33 {
		risk = "medium"
	}

	var recommendations []string
	if daysSince >= 2 {
		recommendations = append(recommendations, "今天回来学习，重新建立连续记录")
	}
	if consistency < 50 {
		recommendations = append(recommendations, "每天固定一个学习时间段，培养稳定的学习习惯")
	}
	if trend == "decreasing" {
		recommendations = append(recommendations, "最近学习量在下降，试着从短课程重新找回节奏")
	}
	if engagementLevel == "low" {
		recommendations = append(recommendations, "从每天一节课开始，逐步提高学习频率")
	}
	if len(recommendations) == 0 {
		recommendations = append(recommendations, "保持当前节奏，学习状态很好")
	}

	return model.Predictions{
		EngagementLevel:  engagementLevel,
		ConsistencyScore: consistency,
		Trend:            trend,
		RiskOfDropout:    risk,
		RiskScore:        riskScore,
		Recommendations:  recommendations,
	}
}

// GetTeacherDashboard 班级整体学习状况
func (s *AnalyticsService) GetTeacherDashboard(now time.Time) (*model.TeacherDashboard, error) {
	totalStudents, err := s.UserRepo.CountStudents()
	if err != nil {
		return nil, err
	}
	states, err := s.StreakRepo.FindAll()
	if err != nil {
		return nil, err
	}

	today := model.DateOf(now)
	todayKey := today.Format(model.DateFormat)
	activeToday, frozenToday := 0, 0
	streakSum := 0
	distribution := map[string]int{"0": 0, "1-7": 0, "8-14": 0, "15-30": 0, "30+": 0}
	for _, st := range states {
		if st.LastActiveDate != nil && model.DateOf(*st.LastActiveDate).Equal(today) {
			activeToday++
		} else if st.FreezeUsedDates.Contains(todayKey) {
			frozenToday++
		}
		streakSum += st.CurrentStreak
		distribution[streakBucket(st.CurrentStreak)]++
	}

	// 从未活动的学生计入 0 档与风险名单
	if stateless := int(totalStudents) - len(states); stateless > 0 {
		distribution["0"] += stateless
	}

	atRisk := int(totalStudents) - activeToday - frozenToday
	if atRisk < 0 {
		atRisk = 0
	}

	percent := 0.0
	if totalStudents > 0 {
		percent = math.Round(float64(activeToday)/float64(totalStudents)*1000) / 10
	}
	avgStreak := 0.0
	if len(states) > 0 {
		avgStreak = math.Round(float64(streakSum)/float64(len(states))*10) / 10
	}

	performers, err := s.topPerformers(5)
	if err != nil {
		return nil, err
	}

	return &model.TeacherDashboard{
		TotalStudents:      int(totalStudents),
		ActiveToday:        activeToday,
		ActiveTodayPercent: percent,
		AtRiskCount:        atRisk,
		AvgStreak:          avgStreak,
		StreakDistribution: distribution,
		TopPerformers:      performers,
	}, nil
}

func streakBucket(streak int) string {
	switch {
	case streak <= 0:
		return "0"
	case streak <= 7:
		return "1-7"
	case streak <= 14:
		return "8-14"
	case streak <= 30:
		return "15-30"
	}
	return "30+"
}

func (s *AnalyticsService) topPerformers(limit int) ([]model.TopPerformer, error) {
	states, err := s.StreakRepo.FindTopByStreak(limit)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(states))
	for _, st := range states {
		ids = append(ids, st.UserID)
	}
	names, err := s.UserRepo.NamesByIDs(ids)
	if err != nil {
		return nil, err
	}

	performers := make([]model.TopPerformer, 0, len(states))
	for _, st := range states {
		performers = append(performers, model.TopPerformer{
			UserID:        st.UserID,
			Name:          names[st.UserID],
			CurrentStreak: st.CurrentStreak,
			LongestStreak: st.LongestStreak,
		})
	}
	return performers, nil
}

// GetAtRiskStudents 当前处于断签风险的学生名单
func (s *AnalyticsService) GetAtRiskStudents(now time.Time) ([]model.AtRiskStudent, error) {
	states, err := s.StreakRepo.FindAll()
	if err != nil {
		return nil, err
	}

	var risky []model.StreakState
	ids := make([]uint, 0)
	for _, st := range states {
		if st.AtRisk(now) {
			risky = append(risky, st)
			ids = append(ids, st.UserID)
		}
	}
	names, err := s.UserRepo.NamesByIDs(ids)
	if err != nil {
		return nil, err
	}

	students := make([]model.AtRiskStudent, 0, len(risky))
	for _, st := range risky {
		students = append(students, model.AtRiskStudent{
			UserID:        st.UserID,
			Name:          names[st.UserID],
			CurrentStreak: st.CurrentStreak,
			LastActivity:  st.LastActiveDate,
		})
	}
	return students, nil
}
