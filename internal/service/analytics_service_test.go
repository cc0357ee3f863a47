package service

import (
	"testing"

	"edutrack_backend/internal/model"
	"edutrack_backend/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAnalyticsFixture(t *testing.T) (*gorm.DB, *ActivityService, *AnalyticsService) {
	db := testutil.NewDB(t)
	locks := NewKeyedMutex()
	streak := NewStreakService(db, locks, 2)
	points := NewPointsService(db)
	badge := NewBadgeService(db, points)
	activity := NewActivityService(db, streak, points, badge, locks)
	analytics := NewAnalyticsService(db, streak, points)
	return db, activity, analytics
}

func TestSummaryAggregates(t *testing.T) {
	db, activity, analytics := newAnalyticsFixture(t)
	user := testutil.CreateUser(t, db, "Alice", model.Student)

	_, err := activity.LogActivity(user.ID, model.ActivityQuizComplete, 120, day(1))
	require.NoError(t, err)

	summary, err := analytics.GetSummary(user.ID, day(1))
	require.NoError(t, err)
	require.Equal(t, 1, summary.CurrentStreak)
	require.Equal(t, 1, summary.Level)
	// 15 基础分 + first_flame 10 + quiz_starter 10
	require.Equal(t, 35, summary.TotalPoints)
	require.Equal(t, 2, summary.BadgesEarned)
	require.False(t, summary.AtRisk)
}

func TestUserAnalyticsEngagement(t *testing.T) {
	db, activity, analytics := newAnalyticsFixture(t)
	user := testutil.CreateUser(t, db, "Alice", model.Student)

	now := day(30)
	// 近 15 天每天两次活动，前半窗口没有活动
	for d := 16; d <= 30; d++ {
		_, err := activity.LogActivity(user.ID, model.ActivityLessonComplete, 300, day(d))
		require.NoError(t, err)
		_, err = activity.LogActivity(user.ID, model.ActivityContentView, 60, day(d))
		require.NoError(t, err)
	}

	result, err := analytics.GetUserAnalytics(user.ID, now)
	require.NoError(t, err)

	require.Equal(t, 30, result.Engagement.TotalActivities)
	require.Equal(t, 15*360, result.Engagement.TotalTimeSeconds)
	require.Equal(t, 1.0, result.Engagement.AvgDailyActivities)
	require.Equal(t, 15, result.Engagement.ActivityBreakdown[string(model.ActivityLessonComplete)])

	require.Equal(t, "high", result.Predictions.EngagementLevel)
	require.Equal(t, "increasing", result.Predictions.Trend)
	require.Equal(t, 50, result.Predictions.ConsistencyScore)
	require.Equal(t, "low", result.Predictions.RiskOfDropout)
}

func TestUserAnalyticsInactiveUser(t *testing.T) {
	db, _, analytics := newAnalyticsFixture(t)
	user := testutil.CreateUser(t, db, "Alice", model.Student)

	result, err := analytics.GetUserAnalytics(user.ID, day(30))
	require.NoError(t, err)

	require.Equal(t, 0, result.Engagement.TotalActivities)
	require.Equal(t, "low", result.Predictions.EngagementLevel)
	require.Equal(t, "stable", result.Predictions.Trend)
	require.Equal(t, "high", result.Predictions.RiskOfDropout)
	require.NotEmpty(t, result.Predictions.Recommendations)
}

func TestTeacherDashboard(t *testing.T) {
	db, activity, analytics := newAnalyticsFixture(t)

	alice := testutil.CreateUser(t, db, "Alice", model.Student)
	bob := testutil.CreateUser(t, db, "Bob", model.Student)
	testutil.CreateUser(t, db, "Carol", model.Student)

	for d := 1; d <= 9; d++ {
		_, err := activity.LogActivity(alice.ID, model.ActivityLessonComplete, 60, day(d))
		require.NoError(t, err)
	}
	_, err := activity.LogActivity(bob.ID, model.ActivityLessonComplete, 60, day(8))
	require.NoError(t, err)

	dashboard, err := analytics.GetTeacherDashboard(day(9))
	require.NoError(t, err)

	require.Equal(t, 3, dashboard.TotalStudents)
	require.Equal(t, 1, dashboard.ActiveToday)
	require.InDelta(t, 33.3, dashboard.ActiveTodayPercent, 0.01)
	// Bob 今天未活动，Carol 从未活动
	require.Equal(t, 2, dashboard.AtRiskCount)
	require.Equal(t, 1, dashboard.StreakDistribution["8-14"])
	require.Equal(t, 1, dashboard.StreakDistribution["1-7"])
	require.Equal(t, 1, dashboard.StreakDistribution["0"])
	require.Len(t, dashboard.TopPerformers, 2)
	require.Equal(t, alice.ID, dashboard.TopPerformers[0].UserID)
}

func TestAtRiskStudents(t *testing.T) {
	db, activity, analytics := newAnalyticsFixture(t)

	alice := testutil.CreateUser(t, db, "Alice", model.Student)
	bob := testutil.CreateUser(t, db, "Bob", model.Student)

	_, err := activity.LogActivity(alice.ID, model.ActivityLessonComplete, 60, day(1))
	require.NoError(t, err)
	_, err = activity.LogActivity(bob.ID, model.ActivityLessonComplete, 60, day(2))
	require.NoError(t, err)

	students, err := analytics.GetAtRiskStudents(day(2))
	require.NoError(t, err)
	require.Len(t, students, 1)
	require.Equal(t, alice.ID, students[0].UserID)
	require.Equal(t, 1, students[0].CurrentStreak)
	require.NotNil(t, students[0].LastActivity)
}
