package service

import (
	"sync"
	"testing"
	"time"

	"edutrack_backend/internal/model"
	"edutrack_backend/internal/testutil"
	"edutrack_backend/internal/util"

	"github.com/stretchr/testify/require"
)

func newActivityService(t *testing.T) *ActivityService {
	db := testutil.NewDB(t)
	locks := NewKeyedMutex()
	streak := NewStreakService(db, locks, 2)
	points := NewPointsService(db)
	badge := NewBadgeService(db, points)
	return NewActivityService(db, streak, points, badge, locks)
}

func badgeTypes(badges []model.BadgeDefinition) []string {
	types := make([]string, 0, len(badges))
	for _, b := range badges {
		types = append(types, b.BadgeType)
	}
	return types
}

func TestLogActivityInvalidInput(t *testing.T) {
	s := newActivityService(t)
	user := testutil.CreateUser(t, s.DB, "Alice", model.Student)

	_, err := s.LogActivity(user.ID, "parkour", 60, day(1))
	require.ErrorIs(t, err, util.ErrInvalidActivityType)

	_, err = s.LogActivity(user.ID, model.ActivityLessonComplete, -1, day(1))
	require.ErrorIs(t, err, util.ErrInvalidDuration)
}

func TestLogActivityPipeline(t *testing.T) {
	s := newActivityService(t)
	user := testutil.CreateUser(t, s.DB, "Alice", model.Student)

	result, err := s.LogActivity(user.ID, model.ActivityLessonComplete, 300, day(1))
	require.NoError(t, err)

	require.Equal(t, 10, result.PointsEarned)
	require.Equal(t, 1, result.Streak.CurrentStreak)
	// first_flame 奖励 10 分，合计 20
	require.Contains(t, badgeTypes(result.NewBadges), "first_flame")
	require.Equal(t, 20, result.Points.TotalPoints)

	var count int64
	require.NoError(t, s.DB.Model(&model.ActivityEvent{}).Where("user_id = ?", user.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestLogActivityQuizBadge(t *testing.T) {
	s := newActivityService(t)
	user := testutil.CreateUser(t, s.DB, "Alice", model.Student)

	result, err := s.LogActivity(user.ID, model.ActivityQuizComplete, 120, day(1))
	require.NoError(t, err)

	types := badgeTypes(result.NewBadges)
	require.Contains(t, types, "first_flame")
	require.Contains(t, types, "quiz_starter")
}

func TestLogActivityNoDuplicateBadges(t *testing.T) {
	s := newActivityService(t)
	user := testutil.CreateUser(t, s.DB, "Alice", model.Student)

	first, err := s.LogActivity(user.ID, model.ActivityLessonComplete, 60, day(1))
	require.NoError(t, err)
	require.NotEmpty(t, first.NewBadges)

	second, err := s.LogActivity(user.ID, model.ActivityLessonComplete, 60, day(1).Add(time.Hour))
	require.NoError(t, err)
	require.Empty(t, second.NewBadges)
	require.Equal(t, 1, second.Streak.CurrentStreak)
}

func TestLogActivityWeekWarrior(t *testing.T) {
	s := newActivityService(t)
	user := testutil.CreateUser(t, s.DB, "Alice", model.Student)

	var last *model.ActivityResult
	for d := 1; d <= 7; d++ {
		var err error
		last, err = s.LogActivity(user.ID, model.ActivityLessonComplete, 60, day(d))
		require.NoError(t, err)
	}
	require.Equal(t, 7, last.Streak.CurrentStreak)
	require.Contains(t, badgeTypes(last.NewBadges), "week_warrior")
}

func TestLogActivityConcurrentSameUser(t *testing.T) {
	s := newActivityService(t)
	user := testutil.CreateUser(t, s.DB, "Alice", model.Student)

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.LogActivity(user.ID, model.ActivityLessonComplete, 60, day(1).Add(time.Duration(i)*time.Minute))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var count int64
	require.NoError(t, s.DB.Model(&model.ActivityEvent{}).Where("user_id = ?", user.ID).Count(&count).Error)
	require.EqualValues(t, n, count)

	st, err := s.Streak.GetOrInit(user.ID)
	require.NoError(t, err)
	require.Equal(t, 1, st.CurrentStreak)
	require.Equal(t, 1, st.TotalActiveDays)

	ledger, err := s.Points.GetLedger(user.ID)
	require.NoError(t, err)
	// n 次基础分 + first_flame 只发一次
	require.Equal(t, n*10+10, ledger.TotalPoints)
}

func TestLogActivityEarlyBird(t *testing.T) {
	s := newActivityService(t)
	user := testutil.CreateUser(t, s.DB, "Alice", model.Student)

	morning := time.Date(2026, 3, 1, 6, 30, 0, 0, time.UTC)
	result, err := s.LogActivity(user.ID, model.ActivityLessonComplete, 60, morning)
	require.NoError(t, err)
	require.Contains(t, badgeTypes(result.NewBadges), "early_bird")
}
