package service

import (
	"testing"

	"edutrack_backend/internal/model"
	"edutrack_backend/internal/testutil"

	"github.com/stretchr/testify/require"
)

func TestBadgeCatalogSeeded(t *testing.T) {
	db := testutil.NewDB(t)
	badge := NewBadgeService(db, NewPointsService(db))

	defs, err := badge.Catalog()
	require.NoError(t, err)
	require.Len(t, defs, len(model.DefaultBadges))

	byType := make(map[string]model.BadgeDefinition)
	for _, d := range defs {
		byType[d.BadgeType] = d
	}
	require.Equal(t, model.CriteriaStreakDays, byType["week_warrior"].CriteriaKind)
	require.Equal(t, 7, byType["week_warrior"].Threshold)
	require.Equal(t, 50, byType["week_warrior"].PointsValue)
}

func TestListEarnedWithTimes(t *testing.T) {
	s := newActivityService(t)
	user := testutil.CreateUser(t, s.DB, "Alice", model.Student)

	_, err := s.LogActivity(user.ID, model.ActivityQuizComplete, 60, day(1))
	require.NoError(t, err)

	earned, err := s.Badge.ListEarned(user.ID)
	require.NoError(t, err)
	require.Len(t, earned, 2)
	for _, e := range earned {
		require.False(t, e.EarnedAt.IsZero())
	}
}

func TestPointCollectorFromBadgeDefinition(t *testing.T) {
	db := testutil.NewDB(t)
	points := NewPointsService(db)
	badge := NewBadgeService(db, points)
	user := testutil.CreateUser(t, db, "Alice", model.Student)

	locks := NewKeyedMutex()
	streak := NewStreakService(db, locks, 2)
	activity := NewActivityService(db, streak, points, badge, locks)

	// 40 次挑战 = 1000 基础积分，触发 point_collector
	var badges []string
	for i := 0; i < 40; i++ {
		result, err := activity.LogActivity(user.ID, model.ActivityChallengeComplete, 60, day(1))
		require.NoError(t, err)
		badges = append(badges, badgeTypes(result.NewBadges)...)
	}
	require.Contains(t, badges, "point_collector")
}
