package service

import (
	"context"
	"testing"
	"time"

	"edutrack_backend/internal/model"
	"edutrack_backend/internal/testutil"
	"edutrack_backend/internal/util"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newLeaderboardFixture(t *testing.T) (*gorm.DB, *ActivityService, *LeaderboardService) {
	db := testutil.NewDB(t)
	locks := NewKeyedMutex()
	streak := NewStreakService(db, locks, 2)
	points := NewPointsService(db)
	badge := NewBadgeService(db, points)
	activity := NewActivityService(db, streak, points, badge, locks)
	leaderboard := NewLeaderboardService(db, nil, time.Minute)
	return db, activity, leaderboard
}

func TestLeaderboardValidation(t *testing.T) {
	_, _, lb := newLeaderboardFixture(t)

	_, err := lb.GetLeaderboard(context.Background(), "karma", WindowAllTime, 10, day(5))
	require.ErrorIs(t, err, util.ErrInvalidScope)

	_, err = lb.GetLeaderboard(context.Background(), ScopeStreak, "yearly", 10, day(5))
	require.ErrorIs(t, err, util.ErrInvalidWindow)
}

func TestStreakLeaderboardOrdering(t *testing.T) {
	db, activity, lb := newLeaderboardFixture(t)

	alice := testutil.CreateUser(t, db, "Alice", model.Student)
	bob := testutil.CreateUser(t, db, "Bob", model.Student)
	carol := testutil.CreateUser(t, db, "Carol", model.Student)

	for d := 1; d <= 3; d++ {
		_, err := activity.LogActivity(alice.ID, model.ActivityLessonComplete, 60, day(d))
		require.NoError(t, err)
	}
	for d := 2; d <= 3; d++ {
		_, err := activity.LogActivity(bob.ID, model.ActivityLessonComplete, 60, day(d))
		require.NoError(t, err)
	}
	_, err := activity.LogActivity(carol.ID, model.ActivityLessonComplete, 60, day(3))
	require.NoError(t, err)

	entries, err := lb.GetLeaderboard(context.Background(), ScopeStreak, WindowAllTime, 10, day(3))
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, alice.ID, entries[0].UserID)
	require.Equal(t, 3, entries[0].Score)
	require.Equal(t, 1, entries[0].Rank)
	require.Equal(t, bob.ID, entries[1].UserID)
	require.Equal(t, carol.ID, entries[2].UserID)
}

func TestPointsLeaderboardAllTime(t *testing.T) {
	db, activity, lb := newLeaderboardFixture(t)

	alice := testutil.CreateUser(t, db, "Alice", model.Student)
	bob := testutil.CreateUser(t, db, "Bob", model.Student)

	_, err := activity.LogActivity(alice.ID, model.ActivityChallengeComplete, 60, day(1))
	require.NoError(t, err)
	_, err = activity.LogActivity(bob.ID, model.ActivityContentView, 60, day(1))
	require.NoError(t, err)

	entries, err := lb.GetLeaderboard(context.Background(), ScopePoints, WindowAllTime, 10, day(1))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, alice.ID, entries[0].UserID)
	// 25 基础分 + first_flame 10 分
	require.Equal(t, 35, entries[0].Score)
}

func TestPointsLeaderboardWindowed(t *testing.T) {
	db, activity, lb := newLeaderboardFixture(t)

	alice := testutil.CreateUser(t, db, "Alice", model.Student)
	bob := testutil.CreateUser(t, db, "Bob", model.Student)

	// Alice 的活动在窗口之外，Bob 的在窗口之内
	_, err := activity.LogActivity(alice.ID, model.ActivityChallengeComplete, 60, day(1))
	require.NoError(t, err)
	_, err = activity.LogActivity(bob.ID, model.ActivityLessonComplete, 60, day(10))
	require.NoError(t, err)

	entries, err := lb.GetLeaderboard(context.Background(), ScopePoints, WindowDaily, 10, day(10).Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, bob.ID, entries[0].UserID)
	require.Equal(t, 10, entries[0].Score)
}

func TestGetRankStreak(t *testing.T) {
	db, activity, lb := newLeaderboardFixture(t)

	alice := testutil.CreateUser(t, db, "Alice", model.Student)
	bob := testutil.CreateUser(t, db, "Bob", model.Student)

	for d := 1; d <= 3; d++ {
		_, err := activity.LogActivity(alice.ID, model.ActivityLessonComplete, 60, day(d))
		require.NoError(t, err)
	}
	_, err := activity.LogActivity(bob.ID, model.ActivityLessonComplete, 60, day(3))
	require.NoError(t, err)

	rank, err := lb.GetRank(bob.ID, ScopeStreak, WindowAllTime, day(3))
	require.NoError(t, err)
	require.Equal(t, 2, rank.Rank)
	require.Equal(t, 1, rank.Score)

	rank, err = lb.GetRank(alice.ID, ScopeStreak, WindowAllTime, day(3))
	require.NoError(t, err)
	require.Equal(t, 1, rank.Rank)
}

func TestGetRankStatelessUser(t *testing.T) {
	db, activity, lb := newLeaderboardFixture(t)

	alice := testutil.CreateUserAt(t, db, "Alice", model.Student, day(1))
	idle1 := testutil.CreateUserAt(t, db, "Idle1", model.Student, day(2))
	idle2 := testutil.CreateUserAt(t, db, "Idle2", model.Student, day(3))

	_, err := activity.LogActivity(alice.ID, model.ActivityLessonComplete, 60, day(4))
	require.NoError(t, err)

	// 从未活动的用户排在所有活跃用户之后，按注册先后定位
	rank, err := lb.GetRank(idle1.ID, ScopeStreak, WindowAllTime, day(4))
	require.NoError(t, err)
	require.Equal(t, 2, rank.Rank)
	require.Equal(t, 0, rank.Score)

	rank, err = lb.GetRank(idle2.ID, ScopeStreak, WindowAllTime, day(4))
	require.NoError(t, err)
	require.Equal(t, 3, rank.Rank)
}

func TestGetRankPointsTieBreak(t *testing.T) {
	db, activity, lb := newLeaderboardFixture(t)

	alice := testutil.CreateUserAt(t, db, "Alice", model.Student, day(1))
	bob := testutil.CreateUserAt(t, db, "Bob", model.Student, day(2))

	// 两人终身积分相同，Alice 活跃天数更多
	_, err := activity.LogActivity(alice.ID, model.ActivityVideoWatched, 60, day(3))
	require.NoError(t, err)
	_, err = activity.LogActivity(alice.ID, model.ActivityVideoWatched, 60, day(4))
	require.NoError(t, err)
	_, err = activity.LogActivity(bob.ID, model.ActivityLessonComplete, 60, day(4))
	require.NoError(t, err)

	rankAlice, err := lb.GetRank(alice.ID, ScopePoints, WindowAllTime, day(4))
	require.NoError(t, err)
	rankBob, err := lb.GetRank(bob.ID, ScopePoints, WindowAllTime, day(4))
	require.NoError(t, err)

	require.Equal(t, rankAlice.Score, rankBob.Score)
	require.Equal(t, 1, rankAlice.Rank)
	require.Equal(t, 2, rankBob.Rank)
}

func TestGetRankUnknownUser(t *testing.T) {
	_, _, lb := newLeaderboardFixture(t)

	_, err := lb.GetRank(9999, ScopeStreak, WindowAllTime, day(1))
	require.ErrorIs(t, err, util.ErrUserNotFound)
}
