package service

import (
	"testing"
	"time"

	"edutrack_backend/internal/model"
	"edutrack_backend/internal/testutil"
	"edutrack_backend/internal/util"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func day(n int) time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC).AddDate(0, 0, n-1)
}

func newStreakService(t *testing.T, initialFreezes int) *StreakService {
	db := testutil.NewDB(t)
	return NewStreakService(db, NewKeyedMutex(), initialFreezes)
}

func recordDay(t *testing.T, s *StreakService, userID uint, now time.Time) *model.StreakState {
	t.Helper()
	var st *model.StreakState
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		st, err = s.RecordDay(tx, userID, now)
		return err
	})
	require.NoError(t, err)
	return st
}

func TestRecordDayFirstActivity(t *testing.T) {
	s := newStreakService(t, 2)
	user := testutil.CreateUser(t, s.DB, "Alice", model.Student)

	st := recordDay(t, s, user.ID, day(1))
	require.Equal(t, 1, st.CurrentStreak)
	require.Equal(t, 1, st.LongestStreak)
	require.Equal(t, 1, st.TotalActiveDays)
	require.Equal(t, 2, st.FreezeAvailable)
	require.Equal(t, model.DateOf(day(1)), *st.LastActiveDate)
}

func TestRecordDaySameDayIdempotent(t *testing.T) {
	s := newStreakService(t, 2)
	user := testutil.CreateUser(t, s.DB, "Alice", model.Student)

	recordDay(t, s, user.ID, day(1))
	st := recordDay(t, s, user.ID, day(1).Add(3*time.Hour))
	require.Equal(t, 1, st.CurrentStreak)
	require.Equal(t, 1, st.TotalActiveDays)
}

func TestRecordDayConsecutive(t *testing.T) {
	s := newStreakService(t, 2)
	user := testutil.CreateUser(t, s.DB, "Alice", model.Student)

	recordDay(t, s, user.ID, day(1))
	recordDay(t, s, user.ID, day(2))
	st := recordDay(t, s, user.ID, day(3))
	require.Equal(t, 3, st.CurrentStreak)
	require.Equal(t, 3, st.LongestStreak)
	require.Equal(t, 3, st.TotalActiveDays)
}

func TestRecordDayGapResets(t *testing.T) {
	s := newStreakService(t, 2)
	user := testutil.CreateUser(t, s.DB, "Alice", model.Student)

	recordDay(t, s, user.ID, day(1))
	recordDay(t, s, user.ID, day(2))
	st := recordDay(t, s, user.ID, day(4))
	require.Equal(t, 1, st.CurrentStreak)
	require.Equal(t, 2, st.LongestStreak)
	require.Equal(t, 3, st.TotalActiveDays)
}

func TestFreezeCoversGap(t *testing.T) {
	s := newStreakService(t, 1)
	user := testutil.CreateUser(t, s.DB, "Alice", model.Student)

	recordDay(t, s, user.ID, day(1))

	frozen, err := s.UseFreeze(user.ID, day(2))
	require.NoError(t, err)
	require.Equal(t, 0, frozen.FreezeAvailable)
	require.True(t, frozen.FreezeUsedDates.Contains(model.DateOf(day(2)).Format(model.DateFormat)))

	st := recordDay(t, s, user.ID, day(3))
	require.Equal(t, 3, st.CurrentStreak)
	require.Equal(t, 2, st.TotalActiveDays)
}

func TestGapWithoutFreezeResets(t *testing.T) {
	s := newStreakService(t, 1)
	user := testutil.CreateUser(t, s.DB, "Alice", model.Student)

	recordDay(t, s, user.ID, day(1))
	st := recordDay(t, s, user.ID, day(3))
	require.Equal(t, 1, st.CurrentStreak)
}

func TestUseFreezeIdempotentSameDay(t *testing.T) {
	s := newStreakService(t, 2)
	user := testutil.CreateUser(t, s.DB, "Alice", model.Student)

	recordDay(t, s, user.ID, day(1))

	first, err := s.UseFreeze(user.ID, day(2))
	require.NoError(t, err)
	require.Equal(t, 1, first.FreezeAvailable)

	second, err := s.UseFreeze(user.ID, day(2))
	require.NoError(t, err)
	require.Equal(t, 1, second.FreezeAvailable)
}

func TestUseFreezeExhausted(t *testing.T) {
	s := newStreakService(t, 1)
	user := testutil.CreateUser(t, s.DB, "Alice", model.Student)

	recordDay(t, s, user.ID, day(1))

	_, err := s.UseFreeze(user.ID, day(2))
	require.NoError(t, err)

	recordDay(t, s, user.ID, day(3))
	_, err = s.UseFreeze(user.ID, day(4))
	require.ErrorIs(t, err, util.ErrNoFreezeAvailable)
}

func TestUseFreezeNotAtRiskNoop(t *testing.T) {
	s := newStreakService(t, 2)
	user := testutil.CreateUser(t, s.DB, "Alice", model.Student)

	recordDay(t, s, user.ID, day(1))

	// 当天已活动，不消耗冻结
	st, err := s.UseFreeze(user.ID, day(1))
	require.NoError(t, err)
	require.Equal(t, 2, st.FreezeAvailable)
}

func TestGetOrInitZeroValue(t *testing.T) {
	s := newStreakService(t, 2)
	user := testutil.CreateUser(t, s.DB, "Alice", model.Student)

	st, err := s.GetOrInit(user.ID)
	require.NoError(t, err)
	require.Equal(t, 0, st.CurrentStreak)
	require.Equal(t, 2, st.FreezeAvailable)
	require.Nil(t, st.LastActiveDate)

	var count int64
	require.NoError(t, s.DB.Model(&model.StreakState{}).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestAtRiskView(t *testing.T) {
	s := newStreakService(t, 2)
	user := testutil.CreateUser(t, s.DB, "Alice", model.Student)

	recordDay(t, s, user.ID, day(1))
	st, err := s.GetOrInit(user.ID)
	require.NoError(t, err)

	require.False(t, s.View(st, day(1)).AtRisk)
	require.True(t, s.View(st, day(2)).AtRisk)
}
