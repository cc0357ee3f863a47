package service

import (
	"testing"

	"edutrack_backend/internal/model"
	"edutrack_backend/internal/testutil"
	"edutrack_backend/internal/util"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func awardPoints(t *testing.T, s *PointsService, userID uint, amount int) *model.PointsLedger {
	t.Helper()
	var ledger *model.PointsLedger
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		ledger, err = s.AwardTx(tx, userID, amount)
		return err
	})
	require.NoError(t, err)
	return ledger
}

func TestAwardAccumulates(t *testing.T) {
	db := testutil.NewDB(t)
	s := NewPointsService(db)
	user := testutil.CreateUser(t, db, "Alice", model.Student)

	awardPoints(t, s, user.ID, 10)
	ledger := awardPoints(t, s, user.ID, 15)
	require.Equal(t, 25, ledger.TotalPoints)
}

func TestAwardNegativeRejected(t *testing.T) {
	db := testutil.NewDB(t)
	s := NewPointsService(db)
	user := testutil.CreateUser(t, db, "Alice", model.Student)

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		_, err := s.AwardTx(tx, user.ID, -5)
		return err
	})
	require.ErrorIs(t, err, util.ErrInvalidAmount)
}

func TestGetLedgerZeroValue(t *testing.T) {
	db := testutil.NewDB(t)
	s := NewPointsService(db)
	user := testutil.CreateUser(t, db, "Alice", model.Student)

	ledger, err := s.GetLedger(user.ID)
	require.NoError(t, err)
	require.Equal(t, 0, ledger.TotalPoints)

	view := s.View(ledger)
	require.Equal(t, 1, view.Level)
	require.Equal(t, 100, view.PointsToNextLevel)
	require.Equal(t, 0.0, view.LevelProgress)
}

func TestLevelDerivation(t *testing.T) {
	db := testutil.NewDB(t)
	s := NewPointsService(db)
	user := testutil.CreateUser(t, db, "Alice", model.Student)

	ledger := awardPoints(t, s, user.ID, 100)
	view := s.View(ledger)
	require.Equal(t, 2, view.Level)
	require.Equal(t, 150, view.PointsToNextLevel)
	require.Equal(t, 0.0, view.LevelProgress)

	ledger = awardPoints(t, s, user.ID, 75)
	view = s.View(ledger)
	require.Equal(t, 2, view.Level)
	require.Equal(t, 50.0, view.LevelProgress)
}
