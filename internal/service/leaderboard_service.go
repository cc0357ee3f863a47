package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"edutrack_backend/internal/model"
	"edutrack_backend/internal/repository"
	"edutrack_backend/internal/util"
	"edutrack_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	ScopeStreak = "streak"
	ScopePoints = "points"

	WindowDaily   = "daily"
	WindowWeekly  = "weekly"
	WindowMonthly = "monthly"
	WindowAllTime = "all_time"

	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

// LeaderboardService 排行榜查询，榜单走 Redis 缓存，排名按需计算
type LeaderboardService struct {
	StreakRepo   *repository.StreakRepository
	PointsRepo   *repository.PointsRepository
	ActivityRepo *repository.ActivityRepository
	UserRepo     *repository.UserRepository
	Redis        *redis.Client
	CacheTTL     time.Duration
}

func NewLeaderboardService(db *gorm.DB, rdb *redis.Client, cacheTTL time.Duration) *LeaderboardService {
	return &LeaderboardService{
		StreakRepo:   repository.NewStreakRepository(db),
		PointsRepo:   repository.NewPointsRepository(db),
		ActivityRepo: repository.NewActivityRepository(db),
		UserRepo:     repository.NewUserRepository(db),
		Redis:        rdb,
		CacheTTL:     cacheTTL,
	}
}

// ValidScope 校验排行榜维度
func ValidScope(scope string) bool {
	return scope == ScopeStreak || scope == ScopePoints
}

// ValidWindow 校验时间窗口
func ValidWindow(window string) bool {
	switch window {
	case WindowDaily, WindowWeekly, WindowMonthly, WindowAllTime:
		return true
	}
	return false
}

// windowStart 滚动窗口的起点，all_time 返回 false
func windowStart(now time.Time, window string) (time.Time, bool) {
	switch window {
	case WindowDaily:
		return now.Add(-24 * time.Hour), true
	case WindowWeekly:
		return now.Add(-7 * 24 * time.Hour), true
	case WindowMonthly:
		return now.Add(-30 * 24 * time.Hour), true
	}
	return time.Time{}, false
}

// GetLeaderboard 查询榜单前 limit 名
func (s *LeaderboardService) GetLeaderboard(ctx context.Context, scope, window string, limit int, now time.Time) ([]model.LeaderboardEntry, error) {
	if !ValidScope(scope) {
		return nil, util.ErrInvalidScope
	}
	if !ValidWindow(window) {
		return nil, util.ErrInvalidWindow
	}
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}

	cacheKey := fmt.Sprintf("leaderboard:%s:%s:%d", scope, window, limit)
	if cached := s.fromCache(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	var entries []model.LeaderboardEntry
	var err error
	if scope == ScopeStreak {
		entries, err = s.streakBoard(limit)
	} else if since, ok := windowStart(now, window); ok {
		entries, err = s.windowPointsBoard(since, limit)
	} else {
		entries, err = s.totalPointsBoard(limit)
	}
	if err != nil {
		return nil, err
	}

	s.toCache(ctx, cacheKey, entries)
	return entries, nil
}

func (s *LeaderboardService) streakBoard(limit int) ([]model.LeaderboardEntry, error) {
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

	entries := make([]model.LeaderboardEntry, 0, len(states))
	for i, st := range states {
		entries = append(entries, model.LeaderboardEntry{
			Rank:           i + 1,
			UserID:         st.UserID,
			Name:           names[st.UserID],
			Score:          st.CurrentStreak,
			SecondaryScore: st.LongestStreak,
		})
	}
	return entries, nil
}

func (s *LeaderboardService) totalPointsBoard(limit int) ([]model.LeaderboardEntry, error) {
	ledgers, err := s.PointsRepo.FindTopByTotal(limit)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(ledgers))
	for _, l := range ledgers {
		ids = append(ids, l.UserID)
	}
	names, err := s.UserRepo.NamesByIDs(ids)
	if err != nil {
		return nil, err
	}
	states, err := s.StreakRepo.ByUserIDs(ids)
	if err != nil {
		return nil, err
	}

	entries := make([]model.LeaderboardEntry, 0, len(ledgers))
	for i, l := range ledgers {
		entries = append(entries, model.LeaderboardEntry{
			Rank:           i + 1,
			UserID:         l.UserID,
			Name:           names[l.UserID],
			Score:          l.TotalPoints,
			SecondaryScore: states[l.UserID].TotalActiveDays,
		})
	}
	return entries, nil
}

func (s *LeaderboardService) windowPointsBoard(since time.Time, limit int) ([]model.LeaderboardEntry, error) {
	// 窗口分数的并列名次由终身积分与注册时间裁决，SQL 排序对并列不稳定，这里取全量后在内存里定序
	scores, err := s.ActivityRepo.WindowScores(since, 0)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(scores))
	for _, sc := range scores {
		ids = append(ids, sc.UserID)
	}
	totals, err := s.PointsRepo.TotalsByUserIDs(ids)
	if err != nil {
		return nil, err
	}
	users, err := s.UserRepo.ByIDs(ids)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(scores, func(i, j int) bool {
		a, b := scores[i], scores[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if totals[a.UserID] != totals[b.UserID] {
			return totals[a.UserID] > totals[b.UserID]
		}
		ua, ub := users[a.UserID], users[b.UserID]
		if !ua.CreatedAt.Equal(ub.CreatedAt) {
			return ua.CreatedAt.Before(ub.CreatedAt)
		}
		return a.UserID < b.UserID
	})
	if len(scores) > limit {
		scores = scores[:limit]
	}

	entries := make([]model.LeaderboardEntry, 0, len(scores))
	for i, sc := range scores {
		entries = append(entries, model.LeaderboardEntry{
			Rank:           i + 1,
			UserID:         sc.UserID,
			Name:           users[sc.UserID].Name,
			Score:          sc.Score,
			SecondaryScore: totals[sc.UserID],
		})
	}
	return entries, nil
}

// GetRank 查询指定用户在榜单中的名次
// 名次 = 严格优于该用户的人数 + 并列集合内的确定位置
func (s *LeaderboardService) GetRank(userID uint, scope, window string, now time.Time) (*model.RankResult, error) {
	if !ValidScope(scope) {
		return nil, util.ErrInvalidScope
	}
	if !ValidWindow(window) {
		return nil, util.ErrInvalidWindow
	}

	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}

	result := &model.RankResult{UserID: userID, Scope: scope, Window: window}
	if scope == ScopeStreak {
		err = s.streakRank(user, result)
	} else if since, ok := windowStart(now, window); ok {
		err = s.windowPointsRank(user, since, result)
	} else {
		err = s.totalPointsRank(user, result)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *LeaderboardService) streakRank(user *model.User, result *model.RankResult) error {
	state, err := s.StreakRepo.FindByUser(user.ID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		// 从未活动的用户排在所有状态行之后，按注册先后定位
		withState, err := s.StreakRepo.CountStates()
		if err != nil {
			return err
		}
		earlier, err := s.UserRepo.CountWithoutStreakCreatedBefore(user.CreatedAt)
		if err != nil {
			return err
		}
		result.Rank = int(withState+earlier) + 1
		return nil
	}

	better, err := s.StreakRepo.CountBetterThan(state, user)
	if err != nil {
		return err
	}
	result.Rank = int(better) + 1
	result.Score = state.CurrentStreak
	return nil
}

func (s *LeaderboardService) totalPointsRank(user *model.User, result *model.RankResult) error {
	ledger, err := s.PointsRepo.FindByUser(user.ID)
	total := 0
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	} else {
		total = ledger.TotalPoints
	}
	result.Score = total

	greater, err := s.PointsRepo.CountTotalsGreater(total)
	if err != nil {
		return err
	}

	if total == 0 {
		// 零分用户没有活跃天数差异，直接按注册先后裁决
		earlier, err := s.PointsRepo.CountZeroPointsCreatedBefore(user.CreatedAt)
		if err != nil {
			return err
		}
		result.Rank = int(greater+earlier) + 1
		return nil
	}

	tied, err := s.PointsRepo.UsersWithTotal(total)
	if err != nil {
		return err
	}
	states, err := s.StreakRepo.ByUserIDs(tied)
	if err != nil {
		return err
	}
	activeDays := make(map[uint]int, len(tied))
	for id, st := range states {
		activeDays[id] = st.TotalActiveDays
	}
	pos, err := s.tiePosition(user, tied, activeDays)
	if err != nil {
		return err
	}
	result.Rank = int(greater) + pos + 1
	return nil
}

func (s *LeaderboardService) windowPointsRank(user *model.User, since time.Time, result *model.RankResult) error {
	score, err := s.ActivityRepo.ScoreForUser(user.ID, since)
	if err != nil {
		return err
	}
	result.Score = score

	greater, err := s.ActivityRepo.CountScoresGreater(since, score)
	if err != nil {
		return err
	}

	if score == 0 {
		ledger, err := s.PointsRepo.FindByUser(user.ID)
		total := 0
		if err == nil {
			total = ledger.TotalPoints
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		better, err := s.PointsRepo.CountWindowInactiveBetter(since, total, user.CreatedAt)
		if err != nil {
			return err
		}
		result.Rank = int(greater+better) + 1
		return nil
	}

	tied, err := s.ActivityRepo.UsersWithScore(since, score)
	if err != nil {
		return err
	}
	totals, err := s.PointsRepo.TotalsByUserIDs(tied)
	if err != nil {
		return err
	}
	pos, err := s.tiePosition(user, tied, totals)
	if err != nil {
		return err
	}
	result.Rank = int(greater) + pos + 1
	return nil
}

// tiePosition 在同分用户集合里按次级分数降序、注册时间升序、ID 升序确定位置
func (s *LeaderboardService) tiePosition(user *model.User, tied []uint, secondary map[uint]int) (int, error) {
	if len(tied) <= 1 {
		return 0, nil
	}
	users, err := s.UserRepo.ByIDs(tied)
	if err != nil {
		return 0, err
	}

	sort.Slice(tied, func(i, j int) bool {
		a, b := tied[i], tied[j]
		if secondary[a] != secondary[b] {
			return secondary[a] > secondary[b]
		}
		ua, ub := users[a], users[b]
		if !ua.CreatedAt.Equal(ub.CreatedAt) {
			return ua.CreatedAt.Before(ub.CreatedAt)
		}
		return a < b
	})
	for i, id := range tied {
		if id == user.ID {
			return i, nil
		}
	}
	return 0, nil
}

func (s *LeaderboardService) fromCache(ctx context.Context, key string) []model.LeaderboardEntry {
	if s.Redis == nil {
		return nil
	}
	data, err := s.Redis.Get(ctx, key).Result()
	if err != nil {
		return nil
	}
	var entries []model.LeaderboardEntry
	if err := json.Unmarshal([]byte(data), &entries); err != nil {
		return nil
	}
	return entries
}

func (s *LeaderboardService) toCache(ctx context.Context, key string, entries []model.LeaderboardEntry) {
	if s.Redis == nil {
		return
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return
	}
	if err := s.Redis.Set(ctx, key, data, s.CacheTTL).Err(); err != nil {
		logger.Log.Warn("排行榜缓存写入失败", zap.String("key", key), zap.Error(err))
	}
}
