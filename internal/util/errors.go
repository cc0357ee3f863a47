package util

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailRegistered     = errors.New("该邮箱已被注册")
	ErrInvalidActivityType = errors.New("invalid activity type")
	ErrInvalidDuration     = errors.New("duration must not be negative")
	ErrInvalidAmount       = errors.New("points amount must be positive")
	ErrNoFreezeAvailable   = errors.New("no streak freeze available")
	ErrBadgeNotFound       = errors.New("badge not found")
	ErrInvalidScope        = errors.New("invalid leaderboard scope")
	ErrInvalidWindow       = errors.New("invalid leaderboard window")
	ErrConcurrencyConflict = errors.New("concurrent update conflict, please retry")
)
