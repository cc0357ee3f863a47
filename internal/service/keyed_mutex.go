package service

import (
	"strconv"
	"sync"

	"github.com/puzpuzpuz/xsync"
)

// KeyedMutex 按用户ID分键的互斥锁
// 同一用户的状态变更在进程内串行化，跨进程由版本号条件写兜底
type KeyedMutex struct {
	locks *xsync.MapOf[string, *sync.Mutex]
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: xsync.NewMapOf[*sync.Mutex]()}
}

// Lock 锁定指定用户，返回解锁函数
func (m *KeyedMutex) Lock(userID uint) func() {
	key := strconv.FormatUint(uint64(userID), 10)
	mu, _ := m.locks.LoadOrStore(key, &sync.Mutex{})
	mu.Lock()
	return mu.Unlock
}
