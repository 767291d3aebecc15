package memory

import (
	"context"
	"sync"
	"time"
)

// Counter 进程内带过期时间的计数器
//
// 特点：
// - 自增与过期在同一把锁内完成，语义与 Redis INCR/EXPIRE 一致
// - 过期条目在访问时惰性删除，条目数超过上限时整体清扫一次
// - 仅适用于单实例部署，多实例之间不共享计数
type Counter struct {
	mu      sync.Mutex
	entries map[string]*counterEntry
	maxSize int
	now     func() time.Time
}

type counterEntry struct {
	value     int64
	expiresAt time.Time // 零值表示永不过期
}

func (e *counterEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// NewCounter 创建进程内计数器
//
// 参数:
//   - maxSize: 触发清扫的条目数，<=0 时使用 10000
func NewCounter(maxSize int) *Counter {
	if maxSize <= 0 {
		maxSize = 10000
	}
	return &Counter{
		entries: make(map[string]*counterEntry),
		maxSize: maxSize,
		now:     time.Now,
	}
}

// SetClock 替换时间来源（测试用）
func (c *Counter) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Incr 自增计数器，键不存在或已过期时从 1 开始
func (c *Counter) Incr(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	entry, ok := c.entries[key]
	if !ok || entry.expired(now) {
		if len(c.entries) >= c.maxSize {
			c.sweep(now)
		}
		entry = &counterEntry{}
		c.entries[key] = entry
	}
	entry.value++
	return entry.value, nil
}

// Expire 设置键的过期时间，键不存在时忽略
func (c *Counter) Expire(_ context.Context, key string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[key]; ok {
		entry.expiresAt = c.now().Add(ttl)
	}
	return nil
}

// Get 读取当前计数，不存在或已过期返回 0
func (c *Counter) Get(key string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok || entry.expired(c.now()) {
		return 0
	}
	return entry.value
}

// Len 当前保存的条目数（含尚未清扫的过期条目）
func (c *Counter) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Ping 进程内存储始终可用
func (c *Counter) Ping(context.Context) error {
	return nil
}

// sweep 删除所有过期条目，调用方必须持有锁
func (c *Counter) sweep(now time.Time) {
	for key, entry := range c.entries {
		if entry.expired(now) {
			delete(c.entries, key)
		}
	}
}
