package dataset

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrNotLoaded 尚无可用快照（首次装载失败或尚未装载）
	ErrNotLoaded = errors.New("数据集尚未成功装载")
	// ErrReloadInProgress 已有装载在进行
	ErrReloadInProgress = errors.New("数据集正在重新装载")
)

// Status 装载状态快照
type Status struct {
	Tables        *Tables
	LastError     error
	LastAttemptAt time.Time
}

// Catalog 持有当前快照。
// 读取走 atomic 指针，无锁；重新装载时整体替换，进行中的计算继续使用旧快照。
// 装载失败会清空当前快照，所有计算随之停止，直到手动重新装载成功。
type Catalog struct {
	loader Loader
	logger *zap.Logger

	current atomic.Pointer[Tables]

	mu            sync.Mutex // 保护 lastErr / lastAttemptAt
	lastErr       error
	lastAttemptAt time.Time

	reloading sync.Mutex
}

// NewCatalog 创建 Catalog（不触发装载）
func NewCatalog(loader Loader, logger *zap.Logger) *Catalog {
	return &Catalog{loader: loader, logger: logger}
}

// Load 执行一次装载；不做自动重试
func (c *Catalog) Load(ctx context.Context) error {
	if !c.reloading.TryLock() {
		return ErrReloadInProgress
	}
	defer c.reloading.Unlock()

	t, err := c.loader.Load(ctx)

	c.mu.Lock()
	c.lastAttemptAt = time.Now()
	c.lastErr = err
	c.mu.Unlock()

	if err != nil {
		c.current.Store(nil)
		c.logger.Error("数据集装载失败，计算已停止", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrNotLoaded, err)
	}

	c.current.Store(t)
	return nil
}

// Current 返回当前快照；未装载或最近一次装载失败时返回 ErrNotLoaded
func (c *Catalog) Current() (*Tables, error) {
	t := c.current.Load()
	if t == nil {
		c.mu.Lock()
		lastErr := c.lastErr
		c.mu.Unlock()
		if lastErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotLoaded, lastErr)
		}
		return nil, ErrNotLoaded
	}
	return t, nil
}

// Status 返回装载状态
func (c *Catalog) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		Tables:        c.current.Load(),
		LastError:     c.lastErr,
		LastAttemptAt: c.lastAttemptAt,
	}
}
