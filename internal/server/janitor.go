package server

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"

	"github.com/any-hub/resource-hub/internal/resource"
)

// Janitor 按固定间隔调用 Registry.CleanAll，删除所有资源中已过期的缓存条目。
type Janitor struct {
	registry *resource.Registry
	interval time.Duration
	clock    clock.Clock
	logger   *logrus.Logger
}

// NewJanitor 创建清理器，clk 为空时使用真实时钟。
func NewJanitor(registry *resource.Registry, interval time.Duration, logger *logrus.Logger, clk clock.Clock) *Janitor {
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Janitor{registry: registry, interval: interval, clock: clk, logger: logger}
}

// Start 在后台运行清理循环，ctx 结束后退出并关闭返回的 channel。
// ticker 在返回前创建，调用方推进 mock 时钟不会丢失第一次触发。
func (j *Janitor) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	if j.interval <= 0 {
		close(done)
		return done
	}

	ticker := j.clock.Ticker(j.interval)
	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				j.Sweep()
			}
		}
	}()
	return done
}

// Sweep 执行一次清理并返回删除的条目数。
func (j *Janitor) Sweep() int {
	removed := j.registry.CleanAll()
	if removed > 0 {
		j.logger.WithFields(logrus.Fields{
			"action":  "cache_clean",
			"removed": removed,
		}).Debug("expired cache entries removed")
	}
	return removed
}
