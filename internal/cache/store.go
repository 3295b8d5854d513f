package cache

import (
	"context"
	"errors"
	"time"
)

// FetchFunc 执行真实请求，返回值会按 Store 的缓存策略写入。
// opts 为调用方传入的原始选项，args 对应 opts.Args。
type FetchFunc func(ctx context.Context, opts FetchOptions, args ...any) (any, error)

// FetchOptions 描述一次 GetData/LoadData 调用，每次调用单独构造。
type FetchOptions struct {
	// Key 标识同一请求，用于缓存与请求合并。
	Key string
	// Fetch 为缓存未命中时的回源回调。
	Fetch FetchFunc
	// Args 会原样传给 Fetch。
	Args []any

	// NoCache 不读也不写缓存，仍参与请求合并，已有缓存不会被清除。
	NoCache bool
	// NoRequestAggregation 跳过请求合并直接回源，结果仍按策略写入缓存。
	NoRequestAggregation bool
	// RefreshCache 跳过缓存读取但写入新结果，仍参与请求合并。
	RefreshCache bool
}

// Entry 是一条缓存数据，ExpiresAt 为零值表示永不过期。
type Entry struct {
	Data      any
	ExpiresAt time.Time
}

// Expires 表示条目是否设置了过期时间。
func (e Entry) Expires() bool {
	return !e.ExpiresAt.IsZero()
}

// Live 判断条目在 now 时刻是否仍可使用：无过期时间或过期时间晚于 now。
func (e Entry) Live(now time.Time) bool {
	return !e.Expires() || e.ExpiresAt.After(now)
}

// Expired 判断条目在 now 时刻是否应被 Clean 清理（过期时间严格早于 now）。
func (e Entry) Expired(now time.Time) bool {
	return e.Expires() && e.ExpiresAt.Before(now)
}

var (
	// ErrKeyRequired 表示 FetchOptions 缺少 Key。
	ErrKeyRequired = errors.New("cache key required")
	// ErrFetchRequired 表示 FetchOptions 缺少 Fetch 回调。
	ErrFetchRequired = errors.New("fetch callback required")
)

func validateOptions(opts FetchOptions) error {
	if opts.Key == "" {
		return ErrKeyRequired
	}
	if opts.Fetch == nil {
		return ErrFetchRequired
	}
	return nil
}
