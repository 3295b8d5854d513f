package cache

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/sync/singleflight"

	"github.com/any-hub/resource-hub/internal/metrics"
)

// Store 保存单个资源类型的缓存条目与进行中的请求，多个资源之间互不共享。
// 同一 key 同一时刻至多只有一个进行中的回源请求。
type Store struct {
	name   string
	policy Policy
	clock  clock.Clock

	mu         sync.Mutex
	entries    map[string]Entry
	requests   map[string]uint64
	group      *singleflight.Group
	seq        uint64
	generation uint64
}

// Option 调整 Store 的可选依赖。
type Option func(*Store)

// WithClock 替换默认时钟，测试中配合 clock.NewMock 控制过期。
func WithClock(c clock.Clock) Option {
	return func(s *Store) {
		if c != nil {
			s.clock = c
		}
	}
}

// NewStore 以资源名与缓存时长构建 Store，时长语义见 Policy。
func NewStore(name string, ttl time.Duration, opts ...Option) *Store {
	s := &Store{
		name:     name,
		policy:   NewPolicy(ttl),
		clock:    clock.New(),
		entries:  make(map[string]Entry),
		requests: make(map[string]uint64),
		group:    new(singleflight.Group),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name 返回所属资源名。
func (s *Store) Name() string {
	return s.name
}

// Policy 返回构造时确定的缓存策略。
func (s *Store) Policy() Policy {
	return s.policy
}

// GetData 命中未过期缓存时直接返回，否则交给 LoadData。
// 缓存未命中本身不会返回错误，只有回源失败才会。
func (s *Store) GetData(ctx context.Context, opts FetchOptions) (any, error) {
	if err := validateOptions(opts); err != nil {
		return nil, err
	}

	if !opts.NoCache && !opts.RefreshCache {
		if data, ok := s.lookup(opts.Key); ok {
			metrics.RecordLookup(s.name, metrics.ResultHit)
			return data, nil
		}
	}
	metrics.RecordLookup(s.name, metrics.ResultMiss)

	return s.load(ctx, opts, !opts.NoCache && !opts.RefreshCache)
}

// LoadData 回源加载 opts.Key。若该 key 已有进行中的请求则复用其结果，
// 否则调用 opts.Fetch；成功时按策略写缓存，失败时清理进行中记录并原样返回错误，
// 所有合并到该请求上的调用方得到同一个结果或同一个错误。
func (s *Store) LoadData(ctx context.Context, opts FetchOptions) (any, error) {
	if err := validateOptions(opts); err != nil {
		return nil, err
	}
	return s.load(ctx, opts, false)
}

// load 在合并组内回源。合并后的回源不随任一调用方的 ctx 取消，超时由 Fetch 自身负责；
// recheck 为 true 时，成为 leader 后会先重新读取缓存，避免在上一轮请求刚写入后重复回源。
func (s *Store) load(ctx context.Context, opts FetchOptions, recheck bool) (any, error) {
	if opts.NoRequestAggregation {
		metrics.RecordLookup(s.name, metrics.ResultBypass)
		return s.fetch(ctx, opts, s.currentGeneration())
	}

	s.mu.Lock()
	group := s.group
	generation := s.generation
	s.mu.Unlock()

	fetchCtx := context.WithoutCancel(ctx)
	led := false
	data, err, _ := group.Do(opts.Key, func() (any, error) {
		led = true
		if recheck {
			if data, ok := s.lookup(opts.Key); ok {
				return data, nil
			}
		}
		token := s.track(opts.Key, generation)
		defer s.untrack(opts.Key, token)
		return s.fetch(fetchCtx, opts, generation)
	})
	if !led {
		metrics.RecordLookup(s.name, metrics.ResultCoalesced)
	}
	return data, err
}

// RemoveRequest 丢弃 key 的进行中记录而不等待其结束，下一次调用会重新回源。
// 已在等待的调用方仍会拿到原请求的结果。
func (s *Store) RemoveRequest(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.group.Forget(key)
	delete(s.requests, key)
}

// Clean 删除过期时间严格早于当前时间的条目，返回删除数量；不影响进行中的请求。
func (s *Store) Clean() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	removed := 0
	for key, entry := range s.entries {
		if entry.Expired(now) {
			delete(s.entries, key)
			removed++
		}
	}
	metrics.RecordEvictions(s.name, "clean", removed)
	metrics.SetEntries(s.name, len(s.entries))
	return removed
}

// Clear 清空缓存与进行中请求。清空前已发出的请求结束后不会回写缓存。
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	metrics.RecordEvictions(s.name, "clear", len(s.entries))
	s.entries = make(map[string]Entry)
	s.requests = make(map[string]uint64)
	s.group = new(singleflight.Group)
	s.generation++
	metrics.SetEntries(s.name, 0)
}

// Len 返回当前缓存条目数（含已过期但尚未 Clean 的条目）。
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Pending 返回进行中的请求数。
func (s *Store) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// HasEntry 表示 key 是否存在缓存条目，不判断是否过期。
func (s *Store) HasEntry(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[key]
	return ok
}

// Entry 返回 key 的缓存条目副本。
func (s *Store) Entry(key string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	return entry, ok
}

// HasRequest 表示 key 当前是否有进行中的请求。
func (s *Store) HasRequest(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.requests[key]
	return ok
}

func (s *Store) lookup(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok || !entry.Live(s.clock.Now()) {
		return nil, false
	}
	return entry.Data, true
}

func (s *Store) fetch(ctx context.Context, opts FetchOptions, generation uint64) (any, error) {
	data, err := opts.Fetch(ctx, opts, opts.Args...)
	metrics.RecordFetch(s.name, err)
	if err != nil {
		return nil, err
	}
	if !opts.NoCache {
		s.setData(opts.Key, data, generation)
	}
	return data, nil
}

func (s *Store) setData(key string, data any, generation uint64) {
	if !s.policy.Enabled() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Clear 之后结束的请求不回写。
	if generation != s.generation {
		return
	}
	s.entries[key] = Entry{
		Data:      data,
		ExpiresAt: s.policy.ExpiresAt(s.clock.Now()),
	}
	metrics.SetEntries(s.name, len(s.entries))
}

func (s *Store) track(key string, generation uint64) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if generation != s.generation {
		return 0
	}
	s.seq++
	s.requests[key] = s.seq
	return s.seq
}

func (s *Store) untrack(key string, token uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if current, ok := s.requests[key]; ok && current == token {
		delete(s.requests, key)
	}
}

func (s *Store) currentGeneration() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}
