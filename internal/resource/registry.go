package resource

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry 按资源名保存 Manager，每个资源类型拥有独立的 Store，互不共享状态。
type Registry struct {
	mu       sync.RWMutex
	managers map[string]*Manager
}

// NewRegistry 创建空注册表。
func NewRegistry() *Registry {
	return &Registry{managers: make(map[string]*Manager)}
}

// Register 加入 Manager，名称大小写不敏感，重复名称返回错误。
func (r *Registry) Register(m *Manager) error {
	if m == nil {
		return fmt.Errorf("manager is required")
	}
	key := normalizeName(m.Name())
	if key == "" {
		return fmt.Errorf("resource name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.managers[key]; exists {
		return fmt.Errorf("resource %s already registered", key)
	}
	if m.Store() != nil {
		for name, other := range r.managers {
			if other.Store() == m.Store() {
				return fmt.Errorf("resource %s shares its store with %s", key, name)
			}
		}
	}
	r.managers[key] = m
	return nil
}

// MustRegister 在注册失败时 panic，适合启动阶段使用。
func (r *Registry) MustRegister(m *Manager) {
	if err := r.Register(m); err != nil {
		panic(err)
	}
}

// Resolve 返回指定资源的 Manager。
func (r *Registry) Resolve(name string) (*Manager, bool) {
	key := normalizeName(name)
	if key == "" {
		return nil, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.managers[key]
	return m, ok
}

// List 返回按名称排序的 Manager 列表。
func (r *Registry) List() []*Manager {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.managers) == 0 {
		return nil
	}

	keys := make([]string, 0, len(r.managers))
	for key := range r.managers {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	result := make([]*Manager, 0, len(keys))
	for _, key := range keys {
		result = append(result, r.managers[key])
	}
	return result
}

// Names 返回所有已注册资源名，供诊断使用。
func (r *Registry) Names() []string {
	items := r.List()
	result := make([]string, len(items))
	for i, m := range items {
		result[i] = normalizeName(m.Name())
	}
	return result
}

// CleanAll 清理所有 Store 中的过期条目，返回删除总数。
func (r *Registry) CleanAll() int {
	removed := 0
	for _, m := range r.List() {
		removed += m.Store().Clean()
	}
	return removed
}

// ClearAll 清空所有 Store，例如登出或测试结束时。
func (r *Registry) ClearAll() {
	for _, m := range r.List() {
		m.Store().Clear()
	}
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
