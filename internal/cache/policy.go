package cache

import "time"

// Forever 作为缓存时长时表示写入的条目永不过期，直到 Clear。
const Forever time.Duration = -1

// Policy 封装 Store 构造时固定的缓存时长策略：
//
//	0       不写缓存（仍合并并发请求）
//	Forever 写入且不过期
//	>0      写入并在 now+TTL 过期
type Policy struct {
	TTL time.Duration
}

// NewPolicy 规范化缓存时长，任意负值都视为 Forever。
func NewPolicy(ttl time.Duration) Policy {
	if ttl < 0 {
		ttl = Forever
	}
	return Policy{TTL: ttl}
}

// Enabled 返回当前策略是否会写入缓存。
func (p Policy) Enabled() bool {
	return p.TTL != 0
}

// ExpiresAt 计算 now 时刻写入的条目过期时间，Forever 返回零值。
func (p Policy) ExpiresAt(now time.Time) time.Time {
	if p.TTL <= 0 {
		return time.Time{}
	}
	return now.Add(p.TTL)
}

// String 输出 never / forever / Go duration，供诊断接口与日志使用。
func (p Policy) String() string {
	switch {
	case p.TTL == 0:
		return "never"
	case p.TTL < 0:
		return "forever"
	default:
		return p.TTL.String()
	}
}
