package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/any-hub/resource-hub/internal/cache"
)

// Duration 提供更灵活的反序列化能力，同时兼容纯秒整数与 Go Duration 字符串。
type Duration time.Duration

// UnmarshalText 使 Viper 可以识别诸如 "30s"、"5m" 或纯数字秒值等配置写法。
func (d *Duration) UnmarshalText(text []byte) error {
	raw := strings.TrimSpace(string(text))
	if raw == "" {
		*d = Duration(0)
		return nil
	}

	if parsed, err := time.ParseDuration(raw); err == nil {
		*d = Duration(parsed)
		return nil
	}

	if intVal, err := parseInt(raw); err == nil {
		*d = Duration(time.Duration(intVal) * time.Second)
		return nil
	}

	return fmt.Errorf("invalid duration value: %s", raw)
}

// DurationValue 返回真实的 time.Duration，便于调用方计算。
func (d Duration) DurationValue() time.Duration {
	return time.Duration(d)
}

// parseInt 支持十进制或 0x 前缀的十六进制字符串解析。
func parseInt(value string) (int64, error) {
	if strings.HasPrefix(value, "0x") || strings.HasPrefix(value, "0X") {
		return strconv.ParseInt(value, 0, 64)
	}
	return strconv.ParseInt(value, 10, 64)
}

// CacheDuration 描述缓存时长：0/"never" 不缓存，"forever" 永不过期，其余为 TTL。
// Set 为 false 表示配置中未出现该字段，资源级配置据此回退到全局值。
type CacheDuration struct {
	TTL     time.Duration
	Forever bool
	Set     bool
}

// ParseCacheDuration 解析 "forever"、"never"、Go duration 或纯秒数。
func ParseCacheDuration(raw string) (CacheDuration, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	switch normalized {
	case "forever", "null":
		return CacheDuration{Forever: true, Set: true}, nil
	case "never", "0":
		return CacheDuration{Set: true}, nil
	case "":
		return CacheDuration{}, nil
	}

	if parsed, err := time.ParseDuration(normalized); err == nil {
		return cacheDurationOf(parsed)
	}
	if seconds, err := strconv.ParseFloat(normalized, 64); err == nil {
		return cacheDurationOf(time.Duration(seconds * float64(time.Second)))
	}
	return CacheDuration{}, fmt.Errorf("无法解析缓存时长: %s", raw)
}

func cacheDurationOf(d time.Duration) (CacheDuration, error) {
	if d < 0 {
		return CacheDuration{}, fmt.Errorf("缓存时长不能为负数: %s", d)
	}
	return CacheDuration{TTL: d, Set: true}, nil
}

// Value 转换为 cache.NewStore 所需的时长，Forever 映射为 cache.Forever。
func (c CacheDuration) Value() time.Duration {
	if c.Forever {
		return cache.Forever
	}
	return c.TTL
}

// String 输出 never / forever / Go duration。
func (c CacheDuration) String() string {
	return cache.NewPolicy(c.Value()).String()
}

// GlobalConfig 描述全局运行时行为，所有资源共享同一份参数。
type GlobalConfig struct {
	ListenPort      int           `mapstructure:"ListenPort"`
	LogLevel        string        `mapstructure:"LogLevel"`
	LogFormat       string        `mapstructure:"LogFormat"`
	LogFilePath     string        `mapstructure:"LogFilePath"`
	LogMaxSize      int           `mapstructure:"LogMaxSize"`
	LogMaxBackups   int           `mapstructure:"LogMaxBackups"`
	LogCompress     bool          `mapstructure:"LogCompress"`
	Endpoint        string        `mapstructure:"Endpoint"`
	CacheDuration   CacheDuration `mapstructure:"CacheDuration"`
	CleanInterval   Duration      `mapstructure:"CleanInterval"`
	UpstreamTimeout Duration      `mapstructure:"UpstreamTimeout"`
}

// ResourceConfig 描述一个远程 REST 资源。
type ResourceConfig struct {
	Name          string        `mapstructure:"Name"`
	Base          string        `mapstructure:"Base"`
	List          string        `mapstructure:"List"`
	Detail        string        `mapstructure:"Detail"`
	Parents       []string      `mapstructure:"Parents"`
	Endpoint      string        `mapstructure:"Endpoint"`
	CacheDuration CacheDuration `mapstructure:"CacheDuration"`
}

// Config 是 TOML 文件映射的整体结构。
type Config struct {
	Global    GlobalConfig     `mapstructure:",squash"`
	Resources []ResourceConfig `mapstructure:"Resource"`
}

// EffectiveCacheDuration 返回资源生效的缓存时长，未覆盖时回退至全局值。
func (c *Config) EffectiveCacheDuration(r ResourceConfig) time.Duration {
	if r.CacheDuration.Set {
		return r.CacheDuration.Value()
	}
	return c.Global.CacheDuration.Value()
}

// EffectiveEndpoint 返回资源使用的 API 地址，未覆盖时回退至全局值。
func (c *Config) EffectiveEndpoint(r ResourceConfig) string {
	if strings.TrimSpace(r.Endpoint) != "" {
		return strings.TrimSpace(r.Endpoint)
	}
	return strings.TrimSpace(c.Global.Endpoint)
}

// ResourceSummaries 返回所有资源的缓存策略摘要，例如 items:30s。
func ResourceSummaries(resources []ResourceConfig, cfg *Config) []string {
	if len(resources) == 0 {
		return nil
	}
	result := make([]string, len(resources))
	for i, res := range resources {
		result[i] = fmt.Sprintf("%s:%s", res.Name, cache.NewPolicy(cfg.EffectiveCacheDuration(res)).String())
	}
	return result
}
