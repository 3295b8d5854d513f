package config

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Load 读取并解析 TOML 配置文件，同时注入默认值与校验逻辑。
func Load(path string) (*Config, error) {
	if path == "" {
		path = "config.toml"
	}

	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置失败: %w", err)
	}

	var cfg Config
	hooks := mapstructure.ComposeDecodeHookFunc(durationDecodeHook(), cacheDurationDecodeHook())
	if err := v.Unmarshal(&cfg, viper.DecodeHook(hooks)); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	applyGlobalDefaults(&cfg.Global)
	for i := range cfg.Resources {
		applyResourceDefaults(&cfg.Resources[i])
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ListenPort", 5000)
	v.SetDefault("LogLevel", "info")
	v.SetDefault("LogFormat", "json")
	v.SetDefault("LogFilePath", "")
	v.SetDefault("LogMaxSize", 100)
	v.SetDefault("LogMaxBackups", 10)
	v.SetDefault("LogCompress", true)
	v.SetDefault("CacheDuration", "30s")
	v.SetDefault("CleanInterval", "1m")
	v.SetDefault("UpstreamTimeout", "30s")
}

func applyGlobalDefaults(g *GlobalConfig) {
	if g.ListenPort == 0 {
		g.ListenPort = 5000
	}
	if !g.CacheDuration.Set {
		g.CacheDuration = CacheDuration{TTL: 30 * time.Second, Set: true}
	}
	if g.CleanInterval.DurationValue() == 0 {
		g.CleanInterval = Duration(time.Minute)
	}
	if g.UpstreamTimeout.DurationValue() == 0 {
		g.UpstreamTimeout = Duration(30 * time.Second)
	}
	g.Endpoint = strings.TrimSpace(g.Endpoint)
}

func applyResourceDefaults(r *ResourceConfig) {
	r.Name = strings.TrimSpace(r.Name)
	r.Base = strings.TrimSpace(r.Base)
	r.List = strings.TrimSpace(r.List)
	r.Detail = strings.TrimSpace(r.Detail)
	parents := r.Parents[:0]
	for _, p := range r.Parents {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			parents = append(parents, trimmed)
		}
	}
	r.Parents = parents
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	targetType := reflect.TypeOf(Duration(0))

	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != targetType {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			if v == "" {
				return Duration(0), nil
			}
			if parsed, err := time.ParseDuration(v); err == nil {
				return Duration(parsed), nil
			}
			if seconds, err := strconv.ParseFloat(v, 64); err == nil {
				return Duration(time.Duration(seconds * float64(time.Second))), nil
			}
			return nil, fmt.Errorf("无法解析 Duration 字段: %s", v)
		case int:
			return Duration(time.Duration(v) * time.Second), nil
		case int64:
			return Duration(time.Duration(v) * time.Second), nil
		case float64:
			return Duration(time.Duration(v * float64(time.Second))), nil
		case time.Duration:
			return Duration(v), nil
		case Duration:
			return v, nil
		default:
			return nil, fmt.Errorf("不支持的 Duration 类型: %T", v)
		}
	}
}

// cacheDurationDecodeHook 支持 CacheDuration = "forever" | "never" | "30s" | 30。
func cacheDurationDecodeHook() mapstructure.DecodeHookFunc {
	targetType := reflect.TypeOf(CacheDuration{})

	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != targetType {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return ParseCacheDuration(v)
		case int:
			return cacheDurationOf(time.Duration(v) * time.Second)
		case int64:
			return cacheDurationOf(time.Duration(v) * time.Second)
		case float64:
			return cacheDurationOf(time.Duration(v * float64(time.Second)))
		case bool:
			if v {
				return CacheDuration{Forever: true, Set: true}, nil
			}
			return CacheDuration{Set: true}, nil
		case CacheDuration:
			return v, nil
		default:
			return nil, fmt.Errorf("不支持的 CacheDuration 类型: %T", v)
		}
	}
}
