package config

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/any-hub/resource-hub/internal/cache"
)

func TestLoadWithDefaults(t *testing.T) {
	cfgPath := testConfigPath(t, "valid.toml")

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load 返回错误: %v", err)
	}
	if cfg.Global.ListenPort != 5000 {
		t.Fatalf("ListenPort 应当被解析: %d", cfg.Global.ListenPort)
	}
	if cfg.Global.LogFormat != "json" {
		t.Fatalf("LogFormat 应默认为 json: %s", cfg.Global.LogFormat)
	}
	if cfg.Global.UpstreamTimeout.DurationValue() != 10*time.Second {
		t.Fatalf("UpstreamTimeout 解析错误: %s", cfg.Global.UpstreamTimeout.DurationValue())
	}
	if len(cfg.Resources) != 3 {
		t.Fatalf("应解析出 3 个资源, got %d", len(cfg.Resources))
	}
	if got := cfg.EffectiveCacheDuration(cfg.Resources[0]); got != 30*time.Second {
		t.Fatalf("未覆盖缓存时长时应退回全局值, got %s", got)
	}
	if got := cfg.EffectiveCacheDuration(cfg.Resources[1]); got != cache.Forever {
		t.Fatalf("forever 应映射为 cache.Forever, got %s", got)
	}
	if got := cfg.EffectiveCacheDuration(cfg.Resources[2]); got != 0 {
		t.Fatalf("0 应表示不缓存, got %s", got)
	}
	if parents := cfg.Resources[1].Parents; len(parents) != 1 || parents[0] != "item" {
		t.Fatalf("Parents 解析错误: %v", parents)
	}
	if cfg.EffectiveEndpoint(cfg.Resources[0]) != "https://api.example.com/v1" {
		t.Fatalf("未覆盖 Endpoint 时应退回全局值")
	}
}

func TestValidateRejectsResourceWithoutURL(t *testing.T) {
	cfgPath := testConfigPath(t, "missing.toml")

	_, err := Load(cfgPath)
	if err == nil {
		t.Fatalf("不合法的配置应返回错误")
	}
	var fieldErr FieldError
	if !errors.As(err, &fieldErr) {
		t.Fatalf("应返回 FieldError, got %T", err)
	}
	if fieldErr.Field != "Resource[items].Base/List/Detail" {
		t.Fatalf("字段路径错误: %s", fieldErr.Field)
	}
}

func TestEffectiveOverrides(t *testing.T) {
	cfg := &Config{Global: GlobalConfig{
		CacheDuration: CacheDuration{TTL: time.Hour, Set: true},
		Endpoint:      "https://global.example.com",
	}}
	res := ResourceConfig{
		CacheDuration: CacheDuration{TTL: 2 * time.Hour, Set: true},
		Endpoint:      " https://local.example.com ",
	}
	if ttl := cfg.EffectiveCacheDuration(res); ttl != 2*time.Hour {
		t.Fatalf("覆盖缓存时长应该优先生效")
	}
	if endpoint := cfg.EffectiveEndpoint(res); endpoint != "https://local.example.com" {
		t.Fatalf("覆盖 Endpoint 应该优先生效: %s", endpoint)
	}
	if ttl := cfg.EffectiveCacheDuration(ResourceConfig{}); ttl != time.Hour {
		t.Fatalf("未设置时应退回全局值")
	}
}

func TestValidateEnforcesListenPortRange(t *testing.T) {
	cfg := validConfig()
	cfg.Global.ListenPort = 70000
	if err := cfg.Validate(); err == nil {
		t.Fatalf("ListenPort 超出范围应当报错")
	}
}

func TestValidateResources(t *testing.T) {
	testCases := []struct {
		name      string
		mutate    func(*Config)
		shouldErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"no resources", func(c *Config) { c.Resources = nil }, true},
		{"empty name", func(c *Config) { c.Resources[0].Name = "" }, true},
		{"bad name", func(c *Config) { c.Resources[0].Name = "items/1" }, true},
		{"duplicate name", func(c *Config) {
			c.Resources = append(c.Resources, ResourceConfig{Name: "ITEMS", Base: "/other/"})
		}, true},
		{"no url", func(c *Config) { c.Resources[0].Base = "" }, true},
		{"list only", func(c *Config) {
			c.Resources[0].Base = ""
			c.Resources[0].List = "/items/"
		}, false},
		{"duplicate parent", func(c *Config) { c.Resources[0].Parents = []string{"a", "a"} }, true},
		{"negative cache", func(c *Config) { c.Resources[0].CacheDuration = CacheDuration{TTL: -time.Second, Set: true} }, true},
		{"no endpoint relative url", func(c *Config) { c.Global.Endpoint = "" }, true},
		{"no endpoint absolute url", func(c *Config) {
			c.Global.Endpoint = ""
			c.Resources[0].Base = "https://api.example.com/items/"
		}, false},
		{"resource endpoint", func(c *Config) {
			c.Global.Endpoint = ""
			c.Resources[0].Endpoint = "http://localhost:8000"
		}, false},
		{"ftp endpoint", func(c *Config) { c.Global.Endpoint = "ftp://api.example.com" }, true},
		{"missing host", func(c *Config) { c.Resources[0].Endpoint = "https://" }, true},
		{"zero clean interval", func(c *Config) { c.Global.CleanInterval = 0 }, true},
		{"text log format", func(c *Config) { c.Global.LogFormat = "text" }, false},
		{"xml log format", func(c *Config) { c.Global.LogFormat = "xml" }, true},
		{"zero upstream timeout", func(c *Config) { c.Global.UpstreamTimeout = 0 }, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.shouldErr && err == nil {
				t.Fatalf("expected error for case %q", tc.name)
			}
			if !tc.shouldErr && err != nil {
				t.Fatalf("unexpected error for case %q: %v", tc.name, err)
			}
		})
	}
}

func TestParseCacheDuration(t *testing.T) {
	testCases := []struct {
		raw     string
		want    CacheDuration
		wantErr bool
	}{
		{"forever", CacheDuration{Forever: true, Set: true}, false},
		{"NULL", CacheDuration{Forever: true, Set: true}, false},
		{"never", CacheDuration{Set: true}, false},
		{"0", CacheDuration{Set: true}, false},
		{"", CacheDuration{}, false},
		{"90s", CacheDuration{TTL: 90 * time.Second, Set: true}, false},
		{"1.5", CacheDuration{TTL: 1500 * time.Millisecond, Set: true}, false},
		{"-1s", CacheDuration{}, true},
		{"soon", CacheDuration{}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			got, err := ParseCacheDuration(tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tc.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error for %q: %v", tc.raw, err)
			}
			if got != tc.want {
				t.Fatalf("ParseCacheDuration(%q) = %+v, want %+v", tc.raw, got, tc.want)
			}
		})
	}
}

func TestCacheDurationString(t *testing.T) {
	if s := (CacheDuration{Forever: true, Set: true}).String(); s != "forever" {
		t.Fatalf("forever 输出错误: %s", s)
	}
	if s := (CacheDuration{Set: true}).String(); s != "never" {
		t.Fatalf("never 输出错误: %s", s)
	}
	if s := (CacheDuration{TTL: time.Minute, Set: true}).String(); s != "1m0s" {
		t.Fatalf("TTL 输出错误: %s", s)
	}
}

func TestResourceSummaries(t *testing.T) {
	cfg := validConfig()
	cfg.Resources = append(cfg.Resources, ResourceConfig{
		Name:          "tags",
		Base:          "/tags/",
		CacheDuration: CacheDuration{Forever: true, Set: true},
	})

	summaries := ResourceSummaries(cfg.Resources, cfg)
	if strings.Join(summaries, ",") != "items:30s,tags:forever" {
		t.Fatalf("摘要错误: %v", summaries)
	}
	if ResourceSummaries(nil, cfg) != nil {
		t.Fatalf("空资源列表应返回 nil")
	}
}

func validConfig() *Config {
	return &Config{
		Global: GlobalConfig{
			ListenPort:      5000,
			LogLevel:        "info",
			Endpoint:        "https://api.example.com",
			CacheDuration:   CacheDuration{TTL: 30 * time.Second, Set: true},
			CleanInterval:   Duration(time.Minute),
			UpstreamTimeout: Duration(30 * time.Second),
		},
		Resources: []ResourceConfig{
			{
				Name: "items",
				Base: "/items/",
			},
		},
	}
}
