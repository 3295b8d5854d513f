package config

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var resourceNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// Validate 针对语义级别做进一步校验，防止非法配置启动服务。
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("配置为空")
	}

	g := c.Global
	if g.ListenPort <= 0 || g.ListenPort > 65535 {
		return newFieldError("Global.ListenPort", "必须在 1-65535")
	}
	switch strings.ToLower(strings.TrimSpace(g.LogFormat)) {
	case "", "json", "text":
	default:
		return newFieldError("Global.LogFormat", "仅支持 json 或 text")
	}
	if g.CleanInterval.DurationValue() <= 0 {
		return newFieldError("Global.CleanInterval", "必须大于 0")
	}
	if g.UpstreamTimeout.DurationValue() <= 0 {
		return newFieldError("Global.UpstreamTimeout", "必须大于 0")
	}
	if g.CacheDuration.TTL < 0 {
		return newFieldError("Global.CacheDuration", "不能为负数")
	}
	if g.Endpoint != "" {
		if err := validateEndpoint(g.Endpoint); err != nil {
			return fmt.Errorf("Global.Endpoint: %w", err)
		}
	}

	if len(c.Resources) == 0 {
		return errors.New("至少需要配置一个 Resource")
	}

	seenNames := map[string]struct{}{}
	for i := range c.Resources {
		res := &c.Resources[i]
		if res.Name == "" {
			return newFieldError("Resource[].Name", "不能为空")
		}
		if !resourceNamePattern.MatchString(res.Name) {
			return newFieldError(resourceField(res.Name, "Name"), "仅允许字母、数字、- 与 _")
		}
		key := strings.ToLower(res.Name)
		if _, exists := seenNames[key]; exists {
			return newFieldError(resourceField(res.Name, "Name"), "重复")
		}
		seenNames[key] = struct{}{}

		if res.Base == "" && res.List == "" && res.Detail == "" {
			return newFieldError(resourceField(res.Name, "Base/List/Detail"), "至少需要一个 URL 模板")
		}
		if res.CacheDuration.TTL < 0 {
			return newFieldError(resourceField(res.Name, "CacheDuration"), "不能为负数")
		}

		seenParents := map[string]struct{}{}
		for _, parent := range res.Parents {
			if _, dup := seenParents[parent]; dup {
				return newFieldError(resourceField(res.Name, "Parents"), fmt.Sprintf("重复的父级参数 %s", parent))
			}
			seenParents[parent] = struct{}{}
		}

		endpoint := c.EffectiveEndpoint(*res)
		if endpoint == "" {
			if !isAbsoluteTemplate(res.Base) && !isAbsoluteTemplate(res.List) && !isAbsoluteTemplate(res.Detail) {
				return newFieldError(resourceField(res.Name, "Endpoint"), "相对 URL 模板需要配置 Endpoint")
			}
			continue
		}
		if err := validateEndpoint(endpoint); err != nil {
			return fmt.Errorf("%s: %w", resourceField(res.Name, "Endpoint"), err)
		}
	}

	return nil
}

func validateEndpoint(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("仅支持 http/https: %s", raw)
	}
	if parsed.Host == "" {
		return fmt.Errorf("缺少 Host: %s", raw)
	}
	return nil
}

func isAbsoluteTemplate(template string) bool {
	return strings.HasPrefix(template, "http://") || strings.HasPrefix(template, "https://")
}
