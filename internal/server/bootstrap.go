package server

import (
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/any-hub/resource-hub/internal/cache"
	"github.com/any-hub/resource-hub/internal/config"
	"github.com/any-hub/resource-hub/internal/resource"
)

// DescriptorFor 将资源配置转换为 resource.Descriptor，缓存时长按全局值回退。
func DescriptorFor(cfg *config.Config, res config.ResourceConfig) resource.Descriptor {
	return resource.Descriptor{
		Name: res.Name,
		URLs: resource.URLs{
			Base:   res.Base,
			List:   res.List,
			Detail: res.Detail,
		},
		Parents:       append([]string(nil), res.Parents...),
		CacheDuration: cfg.EffectiveCacheDuration(res),
	}
}

// BuildRegistry 为每个资源创建独立的 Store 与 Manager，所有 Manager 共享同一个 http.Client。
func BuildRegistry(cfg *config.Config, client *http.Client, logger *logrus.Logger, storeOpts ...cache.Option) (*resource.Registry, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	registry := resource.NewRegistry()
	for _, res := range cfg.Resources {
		desc := DescriptorFor(cfg, res)
		manager, err := resource.NewManager(resource.ManagerOptions{
			Descriptor: desc,
			Store:      cache.NewStore(desc.Name, desc.CacheDuration, storeOpts...),
			Client:     client,
			Endpoint:   cfg.EffectiveEndpoint(res),
			Logger:     logger,
		})
		if err != nil {
			return nil, fmt.Errorf("resource %s: %w", res.Name, err)
		}
		if err := registry.Register(manager); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
