package routes

import (
	"github.com/gofiber/fiber/v3"

	"github.com/any-hub/resource-hub/internal/resource"
)

// RegisterResourceRoutes 暴露 /-/resources 诊断接口，供 SRE 查询资源配置与缓存状态，
// 并提供手动 clean/clear 入口。
func RegisterResourceRoutes(app *fiber.App, registry *resource.Registry) {
	if app == nil || registry == nil {
		return
	}

	app.Get("/-/resources", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"resources": encodeResources(registry.List()),
		})
	})

	app.Get("/-/resources/:name", withManager(registry, func(c fiber.Ctx, m *resource.Manager) error {
		return c.JSON(encodeResource(m))
	}))

	app.Post("/-/resources/:name/clean", withManager(registry, func(c fiber.Ctx, m *resource.Manager) error {
		removed := m.Store().Clean()
		return c.JSON(fiber.Map{"resource": m.Name(), "removed": removed})
	}))

	app.Post("/-/resources/:name/clear", withManager(registry, func(c fiber.Ctx, m *resource.Manager) error {
		m.Store().Clear()
		return c.JSON(fiber.Map{"resource": m.Name(), "cleared": true})
	}))
}

func withManager(registry *resource.Registry, fn func(fiber.Ctx, *resource.Manager) error) fiber.Handler {
	return func(c fiber.Ctx) error {
		manager, ok := registry.Resolve(c.Params("name"))
		if !ok {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "resource_not_found"})
		}
		return fn(c, manager)
	}
}

type resourcePayload struct {
	Name          string       `json:"name"`
	URLs          urlsPayload  `json:"urls"`
	Parents       []string     `json:"parents"`
	CacheDuration string       `json:"cache_duration"`
	Store         storePayload `json:"store"`
}

type urlsPayload struct {
	Base   string `json:"base,omitempty"`
	List   string `json:"list,omitempty"`
	Detail string `json:"detail,omitempty"`
}

type storePayload struct {
	Entries int `json:"entries"`
	Pending int `json:"pending"`
}

func encodeResources(managers []*resource.Manager) []resourcePayload {
	result := make([]resourcePayload, 0, len(managers))
	for _, m := range managers {
		result = append(result, encodeResource(m))
	}
	return result
}

func encodeResource(m *resource.Manager) resourcePayload {
	desc := m.Descriptor()
	parents := append([]string{}, desc.Parents...)
	return resourcePayload{
		Name: desc.Name,
		URLs: urlsPayload{
			Base:   desc.URLs.Base,
			List:   desc.URLs.List,
			Detail: desc.URLs.Detail,
		},
		Parents:       parents,
		CacheDuration: m.Store().Policy().String(),
		Store: storePayload{
			Entries: m.Store().Len(),
			Pending: m.Store().Pending(),
		},
	}
}
