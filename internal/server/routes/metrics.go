package routes

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterMetricsRoute 在 /-/metrics 暴露 Prometheus 指标。
func RegisterMetricsRoute(app *fiber.App) {
	if app == nil {
		return
	}
	app.Get("/-/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}
