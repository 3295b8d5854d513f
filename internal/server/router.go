package server

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/any-hub/resource-hub/internal/logging"
	"github.com/any-hub/resource-hub/internal/resource"
)

// AppOptions controls how the Fiber gateway should behave on a specific port.
type AppOptions struct {
	Logger     *logrus.Logger
	Registry   *resource.Registry
	ListenPort int
}

const (
	contextKeyRequestID = "_resourcehub_request_id"
	contextKeyResource  = "_resourcehub_resource"

	parentQueryPrefix = "parent."
	queryNoCache      = "no_cache"
	queryRefresh      = "refresh_cache"
	queryNoAggregate  = "no_aggregation"
)

var errResourceUnknown = errors.New("resource unknown")

// NewApp builds a Fiber application exposing list/detail/delete for every
// registered resource, with request IDs and structured error rendering.
func NewApp(opts AppOptions) (*fiber.App, error) {
	if opts.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if opts.Registry == nil {
		return nil, errors.New("resource registry is required")
	}
	if opts.ListenPort <= 0 {
		return nil, fmt.Errorf("invalid listen port: %d", opts.ListenPort)
	}

	app := fiber.New(fiber.Config{
		CaseSensitive: true,
	})

	app.Use(recover.New())
	app.Use(requestContextMiddleware(opts))

	api := app.Group("/api")
	api.Get("/:resource", listHandler(opts))
	api.Get("/:resource/:id", detailHandler(opts))
	api.Delete("/:resource/:id", deleteHandler(opts))

	return app, nil
}

// requestContextMiddleware 生成请求 ID，并在请求结束后输出访问日志。
func requestContextMiddleware(opts AppOptions) fiber.Handler {
	return func(c fiber.Ctx) error {
		reqID := uuid.NewString()
		c.Locals(contextKeyRequestID, reqID)
		c.Set("X-Request-ID", reqID)

		err := c.Next()

		if isDiagnosticsPath(c.Path()) {
			return err
		}
		name, _ := c.Locals(contextKeyResource).(string)
		fields := logging.RequestFields(reqID, name, c.Method(), c.Path(), c.Response().StatusCode())
		if err != nil {
			opts.Logger.WithFields(fields).WithError(err).Warn("gateway request failed")
		} else {
			opts.Logger.WithFields(fields).Info("gateway request")
		}
		return err
	}
}

func listHandler(opts AppOptions) fiber.Handler {
	return func(c fiber.Ctx) error {
		manager, err := resolveManager(c, opts.Registry)
		if err != nil {
			return renderError(c, opts.Logger, err)
		}

		records, err := manager.List(c.Context(), paramsFromQuery(c.Queries()))
		if err != nil {
			return renderError(c, opts.Logger, err)
		}

		payload := make([]any, len(records))
		for i, rec := range records {
			payload[i] = rec.Raw
		}
		return c.JSON(payload)
	}
}

func detailHandler(opts AppOptions) fiber.Handler {
	return func(c fiber.Ctx) error {
		manager, err := resolveManager(c, opts.Registry)
		if err != nil {
			return renderError(c, opts.Logger, err)
		}

		rec, err := manager.Detail(c.Context(), c.Params("id"), paramsFromQuery(c.Queries()))
		if err != nil {
			return renderError(c, opts.Logger, err)
		}
		return c.JSON(rec.Raw)
	}
}

func deleteHandler(opts AppOptions) fiber.Handler {
	return func(c fiber.Ctx) error {
		manager, err := resolveManager(c, opts.Registry)
		if err != nil {
			return renderError(c, opts.Logger, err)
		}

		if err := manager.Delete(c.Context(), c.Params("id"), paramsFromQuery(c.Queries())); err != nil {
			return renderError(c, opts.Logger, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func resolveManager(c fiber.Ctx, registry *resource.Registry) (*resource.Manager, error) {
	name := c.Params("resource")
	c.Locals(contextKeyResource, name)
	manager, ok := registry.Resolve(name)
	if !ok {
		return nil, errResourceUnknown
	}
	return manager, nil
}

// paramsFromQuery 拆分查询参数：parent.<name> 为父级参数，缓存开关单独解析，其余作为过滤条件。
func paramsFromQuery(query map[string]string) resource.Params {
	var params resource.Params
	for key, value := range query {
		switch {
		case strings.HasPrefix(key, parentQueryPrefix):
			if params.Parents == nil {
				params.Parents = resource.Parents{}
			}
			params.Parents[strings.TrimPrefix(key, parentQueryPrefix)] = value
		case key == queryNoCache:
			params.NoCache = flagValue(value)
		case key == queryRefresh:
			params.RefreshCache = flagValue(value)
		case key == queryNoAggregate:
			params.NoRequestAggregation = flagValue(value)
		default:
			if params.Filter == nil {
				params.Filter = map[string]any{}
			}
			params.Filter[key] = value
		}
	}
	return params
}

// flagValue 将 ?no_cache 与 ?no_cache=1 视为开启，无法解析的值视为关闭。
func flagValue(raw string) bool {
	if strings.TrimSpace(raw) == "" {
		return true
	}
	enabled, err := strconv.ParseBool(raw)
	return err == nil && enabled
}

func renderError(c fiber.Ctx, logger *logrus.Logger, err error) error {
	name, _ := c.Locals(contextKeyResource).(string)
	fields := logrus.Fields{
		"action":     "gateway_error",
		"request_id": RequestID(c),
		"resource":   name,
	}

	var (
		apiErr         *resource.APIError
		missingParents *resource.MissingParentsError
		missingURL     *resource.MissingURLError
	)
	switch {
	case errors.Is(err, errResourceUnknown):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "resource_unknown"})
	case errors.As(err, &apiErr):
		return c.Status(apiErr.StatusCode).JSON(fiber.Map{"error": apiErr.Class()})
	case errors.As(err, &missingParents):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "missing_parents",
			"missing": missingParents.Missing,
		})
	case errors.As(err, &missingURL):
		logger.WithFields(fields).Error(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "missing_url"})
	default:
		logger.WithFields(fields).WithError(err).Warn("upstream failed")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "upstream_failed"})
	}
}

// RequestID returns the request identifier stored by the router middleware.
func RequestID(c fiber.Ctx) string {
	if value := c.Locals(contextKeyRequestID); value != nil {
		if reqID, ok := value.(string); ok {
			return reqID
		}
	}
	return ""
}

func isDiagnosticsPath(path string) bool {
	return strings.HasPrefix(path, "/-/")
}
