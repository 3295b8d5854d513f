package resource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/any-hub/resource-hub/internal/cache"
	"github.com/any-hub/resource-hub/internal/logging"
	"github.com/any-hub/resource-hub/internal/metrics"
)

// Params 是 Detail/List/Delete 的调用参数，缓存相关开关只对当前调用生效。
type Params struct {
	Parents Parents
	// Filter 会作为查询参数发送，并参与列表缓存 key 的计算。
	Filter map[string]any

	NoCache              bool
	NoRequestAggregation bool
	RefreshCache         bool
}

// MapFunc 在写缓存前转换原始响应数据。
type MapFunc func(ctx context.Context, data any, url string) (any, error)

// ManagerOptions 描述 Manager 的依赖，Descriptor 必填。
type ManagerOptions struct {
	Descriptor Descriptor
	// Store 为空时按 Descriptor.CacheDuration 新建。
	Store *cache.Store
	// Client 为空时使用 http.DefaultClient，超时由 Client 负责。
	Client *http.Client
	// Endpoint 为相对 URL 模板的前缀，例如 https://api.example.com。
	Endpoint string
	Logger   *logrus.Logger

	MapDetail MapFunc
	MapList   MapFunc
}

// Manager 将 detail/list/delete 转换为带缓存 key 的 HTTP 请求，
// 并把上游错误响应映射为 APIError。
type Manager struct {
	desc     Descriptor
	store    *cache.Store
	client   *http.Client
	endpoint string
	logger   *logrus.Logger

	mapDetail MapFunc
	mapList   MapFunc
}

// NewManager 校验依赖并构建 Manager。
func NewManager(opts ManagerOptions) (*Manager, error) {
	if strings.TrimSpace(opts.Descriptor.Name) == "" {
		return nil, errors.New("resource name is required")
	}
	if opts.Endpoint != "" {
		parsed, err := url.Parse(opts.Endpoint)
		if err != nil {
			return nil, fmt.Errorf("invalid endpoint for resource %s: %w", opts.Descriptor.Name, err)
		}
		if parsed.Scheme == "" || parsed.Host == "" {
			return nil, fmt.Errorf("endpoint for resource %s must be absolute: %s", opts.Descriptor.Name, opts.Endpoint)
		}
	}

	m := &Manager{
		desc:      opts.Descriptor,
		store:     opts.Store,
		client:    opts.Client,
		endpoint:  strings.TrimRight(opts.Endpoint, "/"),
		logger:    opts.Logger,
		mapDetail: opts.MapDetail,
		mapList:   opts.MapList,
	}
	if m.store == nil {
		m.store = cache.NewStore(opts.Descriptor.Name, opts.Descriptor.CacheDuration)
	}
	if m.client == nil {
		m.client = http.DefaultClient
	}
	if m.logger == nil {
		m.logger = logrus.StandardLogger()
	}
	return m, nil
}

// Name 返回资源名。
func (m *Manager) Name() string {
	return m.desc.Name
}

// Descriptor 返回资源描述。
func (m *Manager) Descriptor() Descriptor {
	return m.desc
}

// Store 返回该资源独享的 Store。
func (m *Manager) Store() *cache.Store {
	return m.store
}

// Detail 读取单条记录，缓存 key 为 detail URL。URL/父级参数错误在发请求前返回。
func (m *Manager) Detail(ctx context.Context, id any, params Params) (*Record, error) {
	path, err := m.detailURL(id, params.Parents)
	if err != nil {
		return nil, err
	}

	opts := storeOptions(cache.FetchOptions{
		Key: path,
		Fetch: func(ctx context.Context, _ cache.FetchOptions, _ ...any) (any, error) {
			return m.sendDetailRequest(ctx, path, params)
		},
	}, params)

	data, err := m.store.GetData(ctx, opts)
	if err != nil {
		return nil, err
	}
	return NewRecord(m.desc.Name, data), nil
}

// List 读取记录列表，顺序与响应一致。过滤参数非空时缓存 key 为
// url + "?" + 过滤参数的 JSON（键有序），不同过滤条件互不冲突。
func (m *Manager) List(ctx context.Context, params Params) ([]*Record, error) {
	path, err := m.desc.ListURL(params.Parents)
	if err != nil {
		return nil, err
	}
	m.warnExtraParents(params.Parents, "list")

	key, err := listKey(path, params.Filter)
	if err != nil {
		return nil, err
	}

	opts := storeOptions(cache.FetchOptions{
		Key: key,
		Fetch: func(ctx context.Context, _ cache.FetchOptions, _ ...any) (any, error) {
			return m.sendListRequest(ctx, path, params)
		},
	}, params)

	data, err := m.store.GetData(ctx, opts)
	if err != nil {
		return nil, err
	}

	items, ok := data.([]any)
	if !ok {
		return nil, fmt.Errorf("resource %s: list response is %T, expected array", m.desc.Name, data)
	}
	records := make([]*Record, len(items))
	for i, item := range items {
		records[i] = NewRecord(m.desc.Name, item)
	}
	return records, nil
}

// Delete 直接发送 DELETE，不经过缓存与请求合并。成功后丢弃该 detail key 的进行中请求，
// 已缓存的数据按过期策略自然失效。
func (m *Manager) Delete(ctx context.Context, id any, params Params) error {
	path, err := m.detailURL(id, params.Parents)
	if err != nil {
		return err
	}
	if _, err := m.send(ctx, http.MethodDelete, path, nil, "delete"); err != nil {
		return err
	}
	m.store.RemoveRequest(path)
	return nil
}

func (m *Manager) detailURL(id any, parents Parents) (string, error) {
	path, err := m.desc.DetailURL(id, parents)
	if err != nil {
		return "", err
	}
	m.warnExtraParents(parents, "detail")
	return path, nil
}

func (m *Manager) sendDetailRequest(ctx context.Context, path string, params Params) (any, error) {
	data, err := m.send(ctx, http.MethodGet, path, filterQuery(params.Filter), "detail")
	if err != nil {
		return nil, err
	}
	if m.mapDetail != nil {
		return m.mapDetail(ctx, data, path)
	}
	return data, nil
}

func (m *Manager) sendListRequest(ctx context.Context, path string, params Params) (any, error) {
	data, err := m.send(ctx, http.MethodGet, path, filterQuery(params.Filter), "list")
	if err != nil {
		return nil, err
	}
	if m.mapList != nil {
		return m.mapList(ctx, data, path)
	}
	return data, nil
}

// send 发送请求并解码 JSON。网络层错误原样返回，非 2xx 响应统一转换为 APIError。
func (m *Manager) send(ctx context.Context, method, path string, query url.Values, operation string) (any, error) {
	target, err := m.resolve(path, query)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	fields := logging.ResourceFields(m.desc.Name, operation, target)
	started := time.Now()
	observe := metrics.TimeRequest(m.desc.Name, operation)
	resp, err := m.client.Do(req)
	observe()
	if err != nil {
		m.logger.WithFields(fields).WithError(err).Warn("upstream_request_failed")
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	fields["status"] = resp.StatusCode
	fields["elapsed_ms"] = time.Since(started).Milliseconds()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := m.handleResponseError(resp, body)
		fields["class"] = apiErr.Class()
		m.logger.WithFields(fields).Warn("upstream_api_error")
		return nil, apiErr
	}
	m.logger.WithFields(fields).Debug("upstream_request")

	if method == http.MethodDelete || len(strings.TrimSpace(string(body))) == 0 {
		return nil, nil
	}
	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("decode %s response from %s: %w", m.desc.Name, target, err)
	}
	return data, nil
}

func (m *Manager) handleResponseError(resp *http.Response, body []byte) *APIError {
	apiErr := NewAPIError(m.desc.Name, resp, body)
	metrics.RecordAPIError(m.desc.Name, apiErr.Class())
	return apiErr
}

func (m *Manager) resolve(path string, query url.Values) (string, error) {
	raw := path
	if m.endpoint != "" && !strings.Contains(path, "://") {
		if !strings.HasPrefix(path, "/") {
			raw = m.endpoint + "/" + path
		} else {
			raw = m.endpoint + path
		}
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid url for resource %s: %w", m.desc.Name, err)
	}
	if len(query) > 0 {
		merged := u.Query()
		for key, values := range query {
			for _, value := range values {
				merged.Add(key, value)
			}
		}
		u.RawQuery = merged.Encode()
	}
	return u.String(), nil
}

func (m *Manager) warnExtraParents(parents Parents, operation string) {
	extra := m.desc.ExtraParents(parents)
	if len(extra) == 0 {
		return
	}
	m.logger.WithFields(logrus.Fields{
		"action":   "check_parents",
		"resource": m.desc.Name,
		"op":       operation,
		"extra":    extra,
	}).Warn("too many parents given")
}

func storeOptions(opts cache.FetchOptions, params Params) cache.FetchOptions {
	opts.NoCache = params.NoCache
	opts.NoRequestAggregation = params.NoRequestAggregation
	opts.RefreshCache = params.RefreshCache
	return opts
}

func listKey(path string, filter map[string]any) (string, error) {
	if len(filter) == 0 {
		return path, nil
	}
	// encoding/json 按键排序输出 map，相同过滤条件得到相同 key。
	encoded, err := json.Marshal(filter)
	if err != nil {
		return "", fmt.Errorf("encode filter: %w", err)
	}
	return path + "?" + string(encoded), nil
}

func filterQuery(filter map[string]any) url.Values {
	if len(filter) == 0 {
		return nil
	}
	values := make(url.Values, len(filter))
	for key, value := range filter {
		switch v := value.(type) {
		case nil:
			continue
		case []string:
			values[key] = append(values[key], v...)
		case []any:
			for _, item := range v {
				values.Add(key, fmt.Sprint(item))
			}
		default:
			values.Add(key, fmt.Sprint(v))
		}
	}
	return values
}
