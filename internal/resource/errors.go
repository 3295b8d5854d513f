package resource

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// API 错误分类，APIError 通过 errors.Is 与其中之一匹配。
var (
	ErrAPI                 = errors.New("api error")
	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrInternalServerError = errors.New("internal server error")
)

var statusClasses = map[int]error{
	http.StatusBadRequest:          ErrBadRequest,
	http.StatusUnauthorized:        ErrUnauthorized,
	http.StatusForbidden:           ErrForbidden,
	http.StatusNotFound:            ErrNotFound,
	http.StatusInternalServerError: ErrInternalServerError,
}

// APIError 表示上游返回了非 2xx 响应，保留状态码、响应头与正文供调用方检查。
type APIError struct {
	Resource   string
	Method     string
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
}

// NewAPIError 根据响应构造 APIError，body 为已读取的响应正文。
func NewAPIError(resource string, resp *http.Response, body []byte) *APIError {
	apiErr := &APIError{
		Resource:   resource,
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       body,
	}
	if resp.Request != nil {
		apiErr.Method = resp.Request.Method
		if resp.Request.URL != nil {
			apiErr.URL = resp.Request.URL.String()
		}
	}
	return apiErr
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: %s (status %d)", e.Method, e.URL, e.Class(), e.StatusCode)
}

// Unwrap 返回状态码对应的错误分类，未知状态码归为 ErrAPI。
func (e *APIError) Unwrap() error {
	return ClassOf(e.StatusCode)
}

// Class 返回分类名称，如 "not_found"，用于日志、指标与网关响应。
func (e *APIError) Class() string {
	return className(ClassOf(e.StatusCode))
}

// ClassOf 将 HTTP 状态码映射到错误分类。
func ClassOf(status int) error {
	if class, ok := statusClasses[status]; ok {
		return class
	}
	return ErrAPI
}

func className(class error) string {
	return strings.ReplaceAll(class.Error(), " ", "_")
}

// MissingURLError 表示资源没有可用的 URL 模板。
type MissingURLError struct {
	Resource string
}

func (e *MissingURLError) Error() string {
	return fmt.Sprintf("missing url configuration in resource %q", e.Resource)
}

// MissingParentsError 表示缺少 URL 所需的父级参数，此时不会发出任何请求。
type MissingParentsError struct {
	Resource string
	Missing  []string
}

func (e *MissingParentsError) Error() string {
	return fmt.Sprintf("resource %q missing parents: %s", e.Resource, strings.Join(e.Missing, ", "))
}
