package resource

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"
)

// Parents 为嵌套 REST 资源的路径参数，例如 /parents/{parent}/items/。
type Parents map[string]any

// URLs 为资源的 URL 模板：LIST/DETAIL 未设置时由 BASE 推导，
// DETAIL 默认为 BASE + "{pk}/"。
type URLs struct {
	Base   string
	List   string
	Detail string
}

// Descriptor 描述一个远程资源：URL 模板、必需的父级参数与默认缓存时长
// （0 不缓存，cache.Forever 永久缓存）。
type Descriptor struct {
	Name          string
	URLs          URLs
	Parents       []string
	CacheDuration time.Duration
}

const pkPlaceholder = "pk"

var placeholderPattern = regexp.MustCompile(`\{([^{}]+)\}`)

// ListURL 返回列表 URL。
func (d Descriptor) ListURL(parents Parents) (string, error) {
	if err := d.CheckParents(parents); err != nil {
		return "", err
	}

	template := d.URLs.List
	if template == "" {
		template = d.URLs.Base
	}
	if template == "" {
		return "", &MissingURLError{Resource: d.Name}
	}
	return d.format(template, parents, nil)
}

// DetailURL 返回单条记录的 URL。
func (d Descriptor) DetailURL(id any, parents Parents) (string, error) {
	if err := d.CheckParents(parents); err != nil {
		return "", err
	}

	template := d.URLs.Detail
	if template == "" && d.URLs.Base != "" {
		template = d.URLs.Base + "{" + pkPlaceholder + "}/"
	}
	if template == "" {
		return "", &MissingURLError{Resource: d.Name}
	}
	return d.format(template, parents, id)
}

// CheckParents 校验所有必需父级参数均已提供且非空。
func (d Descriptor) CheckParents(parents Parents) error {
	var missing []string
	for _, name := range d.Parents {
		if isBlank(parents[name]) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &MissingParentsError{Resource: d.Name, Missing: missing}
	}
	return nil
}

// ExtraParents 返回未在描述中声明的父级参数名（已排序），调用方可据此告警。
func (d Descriptor) ExtraParents(parents Parents) []string {
	declared := make(map[string]struct{}, len(d.Parents))
	for _, name := range d.Parents {
		declared[name] = struct{}{}
	}

	var extra []string
	for name := range parents {
		if _, ok := declared[name]; !ok {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	return extra
}

// format 替换模板中的 {name} 占位符，值会做路径转义；
// 替换后仍有占位符说明缺少参数，返回 MissingParentsError 而不是发出错误的 URL。
func (d Descriptor) format(template string, parents Parents, id any) (string, error) {
	var unresolved []string
	result := placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		name := match[1 : len(match)-1]
		var value any
		if name == pkPlaceholder && id != nil {
			value = id
		} else {
			value = parents[name]
		}
		if isBlank(value) {
			unresolved = append(unresolved, name)
			return match
		}
		return url.PathEscape(fmt.Sprint(value))
	})
	if len(unresolved) > 0 {
		return "", &MissingParentsError{Resource: d.Name, Missing: unresolved}
	}
	return result, nil
}

func isBlank(value any) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}
