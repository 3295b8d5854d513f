package field

import (
	"strconv"
	"strings"
)

// Lookup 按点分路径（如 "obj.nested.field"）在未定型的嵌套数据中取值。
// 任一中间段缺失或为 nil 时立即返回 (nil, false)；切片支持数字下标段。
func Lookup(path string, root any) (any, bool) {
	if root == nil || path == "" {
		return nil, false
	}

	current := root
	for _, segment := range strings.Split(path, ".") {
		next, ok := step(current, segment)
		if !ok || next == nil {
			return nil, false
		}
		current = next
	}
	return current, true
}

func step(value any, segment string) (any, bool) {
	switch v := value.(type) {
	case map[string]any:
		next, ok := v[segment]
		return next, ok
	case map[string]string:
		next, ok := v[segment]
		return next, ok
	case []any:
		idx, err := strconv.Atoi(segment)
		if err != nil || idx < 0 || idx >= len(v) {
			return nil, false
		}
		return v[idx], true
	default:
		return nil, false
	}
}
