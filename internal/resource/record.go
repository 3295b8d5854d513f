package resource

import (
	"github.com/any-hub/resource-hub/internal/field"
)

// Record 是一条远程资源数据。Raw 保存解码后的原始值，
// Data 在原始值为 JSON 对象时与其相同，否则为空 map。
type Record struct {
	Resource string
	Data     map[string]any
	Raw      any
}

// NewRecord 由原始响应数据构造记录，数组、标量等非对象数据保留在 Raw 中。
func NewRecord(resource string, raw any) *Record {
	data, _ := raw.(map[string]any)
	if data == nil {
		data = map[string]any{}
	}
	return &Record{Resource: resource, Data: data, Raw: raw}
}

// IsObject 表示原始数据是否为 JSON 对象。
func (r *Record) IsObject() bool {
	_, ok := r.Raw.(map[string]any)
	return ok
}

// Get 按点分路径读取值。
func (r *Record) Get(path string) (any, bool) {
	return field.Lookup(path, r.Data)
}

// ID 返回 "id" 属性。
func (r *Record) ID() (any, bool) {
	return r.Get("id")
}

// Value 通过字段读取值，字段需已绑定名称或定义了 AttributeName。
func (r *Record) Value(f *field.Field) (any, error) {
	return f.Value(r.Data)
}
