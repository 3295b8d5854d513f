// Package field describes model attributes: where a value lives in raw response
// data and how its label/hint are produced.
package field

import (
	"context"
	"errors"
)

// ErrNotBound 表示字段尚未绑定名称或模型时访问了依赖绑定的属性。
var ErrNotBound = errors.New("field not bound")

// Def 是字段定义，绑定/克隆后的实例共享同一个 Def。
type Def struct {
	// AttributeName 为数据中的点分路径，为空时使用字段名。
	AttributeName string
	Label         Text
	Hint          Text
}

// Field 是一个可绑定到模型的字段。未绑定时 Name/Model 返回 ErrNotBound。
type Field struct {
	def   *Def
	name  string
	model any
}

// New 基于定义创建未绑定字段，def 为 nil 时使用空定义。
func New(def *Def) *Field {
	if def == nil {
		def = &Def{}
	}
	return &Field{def: def}
}

// Bind 返回绑定了名称与模型的新实例，原实例不变。
// model 为 nil 时只绑定名称，Model() 仍返回 ErrNotBound。
func (f *Field) Bind(name string, model any) *Field {
	return &Field{def: f.def, name: name, model: model}
}

// Clone 返回保持绑定状态的副本。
func (f *Field) Clone() *Field {
	clone := *f
	return &clone
}

// Definition 返回字段定义。
func (f *Field) Definition() *Def {
	return f.def
}

// Name 返回字段名。
func (f *Field) Name() (string, error) {
	if f.name == "" {
		return "", ErrNotBound
	}
	return f.name, nil
}

// Model 返回绑定的模型。
func (f *Field) Model() (any, error) {
	if f.model == nil {
		return nil, ErrNotBound
	}
	return f.model, nil
}

// AttributeName 返回数据中的属性路径，未显式定义时退回字段名。
func (f *Field) AttributeName() (string, error) {
	if f.def.AttributeName != "" {
		return f.def.AttributeName, nil
	}
	return f.Name()
}

// Label 求值字段标签。
func (f *Field) Label(ctx context.Context) (string, error) {
	return Evaluate(ctx, f.def.Label)
}

// Hint 求值字段提示。
func (f *Field) Hint(ctx context.Context) (string, error) {
	return Evaluate(ctx, f.def.Hint)
}

// Value 从原始数据中读取字段值，缺失时返回 nil。
func (f *Field) Value(data any) (any, error) {
	attr, err := f.AttributeName()
	if err != nil {
		return nil, err
	}
	value, ok := Lookup(attr, data)
	if !ok {
		return nil, nil
	}
	return value, nil
}
