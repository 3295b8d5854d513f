package field

import "context"

// Text 是可延迟求值的字段元信息（label/hint），统一通过 Eval 异步求值。
type Text interface {
	Eval(ctx context.Context) (string, error)
}

// Literal 是固定字符串。
type Literal string

// Eval implements Text.
func (l Literal) Eval(context.Context) (string, error) {
	return string(l), nil
}

// Computed 在每次求值时调用函数生成文本。
type Computed func() string

// Eval implements Text.
func (f Computed) Eval(context.Context) (string, error) {
	if f == nil {
		return "", nil
	}
	return f(), nil
}

// AsyncComputed 适用于需要 I/O 或可能失败的文本，例如翻译服务。
type AsyncComputed func(ctx context.Context) (string, error)

// Eval implements Text.
func (f AsyncComputed) Eval(ctx context.Context) (string, error) {
	if f == nil {
		return "", nil
	}
	return f(ctx)
}

// Evaluate 对 nil Text 返回空字符串，其余委托给 Eval。
func Evaluate(ctx context.Context, text Text) (string, error) {
	if text == nil {
		return "", nil
	}
	return text.Eval(ctx)
}
