package service

import "context"

type requestIDKey struct{}

// WithRequestID 把请求 ID 放进 context，日志中用于串联同一请求
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom 取出请求 ID，没有时返回空字符串
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
