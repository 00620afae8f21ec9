package ctxstore

import "context"

type Key string

func (k Key) String() string {
	return string(k)
}

const RequestIDKey = Key("requestId")

func With[T any](ctx context.Context, key Key, value T) context.Context {
	return context.WithValue(ctx, key, value)
}

func From[T any](ctx context.Context, key Key) (T, bool) {
	value, ok := ctx.Value(key).(T)
	return value, ok
}

func FromOr[T any](ctx context.Context, key Key, def T) T {
	if value, ok := From[T](ctx, key); ok {
		return value
	}
	return def
}

func MustFrom[T any](ctx context.Context, key Key) T {
	value, ok := ctx.Value(key).(T)
	if !ok {
		panic("ctxstore: " + key + " not found")
	}
	return value
}

// WithRequestID tags ctx so outgoing API calls reuse id instead of minting one.
func WithRequestID(ctx context.Context, id string) context.Context {
	return With(ctx, RequestIDKey, id)
}

func RequestID(ctx context.Context) (string, bool) {
	id, ok := From[string](ctx, RequestIDKey)
	return id, ok && id != ""
}
