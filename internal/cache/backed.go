package cache

import (
	"context"
	"log/slog"
	"time"
)

// Backend persists encoded values under a namespace. storage.Repository
// implements it on top of sqlite.
type Backend interface {
	Load(ctx context.Context, namespace, key string) ([]byte, bool, error)
	Save(ctx context.Context, namespace, key string, value []byte) error
	Delete(ctx context.Context, namespace, key string) error
	Clear(ctx context.Context, namespace string) error
}

// Codec converts values to and from their persisted form.
type Codec[V any] struct {
	Encode func(V) ([]byte, error)
	Decode func(key string, data []byte) (V, error)
}

// StringCodec stores strings verbatim.
var StringCodec = Codec[string]{
	Encode: func(v string) ([]byte, error) { return []byte(v), nil },
	Decode: func(_ string, data []byte) (string, error) { return string(data), nil },
}

const backendTimeout = 2 * time.Second

// Backed layers a Backend under an in-memory front store. Misses fall through
// to the backend and are promoted, puts write through. Backend failures are
// logged and otherwise behave like a miss.
type Backed[V any] struct {
	front     Store[string, V]
	backend   Backend
	namespace string
	codec     Codec[V]
	logger    *slog.Logger
}

func NewBacked[V any](front Store[string, V], backend Backend, namespace string, codec Codec[V], logger *slog.Logger) *Backed[V] {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Backed[V]{
		front:     front,
		backend:   backend,
		namespace: namespace,
		codec:     codec,
		logger:    logger,
	}
}

func (b *Backed[V]) Get(key string) (V, bool) {
	if v, ok := b.front.Get(key); ok {
		return v, true
	}

	var zero V
	ctx, cancel := context.WithTimeout(context.Background(), backendTimeout)
	defer cancel()

	data, ok, err := b.backend.Load(ctx, b.namespace, key)
	if err != nil {
		b.logger.Warn("cache backend load failed", "namespace", b.namespace, "key", key, "err", err)
		return zero, false
	}
	if !ok {
		return zero, false
	}

	v, err := b.codec.Decode(key, data)
	if err != nil {
		b.logger.Warn("cache backend entry unreadable", "namespace", b.namespace, "key", key, "err", err)
		return zero, false
	}
	b.front.Put(key, v)
	return v, true
}

func (b *Backed[V]) Put(key string, value V) {
	b.front.Put(key, value)

	data, err := b.codec.Encode(value)
	if err != nil {
		b.logger.Warn("cache encode failed", "namespace", b.namespace, "key", key, "err", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), backendTimeout)
	defer cancel()
	if err := b.backend.Save(ctx, b.namespace, key, data); err != nil {
		b.logger.Warn("cache backend save failed", "namespace", b.namespace, "key", key, "err", err)
	}
}

func (b *Backed[V]) Delete(key string) {
	b.front.Delete(key)

	ctx, cancel := context.WithTimeout(context.Background(), backendTimeout)
	defer cancel()
	if err := b.backend.Delete(ctx, b.namespace, key); err != nil {
		b.logger.Warn("cache backend delete failed", "namespace", b.namespace, "key", key, "err", err)
	}
}

// Len reports the number of entries held in memory.
func (b *Backed[V]) Len() int {
	return b.front.Len()
}

func (b *Backed[V]) Clear() {
	b.front.Clear()

	ctx, cancel := context.WithTimeout(context.Background(), backendTimeout)
	defer cancel()
	if err := b.backend.Clear(ctx, b.namespace); err != nil {
		b.logger.Warn("cache backend clear failed", "namespace", b.namespace, "err", err)
	}
}
