// Package pool recycles renderable row handles.
//
// Acquire only ever hands out a handle that is not in use. When every handle
// is taken the pool grows by one, or fails with ErrPoolExhausted if growth is
// disabled.
package pool

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrPoolExhausted = errors.New("pool exhausted")
	ErrUnknownHandle = errors.New("handle does not belong to this pool")
)

// Factory creates and detaches handles on behalf of the presenter. Its methods
// must not call back into the pool.
type Factory[H any] interface {
	Create() H
	Detach(H)
}

// FactoryFuncs adapts plain functions to Factory. A nil DetachFn is a no-op.
type FactoryFuncs[H any] struct {
	CreateFn func() H
	DetachFn func(H)
}

func (f FactoryFuncs[H]) Create() H { return f.CreateFn() }

func (f FactoryFuncs[H]) Detach(h H) {
	if f.DetachFn != nil {
		f.DetachFn(h)
	}
}

type Option[H comparable] func(*Pool[H])

// WithGrow toggles growing on exhaustion. Growing is the default.
func WithGrow[H comparable](grow bool) Option[H] {
	return func(p *Pool[H]) { p.grow = grow }
}

// WithAcquireHook registers a callback run after every successful Acquire.
func WithAcquireHook[H comparable](fn func(H)) Option[H] {
	return func(p *Pool[H]) { p.onAcquire = fn }
}

type slot[H comparable] struct {
	handle H
	inUse  bool
	parent string
}

type Pool[H comparable] struct {
	mu        sync.Mutex
	slots     []*slot[H]
	index     map[H]*slot[H]
	factory   Factory[H]
	grow      bool
	onAcquire func(H)
}

func New[H comparable](size int, factory Factory[H], opts ...Option[H]) (*Pool[H], error) {
	if size < 0 {
		return nil, fmt.Errorf("pool size must not be negative: %d", size)
	}
	if factory == nil {
		return nil, errors.New("pool factory is required")
	}

	p := &Pool[H]{
		slots:   make([]*slot[H], 0, size),
		index:   make(map[H]*slot[H], size),
		factory: factory,
		grow:    true,
	}
	for _, opt := range opts {
		opt(p)
	}
	for i := 0; i < size; i++ {
		if _, err := p.addSlot(); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Acquire hands out a free handle attached to parent.
func (p *Pool[H]) Acquire(parent string) (H, error) {
	p.mu.Lock()
	var picked *slot[H]
	for _, s := range p.slots {
		if !s.inUse {
			picked = s
			break
		}
	}
	if picked == nil {
		if !p.grow {
			p.mu.Unlock()
			var zero H
			return zero, ErrPoolExhausted
		}
		s, err := p.addSlot()
		if err != nil {
			p.mu.Unlock()
			var zero H
			return zero, err
		}
		picked = s
	}
	picked.inUse = true
	picked.parent = parent
	h := picked.handle
	hook := p.onAcquire
	p.mu.Unlock()

	if hook != nil {
		hook(h)
	}
	return h, nil
}

// Release returns h to the pool and detaches it from its parent. Releasing a
// free handle is a no-op.
func (p *Pool[H]) Release(h H) error {
	p.mu.Lock()
	s, ok := p.index[h]
	if !ok {
		p.mu.Unlock()
		return ErrUnknownHandle
	}
	if !s.inUse {
		p.mu.Unlock()
		return nil
	}
	s.inUse = false
	s.parent = ""
	p.mu.Unlock()

	p.factory.Detach(h)
	return nil
}

// ReleaseParent releases every handle attached to parent and returns how many
// were released.
func (p *Pool[H]) ReleaseParent(parent string) int {
	p.mu.Lock()
	released := make([]H, 0, len(p.slots))
	for _, s := range p.slots {
		if s.inUse && s.parent == parent {
			s.inUse = false
			s.parent = ""
			released = append(released, s.handle)
		}
	}
	p.mu.Unlock()

	for _, h := range released {
		p.factory.Detach(h)
	}
	return len(released)
}

// IsInUse reports whether h is currently handed out.
func (p *Pool[H]) IsInUse(h H) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.index[h]
	return ok && s.inUse
}

func (p *Pool[H]) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.slots)
}

func (p *Pool[H]) InUse() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, s := range p.slots {
		if s.inUse {
			n++
		}
	}
	return n
}

// addSlot must be called with mu held or before the pool is shared.
func (p *Pool[H]) addSlot() (*slot[H], error) {
	h := p.factory.Create()
	if _, dup := p.index[h]; dup {
		return nil, errors.New("pool factory returned a handle already in the pool")
	}
	s := &slot[H]{handle: h}
	p.slots = append(p.slots, s)
	p.index[h] = s
	return s, nil
}
