package engine

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/akmonengine/featherserver/actor"
	"github.com/akmonengine/featherserver/constraint"
)

// TraceFunc receives low-volume diagnostic messages from the engine
type TraceFunc func(msg string)

// AssertFunc is called when an internal invariant breaks. When nil the
// engine keeps going silently.
type AssertFunc func(expression, msg string)

// ContactAllocator hands out contact point buffers for the narrow phase
type ContactAllocator interface {
	Get() []constraint.ContactPoint
	Put([]constraint.ContactPoint)
}

// Hooks are process-wide; install them once before creating worlds
type Hooks struct {
	Trace        TraceFunc
	AssertFailed AssertFunc
	Alloc        ContactAllocator
}

var (
	hooks atomic.Pointer[Hooks]

	// DefaultMaterial is applied to bodies created without explicit material
	DefaultMaterial *actor.Material
)

func InstallHooks(h Hooks) {
	hooks.Store(&h)
}

func UninstallHooks() {
	hooks.Store(nil)
}

func currentHooks() *Hooks {
	if h := hooks.Load(); h != nil {
		return h
	}
	return &Hooks{}
}

func tracef(format string, args ...any) {
	if h := currentHooks(); h.Trace != nil {
		h.Trace(fmt.Sprintf(format, args...))
	}
}

func assert(ok bool, expression, msg string) {
	if ok {
		return
	}
	if h := currentHooks(); h.AssertFailed != nil {
		h.AssertFailed(expression, msg)
	}
}

func allocContacts() []constraint.ContactPoint {
	if h := currentHooks(); h.Alloc != nil {
		return h.Alloc.Get()[:0]
	}
	return make([]constraint.ContactPoint, 0, 4)
}

func releaseContacts(points []constraint.ContactPoint) {
	if h := currentHooks(); h.Alloc != nil && points != nil {
		h.Alloc.Put(points)
	}
}

// ContactPool is a sync.Pool backed ContactAllocator
type ContactPool struct {
	pool sync.Pool
}

func NewContactPool() *ContactPool {
	return &ContactPool{
		pool: sync.Pool{
			New: func() interface{} {
				points := make([]constraint.ContactPoint, 0, 8)
				return &points
			},
		},
	}
}

func (p *ContactPool) Get() []constraint.ContactPoint {
	return *(p.pool.Get().(*[]constraint.ContactPoint))
}

func (p *ContactPool) Put(points []constraint.ContactPoint) {
	points = points[:0]
	p.pool.Put(&points)
}
