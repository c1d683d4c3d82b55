package http

import (
	"sync/atomic"

	"github.com/mind-engage/quizsense/internal/answerkey"
	"github.com/mind-engage/quizsense/internal/resolver"
)

// Engine holds the dispatcher currently serving requests. Dispatchers are
// immutable; a new answer key means a new dispatcher swapped in whole.
type Engine struct {
	cur   atomic.Pointer[resolver.Dispatcher]
	build func(*answerkey.Key) *resolver.Dispatcher
}

func NewEngine(key *answerkey.Key, build func(*answerkey.Key) *resolver.Dispatcher) *Engine {
	if build == nil {
		build = func(k *answerkey.Key) *resolver.Dispatcher { return resolver.New(k) }
	}
	e := &Engine{build: build}
	e.Swap(key)
	return e
}

func (e *Engine) Current() *resolver.Dispatcher { return e.cur.Load() }

func (e *Engine) Swap(key *answerkey.Key) { e.cur.Store(e.build(key)) }
