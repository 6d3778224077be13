// Package route maps session decisions onto navigation and carries one-shot
// parameters between screens.
package route

import (
	"sync"
	"sync/atomic"
)

// Route is a top-level destination of the app shell.
type Route string

const (
	Login        Route = "login"
	Registration Route = "registration"
	Home         Route = "home"
)

// ParamShowRegistrationModal asks the home screen to open the profile
// completion form.
const ParamShowRegistrationModal = "showRegistrationModal"

// Navigator replaces the navigation stack with a single route.
type Navigator interface {
	Reset(to Route, params Params)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(to Route, params Params)

func (f NavigatorFunc) Reset(to Route, params Params) { f(to, params) }

// Discard is a Navigator that ignores every call.
var Discard Navigator = NavigatorFunc(func(Route, Params) {})

// Params are inter-screen signals. Each value is delivered at most once.
type Params struct {
	mu     *sync.Mutex
	values map[string]any
}

// NewParams builds Params from key/value pairs.
func NewParams(kv map[string]any) Params {
	p := Params{mu: &sync.Mutex{}, values: make(map[string]any, len(kv))}
	for k, v := range kv {
		p.values[k] = v
	}
	return p
}

// Consume returns the value for key and clears it.
func (p Params) Consume(key string) (any, bool) {
	if p.mu == nil {
		return nil, false
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	v, ok := p.values[key]
	delete(p.values, key)
	return v, ok
}

// ConsumeFlag reports whether a true boolean was set under key, clearing it.
func (p Params) ConsumeFlag(key string) bool {
	v, ok := p.Consume(key)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// Mount guards a Navigator for the lifetime of the screen that started an
// operation. Once unmounted, navigation requests are dropped.
type Mount struct {
	nav       Navigator
	unmounted atomic.Bool
}

// NewMount wraps nav. A nil nav discards.
func NewMount(nav Navigator) *Mount {
	if nav == nil {
		nav = Discard
	}
	return &Mount{nav: nav}
}

// Reset forwards to the wrapped Navigator while mounted.
func (m *Mount) Reset(to Route, params Params) {
	if m.unmounted.Load() {
		return
	}
	m.nav.Reset(to, params)
}

// Unmount stops forwarding.
func (m *Mount) Unmount() { m.unmounted.Store(true) }

// Mounted reports whether Unmount has not yet been called.
func (m *Mount) Mounted() bool { return !m.unmounted.Load() }

var _ Navigator = (*Mount)(nil)
