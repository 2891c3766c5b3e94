package extension

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/xr-bridge/errors"
	"github.com/wippyai/xr-bridge/xr"
)

// Request is one extension name and the out-flags of every wrapper that
// asked for it.
type Request struct {
	Name      string
	Flags     []*bool
	Mandatory bool
}

// Resolve sets every requester's flag to enabled.
func (r Request) Resolve(enabled bool) {
	for _, f := range r.Flags {
		*f = enabled
	}
}

// Registry holds wrappers and layer providers in registration order.
// Broadcasts visit them in that order.
type Registry struct {
	wrappers  []Wrapper
	providers []CompositionLayerProvider
	mu        sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a wrapper.
func (r *Registry) Register(w Wrapper) error {
	if w == nil {
		return errors.InvalidInput(errors.PhaseRegistry, "wrapper cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.wrappers {
		if existing == w {
			return errors.New(errors.PhaseRegistry, errors.KindInvalidInput).
				Detail("wrapper %T already registered", w).
				Build()
		}
	}
	r.wrappers = append(r.wrappers, w)
	Logger().Debug("wrapper registered", zap.String("type", typeName(w)), zap.Int("position", len(r.wrappers)))
	return nil
}

// Unregister removes a wrapper. It reports whether the wrapper was present.
func (r *Registry) Unregister(w Wrapper) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.wrappers {
		if existing == w {
			r.wrappers = append(r.wrappers[:i], r.wrappers[i+1:]...)
			return true
		}
	}
	return false
}

// RegisterLayerProvider appends a composition layer provider.
func (r *Registry) RegisterLayerProvider(p CompositionLayerProvider) error {
	if p == nil {
		return errors.InvalidInput(errors.PhaseRegistry, "layer provider cannot be nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers = append(r.providers, p)
	return nil
}

// UnregisterLayerProvider removes a composition layer provider.
func (r *Registry) UnregisterLayerProvider(p CompositionLayerProvider) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.providers {
		if existing == p {
			r.providers = append(r.providers[:i], r.providers[i+1:]...)
			return true
		}
	}
	return false
}

// Wrappers returns a snapshot of the registered wrappers.
func (r *Registry) Wrappers() []Wrapper {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Wrapper(nil), r.wrappers...)
}

// Len returns the number of registered wrappers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.wrappers)
}

// CollectRequestedExtensions merges every wrapper's requests, sorted by name.
// A name is mandatory if any wrapper passed a nil flag for it.
func (r *Registry) CollectRequestedExtensions() []Request {
	byName := make(map[string]*Request)
	for _, w := range r.Wrappers() {
		for name, flag := range w.RequestedExtensions() {
			req, ok := byName[name]
			if !ok {
				req = &Request{Name: name}
				byName[name] = req
			}
			if flag == nil {
				req.Mandatory = true
			} else {
				req.Flags = append(req.Flags, flag)
			}
		}
	}

	out := make([]Request, 0, len(byName))
	for _, req := range byName {
		out = append(out, *req)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *Registry) each(fn func(Wrapper)) {
	for _, w := range r.Wrappers() {
		fn(w)
	}
}

func (r *Registry) InstanceCreated(instance xr.Instance) {
	r.each(func(w Wrapper) { w.OnInstanceCreated(instance) })
}

func (r *Registry) InstanceDestroyed() {
	r.each(func(w Wrapper) { w.OnInstanceDestroyed() })
}

func (r *Registry) SessionCreated(session xr.Session) {
	r.each(func(w Wrapper) { w.OnSessionCreated(session) })
}

func (r *Registry) SessionDestroyed() {
	r.each(func(w Wrapper) { w.OnSessionDestroyed() })
}

func (r *Registry) PreRender() {
	r.each(func(w Wrapper) { w.OnPreRender() })
}

func (r *Registry) Process() {
	r.each(func(w Wrapper) { w.OnProcess() })
}

// State broadcasts the hook for a session state. Unknown states are ignored.
func (r *Registry) State(state xr.SessionState) {
	r.each(func(w Wrapper) {
		switch state {
		case xr.SessionStateIdle:
			w.OnStateIdle()
		case xr.SessionStateReady:
			w.OnStateReady()
		case xr.SessionStateSynchronized:
			w.OnStateSynchronized()
		case xr.SessionStateVisible:
			w.OnStateVisible()
		case xr.SessionStateFocused:
			w.OnStateFocused()
		case xr.SessionStateStopping:
			w.OnStateStopping()
		case xr.SessionStateLossPending:
			w.OnStateLossPending()
		case xr.SessionStateExiting:
			w.OnStateExiting()
		}
	})
}

// EventPolled offers ev to every wrapper and reports whether any consumed it.
func (r *Registry) EventPolled(ev xr.Event) bool {
	handled := false
	r.each(func(w Wrapper) {
		if w.OnEventPolled(ev) {
			handled = true
		}
	})
	return handled
}

func (r *Registry) chain(next *xr.Chain, hook func(Wrapper, *xr.Chain) *xr.Chain) *xr.Chain {
	for _, w := range r.Wrappers() {
		next = hook(w, next)
	}
	return next
}

// InstanceCreateChain threads the instance create-info chain through every wrapper.
func (r *Registry) InstanceCreateChain(next *xr.Chain) *xr.Chain {
	return r.chain(next, Wrapper.InstanceCreateNext)
}

// SessionCreateChain threads the session create-info chain through every wrapper.
func (r *Registry) SessionCreateChain(next *xr.Chain) *xr.Chain {
	return r.chain(next, Wrapper.SessionCreateNext)
}

// SwapchainCreateChain threads the swapchain create-info chain through every wrapper.
func (r *Registry) SwapchainCreateChain(next *xr.Chain) *xr.Chain {
	return r.chain(next, Wrapper.SwapchainCreateNext)
}

// SystemPropertiesChain threads the system properties chain through every wrapper.
func (r *Registry) SystemPropertiesChain(next *xr.Chain) *xr.Chain {
	return r.chain(next, Wrapper.SystemPropertiesNext)
}

// Layers collects the non-nil layers of every provider, in order.
func (r *Registry) Layers() []xr.CompositionLayer {
	r.mu.RLock()
	providers := append([]CompositionLayerProvider(nil), r.providers...)
	r.mu.RUnlock()

	var layers []xr.CompositionLayer
	for _, p := range providers {
		if l := p.CompositionLayer(); l != nil {
			layers = append(layers, l)
		}
	}
	return layers
}

func typeName(v any) string {
	if n, ok := v.(interface{ Name() string }); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", v)
}
