package oauth

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dmitrijs2005/launchdeck/internal/logging"
	"github.com/dmitrijs2005/launchdeck/internal/storage/vault"
)

// Registry holds one Authorizer per named provider, all sharing the
// same token vault and loopback callback address.
type Registry struct {
	store        vault.Store
	callbackAddr string
	log          logging.Logger

	mu    sync.Mutex
	auths map[string]*Authorizer
}

type RegistryOption func(*Registry)

func WithRegistryLogger(l logging.Logger) RegistryOption {
	return func(r *Registry) { r.log = l }
}

func NewRegistry(store vault.Store, callbackAddr string, opts ...RegistryOption) *Registry {
	r := &Registry{
		store:        store,
		callbackAddr: callbackAddr,
		log:          logging.NewDefault(logging.DefaultLevel),
		auths:        make(map[string]*Authorizer),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Register creates the Authorizer for a provider. The redirect URI is
// derived from the shared callback address unless the provider sets
// its own.
func (r *Registry) Register(name string, p Provider) *Authorizer {
	if p.RedirectURI == "" {
		p.RedirectURI = "http://" + r.callbackAddr + "/callback"
	}
	flow := &LoopbackFlow{
		Addr: r.callbackAddr,
		Announce: func(ctx context.Context, consentURL string) {
			r.log.Info(ctx, "waiting for authorization", "provider", name, "url", consentURL)
		},
	}
	a := New(p, r.store, flow, WithLogger(r.log))

	r.mu.Lock()
	defer r.mu.Unlock()
	r.auths[name] = a
	return a
}

// Source returns the Authorizer registered under name, nil if absent.
func (r *Registry) Source(name string) *Authorizer {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.auths[name]
}

// Get is like Source but errors on unknown names, for user-facing
// commands that take a provider argument.
func (r *Registry) Get(name string) (*Authorizer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.auths[name]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q (have %v)", name, r.namesLocked())
	}
	return a, nil
}

// Names returns the registered provider names, sorted.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.namesLocked()
}

func (r *Registry) namesLocked() []string {
	names := make([]string, 0, len(r.auths))
	for n := range r.auths {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
