// Package session holds the per-user context: who is signed in, their cart,
// their loyalty mirror and their checkout workflow.
package session

import (
	"sync"

	"resto-collect/internal/model"
)

// Listener is called with the new identity after every sign-in or sign-out.
// signedIn is false after a sign-out.
type Listener func(identity model.Identity, signedIn bool)

// Provider tracks the authenticated identity of one session.
type Provider struct {
	mu        sync.Mutex
	identity  model.Identity
	signedIn  bool
	nextID    int
	listeners map[int]Listener
}

// NewProvider returns a signed-out provider.
func NewProvider() *Provider {
	return &Provider{listeners: make(map[int]Listener)}
}

// Current returns the signed-in identity, if any.
func (p *Provider) Current() (model.Identity, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.identity, p.signedIn
}

// SignIn records identity as the current user and notifies listeners.
func (p *Provider) SignIn(identity model.Identity) {
	p.mu.Lock()
	p.identity = identity
	p.signedIn = true
	listeners := p.snapshotLocked()
	p.mu.Unlock()

	for _, fn := range listeners {
		fn(identity, true)
	}
}

// SignOut clears the identity and notifies listeners. Signing out twice is a no-op.
func (p *Provider) SignOut() {
	p.mu.Lock()
	if !p.signedIn {
		p.mu.Unlock()
		return
	}
	previous := p.identity
	p.identity = model.Identity{}
	p.signedIn = false
	listeners := p.snapshotLocked()
	p.mu.Unlock()

	for _, fn := range listeners {
		fn(previous, false)
	}
}

// OnChange registers fn and returns a function that removes it.
func (p *Provider) OnChange(fn Listener) (cancel func()) {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.listeners, id)
			p.mu.Unlock()
		})
	}
}

func (p *Provider) snapshotLocked() []Listener {
	out := make([]Listener, 0, len(p.listeners))
	for _, fn := range p.listeners {
		out = append(out, fn)
	}
	return out
}
