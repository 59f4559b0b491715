package session

import (
	"context"
	"sync"
)

// MemoryPersister keeps the credential in process memory. It survives a
// Store being discarded and recreated, which is what tests use to simulate a
// reload.
type MemoryPersister struct {
	mu    sync.Mutex
	value string
	set   bool
}

func NewMemoryPersister() *MemoryPersister { return &MemoryPersister{} }

func (p *MemoryPersister) Load(context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value, nil
}

func (p *MemoryPersister) Save(_ context.Context, credential string) error {
	p.mu.Lock()
	p.value, p.set = credential, true
	p.mu.Unlock()
	return nil
}

func (p *MemoryPersister) Remove(context.Context) error {
	p.mu.Lock()
	p.value, p.set = "", false
	p.mu.Unlock()
	return nil
}

// Stored reports whether the key is present.
func (p *MemoryPersister) Stored() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.set
}
