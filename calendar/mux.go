package calendar

import (
	"fmt"
	"sync"

	"github.com/guilherme-santos/icssync/internal"
)

type Mux struct {
	mu     sync.Mutex
	stores map[string]internal.Store
}

func NewMux() *Mux {
	return &Mux{
		stores: make(map[string]internal.Store),
	}
}

func (m *Mux) Get(platform string) (internal.Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	store, ok := m.stores[platform]
	if !ok {
		return nil, fmt.Errorf("calendar %q is not implemented", platform)
	}
	return store, nil
}

func (m *Mux) Register(platform string, store internal.Store) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stores[platform] = store
}
