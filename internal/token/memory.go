package token

import "sync"

// Memory is a process-local credential store for tests and ephemeral runs.
type Memory struct {
	mu      sync.Mutex
	access  string
	refresh string
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Set(p Pair) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access = p.Access
	m.refresh = p.Refresh
	return nil
}

func (m *Memory) Access() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.access
}

func (m *Memory) Refresh() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refresh
}

func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access = ""
	m.refresh = ""
	return nil
}

func (m *Memory) Valid() bool {
	return accessValid(m.Access())
}
