package apitest

import (
	"errors"
	"sync"
)

// MemTokens — TokenStore в памяти.
type MemTokens struct {
	mu  sync.Mutex
	tok string
}

// NewMemTokens создаёт хранилище с начальным токеном (может быть пустым).
func NewMemTokens(tok string) *MemTokens { return &MemTokens{tok: tok} }

func (m *MemTokens) Save(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tok = token
	return nil
}

func (m *MemTokens) Load() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tok == "" {
		return "", errors.New("no token")
	}
	return m.tok, nil
}

func (m *MemTokens) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tok = ""
	return nil
}
