// internal/adapters/out/localslot/memory_slot.go
package localslot

import (
	"sync"
)

// MemorySlot is the session-scoped key-value slot backing the Local
// Cart Store. それぞれのブラウジングセッションが 1 つずつ持ち、
// セッション終了とともに破棄される（sessionStorage 相当）。
//
// Values are stored as opaque byte snapshots; the cart owns the codec.
type MemorySlot struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewMemorySlot() *MemorySlot {
	return &MemorySlot{values: map[string][]byte{}}
}

// Get returns (nil, false, nil) when the key is absent.
func (s *MemorySlot) Get(key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	// hand out a copy so callers cannot mutate the stored snapshot
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, true, nil
}

func (s *MemorySlot) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := make([]byte, len(value))
	copy(cp, value)
	s.values[key] = cp
	return nil
}

// Delete of a missing key is not an error.
func (s *MemorySlot) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	return nil
}

// Has reports whether the key currently exists (test helper for the
// "slot absent, not empty-marker" contract).
func (s *MemorySlot) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.values[key]
	return ok
}
