package store

import "sync"

// MemoryStore は容量上限付きのインメモリ KV 実装です。
// テストと、永続ストアを持たない組み込み利用のための既定実装で、
// localStorage と同様に総バイト数で書き込みを拒否します。
type MemoryStore struct {
	mu       sync.Mutex
	capacity int // 0以下は無制限
	used     int
	data     map[string]string
}

// NewMemoryStore は capacity バイトを上限とするストアを返します。
// capacity が0以下の場合は無制限です。
func NewMemoryStore(capacity int) *MemoryStore {
	return &MemoryStore{
		capacity: capacity,
		data:     make(map[string]string),
	}
}

func (s *MemoryStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.used - len(s.data[key]) + len(value)
	if s.capacity > 0 && next > s.capacity {
		return ErrQuotaExceeded
	}

	s.used = next
	s.data[key] = value
	return nil
}

func (s *MemoryStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.data[key]; ok {
		s.used -= len(v)
		delete(s.data, key)
	}
	return nil
}

var _ KV = (*MemoryStore)(nil)
