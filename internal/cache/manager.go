package cache

import (
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
)

// Manager fronts the disk tier with the memory tier. Reads promote disk
// hits into memory; writes land in memory immediately and on disk in the
// background.
type Manager struct {
	memory *MemoryCache
	disk   *DiskCache // nil when the disk tier is disabled

	writes sync.WaitGroup

	mu     sync.Mutex
	closed bool
	stats  ManagerStats
}

// ManagerStats summarizes both tiers.
type ManagerStats struct {
	Memory     Stats
	Disk       Stats
	DiskRaw    int64 // uncompressed bytes on disk
	Hits       int64
	Misses     int64
	Promotions int64
}

// HitRate returns hits / (hits + misses) across both tiers.
func (s ManagerStats) HitRate() float64 {
	if s.Hits+s.Misses == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Hits+s.Misses)
}

// NewManager builds both tiers from cfg. An empty Dir or a zero disk
// capacity leaves the disk tier out.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.MemoryCapacity <= 0 {
		cfg.MemoryCapacity = DefaultConfig().MemoryCapacity
	}

	m := &Manager{memory: NewMemoryCache(cfg.MemoryCapacity)}
	if cfg.Dir != "" && cfg.DiskCapacity > 0 {
		disk, err := NewDiskCache(cfg.Dir, cfg.DiskCapacity, cfg.CompressionLevel)
		if err != nil {
			return nil, fmt.Errorf("unable to open disk cache: %w", err)
		}
		m.disk = disk
	}
	return m, nil
}

// Get looks key up in memory, then on disk.
func (m *Manager) Get(key string) ([]byte, bool) {
	if data, ok := m.memory.Get(key); ok {
		m.count(func(s *ManagerStats) { s.Hits++ })
		return data, true
	}
	if m.disk != nil {
		if data, ok := m.disk.Get(key); ok {
			if err := m.memory.Put(key, data); err == nil {
				m.count(func(s *ManagerStats) { s.Promotions++ })
			}
			m.count(func(s *ManagerStats) { s.Hits++ })
			return data, true
		}
	}
	m.count(func(s *ManagerStats) { s.Misses++ })
	return nil, false
}

// Put stores value under key in both tiers. A clip too large for memory is
// still written to disk.
func (m *Manager) Put(key string, value []byte) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return errors.New("cache is closed")
	}
	m.writes.Add(1)
	m.mu.Unlock()

	err := m.memory.Put(key, value)
	if err != nil && !errors.Is(err, ErrItemTooLarge) {
		m.writes.Done()
		return err
	}

	if m.disk == nil {
		m.writes.Done()
		return err
	}
	go func() {
		defer m.writes.Done()
		if err := m.disk.Put(key, value); err != nil {
			log.Debug("Disk cache write failed", "key", key, "error", err)
		}
	}()
	return nil
}

// Flush waits for background disk writes.
func (m *Manager) Flush() {
	m.writes.Wait()
}

// Clear empties both tiers.
func (m *Manager) Clear() error {
	m.Flush()
	m.memory.Clear()
	if m.disk != nil {
		return m.disk.Clear()
	}
	return nil
}

// Stats returns counters for both tiers.
func (m *Manager) Stats() ManagerStats {
	m.mu.Lock()
	s := m.stats
	m.mu.Unlock()

	s.Memory = m.memory.Stats()
	if m.disk != nil {
		s.Disk = m.disk.Stats()
		s.DiskRaw = m.disk.RawSize()
	}
	return s
}

// Dir returns the disk tier directory, or "" without one.
func (m *Manager) Dir() string {
	if m.disk == nil {
		return ""
	}
	return m.disk.Dir()
}

// Close waits for pending writes and saves the disk index.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	m.Flush()
	if m.disk != nil {
		return m.disk.Close()
	}
	return nil
}

func (m *Manager) count(fn func(*ManagerStats)) {
	m.mu.Lock()
	fn(&m.stats)
	m.mu.Unlock()
}
