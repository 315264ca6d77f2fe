package cache

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

const indexFile = "index.gob"

// DiskCache stores clips as files under a directory, optionally compressed
// with zstd. The index is written back on Close and Clear.
type DiskCache struct {
	dir      string
	capacity int64
	size     int64

	encoder *zstd.Encoder
	decoder *zstd.Decoder

	index map[string]*diskEntry
	clock uint64 // orders reads and writes for eviction

	mu    sync.Mutex
	stats Stats
}

type diskEntry struct {
	Key        string
	File       string
	Size       int64 // on disk
	RawSize    int64
	Compressed bool
	LastUse    uint64
}

// NewDiskCache opens or creates a disk cache in dir holding up to capacity
// bytes. A compression level of 0 stores clips as-is.
func NewDiskCache(dir string, capacity int64, compressionLevel int) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("unable to create cache directory: %w", err)
	}

	dc := &DiskCache{
		dir:      dir,
		capacity: capacity,
		index:    make(map[string]*diskEntry),
		stats:    Stats{Capacity: capacity},
	}

	if compressionLevel > 0 {
		var err error
		dc.encoder, err = zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(compressionLevel)))
		if err != nil {
			return nil, fmt.Errorf("unable to create zstd encoder: %w", err)
		}
		dc.decoder, err = zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("unable to create zstd decoder: %w", err)
		}
	}

	if err := dc.loadIndex(); err != nil {
		dc.index = make(map[string]*diskEntry)
	}
	for _, e := range dc.index {
		dc.size += e.Size
		dc.clock = max(dc.clock, e.LastUse)
	}

	return dc, nil
}

// Dir returns the cache directory.
func (dc *DiskCache) Dir() string { return dc.dir }

// Get reads the clip for key from disk.
func (dc *DiskCache) Get(key string) ([]byte, bool) {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	dc.stats.LastAccess = time.Now()
	e, ok := dc.index[key]
	if !ok {
		dc.stats.Misses++
		return nil, false
	}

	data, err := os.ReadFile(e.File)
	if err == nil && e.Compressed {
		if dc.decoder == nil {
			err = ErrCacheCorrupted
		} else {
			data, err = dc.decoder.DecodeAll(data, nil)
		}
	}
	if err != nil {
		dc.dropLocked(e)
		dc.stats.Misses++
		return nil, false
	}

	dc.clock++
	e.LastUse = dc.clock
	dc.stats.Hits++
	return data, true
}

// Put writes value to disk, evicting the least recently read clips until
// it fits.
func (dc *DiskCache) Put(key string, value []byte) error {
	data := value
	compressed := false
	if dc.encoder != nil {
		data = dc.encoder.EncodeAll(value, make([]byte, 0, len(value)/2))
		compressed = true
	}

	n := int64(len(data))
	if n > dc.capacity {
		return ErrItemTooLarge
	}

	dc.mu.Lock()
	defer dc.mu.Unlock()

	if old, ok := dc.index[key]; ok {
		dc.dropLocked(old)
	}
	dc.evictLocked(n)

	file := filepath.Join(dc.dir, key+".pcm")
	if compressed {
		file += ".zst"
	}
	tmp := file + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("unable to write cache file: %w", err)
	}
	if err := os.Rename(tmp, file); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("unable to write cache file: %w", err)
	}

	dc.clock++
	dc.index[key] = &diskEntry{
		Key:        key,
		File:       file,
		Size:       n,
		RawSize:    int64(len(value)),
		Compressed: compressed,
		LastUse:    dc.clock,
	}
	dc.size += n
	return nil
}

// Delete removes key from disk.
func (dc *DiskCache) Delete(key string) {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	if e, ok := dc.index[key]; ok {
		dc.dropLocked(e)
	}
}

// Clear removes every clip and rewrites an empty index.
func (dc *DiskCache) Clear() error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	for _, e := range dc.index {
		_ = os.Remove(e.File)
	}
	dc.index = make(map[string]*diskEntry)
	dc.size = 0
	return dc.saveIndexLocked()
}

// Stats returns the cache counters.
func (dc *DiskCache) Stats() Stats {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	s := dc.stats
	s.Size = dc.size
	s.Items = int64(len(dc.index))
	return s
}

// RawSize returns the uncompressed size of everything stored.
func (dc *DiskCache) RawSize() int64 {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	var total int64
	for _, e := range dc.index {
		total += e.RawSize
	}
	return total
}

// Close saves the index and releases the codecs.
func (dc *DiskCache) Close() error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	err := dc.saveIndexLocked()
	if dc.encoder != nil {
		_ = dc.encoder.Close()
		dc.encoder = nil
	}
	if dc.decoder != nil {
		dc.decoder.Close()
		dc.decoder = nil
	}
	return err
}

func (dc *DiskCache) dropLocked(e *diskEntry) {
	_ = os.Remove(e.File)
	delete(dc.index, e.Key)
	dc.size -= e.Size
}

func (dc *DiskCache) evictLocked(need int64) {
	if dc.size+need <= dc.capacity {
		return
	}
	entries := make([]*diskEntry, 0, len(dc.index))
	for _, e := range dc.index {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].LastUse < entries[j].LastUse
	})
	for _, e := range entries {
		if dc.size+need <= dc.capacity {
			return
		}
		dc.dropLocked(e)
		dc.stats.Evictions++
	}
}

func (dc *DiskCache) loadIndex() error {
	f, err := os.Open(filepath.Join(dc.dir, indexFile))
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck

	var entries []*diskEntry
	if err := gob.NewDecoder(f).Decode(&entries); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheCorrupted, err)
	}
	for _, e := range entries {
		if _, err := os.Stat(e.File); err == nil {
			dc.index[e.Key] = e
		}
	}
	return nil
}

func (dc *DiskCache) saveIndexLocked() error {
	entries := make([]*diskEntry, 0, len(dc.index))
	for _, e := range dc.index {
		entries = append(entries, e)
	}

	path := filepath.Join(dc.dir, indexFile)
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("unable to save cache index: %w", err)
	}
	if err := gob.NewEncoder(f).Encode(entries); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("unable to save cache index: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("unable to save cache index: %w", err)
	}
	return os.Rename(tmp, path)
}
