package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrItemTooLarge is returned when an item exceeds the cache capacity
	ErrItemTooLarge = errors.New("item too large for cache")

	// ErrCacheCorrupted is returned when a stored item cannot be decoded
	ErrCacheCorrupted = errors.New("cache data corrupted")
)

// Level is a cache tier.
type Level int

const (
	LevelMemory Level = iota
	LevelDisk
)

func (l Level) String() string {
	switch l {
	case LevelMemory:
		return "memory"
	case LevelDisk:
		return "disk"
	default:
		return "unknown"
	}
}

// Stats holds counters for one tier.
type Stats struct {
	Capacity  int64
	Size      int64
	Items     int64
	Hits      int64
	Misses    int64
	Evictions int64

	LastAccess time.Time
}

// HitRate returns hits / (hits + misses).
func (s Stats) HitRate() float64 {
	if s.Hits+s.Misses == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Hits+s.Misses)
}

// Config holds sizes and location of the cache.
type Config struct {
	MemoryCapacity   int64  // bytes
	DiskCapacity     int64  // bytes; 0 disables the disk tier
	Dir              string // directory of the disk tier
	CompressionLevel int    // zstd level, 0 disables compression
}

// DefaultConfig returns a 16MB memory tier and a 128MB disk tier. Dir is
// left empty for the caller to fill in.
func DefaultConfig() Config {
	return Config{
		MemoryCapacity:   16 << 20,
		DiskCapacity:     128 << 20,
		CompressionLevel: 3,
	}
}

// Key derives the cache key for one rendering of text. Every parameter that
// changes the audio is part of the key.
func Key(engine, voice, lang, text string, rate, pitch float64) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00%s\x00%.3f\x00%.3f", engine, voice, lang, text, rate, pitch)
	return hex.EncodeToString(h.Sum(nil)[:16])
}
