// Package cache keeps synthesized speech so that hovering the same glyph
// twice does not run the engine twice. It has two tiers: an LRU in memory
// and a zstd-compressed store on disk that survives restarts.
package cache
