package insts

import (
	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

// DefaultDecodeCacheSets and DefaultDecodeCacheWays size the decode cache
// when no configuration is given: 256 sets x 4 ways covers a 4KB hot loop.
const (
	DefaultDecodeCacheSets = 256
	DefaultDecodeCacheWays = 4
)

// CacheStats holds decode cache statistics.
type CacheStats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	// Stale counts hits on an address whose word has since changed.
	Stale uint64
}

// DecodeCache memoizes decoded instructions by fetch address. Each entry
// remembers the word it was decoded from, so memory rewritten under a cached
// address is decoded again instead of served stale.
//
// The returned instructions are shared between lookups and must not be
// modified.
type DecodeCache struct {
	decoder *Decoder

	// Akita cache directory for tag/LRU management, one word per block
	directory *akitacache.DirectoryImpl
	ways      int

	// Decoded entries, indexed by (setID * ways + wayID)
	entries []*Instruction

	stats CacheStats
}

// NewDecodeCache creates a decode cache with the given geometry.
func NewDecodeCache(sets, ways int) *DecodeCache {
	if sets <= 0 {
		sets = DefaultDecodeCacheSets
	}
	if ways <= 0 {
		ways = DefaultDecodeCacheWays
	}

	return &DecodeCache{
		decoder: NewDecoder(),
		directory: akitacache.NewDirectory(
			sets,
			ways,
			4,
			akitacache.NewLRUVictimFinder(),
		),
		ways:    ways,
		entries: make([]*Instruction, sets*ways),
	}
}

// Stats returns decode cache statistics.
func (c *DecodeCache) Stats() CacheStats {
	return c.stats
}

// Reset drops every entry and clears the statistics.
func (c *DecodeCache) Reset() {
	c.directory.Reset()
	for i := range c.entries {
		c.entries[i] = nil
	}
	c.stats = CacheStats{}
}

func (c *DecodeCache) entryIndex(block *akitacache.Block) int {
	return block.SetID*c.ways + block.WayID
}

// Decode returns the decoded form of word, fetched from addr.
func (c *DecodeCache) Decode(addr, word uint32) *Instruction {
	tag := uint64(addr)

	block := c.directory.Lookup(0, tag)
	if block != nil && block.IsValid {
		idx := c.entryIndex(block)
		c.directory.Visit(block)

		if inst := c.entries[idx]; inst != nil && inst.Word == word {
			c.stats.Hits++
			return inst
		}

		c.stats.Stale++
		c.stats.Misses++
		inst := c.decoder.Decode(word)
		c.entries[idx] = inst
		return inst
	}

	c.stats.Misses++

	victim := c.directory.FindVictim(tag)
	if victim == nil {
		return c.decoder.Decode(word)
	}

	if victim.IsValid {
		c.stats.Evictions++
	}

	inst := c.decoder.Decode(word)
	c.entries[c.entryIndex(victim)] = inst

	victim.Tag = tag
	victim.IsValid = true
	victim.IsDirty = false
	c.directory.Visit(victim)

	return inst
}
