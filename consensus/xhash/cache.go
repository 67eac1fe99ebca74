package xhash

import (
	"sync"

	"github.com/holiman/uint256"
)

// targetCacheKey identifies one memoized window average: the channel plus
// the window-end block it was computed from. A sentinel windowEndHeight
// of -1 with a zero hash represents the "anchor target" path (spec §4.6).
type targetCacheKey struct {
	channel         channelKey
	windowEndHeight int64
	windowEndHash   [32]byte
}

// targetCache is the single mutex-guarded rolling-average memo described
// in spec §4.6/§5: an optimization only, consulted and updated behind one
// lock, whose presence or absence must never change outputs.
type targetCache struct {
	mu      sync.Mutex
	entries map[targetCacheKey]*uint256.Int
}

var globalTargetCache = &targetCache{entries: make(map[targetCacheKey]*uint256.Int)}

// lookup returns the cached target for key, if present.
func (c *targetCache) lookup(key targetCacheKey) (*uint256.Int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

// store records target under key, but only once it has been computed via
// the full path; the cache never drives computation itself (advisory
// per spec §4.6).
func (c *targetCache) store(key targetCacheKey, target *uint256.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = new(uint256.Int).Set(target)
}

// resetTargetCacheForTests clears the rolling-average memo. Tests use
// this to assert that enabling/disabling the cache never changes outputs
// (spec §8 property 3); production code never needs it.
func resetTargetCacheForTests() {
	globalTargetCache.mu.Lock()
	defer globalTargetCache.mu.Unlock()
	globalTargetCache.entries = make(map[targetCacheKey]*uint256.Int)
}

// anchorCacheKey builds the sentinel key for the "anchor target" cache
// path (windowEndHeight = -1, zero hash), per spec §4.6.
func anchorCacheKey(ch channelKey) targetCacheKey {
	return targetCacheKey{channel: ch, windowEndHeight: -1}
}
