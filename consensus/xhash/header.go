package xhash

import "github.com/holiman/uint256"

// version bit layout for algorithm tagging. Bit 8 marks the header as
// carrying an explicit algorithm tag; bits 0-7 hold the tag itself when
// set. Headers minted before the hybrid fork carry no tag at all.
const (
	versionAlgoTaggedBit = 1 << 8
	versionAlgoMask      = 0xff
	versionStakeBit      = 1 << 16
)

// BlockIndex is the read-only chain-index node this package walks. Chain
// storage, ancestor lookups, and the arena/allocation strategy backing
// these pointers are owned by the caller (spec §1, §9); this package only
// ever dereferences Prev and never mutates a node.
type BlockIndex struct {
	Height     uint32
	HeightPow  uint32 // cumulative in-channel count, PoW, up to and incl. this node
	HeightPos  uint32 // cumulative in-channel count, PoS, up to and incl. this node
	Prev       *BlockIndex
	Time       int64
	Bits       uint32
	Version    int32
	BlockHash  [32]byte
}

// AlgoOf decodes the algorithm tag embedded in a header's version word.
// AlgoNone means the header predates algorithm tagging.
func AlgoOf(version int32) Algo {
	if version&versionAlgoTaggedBit == 0 {
		return AlgoNone
	}
	return Algo(version & versionAlgoMask)
}

// IsPOS decodes the stake flag embedded in a header's version word.
func IsPOS(version int32) bool {
	return version&versionStakeBit != 0
}

// Ancestor walks Prev pointers back to the given height, or returns nil if
// height is unreachable (greater than n.Height, or the chain runs out
// before reaching it).
func (n *BlockIndex) Ancestor(height uint32) *BlockIndex {
	if n == nil || height > n.Height {
		return nil
	}
	cur := n
	for cur != nil && cur.Height > height {
		cur = cur.Prev
	}
	if cur == nil || cur.Height != height {
		return nil
	}
	return cur
}

// heightInChannel returns the node's cumulative in-channel block count for
// the given stake flag, matching spec §4.6's height_pos/height_pow choice.
func (n *BlockIndex) heightInChannel(isPos bool) uint32 {
	if isPos {
		return n.HeightPos
	}
	return n.HeightPow
}

// hashZero reports whether a block hash is the all-zero sentinel used by
// the cache's "anchor target" cache-entry key (spec §4.6).
func hashZero(h [32]byte) bool {
	return h == [32]byte{}
}

// bitsSentinel returns the testnet min-difficulty sentinel value for a
// channel: compact(pow_limit) - 1.
func bitsSentinel(limit *uint256.Int) uint32 {
	c := U256ToCompact(limit)
	if c == 0 {
		return 0
	}
	return c - 1
}
