// Copyright 2018 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

// Package xhash implements the difficulty retargeting core of a hybrid
// proof-of-work / proof-of-stake chain: legacy epoch retargeting, a
// weighted-target EMA fallback, and an absolutely-scheduled ASERT variant
// with a cubic 2^x approximation, plus the companion proof-of-work
// validity predicate.
package xhash

import "github.com/holiman/uint256"

// Algo identifies a difficulty channel's hash algorithm. AlgoNone means the
// header predates algorithm tagging and the channel falls back to the
// stake-flag split.
type Algo int32

const (
	AlgoNone      Algo = -1
	AlgoPOS       Algo = 0
	AlgoPOWSHA256 Algo = 1
	AlgoCount     Algo = 2
)

// Params is the frozen, per-network set of consensus constants this
// package consults. It is passed by pointer into every entrypoint rather
// than held as package state, mirroring go-ethereum's params.ChainConfig.
type Params struct {
	// PowLimit holds the maximum (easiest) target per channel, indexed by
	// Algo (AlgoPOS and AlgoPOWSHA256 are both valid indices; AlgoNone is
	// never used to index this array: channelLimit resolves it to AlgoPOS
	// or AlgoPOWSHA256 by the stake flag, CheckProofOfWork to
	// AlgoPOWSHA256).
	PowLimit [AlgoCount]*uint256.Int

	// PowTargetSpacing is the nominal PoS inter-block spacing in seconds.
	// PoW channels use a fixed 600s spacing regardless of this field.
	PowTargetSpacing uint32

	// PowTargetTimespan is the retargeting timespan in seconds; also the
	// divisor in the ASERT exponent and the WTEMA half-life numerator.
	PowTargetTimespan uint32

	// StakeTimestampMask is the bitmask a PoS block's timestamp must
	// satisfy: (t & mask) == 0.
	StakeTimestampMask int64

	// PowAllowMinDifficultyBlocks enables the testnet min-difficulty rule.
	PowAllowMinDifficultyBlocks bool

	// PowNoRetargeting freezes difficulty (regtest): NextWorkRequired
	// returns the channel's pow_limit, NextWorkRequiredLegacy the parent's
	// bits.
	PowNoRetargeting bool

	// AsertStartHeight is the absolute anchor height at/above which ASERT
	// takes over from WTEMA.
	AsertStartHeight int64
}

// legacyPowSpacingSeconds is the fixed pre-hybrid PoW inter-block spacing;
// XEP always retargets against this, regardless of PowTargetSpacing.
const legacyPowSpacingSeconds = 600

// DifficultyAdjustmentInterval returns the legacy epoch length in blocks:
// the number of blocks between XEP retargets.
func (p *Params) DifficultyAdjustmentInterval() int64 {
	return int64(p.PowTargetTimespan) / legacyPowSpacingSeconds
}

// targetSpacingFor returns the nominal spacing (seconds) used to schedule
// a channel: PoW is always 600s, PoS uses the configured spacing.
func targetSpacingFor(algo Algo, isPos bool, p *Params) int64 {
	if algo == AlgoPOWSHA256 || (algo == AlgoNone && !isPos) {
		return legacyPowSpacingSeconds
	}
	return int64(p.PowTargetSpacing)
}
