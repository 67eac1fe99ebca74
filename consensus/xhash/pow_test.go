package xhash

import (
	"testing"

	"github.com/holiman/uint256"
)

func TestCheckProofOfWorkAcceptsHashAtOrBelowTarget(t *testing.T) {
	p := testParams()
	target := new(uint256.Int).Lsh(uint256.NewInt(1), 220)
	bits := U256ToCompact(target)

	atTarget := target.Clone()
	below := new(uint256.Int).Sub(target, uint256.NewInt(1))

	if !CheckProofOfWork(atTarget, bits, AlgoPOWSHA256, p) {
		t.Fatalf("expected hash exactly at target to pass")
	}
	if !CheckProofOfWork(below, bits, AlgoPOWSHA256, p) {
		t.Fatalf("expected hash below target to pass")
	}
}

func TestCheckProofOfWorkRejectsHashAboveTarget(t *testing.T) {
	p := testParams()
	target := new(uint256.Int).Lsh(uint256.NewInt(1), 220)
	bits := U256ToCompact(target)
	above := new(uint256.Int).Add(target, uint256.NewInt(1))

	if CheckProofOfWork(above, bits, AlgoPOWSHA256, p) {
		t.Fatalf("expected hash above target to fail")
	}
}

func TestCheckProofOfWorkRejectsMalformedBits(t *testing.T) {
	p := testParams()
	hash := uint256.NewInt(1)

	// Negative-flagged mantissa.
	if CheckProofOfWork(hash, 0x03800001, AlgoPOWSHA256, p) {
		t.Fatalf("expected negative-flagged bits to be rejected")
	}
	// Overflowing exponent/mantissa pair.
	if CheckProofOfWork(hash, 0xff123456, AlgoPOWSHA256, p) {
		t.Fatalf("expected overflowing bits to be rejected")
	}
	// Zero target.
	if CheckProofOfWork(hash, 0x00000000, AlgoPOWSHA256, p) {
		t.Fatalf("expected zero target to be rejected")
	}
}

func TestCheckProofOfWorkRejectsTargetAbovePowLimit(t *testing.T) {
	p := testParams()
	tooEasy := new(uint256.Int).Lsh(p.PowLimit[AlgoPOWSHA256], 1)
	bits := U256ToCompact(tooEasy)

	if CheckProofOfWork(uint256.NewInt(0), bits, AlgoPOWSHA256, p) {
		t.Fatalf("expected target above pow_limit to be rejected regardless of hash")
	}
}

func TestCheckProofOfWorkRejectsStakeChannel(t *testing.T) {
	p := testParams()
	target := new(uint256.Int).Lsh(uint256.NewInt(1), 220)
	bits := U256ToCompact(target)

	if CheckProofOfWork(uint256.NewInt(0), bits, AlgoPOS, p) {
		t.Fatalf("expected the stake channel to never satisfy a PoW predicate")
	}
}

func TestCheckProofOfWorkUntaggedHeaderUsesSHA256Limit(t *testing.T) {
	p := testParams()
	target := new(uint256.Int).Lsh(uint256.NewInt(1), 220)
	bits := U256ToCompact(target)

	if !CheckProofOfWork(uint256.NewInt(0), bits, AlgoNone, p) {
		t.Fatalf("expected an untagged header to validate against the SHA-256 limit")
	}
}
