package xhash

import "github.com/holiman/uint256"

// CheckProofOfWork reports whether hash satisfies the target declared by
// bits for the given algorithm (spec §4.7). All rejection reasons
// collapse to false; the core exposes no error channel (spec §7).
func CheckProofOfWork(hash *uint256.Int, bits uint32, algo Algo, params *Params) bool {
	target, negative, overflow := CompactToU256(bits)
	if negative || overflow || target.IsZero() {
		return false
	}
	if algo < AlgoNone || algo == AlgoPOS || algo >= AlgoCount {
		return false
	}

	limit := params.PowLimit[AlgoPOWSHA256]
	if algo != AlgoNone {
		limit = params.PowLimit[algo]
	}
	if target.Cmp(limit) > 0 {
		return false
	}
	return hash.Cmp(target) <= 0
}
