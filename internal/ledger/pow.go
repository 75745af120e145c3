package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// DefaultDifficulty is the number of leading zero hex characters a proof
// digest must carry. Fixed at ledger construction; there is no retargeting.
const DefaultDifficulty = 3

// ProofOfWork returns the smallest non-negative integer p such that the
// SHA-256 digest of the decimal concatenation lastProof||p starts with
// difficulty zero hex characters. This is a CPU-bound blocking search with no
// internal cancellation; callers needing to abandon it must run it on a
// worker and discard the result.
func ProofOfWork(lastProof uint64, difficulty int) uint64 {
	var proof uint64
	for !ValidProof(lastProof, proof, difficulty) {
		proof++
	}
	return proof
}

// ValidProof reports whether the digest of lastProof||proof meets the
// difficulty target.
func ValidProof(lastProof, proof uint64, difficulty int) bool {
	if difficulty <= 0 {
		return true
	}
	guess := strconv.FormatUint(lastProof, 10) + strconv.FormatUint(proof, 10)
	sum := sha256.Sum256([]byte(guess))
	digest := hex.EncodeToString(sum[:])
	return strings.HasPrefix(digest, strings.Repeat("0", difficulty))
}
