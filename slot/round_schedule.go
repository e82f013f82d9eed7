package slot

import (
	"crypto/sha256"
	"encoding/binary"

	"go.dedis.ch/kyber/v3/xof/blake2xb"
)

// shuffleDelegates produces the deterministic per-round ordering every
// honest node computes identically (§4.1: "a seed derived from the
// round number"). It replaces the teacher's GetProposer modulo-index
// (types/validator_set.go, deleted — see DESIGN.md), which picked one
// proposer per logical-clock tick rather than a whole-round schedule,
// with a Fisher-Yates shuffle keyed on a kyber XOF stream so the
// permutation is reproducible from the round seed alone.
func shuffleDelegates(delegates [][]byte, roundNumber uint64) [][]byte {
	out := make([][]byte, len(delegates))
	copy(out, delegates)

	seed := roundSeed(roundNumber)
	stream := blake2xb.New(seed)

	for i := len(out) - 1; i > 0; i-- {
		j := randIntn(stream, i+1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// roundSeed derives a 32-byte seed from the round number: SHA256 of
// its big-endian encoding. Deterministic and collision-resistant
// enough for shuffle-keying purposes.
func roundSeed(roundNumber uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], roundNumber)
	sum := sha256.Sum256(buf[:])
	return sum[:]
}

// randIntn draws a uniform value in [0, n) from the XOF stream via
// rejection sampling over 4-byte reads.
func randIntn(stream interface{ XORKeyStream(dst, src []byte) }, n int) int {
	if n <= 1 {
		return 0
	}
	limit := uint32(n)
	ceiling := (^uint32(0) / limit) * limit
	var buf [4]byte
	zero := make([]byte, 4)
	for {
		stream.XORKeyStream(buf[:], zero)
		v := binary.BigEndian.Uint32(buf[:])
		if v < ceiling {
			return int(v % limit)
		}
	}
}
