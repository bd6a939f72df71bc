// Package discriminant derives negative prime class-group
// discriminants, either deterministically from a 32-byte challenge or
// by coercing caller-supplied raw bytes into the required congruence
// class. Grounded on nekryptology/pkg/core/iqc's SHA-256 entropy
// expansion (EntropyFromSeed/CreateDiscriminant) and on the mod-4
// coercion table of original_source's kala-tick discriminant.rs,
// rebuilt around the simpler deterministic +4 stride this module's
// contract requires instead of the teacher's wheel-sieve.
package discriminant

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/enigmarikki/kala/internal/bigint"
)

// ErrInvalidBitLength is returned when a requested discriminant
// bit-length is too small to carry the top-two-bits/congruence forcing
// this algorithm requires.
var ErrInvalidBitLength = errors.New("discriminant: bit length too small")

// ErrNotCongruent is returned by FromValue when a caller-supplied value
// is not negative or is not congruent to 1 (mod 4).
var ErrNotCongruent = errors.New("discriminant: value is not congruent to 1 mod 4")

// FromChallenge deterministically derives a negative prime discriminant
// D of bit-length bits from a 32-byte challenge: expand the challenge by
// hashing it concatenated with an increasing counter, pack bits bits
// from the expansion, force the top two bits to 1, force |D| == 3 (mod
// 4), then advance by +4 until Miller-Rabin passes. Two callers with
// identical (challenge, bits) always produce the same D.
func FromChallenge(challenge [32]byte, bits int) (*bigint.Int, error) {
	if bits < 16 {
		return nil, ErrInvalidBitLength
	}

	candidate := expandCandidate(challenge, bits)
	return coerceToDiscriminant(candidate), nil
}

// expandCandidate hashes challenge || counter repeatedly until it has
// enough bytes to build a bits-bit magnitude, forcing the top two bits
// to 1 so the result's bit-length is exactly bits.
func expandCandidate(challenge [32]byte, bits int) *bigint.Int {
	byteCount := (bits + 7) / 8
	var expansion []byte
	var counter uint32
	for len(expansion) < byteCount {
		buf := make([]byte, 32+4)
		copy(buf, challenge[:])
		binary.BigEndian.PutUint32(buf[32:], counter)
		h := sha256.Sum256(buf)
		expansion = append(expansion, h[:]...)
		counter++
	}
	expansion = expansion[:byteCount]

	n := bigint.FromBytesBE(expansion)

	// Trim to exactly `bits` bits, then force the top two bits to 1 so
	// the bit-length is guaranteed and the magnitude is large.
	extraBits := byteCount*8 - bits
	if extraBits > 0 {
		n = n.Rsh(uint(extraBits))
	}
	n = n.SetBit(bits - 1)
	n = n.SetBit(bits - 2)
	return n
}

// coerceToDiscriminant forces |n| == 3 (mod 4), advances by +4 until
// Miller-Rabin passes, and returns -n.
func coerceToDiscriminant(n *bigint.Int) *bigint.Int {
	four := bigint.NewInt(4)
	three := bigint.NewInt(3)

	rem := n.Mod(four)
	n = n.Sub(rem).Add(three)

	for !n.ProbablyPrime(25) {
		n = n.Add(four)
	}
	return n.Neg()
}

// FromValue validates a caller-supplied value as a usable discriminant:
// negative, with |D| == 3 (mod 4), i.e. D == 1 (mod 4).
func FromValue(d *bigint.Int) error {
	if d.Sign() >= 0 {
		return ErrNotCongruent
	}
	four := bigint.NewInt(4)
	three := bigint.NewInt(3)
	if d.Abs().Mod(four).Cmp(three) != 0 {
		return ErrNotCongruent
	}
	return nil
}

// Coerce repairs a raw value into the D == 1 (mod 4) congruence class
// following the session's start_with_discriminant rule: D <- D - (D mod
// 4) + 1, and if the result is positive, subtract 4 to force negative.
// It does not search for primality; callers that need a guaranteed
// prime discriminant should use FromChallenge instead.
func Coerce(d *bigint.Int) *bigint.Int {
	four := bigint.NewInt(4)
	rem := d.Mod(four)
	coerced := d.Sub(rem).Add(bigint.NewInt(1))
	if coerced.Sign() > 0 {
		coerced = coerced.Sub(four)
	}
	return coerced
}

