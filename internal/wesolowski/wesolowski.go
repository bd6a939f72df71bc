// Package wesolowski implements the Wesolowski proof of exponentiation
// over binary quadratic forms: Fiat-Shamir prime derivation, proof
// generation via a single class-group exponentiation, and verification.
// Grounded on nekryptology/pkg/vdf's hashPrime/verifyProof, rebuilt
// against the class-group API of internal/classgroup and the exact
// wire layout and algorithm steps this module targets rather than the
// teacher's bespoke fixed-width proof blob.
package wesolowski

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/enigmarikki/kala/internal/bigint"
	"github.com/enigmarikki/kala/internal/classgroup"
)

const proofVersion = 0x02

// Errors returned by Prove/Verify.
var (
	ErrUnsupportedVersion = errors.New("wesolowski: unsupported proof version")
	ErrTruncatedProof     = errors.New("wesolowski: truncated proof")
	ErrFieldTooLarge      = errors.New("wesolowski: encoded field exceeds wire limit")
)

// Prove generates a Wesolowski proof that y = x^(2^T) under discriminant
// D, at recursion level r. It performs exactly one class-group
// exponentiation (classgroup.Form.Pow) after deriving the Fiat-Shamir
// prime.
func Prove(d *bigint.Int, x, y *classgroup.Form, T uint64, r uint8) ([]byte, error) {
	ell := fiatShamirPrime(d, x, y, T)

	q, _ := bigint.Pow2DivMod(T, ell)

	pi, err := x.Pow(q)
	if err != nil {
		return nil, errors.Wrap(err, "wesolowski: proof exponentiation")
	}

	return encodeProof(r, T, ell, pi)
}

// Verify checks a Wesolowski proof that y = x^(2^T) under discriminant
// D. It never recomputes y by repeating the VDF; it only validates the
// proof against the supplied x, y, T.
func Verify(d *bigint.Int, x, y *classgroup.Form, T uint64, proof []byte) (bool, error) {
	version, r, pT, ell, pi, err := decodeProof(proof)
	if err != nil {
		return false, err
	}
	_ = r
	if version != proofVersion {
		return false, ErrUnsupportedVersion
	}
	if pT != T {
		return false, nil
	}

	expectedEll := fiatShamirPrime(d, x, y, T)
	if ell.Cmp(expectedEll) != 0 {
		return false, nil
	}

	if pi.Discriminant().Cmp(d) != 0 {
		return false, classgroup.ErrInvalidForm
	}

	_, rPrime := bigint.Pow2DivMod(T, ell)

	lhsA, err := pi.Pow(ell)
	if err != nil {
		return false, errors.Wrap(err, "wesolowski: verify pi^ell")
	}
	lhsB, err := x.Pow(rPrime)
	if err != nil {
		return false, errors.Wrap(err, "wesolowski: verify x^r")
	}
	lhs, err := lhsA.Compose(lhsB)
	if err != nil {
		return false, errors.Wrap(err, "wesolowski: verify compose")
	}

	return lhs.Equal(y), nil
}

// fiatShamirPrime derives ell deterministically from D, x, y and T: a
// 264-bit candidate seeded from SHA-256(msg), with bit 263 forced, then
// advanced to the next probable prime.
func fiatShamirPrime(d *bigint.Int, x, y *classgroup.Form, T uint64) *bigint.Int {
	msg := canonicalMessage(d, x, y, T)
	seed := sha256.Sum256(msg)

	candidate := bigint.FromBytesBE(seed[:]).Lsh(264 - 256)
	candidate = candidate.SetBit(263)

	return bigint.NextPrime(candidate)
}

func canonicalMessage(d *bigint.Int, x, y *classgroup.Form, T uint64) []byte {
	var buf []byte
	buf = append(buf, d.BytesBE()...)
	buf = append(buf, x.Serialize()...)
	buf = append(buf, y.Serialize()...)
	tBuf := make([]byte, 8)
	binary.BigEndian.PutUint64(tBuf, T)
	buf = append(buf, tBuf...)
	return buf
}

func encodeProof(r uint8, T uint64, ell *bigint.Int, pi *classgroup.Form) ([]byte, error) {
	var buf []byte
	buf = append(buf, proofVersion, r)

	tBuf := make([]byte, 8)
	binary.BigEndian.PutUint64(tBuf, T)
	buf = append(buf, tBuf...)

	ellBytes := bigint.Decode(ell)
	if len(ellBytes) > 255 {
		return nil, ErrFieldTooLarge
	}
	buf = append(buf, byte(len(ellBytes)))
	buf = append(buf, ellBytes...)

	piReduced := pi.Reduce()
	for _, coeff := range []*bigint.Int{piReduced.A, piReduced.B, piReduced.C} {
		// A reduced form's b ranges over (-a, a] and is negative for a
		// generic class-group element (it is forced non-negative only
		// at the |b|=a / a=c edge cases) — a signed encoding is
		// required here, not the unsigned magnitude ell uses above.
		cb := bigint.EncodeSigned(coeff)
		if len(cb) > 0xffff {
			return nil, ErrFieldTooLarge
		}
		lenBuf := make([]byte, 2)
		binary.BigEndian.PutUint16(lenBuf, uint16(len(cb)))
		buf = append(buf, lenBuf...)
		buf = append(buf, cb...)
	}

	return buf, nil
}

func decodeProof(buf []byte) (version, r uint8, T uint64, ell *bigint.Int, pi *classgroup.Form, err error) {
	if len(buf) < 11 {
		return 0, 0, 0, nil, nil, ErrTruncatedProof
	}
	version = buf[0]
	r = buf[1]
	T = binary.BigEndian.Uint64(buf[2:10])
	ellLen := int(buf[10])
	off := 11
	if len(buf) < off+ellLen {
		return 0, 0, 0, nil, nil, ErrTruncatedProof
	}
	ell = bigint.FromBytesBE(buf[off : off+ellLen])
	off += ellLen

	coeffs := make([]*bigint.Int, 3)
	for i := 0; i < 3; i++ {
		if len(buf) < off+2 {
			return 0, 0, 0, nil, nil, ErrTruncatedProof
		}
		l := int(binary.BigEndian.Uint16(buf[off : off+2]))
		off += 2
		if len(buf) < off+l {
			return 0, 0, 0, nil, nil, ErrTruncatedProof
		}
		coeffs[i] = bigint.DecodeSigned(buf[off : off+l])
		off += l
	}

	piForm := &classgroup.Form{A: coeffs[0], B: coeffs[1], C: coeffs[2]}
	return version, r, T, ell, piForm, nil
}
