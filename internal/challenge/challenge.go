// Package challenge derives the opaque 32-byte VDF challenge from an
// application-level payload, an optional outer layer the core treats as
// raw bytes. Grounded on wesolowski_frame_prover.go's sha3.Sum256
// domain-separated hashing convention for frame headers.
package challenge

import "golang.org/x/crypto/sha3"

// DeriveFromPayload hashes an application payload with a domain
// separator into a 32-byte challenge suitable for
// session.Session.Start. This is orthogonal to the core VDF engine,
// which only ever consumes the resulting opaque bytes.
func DeriveFromPayload(domain string, payload []byte) [32]byte {
	buf := make([]byte, 0, len(domain)+1+len(payload))
	buf = append(buf, domain...)
	buf = append(buf, 0)
	buf = append(buf, payload...)
	return sha3.Sum256(buf)
}
