// Package checkpoint implements the ordered, mutex-guarded checkpoint
// sequence a VDF session publishes as it advances: the initial
// (iteration 0, initial form) record, periodic segment records each
// optionally carrying a Wesolowski proof of that segment, and a
// bounded range query. Shaped after the CVDFFrontier/ProofNode
// architecture of original_source's kala-tick streamer.rs, collapsed
// from that source's Pietrzak tree-aggregation scheme to the flat
// ordered sequence this module's Wesolowski-based design calls for.
package checkpoint

import (
	"encoding/binary"
	"sync"

	"github.com/pkg/errors"

	"github.com/enigmarikki/kala/internal/bigint"
	"github.com/enigmarikki/kala/internal/classgroup"
	"github.com/enigmarikki/kala/internal/wesolowski"
)

// ErrOutOfOrder is returned by Append when the new checkpoint's
// iteration does not strictly exceed the last stored one.
var ErrOutOfOrder = errors.New("checkpoint: iteration must strictly increase")

// Checkpoint is a single (iteration, form, proof?) record. Proof is nil
// for the initial iteration-0 record and for any segment boundary where
// streaming proofs are disabled.
type Checkpoint struct {
	Iteration uint64
	Form      *classgroup.Form
	Proof     []byte
}

// Stream is the ordered, append-only checkpoint sequence of one
// session. Its records are guarded by its own mutex, so it is safe for
// concurrent readers while the owning session appends to it.
type Stream struct {
	mu   sync.Mutex
	recs []Checkpoint
}

// New returns a Stream seeded with the initial (0, initialForm, nil)
// record, matching the session's invariant that the sequence always
// begins with the initial-form checkpoint.
func New(initialForm *classgroup.Form) *Stream {
	return &Stream{recs: []Checkpoint{{Iteration: 0, Form: initialForm.Clone()}}}
}

// Append adds a new checkpoint; iteration must strictly exceed the
// previously stored one.
func (s *Stream) Append(c Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	last := s.recs[len(s.recs)-1]
	if c.Iteration <= last.Iteration {
		return ErrOutOfOrder
	}
	s.recs = append(s.recs, c)
	return nil
}

// AppendSegment computes a Wesolowski proof of the segment from the
// previous stored checkpoint's form to current, over T=iteration-prev
// iterations, and appends the resulting checkpoint. It is the helper
// wiring §4.F's "T := s" rule to internal/wesolowski.Prove.
func (s *Stream) AppendSegment(d *bigint.Int, iteration uint64, form *classgroup.Form, recursionLevel uint8) error {
	s.mu.Lock()
	prev := s.recs[len(s.recs)-1]
	s.mu.Unlock()

	if iteration <= prev.Iteration {
		return ErrOutOfOrder
	}

	proof, err := wesolowski.Prove(d, prev.Form, form, iteration-prev.Iteration, recursionLevel)
	if err != nil {
		return errors.Wrap(err, "checkpoint: segment proof generation")
	}

	return s.Append(Checkpoint{Iteration: iteration, Form: form.Clone(), Proof: proof})
}

// Count returns the number of stored checkpoints.
func (s *Stream) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.recs)
}

// Between returns, in iteration order, all stored checkpoints with
// lo <= iteration <= hi, capped at cap entries (cap <= 0 means
// unbounded).
func (s *Stream) Between(lo, hi uint64, cap int) []Checkpoint {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Checkpoint
	for _, c := range s.recs {
		if c.Iteration < lo {
			continue
		}
		if c.Iteration > hi {
			break
		}
		out = append(out, c)
		if cap > 0 && len(out) >= cap {
			break
		}
	}
	return out
}

// Last returns the most recently appended checkpoint.
func (s *Stream) Last() Checkpoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recs[len(s.recs)-1]
}

// recordVersion distinguishes a record without a proof (v4: the initial
// record, or any checkpoint stored without one) from a record that
// carries a segment proof (v3) on the wire.
const (
	recordVersionInitial = 0x04
	recordVersionSegment = 0x03
)

// Encode serialises a checkpoint as: the record version byte, the
// 8-byte big-endian iteration, a 2-byte big-endian length followed by
// the form's Serialize bytes, and, for v3 only, the complete v2 proof
// bytes (including the proof's own version byte).
func Encode(c Checkpoint) []byte {
	var buf []byte
	version := byte(recordVersionSegment)
	if len(c.Proof) == 0 {
		version = recordVersionInitial
	}
	buf = append(buf, version)

	iterBuf := make([]byte, 8)
	binary.BigEndian.PutUint64(iterBuf, c.Iteration)
	buf = append(buf, iterBuf...)

	formBytes := c.Form.Serialize()
	lenBuf := make([]byte, 2)
	binary.BigEndian.PutUint16(lenBuf, uint16(len(formBytes)))
	buf = append(buf, lenBuf...)
	buf = append(buf, formBytes...)

	if version == recordVersionSegment {
		buf = append(buf, c.Proof...)
	}
	return buf
}
