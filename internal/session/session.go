// Package session implements the public VDF session state machine:
// a caller starts a session from a challenge or caller-supplied
// discriminant and an iteration target; a background worker drives
// internal/classgroup's squaring loop, publishing checkpoints and
// progress/completion callbacks, until the session reaches a terminal
// state. Structurally grounded on the C ABI of
// original_source/vdf/src/c_bindings/streamer.h (config/create/start/
// stop/status/wait/generate_proof/checkpoint-query surface) and on the
// goroutine/mutex/channel idiom of
// node/consensus/time/master_time_reel.go (MasterTimeReel).
package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/enigmarikki/kala/internal/bigint"
	"github.com/enigmarikki/kala/internal/checkpoint"
	"github.com/enigmarikki/kala/internal/classgroup"
	"github.com/enigmarikki/kala/internal/discriminant"
	"github.com/enigmarikki/kala/internal/wesolowski"
)

// DefaultBatchSize is B from spec section 5: the worker polls its
// cancellation flag every this-many iterations.
const DefaultBatchSize = 32

// DefaultSegmentSize is the default checkpoint segment size s; 0
// disables checkpointing beyond the initial record.
const DefaultSegmentSize = 65536

// ProgressFunc is invoked at most once per CallbackIntervalMS and on
// every segment boundary. It must be fast and non-blocking: it runs on
// the worker goroutine.
type ProgressFunc func(current, target uint64)

// CompletionFunc fires exactly once, after the terminal state is
// published, before Wait returns.
type CompletionFunc func(ok bool, iterations uint64)

// Config configures a Session. Threads is advisory and is not read by
// this CPU implementation, which runs a single worker goroutine per
// session since the squaring chain is inherently sequential.
type Config struct {
	Threads            int
	SegmentSize        uint64
	StreamProofs       bool
	CallbackIntervalMS uint64
	BatchSize          int
	Logger             *zap.Logger
}

func (c Config) validate() error {
	if c.Logger == nil {
		return errors.Wrap(ErrInvalidConfig, "logger is nil")
	}
	return nil
}

func (c Config) batchSize() int {
	if c.BatchSize > 0 {
		return c.BatchSize
	}
	return DefaultBatchSize
}

func (c Config) segmentSize() uint64 {
	return c.SegmentSize
}

// Session is the public state machine. It is safe for concurrent use:
// Status, Wait, checkpoint queries and Stop may all be called
// concurrently with the worker goroutine and with each other.
type Session struct {
	cfg    Config
	logger *zap.Logger

	mu          sync.Mutex
	d           *bigint.Int
	forms       []*classgroup.Form // [0]=initial, [1]=final once Completed
	checkpoints *checkpoint.Stream
	state       State
	proof       []byte
	startedAt   time.Time
	elapsed     time.Duration

	iteration atomic.Uint64
	target    atomic.Uint64
	cancelled atomic.Bool

	done chan struct{}

	progressCB   ProgressFunc
	completionCB CompletionFunc
	cbMu         sync.Mutex
}

// New validates cfg and constructs an Idle session. It panics if
// logger is nil, matching the teacher's panic-on-nil-dependency
// constructor convention (MasterTimeReel.NewMasterTimeReel).
func New(cfg Config) (*Session, error) {
	if cfg.Logger == nil {
		panic("session: logger is nil")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Session{
		cfg:    cfg,
		logger: cfg.Logger,
		state:  Idle,
		done:   make(chan struct{}),
	}, nil
}

// SetCallbacks installs progress/completion callbacks. Must be called
// before Start.
func (s *Session) SetCallbacks(progress ProgressFunc, completion CompletionFunc) {
	s.cbMu.Lock()
	defer s.cbMu.Unlock()
	s.progressCB = progress
	s.completionCB = completion
}

// Start derives D from challenge at the requested bit-length, sets the
// initial form to the generator (or initialForm if non-nil), and spawns
// the worker to perform T squarings.
func (s *Session) Start(challenge [32]byte, initialForm *classgroup.Form, T uint64, discBits int) error {
	d, err := discriminant.FromChallenge(challenge, discBits)
	if err != nil {
		return errors.Wrap(ErrInvalidDiscriminant, err.Error())
	}
	return s.startWithDiscriminant(d, initialForm, T)
}

// StartWithDiscriminant uses a caller-provided |D| (big-endian bytes).
// If the coerced value fails D == 1 (mod 4), it is repaired via
// D <- D - (D mod 4) + 1, subtracting 4 if the result is positive; the
// session rejects the start if the resulting form is invalid.
func (s *Session) StartWithDiscriminant(dBytes []byte, initialForm *classgroup.Form, T uint64) error {
	raw := bigint.FromBytesBE(dBytes).Neg()
	d := raw
	if err := discriminant.FromValue(d); err != nil {
		d = discriminant.Coerce(d)
	}
	return s.startWithDiscriminant(d, initialForm, T)
}

func (s *Session) startWithDiscriminant(d *bigint.Int, initialForm *classgroup.Form, T uint64) error {
	s.mu.Lock()
	if s.state != Idle {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}

	x0 := initialForm
	if x0 == nil {
		x0 = classgroup.Generator(d)
	}
	if x0.Discriminant().Cmp(d) != 0 {
		s.mu.Unlock()
		return ErrInvalidForm
	}

	s.d = d
	s.forms = []*classgroup.Form{x0}
	s.checkpoints = checkpoint.New(x0)
	s.state = Running
	s.startedAt = time.Now()
	s.mu.Unlock()

	s.target.Store(T)
	s.iteration.Store(0)

	go s.run(x0, T)

	return nil
}

func (s *Session) run(x0 *classgroup.Form, T uint64) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("session worker panicked", zap.Any("recover", r))
			s.finish(Errored, nil, ErrComputationFailed)
		}
	}()

	l := bigint.FourthRoot(s.d.Abs())
	batch := s.cfg.batchSize()
	segSize := s.cfg.segmentSize()

	lastCallback := time.Now()
	intervalMS := s.cfg.CallbackIntervalMS

	cur := x0
	var i uint64
	for i < T {
		if s.cancelled.Load() {
			s.finish(Stopped, cur, nil)
			return
		}

		step := uint64(batch)
		if T-i < step {
			step = T - i
		}
		if segSize != 0 {
			if toBoundary := segSize - i%segSize; toBoundary < step {
				step = toBoundary
			}
		}

		next, applied, slowCount, err := classgroup.SquareLoop(cur, s.d, l, int(step), batch, s.cancelled.Load)
		if err != nil {
			s.logger.Error("squaring loop failed", zap.Error(err), zap.Uint64("iteration", i))
			s.finish(Errored, cur, ErrComputationFailed)
			return
		}
		if slowCount > 0 {
			s.logger.Debug("slow path squarings", zap.Int("count", slowCount), zap.Uint64("iteration", i))
		}

		cur = next
		i += uint64(applied)
		s.iteration.Store(i)

		atBoundary := segSize != 0 && (i%segSize == 0 || i == T)
		if atBoundary {
			s.publishCheckpoint(i, cur)
		}

		now := time.Now()
		if intervalMS == 0 || atBoundary || now.Sub(lastCallback) >= time.Duration(intervalMS)*time.Millisecond || i == T {
			s.fireProgress(i, T)
			lastCallback = now
		}

		if uint64(applied) < step {
			// worker cancelled mid-batch
			s.finish(Stopped, cur, nil)
			return
		}
	}

	s.finish(Completed, cur, nil)
}

func (s *Session) publishCheckpoint(iteration uint64, form *classgroup.Form) {
	if s.cfg.StreamProofs && iteration > 0 {
		if err := s.checkpoints.AppendSegment(s.d, iteration, form, 0); err != nil {
			s.logger.Warn("segment proof generation failed", zap.Error(err), zap.Uint64("iteration", iteration))
			_ = s.checkpoints.Append(checkpoint.Checkpoint{Iteration: iteration, Form: form.Clone()})
		}
		return
	}
	_ = s.checkpoints.Append(checkpoint.Checkpoint{Iteration: iteration, Form: form.Clone()})
}

func (s *Session) fireProgress(current, target uint64) {
	s.cbMu.Lock()
	cb := s.progressCB
	s.cbMu.Unlock()
	if cb != nil {
		cb(current, target)
	}
}

func (s *Session) finish(state State, finalForm *classgroup.Form, err error) {
	s.mu.Lock()
	s.elapsed = time.Since(s.startedAt)
	if finalForm != nil {
		s.forms = append(s.forms, finalForm)
	}
	s.state = state
	s.mu.Unlock()

	s.cbMu.Lock()
	cb := s.completionCB
	s.cbMu.Unlock()
	if cb != nil {
		cb(state == Completed, s.iteration.Load())
	}

	close(s.done)
	_ = err
}

// Stop requests cancellation; the worker finishes its current batch,
// transitions to Stopped, and the completion callback fires with
// ok=false.
func (s *Session) Stop() {
	s.cancelled.Store(true)
}

// Status returns a point-in-time snapshot of the session's progress.
func (s *Session) Status() Status {
	s.mu.Lock()
	state := s.state
	elapsed := s.elapsed
	if state == Running {
		elapsed = time.Since(s.startedAt)
	}
	proofReady := state == Completed
	s.mu.Unlock()

	iter := s.iteration.Load()
	target := s.target.Load()

	var progress float64
	if target > 0 {
		progress = float64(iter) / float64(target) * 100
	}
	var ips float64
	if elapsed > 0 {
		ips = float64(iter) / elapsed.Seconds()
	}

	return Status{
		Iteration:        iter,
		Target:           target,
		State:            state,
		ProgressPercent:  progress,
		IterationsPerSec: ips,
		ElapsedMillis:    elapsed.Milliseconds(),
		ProofReady:       proofReady,
	}
}

// Wait blocks until the session reaches a terminal state, or until
// timeout elapses (timeout == 0 means unbounded).
func (s *Session) Wait(ctx context.Context, timeout time.Duration) error {
	if timeout == 0 {
		select {
		case <-s.done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-s.done:
		return nil
	case <-timer.C:
		return ErrTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsComplete reports whether the session has reached the Completed
// state.
func (s *Session) IsComplete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == Completed
}

// ResultForm returns the final form; only valid once Completed.
func (s *Session) ResultForm() (*classgroup.Form, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Completed {
		return nil, ErrNotComplete
	}
	return s.forms[len(s.forms)-1].Clone(), nil
}

// GenerateProof produces a Wesolowski proof of the full run (T
// iterations) at recursion level r; only valid once Completed.
func (s *Session) GenerateProof(r uint8) ([]byte, error) {
	s.mu.Lock()
	if s.state != Completed {
		s.mu.Unlock()
		return nil, ErrNotComplete
	}
	x0 := s.forms[0]
	y := s.forms[len(s.forms)-1]
	d := s.d
	s.mu.Unlock()

	T := s.target.Load()
	proof, err := wesolowski.Prove(d, x0, y, T, r)
	if err != nil {
		return nil, errors.Wrap(ErrProofGenerationFailed, err.Error())
	}

	s.mu.Lock()
	s.proof = proof
	s.mu.Unlock()

	return proof, nil
}

// CheckpointCount returns the number of stored checkpoints.
func (s *Session) CheckpointCount() int {
	s.mu.Lock()
	cps := s.checkpoints
	s.mu.Unlock()
	if cps == nil {
		return 0
	}
	return cps.Count()
}

// CheckpointsBetween returns stored checkpoints in [lo, hi], capped at
// cap entries.
func (s *Session) CheckpointsBetween(lo, hi uint64, cap int) []checkpoint.Checkpoint {
	s.mu.Lock()
	cps := s.checkpoints
	s.mu.Unlock()
	if cps == nil {
		return nil
	}
	return cps.Between(lo, hi, cap)
}

