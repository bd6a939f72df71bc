package session

import (
	stderrors "errors"

	"github.com/pkg/errors"
)

// ExitCode is the stable fatal-exit-code numbering carried over from
// the C ABI this module's session state machine descends from
// (original_source/vdf/src/c_bindings/streamer.h's cpu_vdf_error_t).
type ExitCode int

const (
	ExitSuccess               ExitCode = 0
	ExitInvalidConfig         ExitCode = -1
	ExitInvalidParameters     ExitCode = -2
	ExitMemoryAllocation      ExitCode = -3
	ExitComputationFailed     ExitCode = -4
	ExitThreadError           ExitCode = -5
	ExitInvalidDiscriminant   ExitCode = -6
	ExitInvalidForm           ExitCode = -7
	ExitProofGenerationFailed ExitCode = -8
	ExitVerificationFailed    ExitCode = -9
	ExitNotInitialized        ExitCode = -10
	ExitAlreadyRunning        ExitCode = -11
)

// sentinelError pairs a sentinel error with its stable exit code.
type sentinelError struct {
	msg  string
	code ExitCode
}

func (e *sentinelError) Error() string { return e.msg }

// ExitCodeOf returns the stable numeric code associated with this
// sentinel.
func (e *sentinelError) ExitCodeOf() ExitCode { return e.code }

var (
	ErrInvalidConfig         = &sentinelError{"session: invalid config", ExitInvalidConfig}
	ErrInvalidParameters     = &sentinelError{"session: invalid parameters", ExitInvalidParameters}
	ErrAlreadyRunning        = &sentinelError{"session: already running", ExitAlreadyRunning}
	ErrNotInitialized        = &sentinelError{"session: not initialized", ExitNotInitialized}
	ErrInvalidDiscriminant   = &sentinelError{"session: invalid discriminant", ExitInvalidDiscriminant}
	ErrInvalidForm           = &sentinelError{"session: invalid form", ExitInvalidForm}
	ErrComputationFailed     = &sentinelError{"session: computation failed", ExitComputationFailed}
	ErrProofGenerationFailed = &sentinelError{"session: proof generation failed", ExitProofGenerationFailed}
	ErrThreadError           = &sentinelError{"session: worker thread error", ExitThreadError}
	ErrMemoryAllocation      = &sentinelError{"session: memory allocation failed", ExitMemoryAllocation}
	ErrTimeout               = errors.New("session: wait timed out")
	ErrNotComplete           = errors.New("session: not in Completed state")
)

// ExitCodeFor reports the stable numeric exit code for an error produced
// by this package, or ExitSuccess for any other error (including nil).
func ExitCodeFor(err error) ExitCode {
	var se *sentinelError
	if stderrors.As(err, &se) {
		return se.code
	}
	return ExitSuccess
}
