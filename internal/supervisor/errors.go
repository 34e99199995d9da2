package supervisor

import "errors"

// CLI exit codes. The status command distinguishes "no PID file" from a PID
// file whose process is gone; everything else fails with 1.
const (
	ExitOK         = 0
	ExitFailure    = 1
	ExitNotRunning = 2
	ExitStalePID   = 3
)

// CodedError is an operation failure that carries its CLI exit code.
type CodedError struct {
	Code int
	Msg  string
}

func (e *CodedError) Error() string { return e.Msg }

// ExitCode maps an error returned by a supervisor operation to a CLI exit
// code. nil maps to 0, unclassified errors map to 1.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var ce *CodedError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ExitFailure
}
