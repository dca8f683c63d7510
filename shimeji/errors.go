package shimeji

import "github.com/pixelfinder/shimejifinder/internal/shimerr"

// ErrorSinkFailed wraps an output sink failure during a decode pass:
// fatal, the pass aborts and the error propagates.
const ErrorSinkFailed shimerr.CodeError = shimerr.MinPkgShimeji + iota

func init() {
	shimerr.Register([]shimerr.CodeError{ErrorSinkFailed}, func(code shimerr.CodeError) string {
		return "output sink failed"
	})
}
