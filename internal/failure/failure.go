// Package failure classifies errors from the token generator into stable
// error codes and writes the human-readable diagnostic and remediation hint
// for each. Every failure terminates the process with ExitCode.
package failure

import (
	"errors"
	"fmt"
	"io"

	"github.com/dskow/musickit-token/internal/token"
)

// ExitCode is the process status for every failure outcome.
const ExitCode = 1

// ErrorCode is a machine-readable error classification string.
type ErrorCode string

// Error codes. Scripts may match on these; do not rename existing codes.
const (
	KeyNotFound   ErrorCode = "KEY_NOT_FOUND"
	KeyUnreadable ErrorCode = "KEY_UNREADABLE"
	KeyInvalid    ErrorCode = "KEY_INVALID"
	SigningFailed ErrorCode = "SIGNING_FAILED"
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	TokenInvalid  ErrorCode = "TOKEN_INVALID"
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// Error tags an error with a code when its type alone does not identify it.
type Error struct {
	Code ErrorCode
	Err  error
}

func (e *Error) Error() string { return e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// Wrap returns err tagged with code, or nil if err is nil.
func Wrap(code ErrorCode, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Err: err}
}

// Failure is the user-facing description of an error.
type Failure struct {
	Code    ErrorCode
	Message string
	Hint    []string
}

// Classify maps err to its Failure. Unknown errors become InternalError.
func Classify(err error) Failure {
	var (
		nf *token.KeyNotFoundError
		re *token.KeyReadError
		ke *token.KeyInvalidError
		se *token.SigningError
		ve *token.VerifyError
		fe *Error
	)

	switch {
	case errors.As(err, &nf):
		return Failure{
			Code:    KeyNotFound,
			Message: fmt.Sprintf("❌ Error: Could not find private key at %s", nf.Path),
			Hint:    []string{"Make sure the .p8 file is in the correct location."},
		}
	case errors.As(err, &re):
		return Failure{
			Code:    KeyUnreadable,
			Message: fmt.Sprintf("❌ Error: Could not read private key at %s: %v", re.Path, re.Err),
			Hint:    []string{"Check that the path points to the .p8 file and that it is readable."},
		}
	case errors.As(err, &ke):
		return Failure{
			Code:    KeyInvalid,
			Message: fmt.Sprintf("❌ Error: invalid private key at %s: %v", ke.Path, ke.Err),
			Hint:    []string{"Make sure the key file is the PEM-encoded P-256 (.p8) key from the Apple Developer portal."},
		}
	case errors.As(err, &se):
		return Failure{
			Code:    SigningFailed,
			Message: fmt.Sprintf("❌ Error generating token: %v", se.Err),
			Hint: []string{
				"",
				"💡 Make sure the key file is the PEM-encoded P-256 (.p8) key",
				"   downloaded from the Apple Developer portal, unmodified.",
			},
		}
	case errors.As(err, &ve):
		return Failure{
			Code:    TokenInvalid,
			Message: fmt.Sprintf("❌ Token verification failed: %v", ve.Err),
			Hint:    []string{"", "💡 Generate a fresh token by running musickit-token without arguments."},
		}
	case errors.As(err, &fe):
		f := Failure{Code: fe.Code, Message: fmt.Sprintf("❌ Error: %v", fe.Err)}
		if fe.Code == ConfigInvalid {
			f.Message = fmt.Sprintf("❌ Error: invalid configuration: %v", fe.Err)
			f.Hint = []string{"Fix the config file, or omit --config to use the built-in credentials."}
		}
		return f
	}

	return Failure{Code: InternalError, Message: fmt.Sprintf("❌ Error: %v", err)}
}

// Write prints the diagnostic and hint for err to w and returns its code.
func Write(w io.Writer, err error) ErrorCode {
	f := Classify(err)
	fmt.Fprintln(w, f.Message)
	for _, line := range f.Hint {
		fmt.Fprintln(w, line)
	}
	return f.Code
}
