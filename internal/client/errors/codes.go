package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"os"

	"github.com/criteo/kubetoken/internal/client/output"
)

// Exit codes for different error scenarios
const (
	ExitSuccess          = 0 // Success
	ExitGeneralError     = 1 // General error (network failure, server 500, unknown error)
	ExitInvalidArguments = 2 // Invalid arguments/usage (bad config, missing --url)
	ExitNoToken          = 3 // No credential could be resolved
	ExitAuthError        = 5 // API rejected the credential (401)
	ExitPermissionDenied = 6 // Permission denied (403)
)

// exit is replaced in tests
var exit = os.Exit

// ExitError carries an exit code through cobra's RunE
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

// WithCode wraps a message with an exit code
func WithCode(code int, message string) error {
	return &ExitError{Code: code, Message: message}
}

// ExitWithError prints error message and exits with the code carried by err,
// or ExitGeneralError
func ExitWithError(err error) {
	code := ExitGeneralError
	var exitErr *ExitError
	if stderrors.As(err, &exitErr) {
		code = exitErr.Code
	}
	if err != nil && err.Error() != "" {
		fmt.Fprintf(output.Stderr, "Error: %v\n", err)
	}
	exit(code)
}

// MapHTTPStatusToExitCode maps HTTP status codes to exit codes
func MapHTTPStatusToExitCode(statusCode int) int {
	switch statusCode {
	case http.StatusUnauthorized:
		return ExitAuthError
	case http.StatusForbidden:
		return ExitPermissionDenied
	default:
		if statusCode >= 200 && statusCode < 300 {
			return ExitSuccess
		}
		return ExitGeneralError
	}
}
