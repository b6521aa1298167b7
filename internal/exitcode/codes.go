// Package exitcode defines named exit codes for the testmate CLI.
//
// Each code maps a classified failure to a numeric value recognized by shell
// scripts and CI pipelines.
package exitcode

import (
	"errors"

	"github.com/CodexForgeBR/testmate/internal/api"
)

// Exit code constants.
const (
	Success      = 0   // Command completed
	Error        = 1   // Invalid args, misconfiguration, server error
	Unauthorized = 2   // Not signed in or token rejected
	Unavailable  = 3   // Backend or generation service down/unreachable
	Timeout      = 4   // Backend call exceeded its timeout
	Validation   = 5   // Input rejected locally before any network call
	Interrupted  = 130 // SIGINT/SIGTERM received
)

// Name returns the human-readable name for the given exit code.
// Unknown codes return "unknown".
func Name(code int) string {
	switch code {
	case Success:
		return "Success"
	case Error:
		return "Error"
	case Unauthorized:
		return "Unauthorized"
	case Unavailable:
		return "Unavailable"
	case Timeout:
		return "Timeout"
	case Validation:
		return "Validation"
	case Interrupted:
		return "Interrupted"
	default:
		return "unknown"
	}
}

// FromError maps an error returned by a command to its exit code.
func FromError(err error) int {
	if err == nil {
		return Success
	}
	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		return Error
	}
	switch apiErr.Kind {
	case api.KindUnauthorized:
		return Unauthorized
	case api.KindUnavailable, api.KindNetwork:
		return Unavailable
	case api.KindTimeout:
		return Timeout
	case api.KindValidation:
		return Validation
	default:
		return Error
	}
}
