// Package workflow orchestrates the AI generation screens: local input
// validation, the availability probe, the single in-flight submission and
// the translation of classified errors into user copy.
package workflow

import (
	"errors"

	"github.com/CodexForgeBR/testmate/internal/api"
)

// MaxInputChars bounds descriptions and attached file content, in characters.
const MaxInputChars = 2000

var (
	// ErrBusy is returned while a submission is in flight.
	ErrBusy = errors.New("a request is already in progress")
	// ErrResultShown is returned by Submit while a result is displayed.
	ErrResultShown = errors.New("a result is shown; reset before generating again")
)

// User copy.
const (
	msgDescriptionTooLong = "Test description is too long. Please keep it under 2000 characters."
	msgAttachmentTooLong  = "File content is too long. Please use a smaller file (under 2000 characters)."
	msgEmptyInput         = "Please provide a test description or upload a file"
	msgCannotConnect      = "Cannot connect to backend. Make sure it's running."
	msgProbeUnavailable   = "Llama 3 is not available. Please start Ollama with: ollama serve"
	msgKnownUnavailable   = "Llama 3 is not running. Please start Ollama with: ollama serve"
	msgUnavailable        = "Llama 3 is not available. Make sure Ollama is running: ollama serve"
	msgClientTimeout      = "Request timed out. Try a shorter description or check if Ollama is running with \"ollama serve\"."
	msgGatewayTimeout     = "Generation took too long. Please try with a shorter, more focused test description."
	msgGenerateFallback   = "Failed to generate code."
	msgProcessFallback    = "Failed to process request"
	msgTestFallback       = "Failed to generate test"
)

// Failure is a failed submission as the user sees it. It unwraps to the
// classified *api.Error, so callers can still branch on the kind.
type Failure struct {
	Message string
	Err     *api.Error
}

func (f *Failure) Error() string {
	return f.Message
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Kind returns the classification of the failure.
func (f *Failure) Kind() api.Kind {
	if f.Err == nil {
		return ""
	}
	return f.Err.Kind
}

func validationFailure(msg string) *Failure {
	return &Failure{Message: msg, Err: &api.Error{Kind: api.KindValidation, Detail: msg}}
}

// describe turns a client error into user copy. fallback is shown when the
// backend sent no detail.
func describe(err error, fallback string) *Failure {
	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		apiErr = &api.Error{Kind: api.KindServer, Err: err}
	}
	f := &Failure{Err: apiErr}
	switch apiErr.Kind {
	case api.KindTimeout:
		if apiErr.StatusCode != 0 {
			f.Message = msgGatewayTimeout
		} else {
			f.Message = msgClientTimeout
		}
	case api.KindUnavailable:
		f.Message = msgUnavailable
	default:
		f.Message = apiErr.Detail
		if f.Message == "" {
			f.Message = fallback
		}
	}
	return f
}
