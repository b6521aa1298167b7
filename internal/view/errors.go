package view

import (
	"errors"

	"github.com/CodexForgeBR/testmate/internal/api"
	"github.com/CodexForgeBR/testmate/internal/workflow"
)

// ErrorMessage turns a command error into the line shown to the user.
// Workflow failures already carry their copy; bare client errors get a
// message per kind, preferring the backend's own detail.
func ErrorMessage(err error) string {
	var f *workflow.Failure
	if errors.As(err, &f) {
		return f.Message
	}
	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		return err.Error()
	}
	switch apiErr.Kind {
	case api.KindUnauthorized:
		if apiErr.Detail != "" {
			return apiErr.Detail
		}
		return "You are not signed in or your session expired. Type 'login' to sign in."
	case api.KindNetwork:
		return "Cannot connect to backend. Make sure it's running."
	case api.KindTimeout:
		return "The backend did not answer in time. Please try again."
	case api.KindUnavailable:
		return "The service is temporarily unavailable. Please try again later."
	default:
		if apiErr.Detail != "" {
			return apiErr.Detail
		}
		return "Something went wrong: " + apiErr.Error()
	}
}
