package exitcode_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/CodexForgeBR/testmate/internal/api"
	"github.com/CodexForgeBR/testmate/internal/exitcode"
)

func TestExitCodeNames(t *testing.T) {
	tests := []struct {
		code         int
		expectedName string
	}{
		{exitcode.Success, "Success"},
		{exitcode.Error, "Error"},
		{exitcode.Unauthorized, "Unauthorized"},
		{exitcode.Unavailable, "Unavailable"},
		{exitcode.Timeout, "Timeout"},
		{exitcode.Validation, "Validation"},
		{exitcode.Interrupted, "Interrupted"},
		{42, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expectedName, func(t *testing.T) {
			assert.Equal(t, tt.expectedName, exitcode.Name(tt.code))
		})
	}
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitcode.Success},
		{"plain error", errors.New("boom"), exitcode.Error},
		{"unauthorized", &api.Error{Kind: api.KindUnauthorized}, exitcode.Unauthorized},
		{"unavailable", &api.Error{Kind: api.KindUnavailable}, exitcode.Unavailable},
		{"network", &api.Error{Kind: api.KindNetwork}, exitcode.Unavailable},
		{"timeout", &api.Error{Kind: api.KindTimeout}, exitcode.Timeout},
		{"validation", &api.Error{Kind: api.KindValidation}, exitcode.Validation},
		{"server", &api.Error{Kind: api.KindServer}, exitcode.Error},
		{"wrapped timeout", fmt.Errorf("generate: %w", &api.Error{Kind: api.KindTimeout}), exitcode.Timeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitcode.FromError(tt.err))
		})
	}
}
