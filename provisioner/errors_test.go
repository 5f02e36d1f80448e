package provisioner

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Test the exit code for each failure class, wrapped the way Run wraps them
func TestExitCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"success", nil, ExitOK},
		{"missing input", fmt.Errorf("%w: /tmp/summary_data.csv", ErrMissingInput), ExitMissingInput},
		{"folder creation", fmt.Errorf("%w: permission denied", ErrFolderCreation), ExitFolderCreation},
		{"folder collision", ErrFolderCollision, ExitFolderCreation},
		{"staging", fmt.Errorf("%w: disk full", ErrStaging), ExitStaging},
		{"renderer", fmt.Errorf("%w: exit status 3", ErrRenderer), ExitRenderer},
		{"interrupted", ErrInterrupted, ExitInterrupted},
		{"unclassified", errors.New("boom"), ExitFailure},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.code, ExitCode(tc.err))
		})
	}
}

// Test the journal labels for each failure class
func TestErrorKind(t *testing.T) {
	assert.Equal(t, "", ErrorKind(nil))
	assert.Equal(t, "missing_input", ErrorKind(fmt.Errorf("%w: x", ErrMissingInput)))
	assert.Equal(t, "folder_collision", ErrorKind(ErrFolderCollision))
	assert.Equal(t, "folder_creation", ErrorKind(ErrFolderCreation))
	assert.Equal(t, "staging", ErrorKind(fmt.Errorf("%w: x", ErrStaging)))
	assert.Equal(t, "renderer", ErrorKind(fmt.Errorf("%w: x", ErrRenderer)))
	assert.Equal(t, "interrupted", ErrorKind(ErrInterrupted))
	assert.Equal(t, "error", ErrorKind(errors.New("boom")))
}
