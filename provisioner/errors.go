package provisioner

import "errors"

// Failure classes of a provisioning run. Each maps to its own exit code so
// wrapping scripts can tell them apart.
var (
	// ErrMissingInput means the summary CSV was not found in the base
	// directory. Nothing has been created or modified when this is returned.
	ErrMissingInput = errors.New("summary CSV not found")

	// ErrFolderCreation means the project folder could not be created.
	ErrFolderCreation = errors.New("project folder could not be created")

	// ErrFolderCollision means every uniqueness suffix for the derived
	// folder name was already taken.
	ErrFolderCollision = errors.New("project folder name already in use")

	// ErrStaging means copying the summary CSV into the project folder
	// failed. The top-level original is left untouched.
	ErrStaging = errors.New("staging the summary CSV failed")

	// ErrRenderer means the chart generator could not be launched or
	// exited with a failure. The staged copy and project folder are kept.
	ErrRenderer = errors.New("chart generator failed")

	// ErrInterrupted means the run was cancelled and rolled back.
	ErrInterrupted = errors.New("run interrupted")
)

// Exit codes, one per failure class.
const (
	ExitOK             = 0
	ExitFailure        = 1
	ExitMissingInput   = 2
	ExitFolderCreation = 3
	ExitStaging        = 4
	ExitRenderer       = 5
	ExitInterrupted    = 130
)

// ExitCode maps a run error to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrMissingInput):
		return ExitMissingInput
	case errors.Is(err, ErrFolderCreation), errors.Is(err, ErrFolderCollision):
		return ExitFolderCreation
	case errors.Is(err, ErrStaging):
		return ExitStaging
	case errors.Is(err, ErrRenderer):
		return ExitRenderer
	case errors.Is(err, ErrInterrupted):
		return ExitInterrupted
	default:
		return ExitFailure
	}
}

// ErrorKind returns a short journal-friendly label for a run error.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingInput):
		return "missing_input"
	case errors.Is(err, ErrFolderCollision):
		return "folder_collision"
	case errors.Is(err, ErrFolderCreation):
		return "folder_creation"
	case errors.Is(err, ErrStaging):
		return "staging"
	case errors.Is(err, ErrRenderer):
		return "renderer"
	case errors.Is(err, ErrInterrupted):
		return "interrupted"
	default:
		return "error"
	}
}
