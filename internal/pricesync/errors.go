package pricesync

import "fmt"

// Stage names the run step a fatal error came from.
type Stage string

const (
	StageOpen      Stage = "open"
	StageEnumerate Stage = "enumerate"
	StagePersist   Stage = "persist"
)

// ExitCode returns the process exit status for a failure in this stage.
func (s Stage) ExitCode() int {
	switch s {
	case StageOpen:
		return 2
	case StageEnumerate:
		return 3
	case StagePersist:
		return 4
	default:
		return 1
	}
}

// FatalError aborts a run.
type FatalError struct {
	Stage Stage
	Err   error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }
