package shim

import "fmt"

// LocalBinaryPathError is returned when the local binary path cannot be
// canonicalized.
type LocalBinaryPathError struct {
	Path string
	Err  error
}

func (e *LocalBinaryPathError) Error() string {
	return fmt.Sprintf("failed to resolve local titan path: %s", e.Path)
}

func (e *LocalBinaryPathError) Unwrap() error { return e.Err }

// RepoRootPathError is returned when the repository root cannot be
// canonicalized.
type RepoRootPathError struct {
	Path string
	Err  error
}

func (e *RepoRootPathError) Error() string {
	return fmt.Sprintf("failed to resolve repository root: %s", e.Path)
}

func (e *RepoRootPathError) Unwrap() error { return e.Err }

// RunnerLookupError is returned when the package runner is not on PATH.
type RunnerLookupError struct {
	Runner string
	Err    error
}

func (e *RunnerLookupError) Error() string {
	return fmt.Sprintf("failed to find %s: %v", e.Runner, e.Err)
}

func (e *RunnerLookupError) Unwrap() error { return e.Err }

// ProcessKind identifies which child failed.
type ProcessKind string

const (
	ProcessLocal  ProcessKind = "local"
	ProcessRunner ProcessKind = "runner"
)

// ProcessError is returned when a child cannot be started or waited on.
type ProcessError struct {
	Kind ProcessKind
	Err  error
}

func (e *ProcessError) Error() string {
	if e.Kind == ProcessRunner {
		return fmt.Sprintf("failed to execute titan via npx: %v", e.Err)
	}
	return fmt.Sprintf("failed to execute local titan process: %v", e.Err)
}

func (e *ProcessError) Unwrap() error { return e.Err }
