// Package scm answers "which branch and commit is this" for a repository,
// preferring the CI provider's environment over asking git.
package scm

import (
	"fmt"
	"os/exec"
	"strings"
)

// CommandRunner is an interface for running external commands.
// This allows for mocking in tests.
type CommandRunner interface {
	Run(name string, args ...string) ([]byte, error)
	RunInDir(dir, name string, args ...string) ([]byte, error)
}

// DefaultCommandRunner uses os/exec to run commands.
type DefaultCommandRunner struct{}

// Run executes a command in the current directory.
func (r *DefaultCommandRunner) Run(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).Output()
}

// RunInDir executes a command in the specified directory.
func (r *DefaultCommandRunner) RunInDir(dir, name string, args ...string) ([]byte, error) {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	return cmd.Output()
}

// Git queries a git checkout.
type Git struct {
	runner CommandRunner
}

// New returns a Git using the default command runner.
func New() *Git {
	return &Git{runner: &DefaultCommandRunner{}}
}

// NewWithRunner returns a Git with a custom command runner (for testing).
func NewWithRunner(runner CommandRunner) *Git {
	return &Git{runner: runner}
}

// Available checks if git is available on the system.
func (g *Git) Available() bool {
	_, err := g.runner.Run("git", "--version")
	return err == nil
}

// CurrentBranch returns the checked out branch of the repository at dir.
func (g *Git) CurrentBranch(dir string) (string, error) {
	output, err := g.runner.RunInDir(dir, "git", "branch", "--show-current")
	if err != nil {
		return "", fmt.Errorf("git branch failed: %w", err)
	}
	branch := strings.TrimSpace(string(output))
	if branch == "" {
		return "", fmt.Errorf("HEAD is detached in %s", dir)
	}
	return branch, nil
}

// CurrentSHA returns the commit HEAD points at.
func (g *Git) CurrentSHA(dir string) (string, error) {
	output, err := g.runner.RunInDir(dir, "git", "rev-parse", "HEAD")
	if err != nil {
		return "", fmt.Errorf("git rev-parse failed: %w", err)
	}
	return strings.TrimSpace(string(output)), nil
}
