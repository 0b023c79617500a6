package shim

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrEmptyCwd is returned when --cwd is passed without a value.
var ErrEmptyCwd = errors.New("no value assigned to `--cwd` flag")

// MultipleCwdError is returned when --cwd is passed more than once.
type MultipleCwdError struct {
	Values []string
}

func (e *MultipleCwdError) Error() string {
	return fmt.Sprintf("cannot have multiple `--cwd` flags in command (got %s)", strings.Join(e.Values, ", "))
}

// Args is the part of the command line the shim needs before deciding
// which binary runs.
type Args struct {
	// Cwd is the absolute directory inference starts from.
	Cwd string
	// InvocationDir is the directory the command was typed in.
	InvocationDir    string
	SkipInfer        bool
	Verbosity        int
	NoUpdateNotifier bool
	// RemainingArgs are the arguments before "--", minus --cwd and
	// --skip-infer.
	RemainingArgs []string
	// ForwardedArgs are the arguments after the first "--".
	ForwardedArgs []string
}

// ParseArgs extracts the shim flags from args. A relative --cwd is
// resolved against invocationDir.
func ParseArgs(args []string, invocationDir string) (*Args, error) {
	parsed := &Args{InvocationDir: invocationDir}
	var cwds []string

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			parsed.ForwardedArgs = append([]string{}, args[i+1:]...)
			i = len(args)
		case arg == "--cwd":
			if i+1 >= len(args) || args[i+1] == "" || args[i+1] == "--" {
				return nil, ErrEmptyCwd
			}
			cwds = append(cwds, args[i+1])
			i++
		case strings.HasPrefix(arg, "--cwd="):
			value := strings.TrimPrefix(arg, "--cwd=")
			if value == "" {
				return nil, ErrEmptyCwd
			}
			cwds = append(cwds, value)
		case arg == "--skip-infer":
			parsed.SkipInfer = true
		default:
			switch {
			case arg == "--no-update-notifier":
				parsed.NoUpdateNotifier = true
			case isVerbosityFlag(arg):
				parsed.Verbosity = len(arg) - 1
			case strings.HasPrefix(arg, "--verbosity="):
				if n, err := strconv.Atoi(strings.TrimPrefix(arg, "--verbosity=")); err == nil {
					parsed.Verbosity = n
				}
			}
			parsed.RemainingArgs = append(parsed.RemainingArgs, arg)
		}
	}

	if len(cwds) > 1 {
		return nil, &MultipleCwdError{Values: cwds}
	}
	parsed.Cwd = invocationDir
	if len(cwds) == 1 {
		parsed.Cwd = cwds[0]
		if !filepath.IsAbs(parsed.Cwd) {
			parsed.Cwd = filepath.Join(invocationDir, parsed.Cwd)
		}
	}
	return parsed, nil
}

// HasFlag reports whether flag appears before the "--" separator.
func (a *Args) HasFlag(flag string) bool {
	for _, arg := range a.RemainingArgs {
		if arg == flag {
			return true
		}
	}
	return false
}

// isVerbosityFlag matches -v, -vv, -vvv and so on.
func isVerbosityFlag(arg string) bool {
	if len(arg) < 2 || arg[0] != '-' || arg[1] == '-' {
		return false
	}
	return strings.Trim(arg[1:], "v") == ""
}
