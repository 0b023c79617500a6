package scm

import (
	"errors"
	"strings"
	"testing"
)

// MockCommandRunner mocks command execution for testing.
type MockCommandRunner struct {
	// Commands maps "dir:command args..." to output
	Commands map[string]struct {
		Output []byte
		Error  error
	}
	Calls []string
}

// NewMockCommandRunner creates a new MockCommandRunner.
func NewMockCommandRunner() *MockCommandRunner {
	return &MockCommandRunner{
		Commands: make(map[string]struct {
			Output []byte
			Error  error
		}),
	}
}

// AddCommand adds a command response.
func (m *MockCommandRunner) AddCommand(dir, cmd string, output []byte, err error) {
	m.Commands[dir+":"+cmd] = struct {
		Output []byte
		Error  error
	}{Output: output, Error: err}
}

// Run executes a command (not in a specific directory).
func (m *MockCommandRunner) Run(name string, args ...string) ([]byte, error) {
	return m.RunInDir("", name, args...)
}

// RunInDir executes a command in a directory.
func (m *MockCommandRunner) RunInDir(dir, name string, args ...string) ([]byte, error) {
	key := dir + ":" + strings.Join(append([]string{name}, args...), " ")
	m.Calls = append(m.Calls, key)
	if resp, ok := m.Commands[key]; ok {
		return resp.Output, resp.Error
	}
	return nil, errors.New("command not mocked: " + key)
}

func envLookup(env map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
}

func TestGitAvailable(t *testing.T) {
	runner := NewMockCommandRunner()
	if NewWithRunner(runner).Available() {
		t.Error("Available() = true without git")
	}
	runner.AddCommand("", "git --version", []byte("git version 2.43.0"), nil)
	if !NewWithRunner(runner).Available() {
		t.Error("Available() = false with git")
	}
}

func TestCurrentBranch(t *testing.T) {
	tests := []struct {
		name    string
		output  []byte
		err     error
		want    string
		wantErr bool
	}{
		{name: "branch", output: []byte("main\n"), want: "main"},
		{name: "detached", output: []byte("\n"), wantErr: true},
		{name: "not a repo", err: errors.New("fatal: not a git repository"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := NewMockCommandRunner()
			runner.AddCommand("/repo", "git branch --show-current", tt.output, tt.err)
			got, err := NewWithRunner(runner).CurrentBranch("/repo")
			if (err != nil) != tt.wantErr {
				t.Fatalf("CurrentBranch() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("CurrentBranch() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCurrentSHA(t *testing.T) {
	runner := NewMockCommandRunner()
	runner.AddCommand("/repo", "git rev-parse HEAD", []byte("3f2a1b0c\n"), nil)
	got, err := NewWithRunner(runner).CurrentSHA("/repo")
	if err != nil {
		t.Fatalf("CurrentSHA() error = %v", err)
	}
	if got != "3f2a1b0c" {
		t.Errorf("CurrentSHA() = %q, want 3f2a1b0c", got)
	}
}

func TestGetState(t *testing.T) {
	gitRunner := func() *MockCommandRunner {
		runner := NewMockCommandRunner()
		runner.AddCommand("/repo", "git branch --show-current", []byte("feature\n"), nil)
		runner.AddCommand("/repo", "git rev-parse HEAD", []byte("abc123\n"), nil)
		return runner
	}

	t.Run("local checkout", func(t *testing.T) {
		got := GetState(envLookup(nil), NewWithRunner(gitRunner()), "/repo")
		want := State{Type: "git", SHA: "abc123", Branch: "feature"}
		if got != want {
			t.Errorf("GetState() = %+v, want %+v", got, want)
		}
	})

	t.Run("github actions", func(t *testing.T) {
		runner := gitRunner()
		env := map[string]string{
			"CI":              "true",
			"GITHUB_ACTIONS":  "true",
			"GITHUB_SHA":      "def456",
			"GITHUB_REF_NAME": "main",
		}
		got := GetState(envLookup(env), NewWithRunner(runner), "/repo")
		want := State{Type: "git", SHA: "def456", Branch: "main"}
		if got != want {
			t.Errorf("GetState() = %+v, want %+v", got, want)
		}
		if len(runner.Calls) != 0 {
			t.Errorf("git should not run on CI, got calls %v", runner.Calls)
		}
	})

	t.Run("ci without vendor variables", func(t *testing.T) {
		env := map[string]string{"CI": "1", "GITLAB_CI": "true"}
		got := GetState(envLookup(env), NewWithRunner(gitRunner()), "/repo")
		if got.Branch != "feature" || got.SHA != "abc123" {
			t.Errorf("GetState() = %+v, want git fallback", got)
		}
	})

	t.Run("no git", func(t *testing.T) {
		got := GetState(envLookup(nil), NewWithRunner(NewMockCommandRunner()), "/repo")
		want := State{Type: "git"}
		if got != want {
			t.Errorf("GetState() = %+v, want %+v", got, want)
		}
	})
}
