package shim

import (
	"errors"
	"os"
	"os/exec"
	"os/signal"

	"go.uber.org/zap"
)

// Spawner runs a prepared command to completion.
type Spawner interface {
	Run(cmd *exec.Cmd) (*os.ProcessState, error)
}

// DefaultSpawner starts the command and blocks until it exits. While the
// child runs, interrupts are left to the child so the parent outlives it
// and can report its exit status.
type DefaultSpawner struct{}

// Run implements Spawner. A non-zero exit is not an error.
func (DefaultSpawner) Run(cmd *exec.Cmd) (*os.ProcessState, error) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	defer signal.Stop(sigs)

	if err := cmd.Start(); err != nil {
		return nil, err
	}
	err := cmd.Wait()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ProcessState, nil
	}
	if err != nil {
		return nil, err
	}
	return cmd.ProcessState, nil
}

// ExitCode returns the child's exit code. A child killed by a signal has
// no code and maps to 2.
func ExitCode(state *os.ProcessState, logger *zap.Logger) int {
	if code := state.ExitCode(); code >= 0 {
		return code
	}
	logger.Debug("child titan failed to report exit code")
	if sig, core, ok := signalInfo(state); ok {
		logger.Debug("child titan caught signal",
			zap.Int("signal", sig),
			zap.Bool("core_dumped", core))
	}
	return 2
}
