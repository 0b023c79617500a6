package shim

import "os"

// InvocationDirEnvVar carries the directory the user ran the command from
// to an in-process run or a delegated binary, which may be started from
// the repository root instead.
const InvocationDirEnvVar = "TITAN_INVOCATION_DIR"

// InvocationDir returns the recorded invocation directory, if any.
func InvocationDir() (string, bool) {
	dir, ok := os.LookupEnv(InvocationDirEnvVar)
	if !ok || dir == "" {
		return "", false
	}
	return dir, true
}

// SetInvocationDir records dir for the rest of the process.
func SetInvocationDir(dir string) error {
	return os.Setenv(InvocationDirEnvVar, dir)
}

func invocationDirEnv(dir string) string {
	return InvocationDirEnvVar + "=" + dir
}
