//go:build !unix

package shim

import "os"

func signalInfo(*os.ProcessState) (int, bool, bool) {
	return 0, false, false
}
