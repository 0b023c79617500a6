//go:build unix

package shim

import (
	"os"
	"syscall"
)

func signalInfo(state *os.ProcessState) (sig int, coreDumped bool, ok bool) {
	ws, ok := state.Sys().(syscall.WaitStatus)
	if !ok || !ws.Signaled() {
		return 0, false, false
	}
	return int(ws.Signal()), ws.CoreDump(), true
}
