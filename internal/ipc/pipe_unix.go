//go:build !windows

package ipc

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
)

// socketPath maps a pipe name to a Unix-domain socket path under the OS
// temp directory, mirroring the Windows \\.\pipe\ namespace for
// non-Windows builds and test harnesses (spec.md names pipes abstractly;
// the concrete backing transport is a collaborator detail per §4.1).
func socketPath(name string) string {
	return filepath.Join(os.TempDir(), "anvilforge-"+name+".sock")
}

func listen(name string) (net.Listener, error) {
	path := socketPath(name)
	_ = os.Remove(path) // stale socket from a crashed prior instance
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("ipc: listen unix %s: %w", path, err)
	}
	return ln, nil
}

func dial(name string) (net.Conn, error) {
	conn, err := net.Dial("unix", socketPath(name))
	if err != nil {
		return nil, fmt.Errorf("ipc: dial unix %s: %w", socketPath(name), err)
	}
	return conn, nil
}
