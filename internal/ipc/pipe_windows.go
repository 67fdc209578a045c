//go:build windows

package ipc

import (
	"fmt"
	"net"

	"github.com/Microsoft/go-winio"
)

// pipePrefix matches the Windows named-pipe namespace convention.
const pipePrefix = `\\.\pipe\`

func pipePath(name string) string {
	return pipePrefix + name
}

func listen(name string) (net.Listener, error) {
	cfg := &winio.PipeConfig{
		// Security descriptor left at go-winio's default (current user);
		// RiG/Forge/CH run under the same user session.
		MessageMode: false,
	}
	ln, err := winio.ListenPipe(pipePath(name), cfg)
	if err != nil {
		return nil, fmt.Errorf("ipc: ListenPipe %s: %w", name, err)
	}
	return ln, nil
}

func dial(name string) (net.Conn, error) {
	conn, err := winio.DialPipe(pipePath(name), nil)
	if err != nil {
		return nil, fmt.Errorf("ipc: DialPipe %s: %w", name, err)
	}
	return conn, nil
}
