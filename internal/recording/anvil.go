package recording

import (
	"encoding/json"

	"github.com/anvilforge/rig/internal/ipc"
	"github.com/anvilforge/rig/internal/protocol"
)

// AnvilClient is the Recording Controller's own connection to RiG's
// Command Server. Unlike Forge, CH talks to RiG directly to push indicator
// state and the forge_info hand-off (original_source/Crucible/Crucible.cpp's
// AnvilCommands::Connect/SendForgeInfo/SendIndicator).
type AnvilClient interface {
	Connect(pipeName string) error
	SendIndicator(name string)
	SendForgeInfo(eventPipeName string)
	SendGameCaptureInfo(serverPipeName string)
}

// ipcAnvilClient is the concrete AnvilClient backed by internal/ipc.
type ipcAnvilClient struct {
	client *ipc.Client
}

// NewAnvilClient creates an AnvilClient with no connection yet open.
func NewAnvilClient() AnvilClient {
	return &ipcAnvilClient{}
}

func (a *ipcAnvilClient) Connect(pipeName string) error {
	a.client = ipc.NewClient(pipeName)
	return a.client.Open()
}

func (a *ipcAnvilClient) SendIndicator(name string) {
	a.send(protocol.Command{Command: protocol.CmdIndicator, Name: name})
}

func (a *ipcAnvilClient) SendForgeInfo(eventPipeName string) {
	a.send(protocol.Command{Command: protocol.CmdForgeInfo, EventPipeName: eventPipeName})
}

func (a *ipcAnvilClient) SendGameCaptureInfo(serverPipeName string) {
	a.send(protocol.Command{Command: protocol.CmdGameCaptureInfo, ServerPipeName: serverPipeName})
}

func (a *ipcAnvilClient) send(cmd protocol.Command) {
	if a.client == nil {
		return
	}
	data, err := json.Marshal(cmd)
	if err != nil {
		log.Warn("failed to marshal anvil command", "command", cmd.Command, "error", err)
		return
	}
	if !a.client.Write(data) {
		log.Debug("anvil command dropped: not connected", "command", cmd.Command)
	}
}
