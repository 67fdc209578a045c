package display

import (
	"sync"

	"github.com/anvilforge/rig/internal/ipc"
	"github.com/anvilforge/rig/internal/protocol"
)

// IPCConsumer is the production FrameConsumer: it writes the same
// two-message FramebufferInfo-header-then-payload wire shape
// internal/capture.FramebufferSource reads, but as the producer side,
// over an internal/ipc client connected to the remote viewer's pipe.
type IPCConsumer struct {
	mu     sync.Mutex
	client *ipc.Client
}

// NewIPCConsumer dials pipeName immediately. If that dial fails, or the
// pipe later disconnects, Send reports false from then on: the consumer
// does not re-dial.
func NewIPCConsumer(pipeName string) *IPCConsumer {
	c := &IPCConsumer{client: ipc.NewClient(pipeName)}
	if err := c.client.Open(); err != nil {
		log.Warn("display: ipc consumer dial failed", "pipe", pipeName, "error", err)
	}
	return c
}

func (c *IPCConsumer) Send(header protocol.FramebufferInfo, data []byte) bool {
	encoded, err := protocol.EncodeFramebufferInfo(header)
	if err != nil {
		log.Warn("display: encode framebuffer info failed", "error", err)
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.client.Write(encoded) {
		return false
	}
	return c.client.Write(data)
}
