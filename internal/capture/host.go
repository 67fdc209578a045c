package capture

import (
	"time"

	"github.com/shirou/gopsutil/v3/cpu"

	"github.com/anvilforge/rig/internal/encoder"
)

// HostClock stamps frames with host-monotonic time the way os_gettime_ns()
// does: elapsed nanoseconds since the clock was created, using Go's
// runtime monotonic reading (time.Since draws from the monotonic portion
// of a time.Time, not the wall clock).
type HostClock struct {
	start time.Time
}

// NewHostClock starts a monotonic clock at the current instant.
func NewHostClock() *HostClock {
	return &HostClock{start: time.Now()}
}

// Now implements MonotonicNow.
func (c *HostClock) Now() int64 {
	return time.Since(c.start).Nanoseconds()
}

// ProbeCPUFallbackDevice synthesizes a single software CUDADevice entry
// from the host's logical CPU count when no real CUDA runtime is present,
// so NVENCAdapter.Init's device-enumeration loop has at least one (always
// rejected, compute 0.0) candidate to log instead of an empty list -
// matching OpenDevice's per-device "does not support" log line even on a
// GPU-less host.
func ProbeCPUFallbackDevice() encoder.CUDADevice {
	cores, err := cpu.Counts(true)
	if err != nil || cores <= 0 {
		cores = 1
	}
	return encoder.CUDADevice{
		Index: 0,
		Name:  "cpu-fallback",
		// ComputeMajor/Minor left at zero: always below NVENC's 3.0 floor,
		// so pickDevice correctly reports no usable device.
		MaxWidth:  cores * 1920,
		MaxHeight: 1080,
	}
}

// ProbeNetworkInterfaces enumerates host network interfaces usable for the
// out-of-process WebRTC signalling path (spec.md §1's "WebRTC
// encoder+signalling sink" collaborator). The real enumeration goes
// through gopacket/pcap, which needs CGO; see host_pcap_cgo.go and
// host_pcap_nocgo.go for the two build-tagged implementations.
func ProbeNetworkInterfaces() ([]string, error) {
	return probeNetworkInterfaces()
}
