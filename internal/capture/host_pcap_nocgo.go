//go:build !cgo

package capture

// probeNetworkInterfaces is a no-op when built without CGO, since
// gopacket/pcap requires it (original_source has no equivalent; this
// mirrors the teacher's own arp_nocgo.go fallback for the same dependency).
func probeNetworkInterfaces() ([]string, error) {
	log.Info("network interface probing unavailable (built without CGO/pcap)")
	return nil, nil
}
