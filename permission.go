package usbserial

import "sync"

// PermissionState reports whether the process holds OS-granted access to
// a specific USB device.
type PermissionState int

const (
	// PermissionUnknown means no grant decision has been observed yet.
	PermissionUnknown PermissionState = iota
	// PermissionGranted means the process may access the device.
	PermissionGranted
	// PermissionDenied means a request was issued and access is still
	// withheld.
	PermissionDenied
)

func (s PermissionState) String() string {
	switch s {
	case PermissionGranted:
		return "granted"
	case PermissionDenied:
		return "denied"
	default:
		return "unknown"
	}
}

// Gate answers permission queries and issues asynchronous grant
// requests. Check never blocks beyond a local OS call, and Request is
// fire-and-forget: the eventual outcome arrives out-of-band (see
// Watcher and Observer.PermissionDecided), after which the caller
// retries the open sequence from the top.
//
// The gate always re-checks the platform rather than caching grants;
// it only remembers which devices it has issued requests for, so that
// a still-withheld grant after a request reads as denied rather than
// unknown.
type Gate struct {
	platform Platform

	mu        sync.Mutex
	requested map[string]bool
}

// NewGate returns a gate backed by the given platform.
func NewGate(platform Platform) *Gate {
	return &Gate{
		platform:  platform,
		requested: make(map[string]bool),
	}
}

// Check queries the current permission state for dev.
func (g *Gate) Check(dev Device) PermissionState {
	if g.platform.HasPermission(dev) {
		return PermissionGranted
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.requested[dev.Name()] {
		return PermissionDenied
	}
	return PermissionUnknown
}

// Request triggers the OS-mediated grant flow for dev and returns
// immediately. Callers must not poll; they re-invoke the open sequence
// once notified externally that a decision was made.
func (g *Gate) Request(dev Device) {
	g.mu.Lock()
	g.requested[dev.Name()] = true
	g.mu.Unlock()

	g.platform.RequestPermission(dev)
}
