package usbserial

import "testing"

func TestPermissionStateString(t *testing.T) {
	tests := []struct {
		state    PermissionState
		expected string
	}{
		{PermissionUnknown, "unknown"},
		{PermissionGranted, "granted"},
		{PermissionDenied, "denied"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.expected {
			t.Errorf("PermissionState(%d).String() = %q, expected %q", tt.state, got, tt.expected)
		}
	}
}

func TestGateCheck(t *testing.T) {
	platform, _ := twoDevicePlatform()
	gate := NewGate(platform)
	dev, err := NewCatalog(platform).DeviceAt(0)
	if err != nil {
		t.Fatalf("DeviceAt failed: %v", err)
	}

	// Not granted and never requested: unknown.
	if state := gate.Check(dev); state != PermissionUnknown {
		t.Errorf("Check before request = %v, expected unknown", state)
	}

	// Requested but still withheld: denied.
	gate.Request(dev)
	if state := gate.Check(dev); state != PermissionDenied {
		t.Errorf("Check after unanswered request = %v, expected denied", state)
	}

	// Granted wins regardless of request history.
	platform.SetPermission(dev.Name(), true)
	if state := gate.Check(dev); state != PermissionGranted {
		t.Errorf("Check after grant = %v, expected granted", state)
	}
}

func TestGateRequestIsForwarded(t *testing.T) {
	platform, _ := twoDevicePlatform()
	gate := NewGate(platform)
	dev, err := NewCatalog(platform).DeviceAt(0)
	if err != nil {
		t.Fatalf("DeviceAt failed: %v", err)
	}

	gate.Request(dev)
	gate.Request(dev)

	requests := platform.Requests()
	if len(requests) != 2 {
		t.Fatalf("Expected 2 forwarded requests, got %d", len(requests))
	}
	for _, name := range requests {
		if name != dev.Name() {
			t.Errorf("Request forwarded for %s, expected %s", name, dev.Name())
		}
	}
}

func TestGateAlwaysRechecksPlatform(t *testing.T) {
	platform, _ := twoDevicePlatform()
	gate := NewGate(platform)
	dev, err := NewCatalog(platform).DeviceAt(0)
	if err != nil {
		t.Fatalf("DeviceAt failed: %v", err)
	}

	platform.SetPermission(dev.Name(), true)
	if state := gate.Check(dev); state != PermissionGranted {
		t.Fatalf("Check = %v, expected granted", state)
	}

	// Revocation is visible immediately; nothing is cached.
	platform.SetPermission(dev.Name(), false)
	if state := gate.Check(dev); state == PermissionGranted {
		t.Error("Check after revocation still reports granted")
	}
}
