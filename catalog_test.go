package usbserial

import (
	"errors"
	"testing"
)

func TestEnumerate(t *testing.T) {
	platform, _ := twoDevicePlatform()
	catalog := NewCatalog(platform)

	devices, err := catalog.Enumerate()
	if err != nil {
		t.Fatalf("Enumerate failed: %v", err)
	}
	if len(devices) != 2 {
		t.Fatalf("Expected 2 devices, got %d", len(devices))
	}

	first := devices[0]
	if first.Name != "/dev/bus/usb/001/004" {
		t.Errorf("Expected name /dev/bus/usb/001/004, got %s", first.Name)
	}
	if first.DriverKind != "Ftdi" {
		t.Errorf("Expected driver Ftdi, got %s", first.DriverKind)
	}
	if first.VendorID != 0x0403 || first.ProductID != 0x6001 {
		t.Errorf("Expected VID/PID 0403/6001, got %04x/%04x", first.VendorID, first.ProductID)
	}
	if first.PortCount != 1 {
		t.Errorf("Expected 1 port, got %d", first.PortCount)
	}

	// Every descriptor satisfies the basic bounds.
	for i, d := range devices {
		if d.PortCount < 0 {
			t.Errorf("Device %d has negative port count %d", i, d.PortCount)
		}
		if d.Name == "" {
			t.Errorf("Device %d has empty name", i)
		}
	}
}

func TestEnumerateEmpty(t *testing.T) {
	catalog := NewCatalog(NewMockPlatform())

	devices, err := catalog.Enumerate()
	if err != nil {
		t.Errorf("Enumerate of empty platform = %v, expected nil", err)
	}
	if len(devices) != 0 {
		t.Errorf("Expected 0 devices, got %d", len(devices))
	}
}

func TestEnumeratePlatformUnavailable(t *testing.T) {
	platform := NewMockPlatform()
	platform.SetEnumerateError(errors.New("usb service not running"))
	catalog := NewCatalog(platform)

	if _, err := catalog.Enumerate(); !errors.Is(err, ErrPlatformUnavailable) {
		t.Errorf("Enumerate = %v, expected ErrPlatformUnavailable", err)
	}
}

func TestEnumerateZeroPortDeviceIsListed(t *testing.T) {
	platform := NewMockPlatform(&MockDevice{
		DeviceName: "/dev/bus/usb/001/009",
		Vendor:     0x1234,
		Product:    0x5678,
		Driver:     "Generic",
	})
	catalog := NewCatalog(platform)

	devices, err := catalog.Enumerate()
	if err != nil {
		t.Fatalf("Enumerate failed: %v", err)
	}
	if len(devices) != 1 {
		t.Fatalf("Expected 1 device, got %d", len(devices))
	}
	if devices[0].PortCount != 0 {
		t.Errorf("Expected 0 ports, got %d", devices[0].PortCount)
	}
}

func TestEnumerateIsFreshPerCall(t *testing.T) {
	platform, _ := twoDevicePlatform()
	catalog := NewCatalog(platform)

	before, _ := catalog.Enumerate()
	platform.RemoveDevice("/dev/bus/usb/001/005")
	after, err := catalog.Enumerate()
	if err != nil {
		t.Fatalf("Enumerate failed: %v", err)
	}
	if len(before) != 2 || len(after) != 1 {
		t.Errorf("Expected 2 then 1 devices, got %d then %d", len(before), len(after))
	}
}

func TestDeviceAt(t *testing.T) {
	platform, _ := twoDevicePlatform()
	catalog := NewCatalog(platform)

	dev, err := catalog.DeviceAt(1)
	if err != nil {
		t.Fatalf("DeviceAt(1) failed: %v", err)
	}
	if dev.Name() != "/dev/bus/usb/001/005" {
		t.Errorf("DeviceAt(1) = %s, expected /dev/bus/usb/001/005", dev.Name())
	}

	if _, err := catalog.DeviceAt(2); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("DeviceAt(2) = %v, expected ErrIndexOutOfRange", err)
	}
	if _, err := catalog.DeviceAt(-1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("DeviceAt(-1) = %v, expected ErrIndexOutOfRange", err)
	}
}
