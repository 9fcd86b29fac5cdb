package usbserial

import (
	"errors"
	"testing"
	"time"
)

// twoDevicePlatform builds the canonical two-adapter topology used
// throughout the session tests: an FTDI adapter and an Arduino-style
// CDC-ACM device, one port each, no permissions granted yet.
func twoDevicePlatform() (*MockPlatform, *MockPort) {
	port := &MockPort{}
	platform := NewMockPlatform(
		&MockDevice{
			DeviceName: "/dev/bus/usb/001/004",
			Vendor:     0x0403,
			Product:    0x6001,
			Driver:     "Ftdi",
			DevPorts:   []*MockPort{port},
		},
		&MockDevice{
			DeviceName: "/dev/bus/usb/001/005",
			Vendor:     0x2341,
			Product:    0x0043,
			Driver:     "CdcAcm",
			DevPorts:   []*MockPort{{}},
		},
	)
	return platform, port
}

func newTestSession(t *testing.T, platform *MockPlatform, opts ...Option) *Session {
	t.Helper()
	session, err := NewSession(platform, opts...)
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	return session
}

func grantAll(platform *MockPlatform) {
	platform.SetPermission("/dev/bus/usb/001/004", true)
	platform.SetPermission("/dev/bus/usb/001/005", true)
}

func TestOpenDeviceIndexOutOfRange(t *testing.T) {
	platform, _ := twoDevicePlatform()
	grantAll(platform)
	session := newTestSession(t, platform)

	err := session.Open(5, 0)
	if !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Open(5, 0) = %v, expected ErrIndexOutOfRange", err)
	}
	if session.IsOpen() {
		t.Error("Session should not be open after failed Open")
	}

	err = session.Open(-1, 0)
	if !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Open(-1, 0) = %v, expected ErrIndexOutOfRange", err)
	}
}

func TestOpenPortIndexOutOfRange(t *testing.T) {
	platform, _ := twoDevicePlatform()
	grantAll(platform)
	session := newTestSession(t, platform)

	err := session.Open(0, 1)
	if !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Open(0, 1) = %v, expected ErrIndexOutOfRange", err)
	}

	err = session.Open(0, -1)
	if !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Open(0, -1) = %v, expected ErrIndexOutOfRange", err)
	}
}

func TestOpenPermissionFlow(t *testing.T) {
	platform, port := twoDevicePlatform()
	session := newTestSession(t, platform)

	// First attempt: no permission yet, one request issued.
	err := session.Open(0, 0)
	if !errors.Is(err, ErrPermissionPending) {
		t.Fatalf("Open without permission = %v, expected ErrPermissionPending", err)
	}
	requests := platform.Requests()
	if len(requests) != 1 {
		t.Fatalf("Expected 1 permission request, got %d", len(requests))
	}
	if requests[0] != "/dev/bus/usb/001/004" {
		t.Errorf("Permission requested for %s, expected /dev/bus/usb/001/004", requests[0])
	}
	if session.IsOpen() {
		t.Error("Session should not be open while permission is pending")
	}

	// External grant arrives; the retry succeeds.
	platform.SetPermission("/dev/bus/usb/001/004", true)
	if err := session.Open(0, 0); err != nil {
		t.Fatalf("Open after grant failed: %v", err)
	}
	if !session.IsOpen() {
		t.Error("Session should be open after successful Open")
	}
	if !port.Opened() {
		t.Error("Port should be open after successful Open")
	}
	if port.BaudRate() != 9600 {
		t.Errorf("Expected default baud rate 9600, got %d", port.BaudRate())
	}
}

func TestOpenAlreadyOpen(t *testing.T) {
	platform, _ := twoDevicePlatform()
	grantAll(platform)
	session := newTestSession(t, platform)

	if err := session.Open(0, 0); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := session.Open(1, 0); !errors.Is(err, ErrAlreadyOpen) {
		t.Errorf("Second Open = %v, expected ErrAlreadyOpen", err)
	}
}

func TestOpenEnumerationFailure(t *testing.T) {
	platform, _ := twoDevicePlatform()
	platform.SetEnumerateError(errors.New("usb service gone"))
	session := newTestSession(t, platform)

	if err := session.Open(0, 0); !errors.Is(err, ErrPlatformUnavailable) {
		t.Errorf("Open = %v, expected ErrPlatformUnavailable", err)
	}
}

func TestOpenConnectionFailed(t *testing.T) {
	platform, _ := twoDevicePlatform()
	grantAll(platform)
	platform.SetConnectError(errors.New("device busy"))
	session := newTestSession(t, platform)

	if err := session.Open(0, 0); !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("Open = %v, expected ErrConnectionFailed", err)
	}
	if session.IsOpen() {
		t.Error("Session should not be open after connection failure")
	}
}

func TestOpenPortOpenFailed(t *testing.T) {
	platform, port := twoDevicePlatform()
	grantAll(platform)
	port.OpenErr = errors.New("driver rejected open")
	session := newTestSession(t, platform)

	if err := session.Open(0, 0); !errors.Is(err, ErrPortOpenFailed) {
		t.Errorf("Open = %v, expected ErrPortOpenFailed", err)
	}
	if conn := platform.LastConnection(); conn == nil || !conn.Closed() {
		t.Error("Connection should be released after port open failure")
	}
	if session.IsOpen() {
		t.Error("Session should not be open after port open failure")
	}
}

func TestOpenParameterRejectedAutoCloses(t *testing.T) {
	platform, port := twoDevicePlatform()
	grantAll(platform)
	port.ParamErr = errors.New("unsupported baud")
	session := newTestSession(t, platform)

	if err := session.Open(0, 0); !errors.Is(err, ErrParameterRejected) {
		t.Errorf("Open = %v, expected ErrParameterRejected", err)
	}
	if port.Opened() {
		t.Error("Port should be closed after parameter rejection")
	}
	if port.CloseCount() != 1 {
		t.Errorf("Expected 1 port close, got %d", port.CloseCount())
	}
	if conn := platform.LastConnection(); conn == nil || !conn.Closed() {
		t.Error("Connection should be released after parameter rejection")
	}
	if session.IsOpen() {
		t.Error("Session should not be open after parameter rejection")
	}
}

func TestCloseIdempotent(t *testing.T) {
	platform, port := twoDevicePlatform()
	grantAll(platform)
	session := newTestSession(t, platform)

	// Closing a never-opened session is a no-op, twice in a row.
	if err := session.Close(); err != nil {
		t.Errorf("Close on unopened session = %v, expected nil", err)
	}
	if err := session.Close(); err != nil {
		t.Errorf("Second Close on unopened session = %v, expected nil", err)
	}

	if err := session.Open(0, 0); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := session.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if err := session.Close(); err != nil {
		t.Errorf("Close after close = %v, expected nil", err)
	}
	if port.CloseCount() != 1 {
		t.Errorf("Expected 1 port close, got %d", port.CloseCount())
	}
	if session.IsOpen() {
		t.Error("Session should be closed")
	}
}

func TestReopenAfterClose(t *testing.T) {
	platform, port := twoDevicePlatform()
	grantAll(platform)
	session := newTestSession(t, platform)

	if err := session.Open(0, 0); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := session.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := session.Open(0, 0); err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	if !port.Opened() {
		t.Error("Port should be open after reopen")
	}
}

func TestReadNotOpen(t *testing.T) {
	platform, _ := twoDevicePlatform()
	session := newTestSession(t, platform)

	data, err := session.Read(1024, 100*time.Millisecond)
	if !errors.Is(err, ErrNotOpen) {
		t.Errorf("Read on closed session = %v, expected ErrNotOpen", err)
	}
	if len(data) != 0 {
		t.Errorf("Read on closed session returned %d bytes, expected 0", len(data))
	}
}

func TestReadTimeoutIsNotAnError(t *testing.T) {
	platform, _ := twoDevicePlatform()
	grantAll(platform)
	session := newTestSession(t, platform)
	if err := session.Open(0, 0); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	data, err := session.Read(1024, 100*time.Millisecond)
	if err != nil {
		t.Errorf("Read with no data = %v, expected nil", err)
	}
	if len(data) != 0 {
		t.Errorf("Read with no data returned %d bytes, expected 0", len(data))
	}
}

func TestReadReturnsData(t *testing.T) {
	platform, port := twoDevicePlatform()
	grantAll(platform)
	port.QueueRead([]byte("pong\r\n"))
	session := newTestSession(t, platform)
	if err := session.Open(0, 0); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	data, err := session.Read(1024, time.Second)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(data) != "pong\r\n" {
		t.Errorf("Read = %q, expected %q", data, "pong\r\n")
	}
}

func TestReadRespectsMaxLen(t *testing.T) {
	platform, port := twoDevicePlatform()
	grantAll(platform)
	port.QueueRead([]byte("0123456789"))
	session := newTestSession(t, platform)
	if err := session.Open(0, 0); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	data, err := session.Read(4, time.Second)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(data) != "0123" {
		t.Errorf("Read = %q, expected %q", data, "0123")
	}
}

func TestReadDriverFailure(t *testing.T) {
	platform, port := twoDevicePlatform()
	grantAll(platform)
	port.ReadErr = errors.New("io error")
	session := newTestSession(t, platform)
	if err := session.Open(0, 0); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	data, err := session.Read(1024, time.Second)
	if !errors.Is(err, ErrReadFailed) {
		t.Errorf("Read = %v, expected ErrReadFailed", err)
	}
	if len(data) != 0 {
		t.Errorf("Failed read returned %d bytes, expected 0", len(data))
	}
}

func TestWriteNotOpen(t *testing.T) {
	platform, _ := twoDevicePlatform()
	session := newTestSession(t, platform)

	n, err := session.Write([]byte("hello"), time.Second)
	if !errors.Is(err, ErrNotOpen) {
		t.Errorf("Write on closed session = %v, expected ErrNotOpen", err)
	}
	if n != 0 {
		t.Errorf("Write on closed session reported %d bytes, expected 0", n)
	}
}

func TestWriteFull(t *testing.T) {
	platform, port := twoDevicePlatform()
	grantAll(platform)
	session := newTestSession(t, platform)
	if err := session.Open(0, 0); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	payload := []byte("Hello USB!\r\n")
	n, err := session.Write(payload, time.Second)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if n != len(payload) {
		t.Errorf("Write reported %d bytes, expected %d", n, len(payload))
	}
	if string(port.Written()) != string(payload) {
		t.Errorf("Port received %q, expected %q", port.Written(), payload)
	}
}

func TestWritePartial(t *testing.T) {
	platform, port := twoDevicePlatform()
	grantAll(platform)
	port.WriteLimit = 5
	session := newTestSession(t, platform)
	if err := session.Open(0, 0); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	n, err := session.Write([]byte("Hello USB!\r\n"), time.Second)
	var partial *PartialWriteError
	if !errors.As(err, &partial) {
		t.Fatalf("Write = %v, expected *PartialWriteError", err)
	}
	if partial.Written != 5 || partial.Requested != 12 {
		t.Errorf("PartialWriteError = {%d, %d}, expected {5, 12}", partial.Written, partial.Requested)
	}
	if n != 5 {
		t.Errorf("Write reported %d bytes, expected 5", n)
	}
}

func TestWriteDriverFailure(t *testing.T) {
	platform, port := twoDevicePlatform()
	grantAll(platform)
	port.WriteErr = errors.New("io error")
	session := newTestSession(t, platform)
	if err := session.Open(0, 0); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if _, err := session.Write([]byte("hello"), time.Second); !errors.Is(err, ErrWriteFailed) {
		t.Errorf("Write = %v, expected ErrWriteFailed", err)
	}
}

func TestSessionBaudRateOption(t *testing.T) {
	platform, port := twoDevicePlatform()
	grantAll(platform)
	session := newTestSession(t, platform, WithBaudRate(115200))
	if err := session.Open(0, 0); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if port.BaudRate() != 115200 {
		t.Errorf("Expected baud rate 115200, got %d", port.BaudRate())
	}
}

func TestSessionInvalidBaudRate(t *testing.T) {
	platform, _ := twoDevicePlatform()
	if _, err := NewSession(platform, WithBaudRate(12345)); !errors.Is(err, ErrInvalidBaudRate) {
		t.Errorf("NewSession with bad baud = %v, expected ErrInvalidBaudRate", err)
	}
}
