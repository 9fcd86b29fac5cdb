package usbserial

import (
	"fmt"
	"sync"
	"time"
)

// Session owns at most one open device+port pair at a time.
//
// Open is atomic from the caller's perspective: it either transitions
// the session from closed to open, or fails back to closed with every
// handle acquired along the way released. A session can be reused for
// any number of open/close cycles.
type Session struct {
	mu       sync.Mutex
	platform Platform
	gate     *Gate
	config   Config

	conn Connection
	port Port
	open bool
}

// NewSession creates an unopened session against the given platform.
func NewSession(platform Platform, opts ...Option) (*Session, error) {
	config := DefaultConfig()
	for _, opt := range opts {
		if err := opt(&config); err != nil {
			return nil, err
		}
	}

	return &Session{
		platform: platform,
		gate:     NewGate(platform),
		config:   config,
	}, nil
}

// Open resolves deviceIndex and portIndex against a fresh enumeration
// and opens the port at the configured baud rate with 8 data bits, 1
// stop bit and no parity.
//
// If the process does not hold permission for the device, Open issues an
// asynchronous permission request and fails with ErrPermissionPending;
// the caller retries after the grant decision arrives out-of-band. A
// second Open while a port is already open fails with ErrAlreadyOpen.
func (s *Session) Open(deviceIndex, portIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.open {
		return ErrAlreadyOpen
	}

	// Device topology can change between calls, so indices are validated
	// against a fresh enumeration on every attempt.
	devices, err := s.platform.EnumerateSerialDevices()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPlatformUnavailable, err)
	}
	if deviceIndex < 0 || deviceIndex >= len(devices) {
		return fmt.Errorf("%w: device %d of %d", ErrIndexOutOfRange, deviceIndex, len(devices))
	}
	dev := devices[deviceIndex]

	if s.gate.Check(dev) != PermissionGranted {
		s.gate.Request(dev)
		return fmt.Errorf("%w: %s", ErrPermissionPending, dev.Name())
	}

	ports := dev.Ports()
	if portIndex < 0 || portIndex >= len(ports) {
		return fmt.Errorf("%w: port %d of %d", ErrIndexOutOfRange, portIndex, len(ports))
	}
	port := ports[portIndex]

	conn, err := s.platform.OpenConnection(dev)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	if err := port.Open(conn); err != nil {
		conn.Close()
		return fmt.Errorf("%w: %v", ErrPortOpenFailed, err)
	}

	// Data bits, stop bits and parity are fixed; only the baud rate is
	// caller-configurable. A rejected configuration must not leave the
	// session half-open, so the just-opened port and its connection are
	// released before returning.
	if err := port.SetParameters(s.config.BaudRate, 8, 1, ParityNone); err != nil {
		port.Close()
		conn.Close()
		return fmt.Errorf("%w: %v", ErrParameterRejected, err)
	}

	s.port = port
	s.conn = conn
	s.open = true
	return nil
}

// Close releases the port and the underlying connection. It is
// idempotent: closing a session that was never opened, or closing twice
// in a row, is a no-op and never an error.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return nil
	}

	err := s.port.Close()
	if cerr := s.conn.Close(); err == nil {
		err = cerr
	}

	s.port = nil
	s.conn = nil
	s.open = false
	return err
}

// IsOpen reports whether the session currently owns an open port.
func (s *Session) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// Read waits up to timeout for incoming data and returns between 0 and
// maxLen bytes. An empty result with a nil error means no data arrived
// within the timeout; only a driver-level failure maps to ErrReadFailed.
// Reading a closed session returns an empty result and ErrNotOpen
// without blocking.
func (s *Session) Read(maxLen int, timeout time.Duration) ([]byte, error) {
	s.mu.Lock()
	port, open := s.port, s.open
	s.mu.Unlock()

	if !open {
		return nil, ErrNotOpen
	}
	if maxLen <= 0 {
		maxLen = s.config.ReadBufferSize
	}
	if timeout <= 0 {
		timeout = s.config.DefaultTimeout
	}

	data, err := port.Read(maxLen, timeout)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}
	return data, nil
}

// Write transfers data, waiting up to timeout, and returns the number
// of bytes written. A short transfer without a driver failure surfaces
// as *PartialWriteError carrying the true count; a driver-level
// rejection maps to ErrWriteFailed.
func (s *Session) Write(data []byte, timeout time.Duration) (int, error) {
	s.mu.Lock()
	port, open := s.port, s.open
	s.mu.Unlock()

	if !open {
		return 0, ErrNotOpen
	}
	if timeout <= 0 {
		timeout = s.config.DefaultTimeout
	}

	n, err := port.Write(data, timeout)
	if err != nil {
		return n, fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	if n != len(data) {
		return n, &PartialWriteError{Written: n, Requested: len(data)}
	}
	return n, nil
}
