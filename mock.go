package usbserial

import (
	"sync"
	"time"
)

// MockPlatform is an in-memory Platform implementation for tests and
// demos. Devices, permissions and port behavior are fully controlled by
// the caller; no hardware is touched.
type MockPlatform struct {
	mu           sync.Mutex
	devices      []*MockDevice
	permissions  map[string]bool
	requests     []string
	enumerateErr error
	connectErr   error
	lastConn     *MockConnection
}

var _ Platform = (*MockPlatform)(nil)

// NewMockPlatform returns a platform exposing the given devices, all
// without permission until SetPermission grants it.
func NewMockPlatform(devices ...*MockDevice) *MockPlatform {
	return &MockPlatform{
		devices:     devices,
		permissions: make(map[string]bool),
	}
}

// AddDevice attaches a device to the platform.
func (m *MockPlatform) AddDevice(dev *MockDevice) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.devices = append(m.devices, dev)
}

// RemoveDevice detaches the named device.
func (m *MockPlatform) RemoveDevice(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.devices[:0]
	for _, dev := range m.devices {
		if dev.DeviceName != name {
			kept = append(kept, dev)
		}
	}
	m.devices = kept
}

// SetPermission grants or revokes access to the named device.
func (m *MockPlatform) SetPermission(name string, granted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.permissions[name] = granted
}

// SetEnumerateError makes enumeration fail with err until cleared.
func (m *MockPlatform) SetEnumerateError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enumerateErr = err
}

// SetConnectError makes OpenConnection fail with err until cleared.
func (m *MockPlatform) SetConnectError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectErr = err
}

// Requests returns the device names permission was requested for, in
// order.
func (m *MockPlatform) Requests() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.requests...)
}

// LastConnection returns the most recently opened connection.
func (m *MockPlatform) LastConnection() *MockConnection {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastConn
}

func (m *MockPlatform) EnumerateSerialDevices() ([]Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.enumerateErr != nil {
		return nil, m.enumerateErr
	}
	devices := make([]Device, len(m.devices))
	for i, dev := range m.devices {
		devices[i] = dev
	}
	return devices, nil
}

func (m *MockPlatform) HasPermission(dev Device) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.permissions[dev.Name()]
}

func (m *MockPlatform) RequestPermission(dev Device) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, dev.Name())
}

func (m *MockPlatform) OpenConnection(dev Device) (Connection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.connectErr != nil {
		return nil, m.connectErr
	}
	conn := &MockConnection{}
	m.lastConn = conn
	return conn, nil
}

// MockDevice is a scripted USB serial device.
type MockDevice struct {
	DeviceName string
	Vendor     uint16
	Product    uint16
	Driver     string
	DevPorts   []*MockPort
}

var _ Device = (*MockDevice)(nil)

func (d *MockDevice) Name() string       { return d.DeviceName }
func (d *MockDevice) VendorID() uint16   { return d.Vendor }
func (d *MockDevice) ProductID() uint16  { return d.Product }
func (d *MockDevice) DriverKind() string { return d.Driver }

func (d *MockDevice) Ports() []Port {
	ports := make([]Port, len(d.DevPorts))
	for i, p := range d.DevPorts {
		ports[i] = p
	}
	return ports
}

// MockConnection tracks whether it has been released.
type MockConnection struct {
	mu     sync.Mutex
	closed bool
}

var _ Connection = (*MockConnection)(nil)

func (c *MockConnection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Closed reports whether the connection was released.
func (c *MockConnection) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// MockPort is a scripted serial port. Reads consume ReadData; an empty
// buffer simulates a quiet line and returns immediately rather than
// sleeping out the timeout. WriteLimit caps how many bytes a single
// write accepts, which is how partial writes are provoked.
type MockPort struct {
	OpenErr    error
	ParamErr   error
	ReadErr    error
	WriteErr   error
	WriteLimit int

	mu         sync.Mutex
	readData   []byte
	written    []byte
	opened     bool
	closeCount int
	baudRate   int
}

var _ Port = (*MockPort)(nil)

// QueueRead appends data for subsequent reads to return.
func (p *MockPort) QueueRead(data []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.readData = append(p.readData, data...)
}

func (p *MockPort) Open(conn Connection) error {
	if p.OpenErr != nil {
		return p.OpenErr
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.opened = true
	return nil
}

func (p *MockPort) SetParameters(baudRate, dataBits, stopBits int, parity Parity) error {
	if p.ParamErr != nil {
		return p.ParamErr
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.baudRate = baudRate
	return nil
}

func (p *MockPort) Read(maxLen int, timeout time.Duration) ([]byte, error) {
	if p.ReadErr != nil {
		return nil, p.ReadErr
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.readData) == 0 {
		return []byte{}, nil
	}
	n := len(p.readData)
	if n > maxLen {
		n = maxLen
	}
	data := append([]byte(nil), p.readData[:n]...)
	p.readData = p.readData[n:]
	return data, nil
}

func (p *MockPort) Write(data []byte, timeout time.Duration) (int, error) {
	if p.WriteErr != nil {
		return 0, p.WriteErr
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	n := len(data)
	if p.WriteLimit > 0 && n > p.WriteLimit {
		n = p.WriteLimit
	}
	p.written = append(p.written, data[:n]...)
	return n, nil
}

func (p *MockPort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.opened = false
	p.closeCount++
	return nil
}

// Opened reports whether the port is currently open.
func (p *MockPort) Opened() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.opened
}

// CloseCount returns how many times Close was called.
func (p *MockPort) CloseCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closeCount
}

// Written returns everything written to the port.
func (p *MockPort) Written() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]byte(nil), p.written...)
}

// BaudRate returns the last configured baud rate.
func (p *MockPort) BaudRate() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.baudRate
}
