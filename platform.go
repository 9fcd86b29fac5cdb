package usbserial

import "time"

// Platform is the capability interface to the operating system's USB
// subsystem. Device, Connection and Port values are opaque handles owned
// by the platform implementation; no raw native references cross this
// boundary.
type Platform interface {
	// EnumerateSerialDevices returns a snapshot of currently attached
	// serial-capable USB devices. An empty slice is a valid result.
	EnumerateSerialDevices() ([]Device, error)

	// HasPermission reports whether the process currently holds access
	// to the device. It never blocks beyond a local OS call.
	HasPermission(dev Device) bool

	// RequestPermission starts an asynchronous OS-mediated grant flow
	// and returns immediately. The outcome is delivered out-of-band,
	// typically through a Watcher feeding a Notifier.
	RequestPermission(dev Device)

	// OpenConnection acquires a low-level connection handle to the
	// device.
	OpenConnection(dev Device) (Connection, error)
}

// Device is an enumerated USB device handle. Handles are only valid
// against the enumeration that produced them; device topology can change
// at any time.
type Device interface {
	Name() string
	VendorID() uint16
	ProductID() uint16
	DriverKind() string
	Ports() []Port
}

// Connection is an open low-level connection to a USB device.
type Connection interface {
	Close() error
}

// Port is one logical serial channel exposed by a device driver.
type Port interface {
	// Open binds the port to an open device connection.
	Open(conn Connection) error

	// SetParameters applies line parameters to an open port.
	SetParameters(baudRate, dataBits, stopBits int, parity Parity) error

	// Read returns between 0 and maxLen bytes, waiting up to timeout
	// for data. Zero bytes with a nil error means no data arrived in
	// time; it is not a failure.
	Read(maxLen int, timeout time.Duration) ([]byte, error)

	// Write transfers data, waiting up to timeout, and returns the
	// number of bytes actually written. A short count without an error
	// is a valid result.
	Write(data []byte, timeout time.Duration) (int, error)

	Close() error
}

// Parity represents the parity mode
type Parity int

const (
	ParityNone Parity = iota
	ParityOdd
	ParityEven
)
