package usbserial

import "fmt"

// DeviceDescriptor holds the identifying metadata of one enumerated USB
// serial device. Descriptors are immutable and positional: an index is
// only meaningful against the enumeration result that produced it, since
// re-enumerating may reorder or omit devices.
type DeviceDescriptor struct {
	Name       string
	DriverKind string
	VendorID   uint16
	ProductID  uint16
	PortCount  int
}

// Catalog enumerates currently attached serial-capable USB devices
// through the platform capability interface. It holds no state between
// calls; every enumeration is a fresh platform query.
type Catalog struct {
	platform Platform
}

// NewCatalog returns a catalog backed by the given platform.
func NewCatalog(platform Platform) *Catalog {
	return &Catalog{platform: platform}
}

// Enumerate returns an ordered snapshot of attached devices. An empty
// slice is a valid, non-error result. Devices whose driver reports zero
// ports are still listed; callers must check PortCount before selecting
// a port index.
func (c *Catalog) Enumerate() ([]DeviceDescriptor, error) {
	devices, err := c.platform.EnumerateSerialDevices()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPlatformUnavailable, err)
	}

	descriptors := make([]DeviceDescriptor, 0, len(devices))
	for _, dev := range devices {
		descriptors = append(descriptors, DeviceDescriptor{
			Name:       dev.Name(),
			DriverKind: dev.DriverKind(),
			VendorID:   dev.VendorID(),
			ProductID:  dev.ProductID(),
			PortCount:  len(dev.Ports()),
		})
	}

	return descriptors, nil
}

// DeviceAt returns the device handle at index within a fresh
// enumeration. The handle is only valid until the topology changes.
func (c *Catalog) DeviceAt(index int) (Device, error) {
	devices, err := c.platform.EnumerateSerialDevices()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPlatformUnavailable, err)
	}
	if index < 0 || index >= len(devices) {
		return nil, fmt.Errorf("%w: device %d of %d", ErrIndexOutOfRange, index, len(devices))
	}
	return devices[index], nil
}
