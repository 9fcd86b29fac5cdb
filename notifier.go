package usbserial

// AttachEvent describes a device that was just attached.
type AttachEvent struct {
	Name        string
	VendorID    uint16
	ProductID   uint16
	DeviceClass int
}

// LaunchEvent describes the device that launched the application.
type LaunchEvent struct {
	Name       string
	VendorID   uint16
	ProductID  uint16
	DriverName string
}

// Observer receives typed device notifications. Callbacks arrive on a
// platform-managed execution context independent of any session's
// read/write loop; implementations must not mutate session state
// directly. If attach events should affect an open session, route them
// through an explicit synchronized handoff instead.
type Observer interface {
	DeviceAttached(e AttachEvent)
	DeviceDetached(name string)
	AppLaunchedByDevice(e LaunchEvent)

	// PermissionDecided reports the outcome of an earlier asynchronous
	// permission request for the named device.
	PermissionDecided(name string, granted bool)
}

// Notifier forwards platform device events to an Observer. It keeps no
// state and performs no queueing or buffering; delivery ordering, if
// needed, is the observer's responsibility.
type Notifier struct {
	observer Observer
}

// NewNotifier returns a notifier forwarding to observer. A nil observer
// is allowed; events are then dropped.
func NewNotifier(observer Observer) *Notifier {
	return &Notifier{observer: observer}
}

// DeviceAttached forwards a device attachment.
func (n *Notifier) DeviceAttached(name string, vendorID, productID uint16, deviceClass int) {
	if n.observer == nil {
		return
	}
	n.observer.DeviceAttached(AttachEvent{
		Name:        name,
		VendorID:    vendorID,
		ProductID:   productID,
		DeviceClass: deviceClass,
	})
}

// DeviceDetached forwards a device detachment.
func (n *Notifier) DeviceDetached(name string) {
	if n.observer == nil {
		return
	}
	n.observer.DeviceDetached(name)
}

// AppLaunchedByDevice forwards the device-initiated application launch.
func (n *Notifier) AppLaunchedByDevice(name string, vendorID, productID uint16, driverName string) {
	if n.observer == nil {
		return
	}
	n.observer.AppLaunchedByDevice(LaunchEvent{
		Name:       name,
		VendorID:   vendorID,
		ProductID:  productID,
		DriverName: driverName,
	})
}

// PermissionDecided forwards a permission grant or denial.
func (n *Notifier) PermissionDecided(name string, granted bool) {
	if n.observer == nil {
		return
	}
	n.observer.PermissionDecided(name, granted)
}
