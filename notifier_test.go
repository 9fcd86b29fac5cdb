package usbserial

import "testing"

// recordedEvent is one notification captured by recordingObserver.
type recordedEvent struct {
	kind    string
	attach  AttachEvent
	launch  LaunchEvent
	name    string
	granted bool
}

// recordingObserver captures notifications on a buffered channel so
// tests can assert on both synchronous and watcher-delivered events.
type recordingObserver struct {
	events chan recordedEvent
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{events: make(chan recordedEvent, 16)}
}

func (o *recordingObserver) DeviceAttached(e AttachEvent) {
	o.events <- recordedEvent{kind: "attached", attach: e}
}

func (o *recordingObserver) DeviceDetached(name string) {
	o.events <- recordedEvent{kind: "detached", name: name}
}

func (o *recordingObserver) AppLaunchedByDevice(e LaunchEvent) {
	o.events <- recordedEvent{kind: "launched", launch: e}
}

func (o *recordingObserver) PermissionDecided(name string, granted bool) {
	o.events <- recordedEvent{kind: "permission", name: name, granted: granted}
}

func (o *recordingObserver) next(t *testing.T) recordedEvent {
	t.Helper()
	select {
	case e := <-o.events:
		return e
	default:
		t.Fatal("No event delivered")
		return recordedEvent{}
	}
}

func TestNotifierDeviceAttached(t *testing.T) {
	observer := newRecordingObserver()
	notifier := NewNotifier(observer)

	notifier.DeviceAttached("/dev/bus/usb/001/004", 0x0403, 0x6001, 0xff)

	e := observer.next(t)
	if e.kind != "attached" {
		t.Fatalf("Expected attached event, got %s", e.kind)
	}
	if e.attach.Name != "/dev/bus/usb/001/004" {
		t.Errorf("Name = %s, expected /dev/bus/usb/001/004", e.attach.Name)
	}
	if e.attach.VendorID != 0x0403 || e.attach.ProductID != 0x6001 {
		t.Errorf("VID/PID = %04x/%04x, expected 0403/6001", e.attach.VendorID, e.attach.ProductID)
	}
	if e.attach.DeviceClass != 0xff {
		t.Errorf("DeviceClass = %#x, expected 0xff", e.attach.DeviceClass)
	}
}

func TestNotifierDeviceDetached(t *testing.T) {
	observer := newRecordingObserver()
	notifier := NewNotifier(observer)

	notifier.DeviceDetached("/dev/bus/usb/001/004")

	e := observer.next(t)
	if e.kind != "detached" || e.name != "/dev/bus/usb/001/004" {
		t.Errorf("Got %s/%s, expected detached//dev/bus/usb/001/004", e.kind, e.name)
	}
}

func TestNotifierAppLaunchedByDevice(t *testing.T) {
	observer := newRecordingObserver()
	notifier := NewNotifier(observer)

	notifier.AppLaunchedByDevice("/dev/bus/usb/001/004", 0x0403, 0x6001, "Ftdi")

	e := observer.next(t)
	if e.kind != "launched" {
		t.Fatalf("Expected launched event, got %s", e.kind)
	}
	if e.launch.DriverName != "Ftdi" {
		t.Errorf("DriverName = %s, expected Ftdi", e.launch.DriverName)
	}
	if e.launch.VendorID != 0x0403 || e.launch.ProductID != 0x6001 {
		t.Errorf("VID/PID = %04x/%04x, expected 0403/6001", e.launch.VendorID, e.launch.ProductID)
	}
}

func TestNotifierPermissionDecided(t *testing.T) {
	observer := newRecordingObserver()
	notifier := NewNotifier(observer)

	notifier.PermissionDecided("/dev/bus/usb/001/004", true)

	e := observer.next(t)
	if e.kind != "permission" || !e.granted {
		t.Errorf("Got %s/granted=%v, expected permission/granted=true", e.kind, e.granted)
	}
}

func TestNotifierNilObserver(t *testing.T) {
	notifier := NewNotifier(nil)

	// Must not panic; events are dropped.
	notifier.DeviceAttached("x", 1, 2, 3)
	notifier.DeviceDetached("x")
	notifier.AppLaunchedByDevice("x", 1, 2, "d")
	notifier.PermissionDecided("x", false)
}
