// Package usbserial manages host-side USB-serial transport: it
// discovers attached USB-to-serial adapters, negotiates OS-level access
// permission asynchronously, opens a single active session per process,
// and performs timeout-bounded byte-stream I/O over that session.
//
// # Basic Usage
//
// Enumerate devices, then open a session against one by index:
//
//	platform := usbserial.NewLinuxPlatform()
//
//	catalog := usbserial.NewCatalog(platform)
//	devices, err := catalog.Enumerate()
//	for i, d := range devices {
//	    fmt.Printf("%d: %s %s VID=%04x PID=%04x ports=%d\n",
//	        i, d.Name, d.DriverKind, d.VendorID, d.ProductID, d.PortCount)
//	}
//
//	session, err := usbserial.NewSession(platform,
//	    usbserial.WithBaudRate(115200),
//	)
//	if err := session.Open(0, 0); err != nil {
//	    log.Fatal(err)
//	}
//	defer session.Close()
//
//	n, err := session.Write([]byte("AT\r\n"), time.Second)
//	data, err := session.Read(1024, time.Second)
//
// Line parameters are fixed at 8 data bits, 1 stop bit, no parity; only
// the baud rate is configurable (default 9600).
//
// # Permissions
//
// Access to a device may not be granted yet when Open is called. In
// that case Open issues an asynchronous permission request and fails
// with ErrPermissionPending; the caller retries the whole open sequence
// after the decision arrives:
//
//	err := session.Open(0, 0)
//	if errors.Is(err, usbserial.ErrPermissionPending) {
//	    // wait for Observer.PermissionDecided, then call Open again
//	}
//
// The decision is delivered out-of-band through a Watcher feeding an
// Observer; the library never polls or blocks on a grant.
//
// # Hotplug Events
//
// A Watcher converts device directory changes into typed notifications:
//
//	notifier := usbserial.NewNotifier(myObserver)
//	watcher, err := usbserial.NewWatcher(platform, notifier, "/dev")
//	if err := watcher.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	defer watcher.Close()
//
// Observers only receive events; they must not mutate session state
// directly.
//
// # Error Handling
//
// Failures are reported as typed errors checked with errors.Is:
//
//	var (
//	    ErrPlatformUnavailable // enumeration/context acquisition failed
//	    ErrIndexOutOfRange     // index invalid against a fresh enumeration
//	    ErrPermissionPending   // grant requested, retry after decision
//	    ErrConnectionFailed    // device-level connection rejected
//	    ErrPortOpenFailed      // driver-level port open rejected
//	    ErrParameterRejected   // line parameters rejected, session closed
//	    ErrNotOpen             // I/O attempted on a closed session
//	    ErrReadFailed          // driver-level read failure
//	    ErrWriteFailed         // driver-level write failure
//	    // ... and more
//	)
//
// A write that transfers fewer bytes than requested without a driver
// failure returns *PartialWriteError with the true count:
//
//	n, err := session.Write(payload, time.Second)
//	var partial *usbserial.PartialWriteError
//	if errors.As(err, &partial) {
//	    // resend payload[partial.Written:]
//	}
//
// A read that sees no data within its timeout returns an empty slice
// and a nil error; it is not a failure.
//
// # Platform Support
//
// The shipped Platform implementation targets Linux, using sysfs for
// discovery and termios for port I/O. MockPlatform provides a fully
// scripted in-memory implementation for tests.
package usbserial
