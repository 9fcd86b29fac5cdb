package usbserial

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// usbTTYPattern matches device nodes backed by USB serial drivers.
var usbTTYPattern = regexp.MustCompile(`^tty(USB|ACM)\d+$`)

// Watcher observes the device node directory and converts changes into
// attachment notifications.
//
// A created node triggers a fresh enumeration; devices not present in
// the previous snapshot are reported as attached, devices that vanished
// as detached. A mode change on a node re-probes every device with an
// outstanding permission request and reports grants through
// Observer.PermissionDecided, which is how the asynchronous grant
// outcome reaches the caller. A pending device that detaches is
// reported as denied.
//
// The watcher never mutates session state; it only forwards events.
type Watcher struct {
	platform Platform
	catalog  *Catalog
	notifier *Notifier
	devDir   string

	fsw       *fsnotify.Watcher
	done      chan struct{}
	closeOnce sync.Once

	mu      sync.Mutex
	known   map[string]DeviceDescriptor
	pending map[string]Device
}

// NewWatcher creates a watcher over devDir delivering events through
// notifier. Call Start to begin delivery and Close to stop it.
func NewWatcher(platform Platform, notifier *Notifier, devDir string) (*Watcher, error) {
	if devDir == "" {
		return nil, fmt.Errorf("%w: empty device directory", ErrInvalidConfig)
	}
	return &Watcher{
		platform: platform,
		catalog:  NewCatalog(platform),
		notifier: notifier,
		devDir:   devDir,
		done:     make(chan struct{}),
		known:    make(map[string]DeviceDescriptor),
		pending:  make(map[string]Device),
	}, nil
}

// Start takes an initial device snapshot and begins delivering events
// until Close is called.
func (w *Watcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPlatformUnavailable, err)
	}
	if err := fsw.Add(w.devDir); err != nil {
		fsw.Close()
		return fmt.Errorf("%w: %v", ErrPlatformUnavailable, err)
	}
	w.fsw = fsw

	// Baseline snapshot so only future changes produce events.
	if descriptors, err := w.catalog.Enumerate(); err == nil {
		w.mu.Lock()
		for _, d := range descriptors {
			w.known[d.Name] = d
		}
		w.mu.Unlock()
	}

	go w.loop()
	return nil
}

// AwaitDecision registers dev as having an outstanding permission
// request, so a later grant or denial is delivered to the observer.
func (w *Watcher) AwaitDecision(dev Device) {
	w.mu.Lock()
	w.pending[dev.Name()] = dev
	w.mu.Unlock()
}

// Close stops event delivery. Safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		if w.fsw != nil {
			err = w.fsw.Close()
		}
	})
	return err
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !usbTTYPattern.MatchString(filepath.Base(ev.Name)) {
				continue
			}
			switch {
			case ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Remove):
				w.resync()
			case ev.Op.Has(fsnotify.Chmod):
				w.recheckPending()
			}
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			// Watch errors are transient on /dev; keep going.
		}
	}
}

// resync diffs a fresh enumeration against the previous snapshot and
// forwards attach/detach events for the difference.
func (w *Watcher) resync() {
	descriptors, err := w.catalog.Enumerate()
	if err != nil {
		return
	}

	current := make(map[string]DeviceDescriptor, len(descriptors))
	for _, d := range descriptors {
		current[d.Name] = d
	}

	w.mu.Lock()
	previous := w.known
	w.known = current

	var attached []DeviceDescriptor
	var detached, denied []string
	for name, d := range current {
		if _, ok := previous[name]; !ok {
			attached = append(attached, d)
		}
	}
	for name := range previous {
		if _, ok := current[name]; !ok {
			detached = append(detached, name)
			if _, pending := w.pending[name]; pending {
				denied = append(denied, name)
				delete(w.pending, name)
			}
		}
	}
	w.mu.Unlock()

	for _, d := range attached {
		w.notifier.DeviceAttached(d.Name, d.VendorID, d.ProductID, usbClassFor(d.DriverKind))
	}
	for _, name := range detached {
		w.notifier.DeviceDetached(name)
	}
	// A pending device that disappeared can never be granted.
	for _, name := range denied {
		w.notifier.PermissionDecided(name, false)
	}
}

// recheckPending re-probes devices with outstanding permission requests
// and reports those whose grant came through.
func (w *Watcher) recheckPending() {
	w.mu.Lock()
	var decided []string
	for name, dev := range w.pending {
		if w.platform.HasPermission(dev) {
			decided = append(decided, name)
		}
	}
	for _, name := range decided {
		delete(w.pending, name)
	}
	w.mu.Unlock()

	for _, name := range decided {
		w.notifier.PermissionDecided(name, true)
	}
}

// usbClassFor maps a driver kind to the USB class code reported in
// attach events. CDC-ACM devices carry the communications class; the
// other supported chipsets enumerate as vendor-specific.
func usbClassFor(driverKind string) int {
	if driverKind == "CdcAcm" {
		return 0x02
	}
	return 0xff
}
