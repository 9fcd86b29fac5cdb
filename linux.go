package usbserial

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// baudRates maps supported baud rates to their termios constants.
var baudRates = map[int]uint32{
	1200:    unix.B1200,
	2400:    unix.B2400,
	4800:    unix.B4800,
	9600:    unix.B9600,
	19200:   unix.B19200,
	38400:   unix.B38400,
	57600:   unix.B57600,
	115200:  unix.B115200,
	230400:  unix.B230400,
	460800:  unix.B460800,
	500000:  unix.B500000,
	921600:  unix.B921600,
	1000000: unix.B1000000,
	1500000: unix.B1500000,
	2000000: unix.B2000000,
	3000000: unix.B3000000,
	4000000: unix.B4000000,
}

// IsSupportedBaudRate reports whether rate maps to a termios constant.
func IsSupportedBaudRate(rate int) bool {
	_, ok := baudRates[rate]
	return ok
}

// driverKinds normalizes kernel driver names to chipset driver classes.
var driverKinds = map[string]string{
	"ftdi_sio":   "Ftdi",
	"cdc_acm":    "CdcAcm",
	"cp210x":     "Cp210x",
	"ch341":      "Ch341",
	"ch341-uart": "Ch341",
	"pl2303":     "Prolific",
	"option":     "Option",
}

func driverKindFor(kernelDriver string) string {
	if kind, ok := driverKinds[kernelDriver]; ok {
		return kind
	}
	return "Generic"
}

// LinuxPlatform implements Platform against sysfs for discovery and
// termios for port I/O.
//
// Linux has no interactive permission dialog: access to a device is
// access to its tty nodes, controlled by file modes and group
// membership (typically a udev rule or dialout). HasPermission probes
// the nodes with access(2). RequestPermission is fire-and-forget; the
// grant, if it ever comes, is a mode change a Watcher observes and
// reports through Observer.PermissionDecided.
type LinuxPlatform struct {
	// DevDir is the device node directory, normally /dev.
	DevDir string
	// SysDir is the tty class directory, normally /sys/class/tty.
	SysDir string
}

var _ Platform = (*LinuxPlatform)(nil)

// NewLinuxPlatform returns a platform bound to the standard system
// paths.
func NewLinuxPlatform() *LinuxPlatform {
	return &LinuxPlatform{
		DevDir: "/dev",
		SysDir: "/sys/class/tty",
	}
}

// EnumerateSerialDevices scans the tty class directory for USB-backed
// nodes and groups them by their owning USB device, so a multi-port
// adapter enumerates once with all of its ports.
func (p *LinuxPlatform) EnumerateSerialDevices() ([]Device, error) {
	entries, err := os.ReadDir(p.SysDir)
	if err != nil {
		return nil, err
	}

	byUSBDir := make(map[string]*linuxDevice)
	for _, entry := range entries {
		name := entry.Name()
		if !usbTTYPattern.MatchString(name) {
			continue
		}

		ifaceDir, err := filepath.EvalSymlinks(filepath.Join(p.SysDir, name, "device"))
		if err != nil {
			continue
		}
		usbDir := findUSBDeviceDir(ifaceDir)
		if usbDir == "" {
			continue
		}

		dev, ok := byUSBDir[usbDir]
		if !ok {
			vendorID, err := parseHexID(readSysfsFile(filepath.Join(usbDir, "idVendor")))
			if err != nil {
				continue
			}
			productID, err := parseHexID(readSysfsFile(filepath.Join(usbDir, "idProduct")))
			if err != nil {
				continue
			}
			dev = &linuxDevice{
				name:      usbDeviceNodeName(usbDir),
				vendorID:  vendorID,
				productID: productID,
				driver:    driverKindFor(kernelDriverName(ifaceDir)),
			}
			byUSBDir[usbDir] = dev
		}
		dev.ports = append(dev.ports, &linuxPort{path: filepath.Join(p.DevDir, name), fd: -1})
	}

	devices := make([]Device, 0, len(byUSBDir))
	for _, dev := range byUSBDir {
		sort.Slice(dev.ports, func(i, j int) bool {
			return dev.ports[i].(*linuxPort).path < dev.ports[j].(*linuxPort).path
		})
		devices = append(devices, dev)
	}
	sort.Slice(devices, func(i, j int) bool {
		return devices[i].Name() < devices[j].Name()
	})
	return devices, nil
}

// HasPermission reports whether every tty node of the device is
// readable and writable by this process.
func (p *LinuxPlatform) HasPermission(dev Device) bool {
	ports := dev.Ports()
	if len(ports) == 0 {
		return accessible(dev.Name())
	}
	for _, port := range ports {
		lp, ok := port.(*linuxPort)
		if !ok || !accessible(lp.path) {
			return false
		}
	}
	return true
}

// RequestPermission returns immediately. There is nowhere to push the
// request on Linux; the decision is a later mode change on the device
// nodes, delivered out-of-band by a Watcher.
func (p *LinuxPlatform) RequestPermission(dev Device) {}

// OpenConnection verifies the device is still present and returns a
// connection claim on it. The tty layer has no separate connection
// object, so the claim carries no descriptor of its own; the port open
// does the actual work.
func (p *LinuxPlatform) OpenConnection(dev Device) (Connection, error) {
	ld, ok := dev.(*linuxDevice)
	if !ok {
		return nil, fmt.Errorf("device handle is not a linux device")
	}
	if !fileExists(ld.name) && !anyPortNodeExists(ld.ports) {
		return nil, fmt.Errorf("device %s is gone", ld.name)
	}
	return &linuxConnection{device: ld.name}, nil
}

func accessible(path string) bool {
	return unix.Access(path, unix.R_OK|unix.W_OK) == nil
}

func anyPortNodeExists(ports []Port) bool {
	for _, port := range ports {
		if lp, ok := port.(*linuxPort); ok && fileExists(lp.path) {
			return true
		}
	}
	return false
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// readSysfsFile returns the trimmed contents of a sysfs attribute, or
// an empty string when it cannot be read.
func readSysfsFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func parseHexID(s string) (uint16, error) {
	if s == "" {
		return 0, fmt.Errorf("missing id attribute")
	}
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, err
	}
	return uint16(v), nil
}

// findUSBDeviceDir walks up from a USB interface directory to the
// device directory carrying the idVendor/idProduct attributes.
func findUSBDeviceDir(dir string) string {
	for ; dir != "/" && dir != "."; dir = filepath.Dir(dir) {
		if fileExists(filepath.Join(dir, "idVendor")) && fileExists(filepath.Join(dir, "idProduct")) {
			return dir
		}
	}
	return ""
}

// kernelDriverName resolves the driver symlink of a USB interface.
func kernelDriverName(ifaceDir string) string {
	target, err := filepath.EvalSymlinks(filepath.Join(ifaceDir, "driver"))
	if err != nil {
		return ""
	}
	return filepath.Base(target)
}

// usbDeviceNodeName derives the usbfs node path for the device from its
// bus and device numbers, falling back to the sysfs directory name.
func usbDeviceNodeName(usbDir string) string {
	bus, err1 := strconv.Atoi(readSysfsFile(filepath.Join(usbDir, "busnum")))
	devnum, err2 := strconv.Atoi(readSysfsFile(filepath.Join(usbDir, "devnum")))
	if err1 != nil || err2 != nil {
		return filepath.Base(usbDir)
	}
	return fmt.Sprintf("/dev/bus/usb/%03d/%03d", bus, devnum)
}

// linuxDevice is an enumerated USB serial device.
type linuxDevice struct {
	name      string
	vendorID  uint16
	productID uint16
	driver    string
	ports     []Port
}

var _ Device = (*linuxDevice)(nil)

func (d *linuxDevice) Name() string       { return d.name }
func (d *linuxDevice) VendorID() uint16   { return d.vendorID }
func (d *linuxDevice) ProductID() uint16  { return d.productID }
func (d *linuxDevice) DriverKind() string { return d.driver }
func (d *linuxDevice) Ports() []Port      { return d.ports }

// linuxConnection is a liveness claim on a device.
type linuxConnection struct {
	device string

	mu     sync.Mutex
	closed bool
}

var _ Connection = (*linuxConnection)(nil)

func (c *linuxConnection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// linuxPort is one tty node of a USB serial device.
type linuxPort struct {
	path string

	mu   sync.Mutex
	fd   int
	open bool
}

var _ Port = (*linuxPort)(nil)

// Open opens the tty node in non-blocking mode; read/write deadlines
// are enforced with poll(2) rather than VMIN/VTIME.
func (p *linuxPort) Open(conn Connection) error {
	if _, ok := conn.(*linuxConnection); !ok {
		return fmt.Errorf("connection handle is not a linux connection")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.open {
		return fmt.Errorf("port %s already open", p.path)
	}

	fd, err := unix.Open(p.path, unix.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK, 0)
	if err != nil {
		return fmt.Errorf("failed to open %s: %v", p.path, err)
	}
	p.fd = fd
	p.open = true
	return nil
}

// SetParameters configures the line for raw I/O at the requested
// parameters.
func (p *linuxPort) SetParameters(baudRate, dataBits, stopBits int, parity Parity) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.open {
		return fmt.Errorf("port %s is not open", p.path)
	}

	termios, err := unix.IoctlGetTermios(p.fd, unix.TCGETS)
	if err != nil {
		return fmt.Errorf("failed to get termios: %v", err)
	}

	// Raw mode. Timeouts live in poll(2), so VMIN/VTIME stay zero.
	termios.Cflag = unix.CREAD | unix.CLOCAL
	termios.Iflag = 0
	termios.Oflag = 0
	termios.Lflag = 0
	termios.Cc[unix.VMIN] = 0
	termios.Cc[unix.VTIME] = 0

	switch dataBits {
	case 5:
		termios.Cflag |= unix.CS5
	case 6:
		termios.Cflag |= unix.CS6
	case 7:
		termios.Cflag |= unix.CS7
	case 8:
		termios.Cflag |= unix.CS8
	default:
		return fmt.Errorf("unsupported data bits %d", dataBits)
	}

	switch stopBits {
	case 1:
	case 2:
		termios.Cflag |= unix.CSTOPB
	default:
		return fmt.Errorf("unsupported stop bits %d", stopBits)
	}

	switch parity {
	case ParityNone:
	case ParityOdd:
		termios.Cflag |= unix.PARENB | unix.PARODD
	case ParityEven:
		termios.Cflag |= unix.PARENB
	default:
		return fmt.Errorf("unsupported parity %d", parity)
	}

	baud, ok := baudRates[baudRate]
	if !ok {
		return ErrInvalidBaudRate
	}
	termios.Cflag |= baud
	termios.Ispeed = baud
	termios.Ospeed = baud

	if err := unix.IoctlSetTermios(p.fd, unix.TCSETS, termios); err != nil {
		return fmt.Errorf("failed to set termios: %v", err)
	}
	return nil
}

// Read waits up to timeout for data and returns between 0 and maxLen
// bytes. An empty result with a nil error means nothing arrived in
// time.
func (p *linuxPort) Read(maxLen int, timeout time.Duration) ([]byte, error) {
	p.mu.Lock()
	fd, open := p.fd, p.open
	p.mu.Unlock()
	if !open {
		return nil, fmt.Errorf("port %s is not open", p.path)
	}

	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining < 0 {
			remaining = 0
		}

		fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		n, err := unix.Poll(fds, int(remaining.Milliseconds()))
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return nil, err
		}
		if n == 0 {
			// No data within the timeout.
			return []byte{}, nil
		}

		buf := make([]byte, maxLen)
		rn, err := unix.Read(fd, buf)
		if err == unix.EAGAIN {
			if !time.Now().Before(deadline) {
				return []byte{}, nil
			}
			continue
		}
		if err != nil {
			return nil, err
		}
		if rn < 0 {
			rn = 0
		}
		return buf[:rn], nil
	}
}

// Write transfers data, waiting up to timeout for the line to accept
// it, and returns the number of bytes written. A deadline expiring
// mid-transfer yields a short count without an error.
func (p *linuxPort) Write(data []byte, timeout time.Duration) (int, error) {
	p.mu.Lock()
	fd, open := p.fd, p.open
	p.mu.Unlock()
	if !open {
		return 0, fmt.Errorf("port %s is not open", p.path)
	}

	deadline := time.Now().Add(timeout)
	written := 0
	for written < len(data) {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}

		fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLOUT}}
		n, err := unix.Poll(fds, int(remaining.Milliseconds()))
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return written, err
		}
		if n == 0 {
			break
		}

		wn, err := unix.Write(fd, data[written:])
		if err == unix.EAGAIN {
			continue
		}
		if err != nil {
			return written, err
		}
		written += wn
	}
	return written, nil
}

// Close releases the file descriptor. Closing an unopened port is a
// no-op.
func (p *linuxPort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.open {
		return nil
	}
	err := unix.Close(p.fd)
	p.fd = -1
	p.open = false
	return err
}
