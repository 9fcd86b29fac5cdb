package usbserial

import (
	"errors"
	"fmt"
)

// Predefined error types for robust error handling
var (
	ErrPlatformUnavailable = errors.New("usb platform unavailable")
	ErrIndexOutOfRange     = errors.New("device or port index out of range")
	ErrPermissionPending   = errors.New("usb permission pending")
	ErrConnectionFailed    = errors.New("failed to open usb device connection")
	ErrPortOpenFailed      = errors.New("failed to open serial port")
	ErrParameterRejected   = errors.New("serial port rejected line parameters")
	ErrAlreadyOpen         = errors.New("session already has an open port")
	ErrNotOpen             = errors.New("session is not open")
	ErrReadFailed          = errors.New("serial read failed")
	ErrWriteFailed         = errors.New("serial write failed")
	ErrInvalidBaudRate     = errors.New("invalid baud rate")
	ErrInvalidConfig       = errors.New("invalid session configuration")
)

// PartialWriteError reports a write that transferred fewer bytes than
// requested without a driver-level failure. The counts let the caller
// decide whether to resend the remainder.
type PartialWriteError struct {
	Written   int
	Requested int
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("partial write: %d of %d bytes", e.Written, e.Requested)
}
