package models

import (
	"context"
	"sync"

	usbserial "github.com/allbin/go-usbserial"
	"github.com/allbin/go-usbserial/internal/tui/components"
)

// InputMode represents the current input mode (vim-like)
type InputMode int

const (
	InputModeNormal InputMode = iota
	InputModeInsert
)

func (m InputMode) String() string {
	switch m {
	case InputModeNormal:
		return "NORMAL"
	case InputModeInsert:
		return "INSERT"
	default:
		return "NORMAL"
	}
}

type ConnectionStatusMsg struct {
	Connected         bool
	PermissionPending bool
	Error             error
}

type SessionModel struct {
	// Serial session
	session     *usbserial.Session
	deviceIndex int
	portIndex   int

	// State
	connected bool
	rawData   []components.DataReceivedMsg
	err       error
	ready     bool

	// Input mode (vim-like)
	inputMode InputMode

	// Data formatting
	formatter *components.DataFormatter

	// Cancellation and synchronization
	cancel context.CancelFunc
	ctx    context.Context
	mu     sync.RWMutex
}

func NewSessionModel(deviceIndex, portIndex int) *SessionModel {
	ctx, cancel := context.WithCancel(context.Background())

	return &SessionModel{
		deviceIndex: deviceIndex,
		portIndex:   portIndex,
		rawData:     make([]components.DataReceivedMsg, 0),
		inputMode:   InputModeNormal,
		formatter:   components.NewDataFormatter(true, true), // Default: show both hex and ASCII
		ctx:         ctx,
		cancel:      cancel,
	}
}

func (m *SessionModel) GetSession() *usbserial.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session
}

func (m *SessionModel) SetSession(session *usbserial.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = session
}

func (m *SessionModel) DeviceIndex() int {
	return m.deviceIndex
}

func (m *SessionModel) PortIndex() int {
	return m.portIndex
}

func (m *SessionModel) IsConnected() bool {
	return m.connected
}

func (m *SessionModel) SetConnected(connected bool) {
	m.connected = connected
}

func (m *SessionModel) GetError() error {
	return m.err
}

func (m *SessionModel) SetError(err error) {
	m.err = err
}

func (m *SessionModel) IsReady() bool {
	return m.ready
}

func (m *SessionModel) SetReady(ready bool) {
	m.ready = ready
}

func (m *SessionModel) GetRawData() []components.DataReceivedMsg {
	return m.rawData
}

func (m *SessionModel) AddRawData(msg components.DataReceivedMsg) {
	m.rawData = append(m.rawData, msg)
}

func (m *SessionModel) ClearData() {
	m.rawData = make([]components.DataReceivedMsg, 0)
}

func (m *SessionModel) GetFormattedData() []string {
	return m.formatter.FormatMessages(m.rawData)
}

func (m *SessionModel) GetFormatter() *components.DataFormatter {
	return m.formatter
}

func (m *SessionModel) GetInputMode() InputMode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.inputMode
}

func (m *SessionModel) SetInputMode(mode InputMode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inputMode = mode
}

func (m *SessionModel) IsInInsertMode() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.inputMode == InputModeInsert
}

func (m *SessionModel) GetContext() context.Context {
	return m.ctx
}

func (m *SessionModel) Cancel() {
	if m.cancel != nil {
		m.cancel()
	}
}

func (m *SessionModel) Cleanup() {
	if m.cancel != nil {
		m.cancel()
	}

	m.mu.Lock()
	if m.session != nil {
		m.session.Close()
		m.session = nil
	}
	m.mu.Unlock()
}
