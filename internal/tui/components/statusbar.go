package components

import (
	"fmt"

	usbserial "github.com/allbin/go-usbserial"
	"github.com/allbin/go-usbserial/internal/tui/colors"
	"github.com/allbin/go-usbserial/internal/tui/styles"
	"github.com/charmbracelet/lipgloss"
)

type SessionInfo struct {
	DeviceIndex int
	PortIndex   int
	BaudRate    int
	DataBits    int
	StopBits    int
	Parity      usbserial.Parity
}

type StatusBar struct {
	title       string
	target      string
	status      string
	err         error
	width       int
	sessionInfo *SessionInfo
}

func NewStatusBar(title, target string) *StatusBar {
	return &StatusBar{
		title:  title,
		target: target,
		status: "Initializing...",
	}
}

func (sb *StatusBar) SetStatus(status string, err error) {
	sb.status = status
	sb.err = err
}

func (sb *StatusBar) SetWidth(width int) {
	sb.width = width
}

func (sb *StatusBar) SetSessionInfo(info *SessionInfo) {
	sb.sessionInfo = info
}

func (sb *StatusBar) SetConnecting() {
	sb.status = "Connecting..."
	sb.err = nil
}

func (sb *StatusBar) SetConnected() {
	sb.status = "Connected - listening for data..."
	sb.err = nil
}

func (sb *StatusBar) SetPermissionPending() {
	sb.status = "Waiting for device permission..."
	sb.err = nil
}

func (sb *StatusBar) SetDisconnected(err error) {
	if err != nil {
		sb.status = fmt.Sprintf("Connection failed: %v", err)
		sb.err = err
	} else {
		sb.status = "Disconnected"
		sb.err = nil
	}
}

func parityToString(p usbserial.Parity) string {
	switch p {
	case usbserial.ParityNone:
		return "N"
	case usbserial.ParityEven:
		return "E"
	case usbserial.ParityOdd:
		return "O"
	default:
		return "N"
	}
}

func (sb *StatusBar) ViewAsHeader(connected bool) string {
	title := styles.TitleStyle.Render(sb.target)

	var sessionInfo string
	if sb.sessionInfo != nil {
		sessionInfo = fmt.Sprintf(" | device %d port %d | %d baud, %d%s%d",
			sb.sessionInfo.DeviceIndex,
			sb.sessionInfo.PortIndex,
			sb.sessionInfo.BaudRate,
			sb.sessionInfo.DataBits,
			parityToString(sb.sessionInfo.Parity),
			sb.sessionInfo.StopBits)
	}

	infoStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("243")).
		Faint(true)
	info := infoStyle.Render(sessionInfo)

	return lipgloss.JoinHorizontal(lipgloss.Left, title, info)
}

// ComprehensiveStatusBar renders a full-width status bar with mode, target
// and session details.
func (sb *StatusBar) ComprehensiveStatusBar(inputMode, sendingMode string, connected bool, timestamp string) string {
	terminalWidth := sb.width
	if terminalWidth <= 0 {
		terminalWidth = 80
	}

	// Mode indicator (vim-like)
	var modeStyle lipgloss.Style
	var modeText string
	if inputMode == "INSERT" {
		modeStyle = lipgloss.NewStyle().
			Foreground(colors.Night0).
			Background(colors.Green).
			Bold(true).
			Padding(0, 1)
		modeText = "INSERT"
	} else {
		modeStyle = lipgloss.NewStyle().
			Foreground(colors.Night0).
			Background(colors.Frost2).
			Bold(true).
			Padding(0, 1)
		modeText = "NORMAL"
	}
	mode := modeStyle.Render(modeText)

	// Target device with connection indicator
	targetStyle := lipgloss.NewStyle().
		Foreground(colors.Purple).
		Bold(true).
		Padding(0, 1)
	target := targetStyle.Render(sb.target)

	var connIndicator string
	var connStyle lipgloss.Style

	if sb.err != nil {
		connStyle = lipgloss.NewStyle().Foreground(colors.Red)
		connIndicator = "✗"
	} else if connected {
		connStyle = lipgloss.NewStyle().Foreground(colors.Green)
		connIndicator = "●"
	} else if sb.status == "Connecting..." || sb.status == "Waiting for device permission..." {
		connStyle = lipgloss.NewStyle().Foreground(colors.Yellow)
		connIndicator = "○"
	} else {
		connStyle = lipgloss.NewStyle().Foreground(colors.Red)
		connIndicator = "○"
	}

	connectionIndicator := connStyle.Render(connIndicator)

	// Session parameters
	var sessionDetails string
	if sb.sessionInfo != nil {
		sessionDetails = fmt.Sprintf("⚡ dev %d:%d %d baud %d%s%d",
			sb.sessionInfo.DeviceIndex,
			sb.sessionInfo.PortIndex,
			sb.sessionInfo.BaudRate,
			sb.sessionInfo.DataBits,
			parityToString(sb.sessionInfo.Parity),
			sb.sessionInfo.StopBits)
	} else {
		sessionDetails = "⚡ usbserial"
	}
	detailsStyle := lipgloss.NewStyle().
		Foreground(colors.Snow0).
		Padding(0, 1)
	details := detailsStyle.Render(sessionDetails)

	timeStyle := lipgloss.NewStyle().
		Foreground(colors.Snow1).
		Padding(0, 1)
	clock := timeStyle.Render(timestamp)

	dividerStyle := lipgloss.NewStyle().
		Foreground(colors.Night3).
		Padding(0, 1)
	divider := dividerStyle.Render("│")

	// Sending mode indicator with Tab hint (INSERT mode only)
	var sendingModeInfo string
	if inputMode == "INSERT" {
		sendingModeStyle := lipgloss.NewStyle().
			Foreground(colors.Orange).
			Bold(true).
			Padding(0, 1)
		sendingModeInfo = sendingModeStyle.Render(fmt.Sprintf("[%s] Tab to toggle", sendingMode))
	}

	var leftSide string
	if sendingModeInfo != "" {
		leftSide = lipgloss.JoinHorizontal(lipgloss.Left, mode, target, connectionIndicator, sendingModeInfo, divider)
	} else {
		leftSide = lipgloss.JoinHorizontal(lipgloss.Left, mode, target, connectionIndicator, divider)
	}

	rightSide := lipgloss.JoinHorizontal(lipgloss.Left, details, divider, clock)

	leftWidth := lipgloss.Width(leftSide)
	rightWidth := lipgloss.Width(rightSide)
	spacerWidth := terminalWidth - leftWidth - rightWidth
	if spacerWidth < 1 {
		spacerWidth = 1
	}

	spacer := lipgloss.NewStyle().Width(spacerWidth).Render("")

	statusBarStyle := lipgloss.NewStyle().
		Foreground(colors.Snow1).
		Background(colors.Night1).
		Width(terminalWidth)

	content := lipgloss.JoinHorizontal(lipgloss.Left, leftSide, spacer, rightSide)
	return statusBarStyle.Render(content)
}

func (sb *StatusBar) View(connected bool) string {
	return sb.ViewAsHeader(connected)
}
