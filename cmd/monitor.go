/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	usbserial "github.com/allbin/go-usbserial"
	"github.com/allbin/go-usbserial/internal/tui/components"
	"github.com/allbin/go-usbserial/internal/tui/keys"
	"github.com/allbin/go-usbserial/internal/tui/models"
	"github.com/allbin/go-usbserial/internal/tui/styles"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// monitorCmd represents the monitor command
var monitorCmd = &cobra.Command{
	Use:   "monitor <device-index>",
	Short: "Monitor a USB serial device with bidirectional communication",
	Long: `Monitor a USB serial device with an interactive terminal interface.

This command opens the device at the given enumeration index and
provides real-time bidirectional communication. Features include:
- Real-time data streaming with timestamps
- Input field for sending data
- ASCII and hex display modes
- Connection status indicators
- Configurable baud rate and port index

Example usage:
  usbserial monitor 0
  usbserial monitor 0 --baud 115200
  usbserial monitor 0 --port 1`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		deviceIndex, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid device index %q\n", args[0])
			os.Exit(1)
		}

		baudRate, _ := cmd.Flags().GetInt("baud")
		portIndex, _ := cmd.Flags().GetInt("port")

		if err := runMonitorTUI(deviceIndex, portIndex, baudRate); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(monitorCmd)

	monitorCmd.Flags().IntP("baud", "b", 9600, "Baud rate")
	monitorCmd.Flags().IntP("port", "p", 0, "Port index on the device")
}

// monitorModel represents the Bubble Tea model for the monitor command
type monitorModel struct {
	*models.SessionModel
	terminal  *components.Terminal
	statusBar *components.StatusBar
	input     *components.Input
	help      help.Model
	keys      keys.MonitorKeys
}

func runMonitorTUI(deviceIndex, portIndex, baudRate int) error {
	target := fmt.Sprintf("device %d:%d", deviceIndex, portIndex)

	sessionInfo := &components.SessionInfo{
		DeviceIndex: deviceIndex,
		PortIndex:   portIndex,
		BaudRate:    baudRate,
		DataBits:    8,
		StopBits:    1,
		Parity:      usbserial.ParityNone,
	}

	// Initial model with minimal dimensions; WindowSizeMsg sets the real size
	sessionModel := models.NewSessionModel(deviceIndex, portIndex)
	m := monitorModel{
		SessionModel: sessionModel,
		terminal:     components.NewTerminal(0, 0),
		statusBar:    components.NewStatusBar("USB Serial Monitor", target),
		input:        components.NewInput("Type message and press Enter to send..."),
		help:         help.New(),
		keys:         keys.NewMonitorKeys(),
	}
	m.statusBar.SetConnecting()
	m.statusBar.SetSessionInfo(sessionInfo)

	p := tea.NewProgram(&m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	// Open the session in the background
	go func() {
		session, err := usbserial.NewSession(newPlatform(), usbserial.WithBaudRate(baudRate))
		if err != nil {
			p.Send(models.ConnectionStatusMsg{Connected: false, Error: err})
			return
		}

		if err := session.Open(deviceIndex, portIndex); err != nil {
			pending := errors.Is(err, usbserial.ErrPermissionPending)
			p.Send(models.ConnectionStatusMsg{Connected: false, PermissionPending: pending, Error: err})
			return
		}

		m.SetSession(session)

		p.Send(models.ConnectionStatusMsg{Connected: true, Error: nil})

		// Read loop; the session is closed when this goroutine exits
		go func() {
			defer session.Close()

			for {
				select {
				case <-m.GetContext().Done():
					return
				default:
					data, err := session.Read(1024, 250*time.Millisecond)
					if err != nil {
						if m.GetContext().Err() != nil {
							return
						}
						continue
					}
					if len(data) > 0 {
						p.Send(components.DataReceivedMsg{
							Timestamp: time.Now(),
							Data:      data,
						})
					}
				}
			}
		}()
	}()

	_, err := p.Run()

	m.Cancel()
	return err
}

func (m *monitorModel) Init() tea.Cmd {
	return nil
}

// parseHexInput converts hex strings to bytes. Supports both:
// - Space-separated: "48 65 6C 6C 6F"
// - Continuous: "48656C6C6F"
func parseHexInput(hexStr string) ([]byte, error) {
	cleanHex := strings.ReplaceAll(strings.TrimSpace(hexStr), " ", "")
	if len(cleanHex) == 0 {
		return nil, fmt.Errorf("empty input")
	}

	for _, char := range cleanHex {
		if !((char >= '0' && char <= '9') || (char >= 'A' && char <= 'F') || (char >= 'a' && char <= 'f')) {
			return nil, fmt.Errorf("invalid hex character '%c'", char)
		}
	}

	if len(cleanHex)%2 != 0 {
		return nil, fmt.Errorf("hex string must have even number of digits (got %d)", len(cleanHex))
	}

	bytes := make([]byte, 0, len(cleanHex)/2)
	for i := 0; i < len(cleanHex); i += 2 {
		hexByte := cleanHex[i : i+2]
		b, err := strconv.ParseUint(hexByte, 16, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid hex byte '%s': %v", hexByte, err)
		}
		bytes = append(bytes, byte(b))
	}
	return bytes, nil
}

func (m *monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// Input area height (includes border)
		inputHeight := 3
		statusBarHeight := 1
		verticalMarginHeight := inputHeight + statusBarHeight

		m.terminal.SetSize(msg.Width, msg.Height-verticalMarginHeight)
		m.input.SetWidth(msg.Width)
		m.statusBar.SetWidth(msg.Width)
		m.SetReady(true)

	case models.ConnectionStatusMsg:
		m.SetConnected(msg.Connected)
		if msg.Error != nil {
			m.SetError(msg.Error)
			if msg.PermissionPending {
				m.statusBar.SetPermissionPending()
			} else {
				m.statusBar.SetDisconnected(msg.Error)
			}
		} else {
			m.statusBar.SetConnected()
			m.input.Focus()
		}

	case components.DataReceivedMsg:
		if m.IsReady() {
			m.AddRawData(msg)
			m.terminal.AddMessage(msg)
		}

	case tea.KeyMsg:
		if m.IsInInsertMode() {
			// Insert mode: handle input and escape
			switch {
			case key.Matches(msg, m.keys.Escape):
				m.SetInputMode(models.InputModeNormal)
				m.input.Blur()
				return m, tea.Batch(cmds...)
			case key.Matches(msg, m.keys.Enter):
				session := m.GetSession()
				if m.input.Value() != "" && session != nil {
					inputStr := m.input.Value()
					var dataToSend []byte
					var displayData []byte
					var err error

					switch m.input.GetSendingMode() {
					case components.SendingModeASCII:
						dataToSend = []byte(inputStr + "\n")
						displayData = []byte(inputStr)
					case components.SendingModeHex:
						dataToSend, err = parseHexInput(inputStr)
						if err != nil {
							errorData := components.DataReceivedMsg{
								Timestamp: time.Now(),
								Data:      []byte(fmt.Sprintf("Invalid hex input: %v", err)),
								IsTX:      false,
							}
							m.terminal.AddMessage(errorData)
							return m, tea.Batch(cmds...)
						}
						displayData = dataToSend
					}

					// Write in the background and report the final status
					cmds = append(cmds, func() tea.Msg {
						_, err := session.Write(dataToSend, 5*time.Second)
						finalStatus := components.DataReceivedMsg{
							Timestamp: time.Now(),
							Data:      displayData,
							IsTX:      true,
						}
						var partial *usbserial.PartialWriteError
						switch {
						case errors.As(err, &partial):
							finalStatus.Status = "PARTIAL"
						case err != nil:
							finalStatus.Status = "ERROR"
						default:
							finalStatus.Status = "WRITTEN"
						}
						return finalStatus
					})

					// Show immediately as PENDING
					txData := components.DataReceivedMsg{
						Timestamp: time.Now(),
						Data:      displayData,
						IsTX:      true,
						Status:    "PENDING",
					}
					m.AddRawData(txData)
					m.terminal.AddMessage(txData)

					m.input.AddToHistory(inputStr)
					m.input.SetValue("")
				}
				return m, tea.Batch(cmds...)
			case key.Matches(msg, m.keys.Up):
				m.input.NavigateHistoryUp()
				return m, tea.Batch(cmds...)
			case key.Matches(msg, m.keys.Down):
				m.input.NavigateHistoryDown()
				return m, tea.Batch(cmds...)
			case key.Matches(msg, m.keys.ToggleSendMode):
				m.input.ToggleSendingMode()
				return m, tea.Batch(cmds...)
			}
		} else {
			// Normal mode: navigation and mode switching
			switch {
			case key.Matches(msg, m.keys.Quit):
				m.Cleanup()
				return m, tea.Quit

			case key.Matches(msg, m.keys.InsertMode):
				m.SetInputMode(models.InputModeInsert)
				m.input.Focus()
				return m, tea.Batch(cmds...)

			case key.Matches(msg, m.keys.Clear):
				m.ClearData()
				m.terminal.Clear()

			case key.Matches(msg, m.keys.Help):
				m.help.ShowAll = !m.help.ShowAll

			case key.Matches(msg, m.keys.ToggleHex):
				m.terminal.ToggleHex()
				m.terminal.RefreshDisplayWithRawData(m.GetRawData())

			case key.Matches(msg, m.keys.ToggleASCII):
				m.terminal.ToggleASCII()
				m.terminal.RefreshDisplayWithRawData(m.GetRawData())

			case key.Matches(msg, m.keys.ToggleSendMode):
				m.input.ToggleSendingMode()
			}
		}
	}

	// Update components (input only in insert mode)
	var cmd tea.Cmd
	if m.IsInInsertMode() {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	switch msg.(type) {
	case tea.WindowSizeMsg:
		_, cmd = m.terminal.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *monitorModel) View() string {
	var content string
	if m.IsReady() {
		content = m.terminal.View()
	} else {
		content = "Initializing..."
	}

	inputMode := m.GetInputMode().String()
	isInsertMode := m.IsInInsertMode()
	input := m.input.ViewWithMode(inputMode, isInsertMode)

	sendingMode := m.input.GetSendingMode().String()
	timestamp := time.Now().Format("15:04:05")

	terminalWidth := 80
	if m.IsReady() {
		terminalWidth = m.terminal.GetViewport().Width
	}
	m.statusBar.SetWidth(terminalWidth)

	statusBar := m.statusBar.ComprehensiveStatusBar(inputMode, sendingMode, m.IsConnected(), timestamp)

	contentWithBorder := styles.ContentBorderStyle.Render(content)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		contentWithBorder,
		input,
		statusBar,
	)
}
