package components

import (
	"fmt"
	"strings"

	"github.com/allbin/go-usbserial/internal/tui/colors"
	"github.com/allbin/go-usbserial/internal/tui/styles"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type SendingMode int

const (
	SendingModeASCII SendingMode = iota
	SendingModeHex
)

func (s SendingMode) String() string {
	switch s {
	case SendingModeASCII:
		return "ASCII"
	case SendingModeHex:
		return "HEX"
	default:
		return "ASCII"
	}
}

type Input struct {
	textInput     textinput.Model
	sendingMode   SendingMode
	history       []string
	historyIndex  int
	currentInput  string // Stored while navigating history
	terminalWidth int
}

func NewInput(placeholder string) *Input {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 256
	ti.Prompt = "" // Prompt styling is handled in the view
	ti.Focus()

	return &Input{
		textInput:    ti,
		sendingMode:  SendingModeASCII,
		history:      make([]string, 0),
		historyIndex: -1,
		currentInput: "",
	}
}

func (i *Input) SetWidth(width int) {
	i.terminalWidth = width
	// Account for: border(2) + padding(2) + prompt(1) + space(1)
	usableWidth := width - 6
	if usableWidth < 20 {
		usableWidth = 20
	}
	i.textInput.Width = usableWidth
}

func (i *Input) Focus() {
	i.textInput.Focus()
}

func (i *Input) Blur() {
	i.textInput.Blur()
}

func (i *Input) Value() string {
	return i.textInput.Value()
}

func (i *Input) SetValue(value string) {
	i.textInput.SetValue(value)
}

func (i *Input) ToggleSendingMode() {
	switch i.sendingMode {
	case SendingModeASCII:
		i.sendingMode = SendingModeHex
		i.textInput.Placeholder = "Enter hex (e.g. 48656C6C6F or 48 65 6C 6C 6F)..."
	case SendingModeHex:
		i.sendingMode = SendingModeASCII
		i.textInput.Placeholder = "Type message and press Enter to send..."
	}
}

func (i *Input) GetSendingMode() SendingMode {
	return i.sendingMode
}

func (i *Input) Update(msg tea.Msg) (*Input, tea.Cmd) {
	var cmd tea.Cmd
	i.textInput, cmd = i.textInput.Update(msg)
	return i, cmd
}

func (i *Input) View() string {
	sendModeIndicator := lipgloss.NewStyle().
		Foreground(colors.Night3).
		Render(fmt.Sprintf("[%s] ", i.sendingMode.String()))

	inputView := styles.InputStyle.Render(i.textInput.View())

	return lipgloss.JoinHorizontal(lipgloss.Left, sendModeIndicator, inputView)
}

func (i *Input) ViewWithMode(inputMode string, isInsertMode bool) string {
	var promptStyle lipgloss.Style
	var inputContent string

	var promptSymbol string
	if i.sendingMode == SendingModeHex {
		promptSymbol = "#"
		promptStyle = lipgloss.NewStyle().
			Foreground(colors.Yellow).
			Bold(true)
	} else {
		promptSymbol = ">"
		promptStyle = lipgloss.NewStyle().
			Foreground(colors.Green).
			Bold(true)
	}

	styledPrompt := promptStyle.Render(promptSymbol)

	if isInsertMode {
		inputField := i.textInput.View()
		inputContent = lipgloss.JoinHorizontal(lipgloss.Left, styledPrompt, " ", inputField)
	} else {
		instruction := lipgloss.NewStyle().
			Foreground(colors.Night3).
			Render("Press 'i' to enter insert mode")
		inputContent = lipgloss.JoinHorizontal(lipgloss.Left, styledPrompt, " ", instruction)
	}

	// RoundedBorder adds 2 characters, padding adds 2 more
	adjustedWidth := i.terminalWidth - 4
	if adjustedWidth < 10 {
		adjustedWidth = 10
	}

	inputStyle := styles.InputStyle.Copy().
		Width(adjustedWidth).
		AlignHorizontal(lipgloss.Left)

	if isInsertMode {
		inputStyle = inputStyle.
			BorderForeground(colors.Green)
	}

	return inputStyle.Render(inputContent)
}

// AddToHistory adds a command to the history if it's not empty or a duplicate
func (i *Input) AddToHistory(command string) {
	command = strings.TrimSpace(command)
	if command == "" {
		return
	}

	if len(i.history) > 0 && i.history[len(i.history)-1] == command {
		return
	}

	i.history = append(i.history, command)

	// Keep only the last 100 commands
	if len(i.history) > 100 {
		i.history = i.history[1:]
	}

	i.historyIndex = -1
	i.currentInput = ""
}

// NavigateHistoryUp moves up in command history
func (i *Input) NavigateHistoryUp() {
	if len(i.history) == 0 {
		return
	}

	if i.historyIndex == -1 {
		i.currentInput = i.textInput.Value()
		i.historyIndex = len(i.history) - 1
	} else if i.historyIndex > 0 {
		i.historyIndex--
	}

	i.textInput.SetValue(i.history[i.historyIndex])
}

// NavigateHistoryDown moves down in command history
func (i *Input) NavigateHistoryDown() {
	if len(i.history) == 0 || i.historyIndex == -1 {
		return
	}

	if i.historyIndex < len(i.history)-1 {
		i.historyIndex++
		i.textInput.SetValue(i.history[i.historyIndex])
	} else {
		i.historyIndex = -1
		i.textInput.SetValue(i.currentInput)
		i.currentInput = ""
	}
}
