/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	usbserial "github.com/allbin/go-usbserial"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send [data] <device-index>",
	Short: "Send data to a USB serial device",
	Long: `Send data to a USB serial device addressed by enumeration index.

Data can be provided as:
- Command line argument: usbserial send "Hello World" 0
- From stdin (pipe): echo "test data" | usbserial send 0
- Interactive mode: usbserial send 0 (prompts for input)

The device must be permitted for this process. If the open reports a
pending permission, grant access to the device nodes (typically a udev
rule or dialout group membership) and retry.

Example usage:
  usbserial send "Hello World" 0
  usbserial send "AT+GMR" 0 --newline
  echo "test" | usbserial send 0
  usbserial send "0206000300000099" 0 --hex --port 1`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		var data string
		var indexArg string

		// Parse arguments: either "send data index" or "send index"
		if len(args) == 1 {
			indexArg = args[0]
			stat, err := os.Stdin.Stat()
			if err != nil || (stat.Mode()&os.ModeCharDevice) != 0 {
				// No pipe input, use interactive mode
				data = promptForData()
			} else {
				stdinData, err := io.ReadAll(os.Stdin)
				if err != nil {
					fmt.Fprintf(os.Stderr, "Error reading from stdin: %v\n", err)
					os.Exit(1)
				}
				data = strings.TrimRight(string(stdinData), "\r\n")
			}
		} else {
			data = args[0]
			indexArg = args[1]
		}

		deviceIndex, err := strconv.Atoi(indexArg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid device index %q\n", indexArg)
			os.Exit(1)
		}

		baudRate, _ := cmd.Flags().GetInt("baud")
		portIndex, _ := cmd.Flags().GetInt("port")
		addNewline, _ := cmd.Flags().GetBool("newline")
		hexMode, _ := cmd.Flags().GetBool("hex")
		timeout, _ := cmd.Flags().GetDuration("timeout")

		if hexMode {
			processedData, err := parseHexString(data)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Invalid hex data: %v\n", err)
				os.Exit(1)
			}
			data = processedData
		}

		if addNewline && !hexMode {
			data += "\n"
		}

		if err := sendData(deviceIndex, portIndex, baudRate, data, timeout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().IntP("baud", "b", 9600, "Baud rate")
	sendCmd.Flags().IntP("port", "p", 0, "Port index on the device")
	sendCmd.Flags().BoolP("newline", "n", false, "Add newline character to the end of data")
	sendCmd.Flags().BoolP("hex", "x", false, "Interpret data as hexadecimal (e.g., '48656c6c6f' for 'Hello')")
	sendCmd.Flags().DurationP("timeout", "t", 5*time.Second, "Timeout for sending data")
}

func promptForData() string {
	promptStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99"))

	fmt.Print(promptStyle.Render("Enter data to send: "))

	scanner := bufio.NewScanner(os.Stdin)
	if scanner.Scan() {
		return scanner.Text()
	}
	return ""
}

func parseHexString(hexStr string) (string, error) {
	// Remove common hex prefixes and whitespace
	hexStr = strings.ReplaceAll(hexStr, " ", "")
	hexStr = strings.ReplaceAll(hexStr, "0x", "")
	hexStr = strings.ReplaceAll(hexStr, "0X", "")

	if len(hexStr)%2 != 0 {
		return "", fmt.Errorf("hex string must have even length")
	}

	var result strings.Builder
	for i := 0; i < len(hexStr); i += 2 {
		hexByte := hexStr[i : i+2]
		var b byte
		if _, err := fmt.Sscanf(hexByte, "%x", &b); err != nil {
			return "", fmt.Errorf("invalid hex byte '%s': %v", hexByte, err)
		}
		result.WriteByte(b)
	}

	return result.String(), nil
}

func sendData(deviceIndex, portIndex, baudRate int, data string, timeout time.Duration) error {
	infoStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("99")).
		Bold(true)

	successStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("40")).
		Bold(true)

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("196")).
		Bold(true)

	session, err := usbserial.NewSession(newPlatform(), usbserial.WithBaudRate(baudRate))
	if err != nil {
		return fmt.Errorf("%s %v", errorStyle.Render("✗"), err)
	}

	fmt.Printf("%s Opening device %d port %d...\n", infoStyle.Render("⚡"), deviceIndex, portIndex)

	if err := session.Open(deviceIndex, portIndex); err != nil {
		if errors.Is(err, usbserial.ErrPermissionPending) {
			return fmt.Errorf("%s permission pending, grant access to the device and retry", errorStyle.Render("✗"))
		}
		return fmt.Errorf("%s %v", errorStyle.Render("✗"), err)
	}
	defer session.Close()

	fmt.Printf("%s Connected successfully\n", successStyle.Render("✓"))

	fmt.Printf("%s Sending %d bytes...\n", infoStyle.Render("📤"), len(data))

	n, err := session.Write([]byte(data), timeout)
	if err != nil {
		var partial *usbserial.PartialWriteError
		if errors.As(err, &partial) {
			return fmt.Errorf("%s short write: %d of %d bytes sent", errorStyle.Render("✗"), partial.Written, partial.Requested)
		}
		return fmt.Errorf("%s failed to send data: %v", errorStyle.Render("✗"), err)
	}

	fmt.Printf("%s Successfully sent %d bytes\n", successStyle.Render("✓"), n)

	// Show data preview (first 50 chars)
	preview := data
	if len(preview) > 50 {
		preview = preview[:50] + "..."
	}
	preview = strings.Map(func(r rune) rune {
		if r < 32 || r > 126 {
			return '·'
		}
		return r
	}, preview)

	fmt.Printf("%s Data: %s\n", infoStyle.Render("📋"), preview)

	return nil
}
