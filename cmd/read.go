/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	usbserial "github.com/allbin/go-usbserial"
	"github.com/spf13/cobra"
)

// readCmd represents the read command
var readCmd = &cobra.Command{
	Use:   "read <device-index>",
	Short: "Read data from a USB serial device",
	Long: `Read incoming data from a USB serial device and write it to stdout.

Runs continuously until interrupted (Ctrl+C). Each read waits up to the
poll timeout; an empty poll is not an error, the loop simply continues.

With --count the command exits after the given number of bytes has been
received.

Example usage:
  usbserial read 0
  usbserial read 0 --baud 115200 --port 1
  usbserial read 0 --hex
  usbserial read 0 --count 64 > dump.bin`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		deviceIndex, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid device index %q\n", args[0])
			os.Exit(1)
		}

		baudRate, _ := cmd.Flags().GetInt("baud")
		portIndex, _ := cmd.Flags().GetInt("port")
		maxLen, _ := cmd.Flags().GetInt("max-len")
		pollTimeout, _ := cmd.Flags().GetDuration("poll-timeout")
		hexMode, _ := cmd.Flags().GetBool("hex")
		count, _ := cmd.Flags().GetInt("count")

		if err := runRead(deviceIndex, portIndex, baudRate, maxLen, count, pollTimeout, hexMode); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(readCmd)

	readCmd.Flags().IntP("baud", "b", 9600, "Baud rate")
	readCmd.Flags().IntP("port", "p", 0, "Port index on the device")
	readCmd.Flags().Int("max-len", 1024, "Maximum bytes per read")
	readCmd.Flags().Duration("poll-timeout", time.Second, "Timeout per read attempt")
	readCmd.Flags().BoolP("hex", "x", false, "Print data as hex instead of raw bytes")
	readCmd.Flags().IntP("count", "c", 0, "Stop after this many bytes (0 = run until interrupted)")
}

func runRead(deviceIndex, portIndex, baudRate, maxLen, count int, pollTimeout time.Duration, hexMode bool) error {
	session, err := usbserial.NewSession(newPlatform(), usbserial.WithBaudRate(baudRate))
	if err != nil {
		return err
	}

	if err := session.Open(deviceIndex, portIndex); err != nil {
		if errors.Is(err, usbserial.ErrPermissionPending) {
			return fmt.Errorf("permission pending, grant access to the device and retry")
		}
		return err
	}
	defer session.Close()

	// Signal handling for clean shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Fprintf(os.Stderr, "\nReceived interrupt signal, shutting down...\n")
		cancel()
	}()

	fmt.Fprintf(os.Stderr, "Reading from device %d port %d at %d baud\n", deviceIndex, portIndex, baudRate)
	fmt.Fprintf(os.Stderr, "Press Ctrl+C to stop\n\n")

	received := 0
	startTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			duration := time.Since(startTime)
			fmt.Fprintf(os.Stderr, "\nRead complete: %d bytes received in %v\n", received, duration.Round(time.Millisecond))
			return nil
		default:
			data, err := session.Read(maxLen, pollTimeout)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("read error: %w", err)
			}
			if len(data) == 0 {
				// Nothing arrived within the poll timeout
				continue
			}

			received += len(data)
			if hexMode {
				fmt.Printf("% X\n", data)
			} else {
				os.Stdout.Write(data)
			}

			if count > 0 && received >= count {
				duration := time.Since(startTime)
				fmt.Fprintf(os.Stderr, "\nRead complete: %d bytes received in %v\n", received, duration.Round(time.Millisecond))
				return nil
			}
		}
	}
}
