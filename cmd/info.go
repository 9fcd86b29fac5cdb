/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"
	"strconv"

	usbserial "github.com/allbin/go-usbserial"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info <device-index>",
	Short: "Show details for a USB serial device",
	Long: `Show detailed information about the device at the given enumeration
index, including its USB identifiers, driver kind, port count and
whether this process currently has permission to use it.

Example usage:
  usbserial info 0`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		index, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid device index %q\n", args[0])
			os.Exit(1)
		}

		platform := newPlatform()
		catalog := usbserial.NewCatalog(platform)

		dev, err := catalog.DeviceAt(index)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		labelStyle := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			Width(12)

		grantedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("40")).Bold(true)
		deniedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)

		permission := deniedStyle.Render("not granted")
		if platform.HasPermission(dev) {
			permission = grantedStyle.Render("granted")
		}

		fmt.Printf("%s %s\n", labelStyle.Render("Device:"), dev.Name())
		fmt.Printf("%s %04x:%04x\n", labelStyle.Render("VID:PID:"), dev.VendorID(), dev.ProductID())
		fmt.Printf("%s %s\n", labelStyle.Render("Driver:"), dev.DriverKind())
		fmt.Printf("%s %d\n", labelStyle.Render("Ports:"), len(dev.Ports()))
		fmt.Printf("%s %s\n", labelStyle.Render("Permission:"), permission)
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
