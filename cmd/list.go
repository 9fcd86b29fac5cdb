/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	usbserial "github.com/allbin/go-usbserial"
	"github.com/charmbracelet/lipgloss"
	"github.com/evertras/bubble-table/table"
	"github.com/spf13/cobra"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List attached USB serial devices",
	Long: `List USB serial devices in enumeration order.

The index shown in the first column is the device index used by the
other commands. Indices are assigned per enumeration, so a device that
is unplugged and replugged may come back at a different position.

Examples:
  usbserial list
  usbserial list --table
  usbserial list --filter ftdi`,
	Run: func(cmd *cobra.Command, args []string) {
		catalog := usbserial.NewCatalog(newPlatform())
		devices, err := catalog.Enumerate()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing devices: %v\n", err)
			os.Exit(1)
		}

		filterKind, _ := cmd.Flags().GetString("filter")
		tableFormat, _ := cmd.Flags().GetBool("table")

		filtered := filterDevices(devices, filterKind)
		if len(filtered) == 0 {
			if filterKind != "" {
				fmt.Printf("No USB serial devices found matching filter: %s\n", filterKind)
			} else {
				fmt.Println("No USB serial devices found")
			}
			return
		}

		if tableFormat {
			renderTable(filtered)
		} else {
			renderSimple(filtered)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringP("filter", "f", "", "Filter by driver kind: ftdi, cdcacm, cp210x, ch341, prolific, option, generic")
	listCmd.Flags().BoolP("table", "t", false, "Display output in a styled table format")
}

// filterDevices filters the device list on driver kind
func filterDevices(devices []usbserial.DeviceDescriptor, filterKind string) []usbserial.DeviceDescriptor {
	if filterKind == "" || strings.EqualFold(filterKind, "all") {
		return devices
	}

	var filtered []usbserial.DeviceDescriptor
	for _, dev := range devices {
		if strings.EqualFold(dev.DriverKind, filterKind) {
			filtered = append(filtered, dev)
		}
	}
	return filtered
}

// renderTable renders the device list in a styled table format
func renderTable(devices []usbserial.DeviceDescriptor) {
	fmt.Printf("Found %d USB serial device(s):\n\n", len(devices))

	columns := []table.Column{
		table.NewColumn("index", "#", 4),
		table.NewColumn("name", "Device", 24),
		table.NewColumn("id", "VID:PID", 10),
		table.NewColumn("driver", "Driver", 10),
		table.NewColumn("ports", "Ports", 6),
	}

	rows := make([]table.Row, 0, len(devices))
	for i, dev := range devices {
		rows = append(rows, table.NewRow(table.RowData{
			"index":  i,
			"name":   dev.Name,
			"id":     fmt.Sprintf("%04x:%04x", dev.VendorID, dev.ProductID),
			"driver": dev.DriverKind,
			"ports":  dev.PortCount,
		}))
	}

	t := table.New(columns).
		WithRows(rows).
		BorderRounded().
		WithBaseStyle(lipgloss.NewStyle().
			BorderForeground(lipgloss.Color("240")).
			Align(lipgloss.Left))

	fmt.Println(t.View())
}

// renderSimple renders the device list in simple text format
func renderSimple(devices []usbserial.DeviceDescriptor) {
	for i, dev := range devices {
		ports := "port"
		if dev.PortCount != 1 {
			ports = "ports"
		}
		fmt.Printf("%d: %s %04x:%04x %s (%d %s)\n",
			i, dev.Name, dev.VendorID, dev.ProductID, dev.DriverKind, dev.PortCount, ports)
	}
}
