/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	usbserial "github.com/allbin/go-usbserial"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch for USB serial hotplug events",
	Long: `Watch for USB serial devices being attached and detached.

Prints a timestamped line for every attach, detach and permission
decision observed on the device node directory. Runs until interrupted
(Ctrl+C).

Example usage:
  usbserial watch
  usbserial watch --device-dir /dev`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runWatch(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

// printingObserver writes each device event as a styled line.
type printingObserver struct {
	attachStyle lipgloss.Style
	detachStyle lipgloss.Style
	grantStyle  lipgloss.Style
	denyStyle   lipgloss.Style
	timeStyle   lipgloss.Style
}

func newPrintingObserver() *printingObserver {
	return &printingObserver{
		attachStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("40")).Bold(true),
		detachStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		grantStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("40")),
		denyStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		timeStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
	}
}

func (o *printingObserver) stamp() string {
	return o.timeStyle.Render(fmt.Sprintf("[%s]", time.Now().Format("15:04:05")))
}

func (o *printingObserver) DeviceAttached(e usbserial.AttachEvent) {
	fmt.Printf("%s %s %s %04x:%04x class 0x%02x\n",
		o.stamp(), o.attachStyle.Render("ATTACHED"), e.Name, e.VendorID, e.ProductID, e.DeviceClass)
}

func (o *printingObserver) DeviceDetached(name string) {
	fmt.Printf("%s %s %s\n", o.stamp(), o.detachStyle.Render("DETACHED"), name)
}

func (o *printingObserver) AppLaunchedByDevice(e usbserial.LaunchEvent) {
	fmt.Printf("%s %s %s %04x:%04x driver %s\n",
		o.stamp(), o.attachStyle.Render("LAUNCHED"), e.Name, e.VendorID, e.ProductID, e.DriverName)
}

func (o *printingObserver) PermissionDecided(name string, granted bool) {
	if granted {
		fmt.Printf("%s %s %s\n", o.stamp(), o.grantStyle.Render("GRANTED"), name)
	} else {
		fmt.Printf("%s %s %s\n", o.stamp(), o.denyStyle.Render("DENIED"), name)
	}
}

func runWatch() error {
	notifier := usbserial.NewNotifier(newPrintingObserver())

	watcher, err := usbserial.NewWatcher(newPlatform(), notifier, viper.GetString("device-dir"))
	if err != nil {
		return err
	}
	if err := watcher.Start(); err != nil {
		return err
	}
	defer watcher.Close()

	fmt.Fprintf(os.Stderr, "Watching %s for USB serial devices\n", viper.GetString("device-dir"))
	fmt.Fprintf(os.Stderr, "Press Ctrl+C to stop\n\n")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	fmt.Fprintf(os.Stderr, "\nStopping watch...\n")
	return nil
}
