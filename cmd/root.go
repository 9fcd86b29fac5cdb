/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"os"

	usbserial "github.com/allbin/go-usbserial"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "usbserial",
	Short: "Work with USB serial devices by enumeration index",
	Long: `usbserial enumerates USB serial adapters and talks to their ports.

Devices are addressed by their position in a fresh enumeration rather
than by device node path, so the same command line works regardless of
which ttyUSB number the kernel hands out. Use 'usbserial list' to see
the current ordering.

Supported adapters include FTDI, CDC-ACM (Arduino and friends), CP210x,
CH341, Prolific and cellular modem ports.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.usbserial.yaml)")
	rootCmd.PersistentFlags().String("device-dir", "/dev", "device node directory")
	rootCmd.PersistentFlags().String("sys-dir", "/sys/class/tty", "tty class directory")

	viper.BindPFlag("device-dir", rootCmd.PersistentFlags().Lookup("device-dir"))
	viper.BindPFlag("sys-dir", rootCmd.PersistentFlags().Lookup("sys-dir"))
	viper.SetDefault("baud", 9600)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".usbserial" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".usbserial")
	}

	viper.SetEnvPrefix("usbserial")
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	viper.ReadInConfig()
}

// newPlatform builds the platform from the configured directories.
func newPlatform() *usbserial.LinuxPlatform {
	return &usbserial.LinuxPlatform{
		DevDir: viper.GetString("device-dir"),
		SysDir: viper.GetString("sys-dir"),
	}
}
