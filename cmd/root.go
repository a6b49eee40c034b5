// Package cmd holds the command line interface of soilsim.
package cmd

import (
	"errors"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"soilsim/calculator"
)

var (
	configFile string

	// Config holds the solver configuration read at startup.
	Config calculator.Config
)

// RootCmd is the main command.
var RootCmd = &cobra.Command{
	Use:   "soilsim",
	Short: "A layered soil heat and gas diffusion engine.",
	Long: `soilsim advances soil temperature with freeze and thaw, and oxygen and methane
in the pore space, through a layered soil column once per simulated day.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return Startup(configFile)
	},
}

// Startup reads the configuration file. A missing file leaves the defaults in place.
func Startup(configFile string) error {
	var err error
	Config, err = calculator.LoadConfig(configFile)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func init() {
	RootCmd.AddCommand(serveCmd, runCmd)

	RootCmd.PersistentFlags().StringVar(&configFile, "config", "./conf/config.ini", "configuration file location")
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
