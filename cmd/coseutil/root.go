package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/argon-chat/cbor-cose.go/internal/logging"
)

var (
	cfgFile string
	verbose bool
	cfg     *Config
)

// NewRootCommand builds the coseutil root command and wires every
// subcommand (diagnose, keygen, sign1, verify1), mirroring the
// persistent-flags-plus-cobra.OnInitialize layout this ecosystem's
// COSE-based CLIs use for their own config loading.
func NewRootCommand(version string) *cobra.Command {
	root := &cobra.Command{
		Use:          "coseutil",
		Short:        "Inspect, sign, and verify CBOR and COSE messages",
		Version:      version,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./coseutil.yaml)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	cobra.OnInitialize(initConfig)

	root.AddCommand(newDiagnoseCommand())
	root.AddCommand(newKeygenCommand())
	root.AddCommand(newSign1Command())
	root.AddCommand(newVerify1Command())

	return root
}

func initConfig() {
	if verbose {
		logging.SetLevel(logrus.DebugLevel)
	}
	if cfgFile == "" {
		if _, err := os.Stat("coseutil.yaml"); err == nil {
			cfgFile = "coseutil.yaml"
		}
	}
	if cfgFile != "" {
		var err error
		cfg, err = LoadConfig(cfgFile)
		if err != nil && verbose {
			fmt.Fprintf(os.Stderr, "warning: failed to load config: %v\n", err)
		}
	}
}
