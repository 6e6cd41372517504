// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-secureelement.
//
// go-secureelement is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package cli implements the slotctl operator command line: inspection of
// the slot table, compatibility probing, and binding management. It sits
// one layer above the slot manager core, in place of the request dispatcher
// a full deployment would run.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-secureelement/internal/config"
	"github.com/jeremyhahn/go-secureelement/pkg/logging"
	"github.com/jeremyhahn/go-secureelement/pkg/provider"
	"github.com/jeremyhahn/go-secureelement/pkg/slot"
)

var (
	configFile       string
	provisioningFile string
	outputFormat     string
	verbose          bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "slotctl",
	Short: "slotctl - secure element key slot management tool",
	Long: `slotctl inspects and manages the key slots of a secure element chip.

The slot table is built from a provisioning file describing each slot's
immutable hardware configuration. slotctl can display the table, probe
which slots are compatible with a requested key, and bind or release
logical keys against the table.

slotctl never performs a cryptographic operation; it manages slot
admissibility and bookkeeping state only.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default is slotctl.yaml in the working directory)")
	rootCmd.PersistentFlags().StringVar(&provisioningFile, "provisioning", "",
		"slot provisioning file (overrides the config file setting)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text",
		"output format (text, json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"verbose output")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(slotsCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(keyCmd)
}

// loadConfig loads the deployment configuration, falling back to defaults
// when no config file is given.
func loadConfig() (*config.Config, error) {
	if configFile == "" {
		if _, err := os.Stat("slotctl.yaml"); err == nil {
			configFile = "slotctl.yaml"
		}
	}
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if provisioningFile != "" {
		cfg.Provisioning.File = provisioningFile
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

// buildProvider constructs the slot table and provider from the
// configuration, replaying any persisted bindings.
func buildProvider(cfg *config.Config) (*provider.Provider, error) {
	if cfg.Provisioning.File == "" {
		return nil, fmt.Errorf("no provisioning file configured (use --provisioning)")
	}
	configs, err := config.LoadProvisioning(cfg.Provisioning.File)
	if err != nil {
		return nil, err
	}
	logger := logging.NewLogger(cfg.Debug())
	table := slot.NewTable(configs, logger)
	store, err := cfg.CreateStorage()
	if err != nil {
		return nil, err
	}
	p := provider.New(table, store, logger)
	if err := p.Restore(); err != nil {
		return nil, err
	}
	return p, nil
}

// handleError prints an error and exits with code 1
func handleError(err error) {
	printer := NewPrinter(outputFormat, os.Stderr)
	_ = printer.PrintError(err)
	os.Exit(1)
}
