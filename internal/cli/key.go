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

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// keyCmd represents the key command
var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage logical key bindings",
	Long:  `Bind, inspect, and release logical keys against the slot table`,
}

// keyCreateCmd binds a new logical key to a compatible slot
var keyCreateCmd = &cobra.Command{
	Use:   "create <cn>",
	Short: "Bind a new logical key to a compatible free slot",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		attrs, err := attributesFromFlags(cmd, args[0])
		if err != nil {
			handleError(err)
		}
		cfg, err := loadConfig()
		if err != nil {
			handleError(err)
		}
		p, err := buildProvider(cfg)
		if err != nil {
			handleError(err)
		}
		binding, err := p.Create(attrs)
		if err != nil {
			handleError(err)
		}
		printer := NewPrinter(outputFormat, os.Stdout)
		if err := printer.PrintBinding(binding); err != nil {
			handleError(err)
		}
	},
}

// keyListCmd lists all bindings
var keyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all logical key bindings",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			handleError(err)
		}
		p, err := buildProvider(cfg)
		if err != nil {
			handleError(err)
		}
		bindings, err := p.List()
		if err != nil {
			handleError(err)
		}
		printer := NewPrinter(outputFormat, os.Stdout)
		if err := printer.PrintBindingList(bindings); err != nil {
			handleError(err)
		}
	},
}

// keyInfoCmd shows one binding
var keyInfoCmd = &cobra.Command{
	Use:   "info <cn>",
	Short: "Show the binding for a logical key",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			handleError(err)
		}
		p, err := buildProvider(cfg)
		if err != nil {
			handleError(err)
		}
		binding, err := p.Get(args[0])
		if err != nil {
			handleError(err)
		}
		printer := NewPrinter(outputFormat, os.Stdout)
		if err := printer.PrintBinding(binding); err != nil {
			handleError(err)
		}
	},
}

// keyDestroyCmd releases a binding
var keyDestroyCmd = &cobra.Command{
	Use:   "destroy <cn>",
	Short: "Release the slot bound to a logical key",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			handleError(err)
		}
		p, err := buildProvider(cfg)
		if err != nil {
			handleError(err)
		}
		if err := p.Destroy(args[0]); err != nil {
			handleError(err)
		}
		printer := NewPrinter(outputFormat, os.Stdout)
		_ = printer.PrintMessage(fmt.Sprintf("Binding %s destroyed", args[0]))
	},
}

func init() {
	addAttributeFlags(keyCreateCmd)
	keyCmd.AddCommand(keyCreateCmd)
	keyCmd.AddCommand(keyListCmd)
	keyCmd.AddCommand(keyInfoCmd)
	keyCmd.AddCommand(keyDestroyCmd)
}
