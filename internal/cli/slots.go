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
	"strconv"

	"github.com/spf13/cobra"
)

// slotsCmd displays the slot table
var slotsCmd = &cobra.Command{
	Use:   "slots",
	Short: "Display the secure element slot table",
	Long: `Display each physical slot's hardware configuration summary,
lifecycle status, and reference count.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			handleError(err)
		}
		p, err := buildProvider(cfg)
		if err != nil {
			handleError(err)
		}
		printer := NewPrinter(outputFormat, os.Stdout)
		if err := printer.PrintSlotTable(p.Table().Snapshot()); err != nil {
			handleError(err)
		}
	},
}

// slotsLockCmd marks a slot as hardware-locked
var slotsLockCmd = &cobra.Command{
	Use:   "lock <slot>",
	Short: "Mark a slot as hardware-locked (irreversible)",
	Long: `Mark a slot as under hardware-level permanent protection. This is
the privileged locking path; a locked slot never changes status again.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			handleError(fmt.Errorf("invalid slot number %q", args[0]))
		}
		cfg, err := loadConfig()
		if err != nil {
			handleError(err)
		}
		p, err := buildProvider(cfg)
		if err != nil {
			handleError(err)
		}
		if err := p.Table().HardwareLock(n); err != nil {
			handleError(err)
		}
		printer := NewPrinter(outputFormat, os.Stdout)
		_ = printer.PrintMessage(fmt.Sprintf("Slot %d locked", n))
	},
}

// probeCmd checks which slots could host a described key
var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Probe slot compatibility for a described key",
	Long: `Run the compatibility check of the described key attributes against
every free slot without claiming anything. Reports the slot numbers that
could legally host the key.`,
	Run: func(cmd *cobra.Command, args []string) {
		attrs, err := attributesFromFlags(cmd, "probe")
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
		printer := NewPrinter(outputFormat, os.Stdout)
		if err := printer.PrintProbeResult(p.Table().Probe(attrs)); err != nil {
			handleError(err)
		}
	},
}

func init() {
	addAttributeFlags(probeCmd)
	slotsCmd.AddCommand(slotsLockCmd)
}
