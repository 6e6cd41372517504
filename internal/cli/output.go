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
	"encoding/json"
	"fmt"
	"io"

	"github.com/jeremyhahn/go-secureelement/pkg/provider"
	"github.com/jeremyhahn/go-secureelement/pkg/slot"
)

// OutputFormat defines the output format type
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
)

// Printer handles formatted output
type Printer struct {
	format OutputFormat
	writer io.Writer
}

// NewPrinter creates a new Printer
func NewPrinter(format string, writer io.Writer) *Printer {
	return &Printer{
		format: OutputFormat(format),
		writer: writer,
	}
}

// PrintSlotTable prints the slot table snapshot
func (p *Printer) PrintSlotTable(infos []slot.SlotInfo) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{"slots": infos})
	case OutputFormatText:
		fmt.Fprintf(p.writer, "%-5s %-14s %-8s %-4s %-7s %-7s %-9s %-8s\n",
			"SLOT", "KEY TYPE", "STATUS", "REFS", "NO-MAC", "SECRET", "PUB-INFO", "ECC-PRIV")
		for _, info := range infos {
			fmt.Fprintf(p.writer, "%-5d %-14s %-8s %-4d %-7t %-7t %-9t %-8t\n",
				info.Number, info.KeyType, info.Status, info.RefCount,
				info.NoMAC, info.IsSecret, info.PubInfo, info.ECCPrivate)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintProbeResult prints the slots compatible with a probe request
func (p *Printer) PrintProbeResult(compatible []int) error {
	switch p.format {
	case OutputFormatJSON:
		if compatible == nil {
			compatible = []int{}
		}
		return p.printJSON(map[string]interface{}{"compatible_slots": compatible})
	case OutputFormatText:
		if len(compatible) == 0 {
			fmt.Fprintln(p.writer, "No free compatible slots")
			return nil
		}
		fmt.Fprintf(p.writer, "Free compatible slots: %v\n", compatible)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintBinding prints a single slot binding
func (p *Printer) PrintBinding(binding *provider.Binding) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(binding)
	case OutputFormatText:
		fmt.Fprintf(p.writer, "CN:        %s\n", binding.CN)
		fmt.Fprintf(p.writer, "ID:        %s\n", binding.ID)
		fmt.Fprintf(p.writer, "Slot:      %d\n", binding.Slot)
		fmt.Fprintf(p.writer, "Key Type:  %s\n", binding.KeyType)
		fmt.Fprintf(p.writer, "Bits:      %d\n", binding.Bits)
		fmt.Fprintf(p.writer, "Algorithm: %s\n", binding.Algorithm)
		fmt.Fprintf(p.writer, "Created:   %s\n", binding.CreatedAt.Format("2006-01-02 15:04:05 MST"))
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintBindingList prints all slot bindings
func (p *Printer) PrintBindingList(bindings []*provider.Binding) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{"bindings": bindings})
	case OutputFormatText:
		if len(bindings) == 0 {
			fmt.Fprintln(p.writer, "No bindings")
			return nil
		}
		fmt.Fprintf(p.writer, "%-20s %-5s %-16s %-6s %s\n", "CN", "SLOT", "KEY TYPE", "BITS", "ALGORITHM")
		for _, b := range bindings {
			fmt.Fprintf(p.writer, "%-20s %-5d %-16s %-6d %s\n", b.CN, b.Slot, b.KeyType, b.Bits, b.Algorithm)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintMessage prints a plain result message
func (p *Printer) PrintMessage(msg string) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{"message": msg})
	case OutputFormatText:
		fmt.Fprintln(p.writer, msg)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintError prints an error
func (p *Printer) PrintError(err error) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{"error": err.Error()})
	default:
		fmt.Fprintf(p.writer, "Error: %v\n", err)
		return nil
	}
}

func (p *Printer) printJSON(v interface{}) error {
	enc := json.NewEncoder(p.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
