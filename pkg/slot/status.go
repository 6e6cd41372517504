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

package slot

import (
	"fmt"
	"strings"
)

// Status is the software-visible lifecycle status of a slot.
type Status string

const (
	// StatusFree marks a slot that is unclaimed and eligible for binding.
	StatusFree Status = "free"

	// StatusBusy marks a slot claimed by a logical key. A busy slot may be
	// released back to free.
	StatusBusy Status = "busy"

	// StatusLocked marks a slot under hardware-level permanent protection.
	// Locked is terminal: no further status change is ever permitted.
	StatusLocked Status = "locked"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// IsValid returns true if the status is recognized.
func (s Status) IsValid() bool {
	switch s {
	case StatusFree, StatusBusy, StatusLocked:
		return true
	default:
		return false
	}
}

// ParseStatus converts a string to a Status.
// Returns ErrUnknownStatus if the string is not a valid status.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
	return st, nil
}
