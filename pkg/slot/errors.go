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

import "errors"

var (
	// ErrNotSupported is returned when software key attributes cannot be
	// satisfied by a slot's hardware configuration. This is a normal outcome
	// during slot search, not an exceptional condition: the caller tries the
	// next slot or reports "operation not supported" upward.
	ErrNotSupported = errors.New("slot: key attributes not supported by slot configuration")

	// ErrNotPermitted is returned when attempting to change the status of a
	// locked slot, or to transition into the locked status through the
	// ordinary status path. Locking is a privileged hardware operation.
	ErrNotPermitted = errors.New("slot: status change not permitted")

	// ErrAlreadyClaimed is returned when claiming a slot whose reference
	// count is already nonzero. The caller must pick another slot.
	ErrAlreadyClaimed = errors.New("slot: already claimed")

	// ErrNoFreeSlot is returned by the table when no free slot is compatible
	// with the requested key attributes.
	ErrNoFreeSlot = errors.New("slot: no free compatible slot")

	// ErrInvalidSlot is returned when a slot number is outside the table.
	ErrInvalidSlot = errors.New("slot: invalid slot number")

	// ErrUnknownStatus is returned when a slot status string is not recognized.
	ErrUnknownStatus = errors.New("slot: unknown status")

	// ErrUnknownHardwareKeyType is returned when a hardware key type string
	// is not recognized.
	ErrUnknownHardwareKeyType = errors.New("slot: unknown hardware key type")
)
