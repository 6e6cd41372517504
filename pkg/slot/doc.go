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

// Package slot manages the physical key slots of a secure element chip.
//
// Each slot is pre-provisioned at manufacture time with an immutable
// hardware configuration: a fixed interpretation of the slot contents
// (SHA/text, AES, or P-256 ECC), MAC and secrecy restrictions, and
// public-key export permissions. Software requests keys in the portable
// attribute model of pkg/types; this package decides whether a requested
// key can legally be bound to a slot and tracks each slot's
// claim/release/lock lifecycle so that at most one logical key is bound to
// a slot at a time.
//
// The compatibility verdict is the conjunction of three independent
// predicates over disjoint concerns:
//
//   - key type: which hardware slot type may host the software key type
//   - usage flags: export/copy and signing permissions against the slot's
//     pub_info and ECC privacy flags
//   - permitted algorithm: the fixed capability matrix of the chip
//
// Incompatibility is reported as ErrNotSupported, a routine outcome while
// the allocator probes candidate slots, never a fault.
//
// KeySlot entities perform no I/O and carry no locks; the owning Table
// serializes all lifecycle sequences under one mutex. No operation in this
// package blocks or performs a cryptographic computation.
package slot
