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

// Package storage provides the persistence layer for slot-binding metadata.
// Key material never passes through here; only bookkeeping records that
// survive a daemon restart (which logical key is bound to which slot).
package storage

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("storage: record not found")

	// ErrClosed is returned when operating on a closed backend.
	ErrClosed = errors.New("storage: backend closed")
)

// Backend is the storage contract for binding metadata. Implementations
// must be safe for concurrent use.
type Backend interface {
	// Get retrieves the record stored under key.
	// Returns ErrNotFound if the key does not exist.
	Get(key string) ([]byte, error)

	// Put stores the record under key, overwriting any existing record.
	Put(key string, value []byte) error

	// Delete removes the record stored under key.
	// Returns ErrNotFound if the key does not exist.
	Delete(key string) error

	// List returns all keys with the given prefix.
	// If prefix is empty, all keys are returned.
	List(prefix string) ([]string, error)

	// Exists checks whether a record exists under key.
	Exists(key string) (bool, error)

	// Close releases any resources held by the backend.
	Close() error
}
