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

// Package provider binds logical named keys to physical secure element
// slots. It performs bookkeeping only: slot allocation through the table,
// binding records through the storage backend. No cryptographic operation
// is ever performed here; key generation and use belong to the driver layer
// above.
package provider

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jeremyhahn/go-secureelement/pkg/logging"
	"github.com/jeremyhahn/go-secureelement/pkg/metrics"
	"github.com/jeremyhahn/go-secureelement/pkg/slot"
	"github.com/jeremyhahn/go-secureelement/pkg/storage"
	"github.com/jeremyhahn/go-secureelement/pkg/types"
)

// bindingPrefix namespaces binding records in the storage backend.
const bindingPrefix = "bindings/"

var (
	// ErrBindingExists is returned when creating a binding whose common name
	// is already bound to a slot.
	ErrBindingExists = errors.New("provider: binding already exists")

	// ErrBindingNotFound is returned when the named binding does not exist.
	ErrBindingNotFound = errors.New("provider: binding not found")
)

// Binding records which slot a logical key occupies.
type Binding struct {
	// ID is the unique identifier of the binding.
	ID string `json:"id"`

	// CN is the common name of the bound logical key.
	CN string `json:"cn"`

	// Slot is the physical slot number the key occupies.
	Slot int `json:"slot"`

	// KeyType is the software key type of the bound key.
	KeyType types.KeyType `json:"key_type"`

	// Bits is the key size in bits.
	Bits int `json:"bits"`

	// Algorithm is the permitted algorithm of the bound key.
	Algorithm string `json:"algorithm"`

	// CreatedAt is the binding creation time.
	CreatedAt time.Time `json:"created_at"`
}

// Provider manages slot bindings for one secure element session.
type Provider struct {
	table  *slot.Table
	store  storage.Backend
	logger *logging.Logger
}

// New creates a Provider over the given slot table and binding store.
func New(table *slot.Table, store storage.Backend, logger *logging.Logger) *Provider {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &Provider{
		table:  table,
		store:  store,
		logger: logger,
	}
}

// Create binds a new logical key described by attrs to a compatible free
// slot. Returns ErrBindingExists if the common name is already bound and
// slot.ErrNoFreeSlot if no slot can host the key.
func (p *Provider) Create(attrs *types.KeyAttributes) (*Binding, error) {
	if err := attrs.Validate(); err != nil {
		metrics.RecordOperation(metrics.OpCreate, err)
		return nil, err
	}
	exists, err := p.store.Exists(bindingKey(attrs.CN))
	if err != nil {
		metrics.RecordOperation(metrics.OpCreate, err)
		return nil, err
	}
	if exists {
		metrics.RecordOperation(metrics.OpCreate, ErrBindingExists)
		return nil, fmt.Errorf("%w: %s", ErrBindingExists, attrs.CN)
	}

	n, err := p.table.Allocate(attrs)
	if err != nil {
		metrics.RecordOperation(metrics.OpCreate, err)
		return nil, err
	}

	binding := &Binding{
		ID:        uuid.NewString(),
		CN:        attrs.CN,
		Slot:      n,
		KeyType:   attrs.KeyType,
		Bits:      attrs.Bits,
		Algorithm: attrs.Policy.PermittedAlgorithm.String(),
		CreatedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(binding)
	if err != nil {
		p.rollback(n)
		metrics.RecordOperation(metrics.OpCreate, err)
		return nil, err
	}
	if err := p.store.Put(bindingKey(attrs.CN), data); err != nil {
		p.rollback(n)
		metrics.RecordOperation(metrics.OpCreate, err)
		return nil, fmt.Errorf("provider: persisting binding: %w", err)
	}

	metrics.RecordOperation(metrics.OpCreate, nil)
	metrics.BindingsActive.Inc()
	p.logger.Info("key bound to slot", "cn", attrs.CN, "slot", n, "id", binding.ID)
	return binding, nil
}

// Get retrieves the binding for the named key.
func (p *Provider) Get(cn string) (*Binding, error) {
	data, err := p.store.Get(bindingKey(cn))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrBindingNotFound, cn)
		}
		return nil, err
	}
	var binding Binding
	if err := json.Unmarshal(data, &binding); err != nil {
		return nil, fmt.Errorf("provider: decoding binding %s: %w", cn, err)
	}
	return &binding, nil
}

// List returns all bindings, in storage order.
func (p *Provider) List() ([]*Binding, error) {
	keys, err := p.store.List(bindingPrefix)
	if err != nil {
		return nil, err
	}
	bindings := make([]*Binding, 0, len(keys))
	for _, key := range keys {
		data, err := p.store.Get(key)
		if err != nil {
			return nil, err
		}
		var binding Binding
		if err := json.Unmarshal(data, &binding); err != nil {
			return nil, fmt.Errorf("provider: decoding binding %s: %w", key, err)
		}
		bindings = append(bindings, &binding)
	}
	return bindings, nil
}

// Restore replays persisted bindings into a freshly built slot table,
// re-claiming the slot each binding occupies. Called once after session
// start, before the provider serves requests.
func (p *Provider) Restore() error {
	bindings, err := p.List()
	if err != nil {
		return err
	}
	for _, binding := range bindings {
		if err := p.table.Adopt(binding.Slot); err != nil {
			return fmt.Errorf("provider: restoring binding %s on slot %d: %w",
				binding.CN, binding.Slot, err)
		}
		metrics.BindingsActive.Inc()
	}
	if len(bindings) > 0 {
		p.logger.Info("restored slot bindings", "count", len(bindings))
	}
	return nil
}

// Destroy releases the slot bound to the named key and removes the binding
// record. Destroying a binding on a hardware-locked slot fails with
// slot.ErrNotPermitted; the record is kept so the slot's occupant stays
// known.
func (p *Provider) Destroy(cn string) error {
	binding, err := p.Get(cn)
	if err != nil {
		metrics.RecordOperation(metrics.OpDestroy, err)
		return err
	}
	if err := p.table.Release(binding.Slot); err != nil {
		metrics.RecordOperation(metrics.OpDestroy, err)
		return err
	}
	if err := p.store.Delete(bindingKey(cn)); err != nil && !errors.Is(err, storage.ErrNotFound) {
		metrics.RecordOperation(metrics.OpDestroy, err)
		return err
	}
	metrics.RecordOperation(metrics.OpDestroy, nil)
	metrics.BindingsActive.Dec()
	p.logger.Info("key binding destroyed", "cn", cn, "slot", binding.Slot)
	return nil
}

// Table exposes the underlying slot table for inspection tooling.
func (p *Provider) Table() *slot.Table {
	return p.table
}

// rollback releases a slot after a failed binding persist.
func (p *Provider) rollback(n int) {
	if err := p.table.Release(n); err != nil {
		p.logger.Errorf("rollback of slot %d failed: %v", n, err)
	}
}

func bindingKey(cn string) string {
	return bindingPrefix + cn
}
