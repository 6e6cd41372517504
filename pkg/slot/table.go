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
	"sync"

	"github.com/jeremyhahn/go-secureelement/pkg/logging"
	"github.com/jeremyhahn/go-secureelement/pkg/metrics"
	"github.com/jeremyhahn/go-secureelement/pkg/types"
)

// Table owns the KeySlot entities of one secure element session and holds
// the exclusive lock the entities themselves do not: the claim guard and the
// status transition are not atomic with respect to each other, so the whole
// free-check / compatibility-check / claim / status-change sequence for a
// slot runs under the table mutex.
//
// A Table is created once per hardware session from chip-introspected
// provisioning data and torn down together with it; individual slots are
// never destroyed.
type Table struct {
	mu     sync.Mutex
	slots  []*KeySlot
	logger *logging.Logger
}

// SlotInfo is a read-only snapshot of one slot for inspection and display.
type SlotInfo struct {
	Number     int             `json:"number"`
	KeyType    HardwareKeyType `json:"key_type"`
	Status     Status          `json:"status"`
	RefCount   uint8           `json:"ref_count"`
	NoMAC      bool            `json:"no_mac"`
	IsSecret   bool            `json:"is_secret"`
	PubInfo    bool            `json:"pub_info"`
	ECCPrivate bool            `json:"ecc_private"`
}

// NewTable builds a Table from the provisioned slot configurations.
func NewTable(configs []Config, logger *logging.Logger) *Table {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	slots := make([]*KeySlot, len(configs))
	for i, cfg := range configs {
		slots[i] = New(cfg)
	}
	t := &Table{
		slots:  slots,
		logger: logger,
	}
	t.updateStatusGauge()
	logger.Debug("slot table initialized", "slots", len(slots))
	return t
}

// Len returns the number of slots in the table.
func (t *Table) Len() int {
	return len(t.slots)
}

// Allocate finds the first free slot compatible with the requested key
// attributes, claims it, and marks it busy. Returns the slot number, or
// ErrNoFreeSlot when no free slot can host the key. The entire search and
// bind sequence runs under the table lock.
func (t *Table) Allocate(attrs *types.KeyAttributes) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for n, s := range t.slots {
		if !s.IsFree() {
			continue
		}
		err := s.CheckCompatibility(attrs)
		metrics.RecordCompatibilityCheck(err == nil)
		if err != nil {
			continue
		}
		if err := s.Claim(); err != nil {
			// Free but claimed: an external holder still references the
			// slot. Skip it and keep searching.
			t.logger.Debug("skipping claimed slot", "slot", n)
			continue
		}
		if err := s.SetStatus(StatusBusy); err != nil {
			s.releaseClaim()
			continue
		}
		t.updateStatusGauge()
		metrics.RecordOperation(metrics.OpAllocate, nil)
		t.logger.Debug("slot allocated", "slot", n, "attributes", attrs.String())
		return n, nil
	}

	metrics.RecordOperation(metrics.OpAllocate, ErrNoFreeSlot)
	return 0, ErrNoFreeSlot
}

// Release returns a busy slot to circulation: status back to free, claim
// dropped. Releasing a locked slot fails with ErrNotPermitted.
func (t *Table) Release(n int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, err := t.get(n)
	if err != nil {
		metrics.RecordOperation(metrics.OpRelease, err)
		return err
	}
	if err := s.SetStatus(StatusFree); err != nil {
		metrics.RecordOperation(metrics.OpRelease, err)
		return err
	}
	s.releaseClaim()
	t.updateStatusGauge()
	metrics.RecordOperation(metrics.OpRelease, nil)
	t.logger.Debug("slot released", "slot", n)
	return nil
}

// HardwareLock marks a slot as under hardware-level permanent protection.
// This is the privileged locking path; the ordinary SetStatus transition
// never reaches the locked state. Locking is irreversible.
func (t *Table) HardwareLock(n int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, err := t.get(n)
	if err != nil {
		metrics.RecordOperation(metrics.OpHardwareLock, err)
		return err
	}
	s.lockHardware()
	t.updateStatusGauge()
	metrics.RecordOperation(metrics.OpHardwareLock, nil)
	t.logger.Info("slot hardware-locked", "slot", n)
	return nil
}

// Adopt re-binds slot n when replaying persisted bindings into a fresh
// table, claiming the slot and marking it busy. Fails if the slot is
// already claimed or not free.
func (t *Table) Adopt(n int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, err := t.get(n)
	if err != nil {
		return err
	}
	if !s.IsFree() {
		return fmt.Errorf("%w: slot %d is %s", ErrNotPermitted, n, s.Status())
	}
	if err := s.Claim(); err != nil {
		return err
	}
	if err := s.SetStatus(StatusBusy); err != nil {
		s.releaseClaim()
		return err
	}
	t.updateStatusGauge()
	return nil
}

// Probe reports the numbers of all free slots compatible with the requested
// attributes without claiming any of them. Used by operator tooling.
func (t *Table) Probe(attrs *types.KeyAttributes) []int {
	t.mu.Lock()
	defer t.mu.Unlock()

	var compatible []int
	for n, s := range t.slots {
		if !s.IsFree() {
			continue
		}
		if err := s.CheckCompatibility(attrs); err == nil {
			compatible = append(compatible, n)
		}
	}
	return compatible
}

// Snapshot returns a read-only view of every slot in the table.
func (t *Table) Snapshot() []SlotInfo {
	t.mu.Lock()
	defer t.mu.Unlock()

	infos := make([]SlotInfo, len(t.slots))
	for n, s := range t.slots {
		infos[n] = SlotInfo{
			Number:     n,
			KeyType:    s.config.KeyType,
			Status:     s.status,
			RefCount:   s.refCount,
			NoMAC:      s.config.NoMAC,
			IsSecret:   s.config.IsSecret,
			PubInfo:    s.config.PubInfo,
			ECCPrivate: s.config.ECCKeyAttr.IsPrivate,
		}
	}
	return infos
}

// get returns the slot at n or ErrInvalidSlot. Callers hold the table lock.
func (t *Table) get(n int) (*KeySlot, error) {
	if n < 0 || n >= len(t.slots) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSlot, n)
	}
	return t.slots[n], nil
}

// updateStatusGauge refreshes the per-status slot gauge. Callers hold the
// table lock; the table is small enough to recount on every transition.
func (t *Table) updateStatusGauge() {
	counts := map[Status]int{
		StatusFree:   0,
		StatusBusy:   0,
		StatusLocked: 0,
	}
	for _, s := range t.slots {
		counts[s.status]++
	}
	for status, count := range counts {
		metrics.SlotsByStatus.WithLabelValues(status.String()).Set(float64(count))
	}
}
