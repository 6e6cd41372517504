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

// Package metrics provides Prometheus instrumentation for slot management
// operations: compatibility verdicts, allocation outcomes, and the current
// distribution of slot statuses.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Namespace is the Prometheus namespace for all secure element metrics
	Namespace = "secureelement"

	// Label names
	LabelOperation = "operation"
	LabelStatus    = "status"
	LabelVerdict   = "verdict"
	LabelSlot      = "slot"

	// Status values
	StatusSuccess = "success"
	StatusError   = "error"

	// Verdict values for compatibility checks
	VerdictCompatible   = "compatible"
	VerdictNotSupported = "not_supported"

	// Operation names
	OpAllocate     = "allocate"
	OpRelease      = "release"
	OpHardwareLock = "hardware_lock"
	OpCreate       = "create"
	OpDestroy      = "destroy"
)

var (
	// CompatibilityChecksTotal counts compatibility checks by verdict.
	// A not_supported verdict is part of normal slot search, not a failure.
	CompatibilityChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "compatibility_checks_total",
			Help:      "Total number of slot compatibility checks by verdict",
		},
		[]string{LabelVerdict},
	)

	// OperationsTotal counts slot table and provider operations by outcome.
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "operations_total",
			Help:      "Total number of slot operations by type and status",
		},
		[]string{LabelOperation, LabelStatus},
	)

	// SlotsByStatus tracks the current number of slots in each lifecycle status.
	SlotsByStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "slots",
			Help:      "Current number of slots by lifecycle status",
		},
		[]string{LabelStatus},
	)

	// BindingsActive tracks the number of logical keys currently bound to slots.
	BindingsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "bindings_active",
			Help:      "Number of logical keys currently bound to slots",
		},
	)
)

// RecordOperation increments the operation counter with a success/error status.
func RecordOperation(operation string, err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	OperationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordCompatibilityCheck increments the compatibility check counter.
func RecordCompatibilityCheck(compatible bool) {
	verdict := VerdictCompatible
	if !compatible {
		verdict = VerdictNotSupported
	}
	CompatibilityChecksTotal.WithLabelValues(verdict).Inc()
}
