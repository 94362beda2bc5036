// Package observability aggregates runtime counters for the reporter.
package observability

import "sync/atomic"

// Stats is a point-in-time snapshot of the counters.
type Stats struct {
	EventsSeen      uint64
	StaleEvents     uint64
	UnknownChats    uint64
	Allowed         uint64
	Removed         uint64
	Timeouts        uint64
	PendingRecovers uint64
	ActionsFailed   uint64
	ActionsDropped  uint64
}

// Metrics holds atomic counters updated from the hot path. Reads and
// writes never block event processing.
type Metrics struct {
	eventsSeen      atomic.Uint64
	staleEvents     atomic.Uint64
	unknownChats    atomic.Uint64
	allowed         atomic.Uint64
	removed         atomic.Uint64
	timeouts        atomic.Uint64
	pendingRecovers atomic.Uint64
	actionsFailed   atomic.Uint64
	actionsDropped  atomic.Uint64
}

func NewMetrics() *Metrics { return &Metrics{} }

func (m *Metrics) IncrEventsSeen()      { m.eventsSeen.Add(1) }
func (m *Metrics) IncrStaleEvents()     { m.staleEvents.Add(1) }
func (m *Metrics) IncrUnknownChats()    { m.unknownChats.Add(1) }
func (m *Metrics) IncrAllowed()         { m.allowed.Add(1) }
func (m *Metrics) IncrRemoved()         { m.removed.Add(1) }
func (m *Metrics) IncrTimeouts()        { m.timeouts.Add(1) }
func (m *Metrics) IncrPendingRecovers() { m.pendingRecovers.Add(1) }
func (m *Metrics) IncrActionsFailed()   { m.actionsFailed.Add(1) }
func (m *Metrics) IncrActionsDropped()  { m.actionsDropped.Add(1) }

func (m *Metrics) Snapshot() Stats {
	return Stats{
		EventsSeen:      m.eventsSeen.Load(),
		StaleEvents:     m.staleEvents.Load(),
		UnknownChats:    m.unknownChats.Load(),
		Allowed:         m.allowed.Load(),
		Removed:         m.removed.Load(),
		Timeouts:        m.timeouts.Load(),
		PendingRecovers: m.pendingRecovers.Load(),
		ActionsFailed:   m.actionsFailed.Load(),
		ActionsDropped:  m.actionsDropped.Load(),
	}
}
