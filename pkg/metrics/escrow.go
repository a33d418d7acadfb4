package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/agritrust/agritrust-backend/pkg/enums"
)

// EscrowMetrics records order lifecycle transitions. Admin force releases
// are counted separately from buyer-confirmed releases so the override
// path stays visible in dashboards.
type EscrowMetrics struct {
	transitions  *prometheus.CounterVec
	lockedUnits  prometheus.Counter
	releasedUnit prometheus.Counter
	adminRelease prometheus.Counter
}

// NewEscrowMetrics registers the escrow metrics on the provided registerer.
func NewEscrowMetrics(reg prometheus.Registerer) *EscrowMetrics {
	if reg == nil {
		return &EscrowMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "escrow_transitions_total",
		Help: "Order state machine transitions by resulting event type.",
	}, []string{"event"})
	lockedUnits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "escrow_locked_units_total",
		Help: "Currency units moved into escrow at order placement.",
	})
	releasedUnits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "escrow_released_units_total",
		Help: "Currency units released to sellers.",
	})
	adminReleases := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "escrow_admin_force_releases_total",
		Help: "Releases performed through the admin override path.",
	})
	reg.MustRegister(transitions, lockedUnits, releasedUnits, adminReleases)
	return &EscrowMetrics{
		transitions:  transitions,
		lockedUnits:  lockedUnits,
		releasedUnit: releasedUnits,
		adminRelease: adminReleases,
	}
}

// ObserveTransition counts a completed transition.
func (m *EscrowMetrics) ObserveTransition(event enums.EscrowEventType, amountUnits int64) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(event.String()).Inc()
	switch event {
	case enums.EscrowEventTypeEscrowLocked:
		m.lockedUnits.Add(float64(amountUnits))
	case enums.EscrowEventTypeEscrowReleased:
		m.releasedUnit.Add(float64(amountUnits))
	case enums.EscrowEventTypeAdminForceRelease:
		m.releasedUnit.Add(float64(amountUnits))
		m.adminRelease.Inc()
	}
}
