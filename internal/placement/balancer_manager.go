package placement

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/Sh00ty/fleet-monitor/internal/models"
	"github.com/Sh00ty/fleet-monitor/pkg/monitor"
)

// balancerManager owns one balancer's listeners: it finds or creates a
// listener that can take the fleet.
type balancerManager struct {
	balancer *models.Balancer
	binder   *targetGroupBinder
	prov     Provisioner
	quotas   Quotas
}

func newBalancerManager(balancer *models.Balancer, prov Provisioner, quotas Quotas) *balancerManager {
	return &balancerManager{
		balancer: balancer,
		binder:   newTargetGroupBinder(prov, quotas),
		prov:     prov,
		quotas:   quotas,
	}
}

func (m *balancerManager) place(
	ctx context.Context,
	fleet monitor.Fleet,
	hc monitor.ResolvedHealthCheckConfig,
	limits []monitor.Limit,
) (models.Stats, *models.Listener, *models.TargetGroup, error) {
	// Balancer-wide quotas bound the eventual addition no matter which
	// listener takes it, so they are checked once per call against the
	// pre-placement stats, before touching any child.
	maxTargets := m.quotas.effective(QuotaTargetsPerBalancer, limits)
	if m.balancer.Stats.TargetCount+fleet.Capacity > maxTargets {
		return models.Stats{}, nil, nil, &CapacityExhaustedError{
			Quota: QuotaTargetsPerBalancer,
			Limit: maxTargets,
		}
	}
	maxGroups := m.quotas.effective(QuotaTargetGroupsPerBalancer, limits)
	if m.balancer.Stats.TargetGroupCount+1 > maxGroups {
		return models.Stats{}, nil, nil, &CapacityExhaustedError{
			Quota: QuotaTargetGroupsPerBalancer,
			Limit: maxGroups,
		}
	}

	// First fit over listeners in creation order.
	for _, listener := range m.balancer.Listeners {
		delta, targetGroup, err := m.binder.bind(ctx, m.balancer, listener, fleet, hc, limits)
		if err != nil {
			if IsCapacityExhausted(err) {
				continue
			}
			return models.Stats{}, nil, nil, err
		}
		m.balancer.Stats.Merge(delta)
		return delta, listener, targetGroup, nil
	}

	maxListeners := m.quotas.effective(QuotaListenersPerBalancer, limits)
	if m.balancer.Stats.ListenerCount+1 > maxListeners {
		return models.Stats{}, nil, nil, &CapacityExhaustedError{
			Quota: QuotaListenersPerBalancer,
			Limit: maxListeners,
		}
	}

	port := m.balancer.BasePort + uint16(len(m.balancer.Listeners))
	listenerID, err := m.prov.CreateListener(ctx, fleet.ScopeRef, m.balancer.ID, port)
	if err != nil {
		return models.Stats{}, nil, nil, fmt.Errorf(
			"failed to create listener on port %d of balancer %s: %w",
			port, m.balancer.ID, err,
		)
	}
	listener := &models.Listener{
		ID:   listenerID,
		Port: port,
	}
	m.balancer.Listeners = append(m.balancer.Listeners, listener)

	created := models.Stats{ListenerCount: 1}
	m.balancer.Stats.Merge(created)

	log.Debug().Msgf(
		"opened listener %s on port %d of balancer %s for fleet %s",
		listenerID, port, m.balancer.ID, fleet.ID,
	)

	// A brand-new listener has zero target groups, a bind failure here
	// is not an expected capacity outcome and is not caught.
	delta, targetGroup, err := m.binder.bind(ctx, m.balancer, listener, fleet, hc, limits)
	if err != nil {
		return models.Stats{}, nil, nil, err
	}
	m.balancer.Stats.Merge(delta)

	created.Merge(delta)
	return created, listener, targetGroup, nil
}
