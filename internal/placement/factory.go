package placement

import (
	"context"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog/log"

	"github.com/Sh00ty/fleet-monitor/internal/models"
	"github.com/Sh00ty/fleet-monitor/pkg/monitor"
)

// baseMonitorPort is where the first listener of every balancer binds;
// each next listener on the same balancer takes the next port.
const baseMonitorPort = 8081

// Placement is the full path a fleet was bound under.
type Placement struct {
	Balancer    *models.Balancer
	Listener    *models.Listener
	TargetGroup *models.TargetGroup
}

// PlacementFactory owns the set of balancers of one monitoring domain
// and is the entry point of the allocator. It is not safe for
// concurrent use: a planning pass that runs domains in parallel gives
// each domain its own factory.
type PlacementFactory struct {
	prov     Provisioner
	quotas   Quotas
	managers []*balancerManager
}

// NewPlacementFactory creates a factory backed by the given
// provisioner. A nil quota table means the platform defaults.
func NewPlacementFactory(prov Provisioner, quotas Quotas) *PlacementFactory {
	if quotas == nil {
		quotas = DefaultQuotas()
	}
	return &PlacementFactory{
		prov:   prov,
		quotas: quotas,
	}
}

// Place binds the fleet under the first balancer, listener and target
// group with capacity left, creating resources lazily when every
// existing one is saturated. Created resources are never rolled back.
func (f *PlacementFactory) Place(
	ctx context.Context,
	fleet monitor.Fleet,
	hcCfg monitor.HealthCheckConfig,
	limits []monitor.Limit,
) (Placement, error) {
	if err := fleet.Validate(); err != nil {
		return Placement{}, fmt.Errorf("refusing to place fleet: %w", err)
	}
	hc := monitor.ResolveHealthCheckConfig(hcCfg)

	for _, manager := range f.managers {
		_, listener, targetGroup, err := manager.place(ctx, fleet, hc, limits)
		if err != nil {
			if IsCapacityExhausted(err) {
				log.Debug().Msgf(
					"balancer %s has no room for fleet %s: %v",
					manager.balancer.ID, fleet.ID, err,
				)
				continue
			}
			return Placement{}, err
		}
		return newPlacement(manager.balancer, listener, targetGroup), nil
	}

	// Every existing balancer is saturated (or there are none yet).
	// Balancer count is unbounded from this subsystem's perspective.
	name := balancerName(fleet.ScopeRef, len(f.managers))
	balancerID, err := f.prov.CreateBalancer(ctx, fleet.ScopeRef, name)
	if err != nil {
		return Placement{}, fmt.Errorf("failed to create balancer %s: %w", name, err)
	}
	balancer := &models.Balancer{
		ID:       balancerID,
		Name:     name,
		Scope:    fleet.ScopeRef,
		BasePort: baseMonitorPort,
	}
	manager := newBalancerManager(balancer, f.prov, f.quotas)
	f.managers = append(f.managers, manager)

	log.Info().Msgf("opened balancer %s (%s) for fleet %s", balancerID, name, fleet.ID)

	_, listener, targetGroup, err := manager.place(ctx, fleet, hc, limits)
	if err != nil {
		if IsCapacityExhausted(err) {
			// The fleet alone does not fit an empty balancer, no
			// amount of new balancers can place it. Not wrapped so
			// callers cannot match it as a capacity outcome.
			return Placement{}, fmt.Errorf(
				"fleet %s does not fit an empty balancer: %v", fleet.ID, err,
			)
		}
		return Placement{}, err
	}
	return newPlacement(balancer, listener, targetGroup), nil
}

func newPlacement(
	balancer *models.Balancer,
	listener *models.Listener,
	targetGroup *models.TargetGroup,
) Placement {
	if balancer == nil || listener == nil || targetGroup == nil {
		panic(fmt.Sprintf(
			"placement finished without a full balancer/listener/target-group path: %v/%v/%v",
			balancer, listener, targetGroup,
		))
	}
	return Placement{
		Balancer:    balancer,
		Listener:    listener,
		TargetGroup: targetGroup,
	}
}

// balancerName derives a deterministic, length-bounded name from the
// monitoring domain and the balancer's ordinal in it.
func balancerName(scope string, ordinal int) string {
	return fmt.Sprintf("monitor-lb-%08x-%d", uint32(xxhash.Sum64String(scope)), ordinal)
}
