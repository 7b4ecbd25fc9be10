package planner

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Sh00ty/fleet-monitor/internal/models"
	"github.com/Sh00ty/fleet-monitor/internal/placement"
	"github.com/Sh00ty/fleet-monitor/pkg/monitor"
)

type FleetSource interface {
	GetUnmonitoredFleets(ctx context.Context) ([]monitor.FleetSpec, error)
}

type AssignmentStore interface {
	SaveAssignments(ctx context.Context, assignments []models.Assignment) (int, error)
}

type Notifier interface {
	NotifyFleetPlaced(models.PlacementEvent)
}

// Planner runs one planning pass: fetch fleets without monitoring,
// place each of them, persist the assignments and announce them.
type Planner struct {
	fleets   FleetSource
	store    AssignmentStore
	notifier Notifier
	prov     placement.Provisioner
	quotas   placement.Quotas
	limits   []monitor.Limit
}

func NewPlanner(
	fleets FleetSource,
	store AssignmentStore,
	notifier Notifier,
	prov placement.Provisioner,
	limits []monitor.Limit,
) *Planner {
	return &Planner{
		fleets:   fleets,
		store:    store,
		notifier: notifier,
		prov:     prov,
		quotas:   placement.DefaultQuotas(),
		limits:   limits,
	}
}

func (p *Planner) Run(ctx context.Context) error {
	specs, err := p.fleets.GetUnmonitoredFleets(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch unmonitored fleets: %w", err)
	}
	if len(specs) == 0 {
		log.Info().Msg("every fleet is already monitored, nothing to place")
		return nil
	}

	// One factory per monitoring domain, domains processed in
	// first-seen order. Factories own disjoint balancer trees, so a
	// later parallel rollout needs no coordination between them.
	domains := make([]string, 0, 4)
	byDomain := make(map[string][]monitor.FleetSpec, 4)
	for _, spec := range specs {
		scope := spec.Fleet.ScopeRef
		if _, seen := byDomain[scope]; !seen {
			domains = append(domains, scope)
		}
		byDomain[scope] = append(byDomain[scope], spec)
	}

	assignments := make([]models.Assignment, 0, len(specs))
	events := make([]models.PlacementEvent, 0, len(specs))
	for _, domain := range domains {
		factory := placement.NewPlacementFactory(p.prov, p.quotas)
		for _, spec := range byDomain[domain] {
			placed, err := factory.Place(ctx, spec.Fleet, spec.HealthCheck, p.limits)
			if err != nil {
				return fmt.Errorf("failed to place fleet %s: %w", spec.Fleet.ID, err)
			}
			log.Info().Msgf(
				"placed fleet %s: balancer=%s listener=%s target-group=%s targets=%d",
				spec.Fleet.ID,
				placed.Balancer.ID,
				placed.Listener.ID,
				placed.TargetGroup.ID,
				spec.Fleet.Capacity,
			)
			assignments = append(assignments, models.Assignment{
				Fleet:       spec.Fleet.ID,
				Balancer:    placed.Balancer.ID,
				Listener:    placed.Listener.ID,
				TargetGroup: placed.TargetGroup.ID,
			})
			events = append(events, models.PlacementEvent{
				Fleet:       spec.Fleet.ID,
				Balancer:    placed.Balancer.ID,
				Listener:    placed.Listener.ID,
				TargetGroup: placed.TargetGroup.ID,
				Targets:     spec.Fleet.Capacity,
				ProbePort:   placed.TargetGroup.HealthCheck.Port,
				PlacedAt:    time.Now(),
			})
		}
	}

	saved, err := p.store.SaveAssignments(ctx, assignments)
	if err != nil {
		return fmt.Errorf("failed to persist assignments: %w", err)
	}
	log.Info().Msgf("persisted %d of %d assignments", saved, len(assignments))

	// Announce only after the assignments are durable.
	for _, event := range events {
		p.notifier.NotifyFleetPlaced(event)
	}
	return nil
}
