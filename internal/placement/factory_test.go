package placement

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sh00ty/fleet-monitor/internal/models"
	"github.com/Sh00ty/fleet-monitor/internal/registry/inmemory"
	"github.com/Sh00ty/fleet-monitor/pkg/monitor"
)

func testFleet(id string, capacity int) monitor.Fleet {
	return monitor.Fleet{
		ID:          monitor.FleetID(id),
		Capacity:    capacity,
		TargetRef:   "asg/" + id,
		ScopeRef:    "render-farm",
		UpdateGrant: "grant/" + id,
	}
}

func TestPlaceCreatesWholePathForFirstFleet(t *testing.T) {
	factory := NewPlacementFactory(inmemory.NewInMemRegistry(), nil)

	placed, err := factory.Place(context.Background(), testFleet("fleet-a", 10), monitor.HealthCheckConfig{}, nil)
	require.NoError(t, err)

	require.NotNil(t, placed.Balancer)
	require.NotNil(t, placed.Listener)
	require.NotNil(t, placed.TargetGroup)
	assert.Equal(t, monitor.FleetID("fleet-a"), placed.TargetGroup.Fleet)
	assert.Equal(t, uint16(baseMonitorPort), placed.Listener.Port)
	assert.Equal(t, models.Stats{ListenerCount: 1, TargetGroupCount: 1, TargetCount: 10}, placed.Balancer.Stats)
}

func TestPlaceReusesBalancerWithCapacityLeft(t *testing.T) {
	factory := NewPlacementFactory(inmemory.NewInMemRegistry(), nil)
	ctx := context.Background()

	first, err := factory.Place(ctx, testFleet("fleet-a", 10), monitor.HealthCheckConfig{}, nil)
	require.NoError(t, err)
	second, err := factory.Place(ctx, testFleet("fleet-b", 10), monitor.HealthCheckConfig{}, nil)
	require.NoError(t, err)

	// A fleet that fits the current stats never opens a new balancer.
	assert.Same(t, first.Balancer, second.Balancer)
	assert.NotSame(t, first.Listener, second.Listener)
	assert.Equal(t, uint16(baseMonitorPort+1), second.Listener.Port)
	assert.Len(t, factory.managers, 1)
}

func TestTargetQuotaOpensSecondBalancer(t *testing.T) {
	factory := NewPlacementFactory(inmemory.NewInMemRegistry(), nil)
	ctx := context.Background()
	limits := []monitor.Limit{{Name: QuotaTargetsPerBalancer, Max: 50}}

	first, err := factory.Place(ctx, testFleet("fleet-a", 50), monitor.HealthCheckConfig{}, limits)
	require.NoError(t, err)
	second, err := factory.Place(ctx, testFleet("fleet-b", 50), monitor.HealthCheckConfig{}, limits)
	require.NoError(t, err)

	assert.NotEqual(t, first.Balancer.ID, second.Balancer.ID)
	assert.Len(t, factory.managers, 2)
}

func TestListenerQuotaOverrideForcesSecondBalancer(t *testing.T) {
	factory := NewPlacementFactory(inmemory.NewInMemRegistry(), nil)
	ctx := context.Background()
	limits := []monitor.Limit{{Name: QuotaListenersPerBalancer, Max: 1}}

	first, err := factory.Place(ctx, testFleet("fleet-a", 10), monitor.HealthCheckConfig{}, limits)
	require.NoError(t, err)
	second, err := factory.Place(ctx, testFleet("fleet-b", 10), monitor.HealthCheckConfig{}, limits)
	require.NoError(t, err)

	assert.NotEqual(t, first.Balancer.ID, second.Balancer.ID)
}

func TestOversizedFleetFailsWithoutRetrying(t *testing.T) {
	factory := NewPlacementFactory(inmemory.NewInMemRegistry(), nil)

	_, err := factory.Place(context.Background(), testFleet("fleet-a", 2000), monitor.HealthCheckConfig{}, nil)
	require.Error(t, err)
	// Not a capacity outcome: no amount of new balancers can fit it.
	assert.False(t, IsCapacityExhausted(err))
	assert.Contains(t, err.Error(), "does not fit an empty balancer")
	// The failed attempt still registered exactly one balancer.
	assert.Len(t, factory.managers, 1)
}

func TestStatsConservation(t *testing.T) {
	factory := NewPlacementFactory(inmemory.NewInMemRegistry(), nil)
	ctx := context.Background()
	limits := []monitor.Limit{{Name: QuotaListenersPerBalancer, Max: 3}}

	capacities := []int{5, 12, 7, 30, 1, 9, 14}
	placedTargets := make(map[models.BalancerID]int)
	placedGroups := make(map[models.BalancerID]int)
	balancers := make(map[models.BalancerID]*models.Balancer)
	for i, capacity := range capacities {
		placed, err := factory.Place(
			ctx,
			testFleet(fmt.Sprintf("fleet-%d", i), capacity),
			monitor.HealthCheckConfig{},
			limits,
		)
		require.NoError(t, err)
		placedTargets[placed.Balancer.ID] += capacity
		placedGroups[placed.Balancer.ID]++
		balancers[placed.Balancer.ID] = placed.Balancer
	}

	for id, balancer := range balancers {
		assert.Equal(t, placedTargets[id], balancer.Stats.TargetCount, "balancer %s target count", id)
		assert.Equal(t, placedGroups[id], balancer.Stats.TargetGroupCount, "balancer %s target group count", id)
		assert.Equal(t, len(balancer.Listeners), balancer.Stats.ListenerCount, "balancer %s listener count", id)

		childSum := models.Stats{}
		for _, listener := range balancer.Listeners {
			childSum.Merge(listener.Stats)
			childSum.Merge(models.Stats{ListenerCount: 1})
		}
		assert.Equal(t, balancer.Stats, childSum, "balancer %s stats vs children", id)
	}
}

func TestThreeFleetsUnderDefaults(t *testing.T) {
	factory := NewPlacementFactory(inmemory.NewInMemRegistry(), nil)
	ctx := context.Background()

	var last Placement
	for i := 0; i < 3; i++ {
		var err error
		last, err = factory.Place(
			ctx,
			testFleet(fmt.Sprintf("fleet-%d", i), 10),
			monitor.HealthCheckConfig{Port: 7000 + i},
			nil,
		)
		require.NoError(t, err)
	}

	// One listener per fleet: each listener forwards to one group.
	require.Len(t, factory.managers, 1)
	balancer := last.Balancer
	assert.Len(t, balancer.Listeners, 3)
	assert.Equal(t, models.Stats{ListenerCount: 3, TargetGroupCount: 3, TargetCount: 30}, balancer.Stats)
}

func TestFatalProvisionerErrorPropagates(t *testing.T) {
	boom := fmt.Errorf("registry unavailable")
	factory := NewPlacementFactory(&failingProvisioner{err: boom}, nil)

	_, err := factory.Place(context.Background(), testFleet("fleet-a", 10), monitor.HealthCheckConfig{}, nil)
	require.ErrorIs(t, err, boom)
	assert.False(t, IsCapacityExhausted(err))
}

type failingProvisioner struct {
	err error
}

func (p *failingProvisioner) CreateBalancer(ctx context.Context, scope, name string) (models.BalancerID, error) {
	return "", p.err
}

func (p *failingProvisioner) CreateListener(ctx context.Context, scope string, balancer models.BalancerID, port uint16) (models.ListenerID, error) {
	return "", p.err
}

func (p *failingProvisioner) CreateTargetGroup(
	ctx context.Context,
	scope string,
	balancer models.BalancerID,
	listener models.ListenerID,
	fleet monitor.Fleet,
	hc monitor.ResolvedHealthCheckConfig,
) (models.TargetGroupID, error) {
	return "", p.err
}
