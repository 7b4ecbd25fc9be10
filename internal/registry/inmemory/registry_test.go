package inmemory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sh00ty/fleet-monitor/pkg/monitor"
)

func TestRegistryRejectsDuplicateResources(t *testing.T) {
	registry := NewInMemRegistry()
	ctx := context.Background()

	balancerID, err := registry.CreateBalancer(ctx, "render-farm", "lb-0")
	require.NoError(t, err)
	_, err = registry.CreateBalancer(ctx, "render-farm", "lb-0")
	assert.Error(t, err)

	listenerID, err := registry.CreateListener(ctx, "render-farm", balancerID, 8081)
	require.NoError(t, err)
	_, err = registry.CreateListener(ctx, "render-farm", balancerID, 8081)
	assert.Error(t, err)

	fleet := monitor.Fleet{ID: "fleet-a", Capacity: 4, TargetRef: "asg/fleet-a", ScopeRef: "render-farm"}
	hc := monitor.ResolveHealthCheckConfig(monitor.HealthCheckConfig{})
	_, err = registry.CreateTargetGroup(ctx, "render-farm", balancerID, listenerID, fleet, hc)
	require.NoError(t, err)
	_, err = registry.CreateTargetGroup(ctx, "render-farm", balancerID, listenerID, fleet, hc)
	assert.Error(t, err)

	balancers, targetGroups := registry.Resources()
	assert.Equal(t, 1, balancers)
	assert.Equal(t, 1, targetGroups)
}

func TestRegistryRequiresParentResources(t *testing.T) {
	registry := NewInMemRegistry()
	ctx := context.Background()

	_, err := registry.CreateListener(ctx, "render-farm", "missing", 8081)
	assert.Error(t, err)

	fleet := monitor.Fleet{ID: "fleet-a", Capacity: 4, TargetRef: "asg/fleet-a", ScopeRef: "render-farm"}
	hc := monitor.ResolveHealthCheckConfig(monitor.HealthCheckConfig{})
	_, err = registry.CreateTargetGroup(ctx, "render-farm", "missing", "missing/listener-8081", fleet, hc)
	assert.Error(t, err)
}
