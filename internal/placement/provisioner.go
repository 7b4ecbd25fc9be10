package placement

import (
	"context"

	"github.com/Sh00ty/fleet-monitor/internal/models"
	"github.com/Sh00ty/fleet-monitor/pkg/monitor"
)

// Provisioner is the provisioning layer the allocator delegates
// physical resource creation to. Calls are synchronous: they either
// return the identity of the created resource or fail.
type Provisioner interface {
	CreateBalancer(ctx context.Context, scope string, name string) (models.BalancerID, error)

	CreateListener(
		ctx context.Context,
		scope string,
		balancer models.BalancerID,
		port uint16,
	) (models.ListenerID, error)

	// CreateTargetGroup creates the target group for the fleet and
	// attaches it to the listener's forward route.
	CreateTargetGroup(
		ctx context.Context,
		scope string,
		balancer models.BalancerID,
		listener models.ListenerID,
		fleet monitor.Fleet,
		hc monitor.ResolvedHealthCheckConfig,
	) (models.TargetGroupID, error)
}
