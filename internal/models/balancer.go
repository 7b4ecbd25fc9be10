package models

import (
	"github.com/Sh00ty/fleet-monitor/pkg/monitor"
)

type BalancerID string

type ListenerID string

type TargetGroupID string

// Balancer is the tier-1 resource. Listeners are kept in creation
// order; placement iterates them first-fit.
type Balancer struct {
	ID    BalancerID
	Name  string
	Scope string

	// BasePort is the monitoring port the first listener binds to,
	// each next listener takes the next offset.
	BasePort uint16

	Listeners []*Listener
	Stats     Stats
}

// Listener is the tier-2 resource, owned by exactly one Balancer.
type Listener struct {
	ID   ListenerID
	Port uint16

	// TargetGroup is nil until a fleet is bound. The platform allows
	// a single forward target group per listener.
	TargetGroup *TargetGroup
	Stats       Stats
}

// TargetGroup is the tier-3 resource, bound to exactly one fleet.
type TargetGroup struct {
	ID          TargetGroupID
	Fleet       monitor.FleetID
	TargetCount int
	HealthCheck monitor.ResolvedHealthCheckConfig
}
