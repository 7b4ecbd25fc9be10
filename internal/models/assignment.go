package models

import (
	"time"

	"github.com/Sh00ty/fleet-monitor/pkg/monitor"
)

// Assignment is the persisted placement path of one fleet.
type Assignment struct {
	Fleet       monitor.FleetID
	Balancer    BalancerID
	Listener    ListenerID
	TargetGroup TargetGroupID
}

// PlacementEvent announces a finished assignment to downstream
// health-check nodes.
type PlacementEvent struct {
	Fleet       monitor.FleetID `json:"fleet"`
	Balancer    BalancerID      `json:"balancer"`
	Listener    ListenerID      `json:"listener"`
	TargetGroup TargetGroupID   `json:"target_group"`
	Targets     int             `json:"targets"`
	ProbePort   int             `json:"probe_port"`
	PlacedAt    time.Time       `json:"placed_at"`
}
