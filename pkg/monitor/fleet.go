package monitor

import "fmt"

type FleetID string

func (id FleetID) String() string {
	return string(id)
}

// Fleet describes one worker fleet that has to be health-monitored.
// Immutable once submitted for placement.
type Fleet struct {
	ID FleetID

	// Capacity is the number of endpoints the fleet contributes to a
	// balancer once it is bound.
	Capacity int

	// TargetRef is the opaque reference bound into the target group.
	TargetRef string

	// ScopeRef names the monitoring domain where new balancers,
	// listeners and target groups for this fleet are created.
	ScopeRef string

	// UpdateGrant is the authorization handle the provisioning layer
	// needs to reconfigure the fleet.
	UpdateGrant string
}

func (f Fleet) Validate() error {
	if f.ID == "" {
		return fmt.Errorf("fleet without id")
	}
	if f.Capacity < 0 {
		return fmt.Errorf("fleet %s has negative capacity %d", f.ID, f.Capacity)
	}
	if f.TargetRef == "" {
		return fmt.Errorf("fleet %s has no target reference", f.ID)
	}
	return nil
}

// FleetSpec is a fleet together with its requested probe configuration,
// the unit the planner reads from the inventory.
type FleetSpec struct {
	Fleet       Fleet
	HealthCheck HealthCheckConfig
}

// Limit is a sparse quota override. Any quota not named keeps its
// hard-coded default; first match by exact name wins.
type Limit struct {
	Name string
	Max  int
}
