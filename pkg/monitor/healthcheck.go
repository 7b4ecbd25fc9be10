package monitor

import "time"

const (
	// DefaultProbePort is the well-known port the worker monitor
	// process listens on.
	DefaultProbePort = 63415

	DefaultProbeInterval      = 5 * time.Minute
	DefaultHealthyThreshold   = 2
	DefaultUnhealthyThreshold = 3
)

// HealthCheckConfig is the probe configuration requested for a fleet.
// Zero fields mean "use the default"; defaults are applied by
// ResolveHealthCheckConfig at bind time, not by the caller.
type HealthCheckConfig struct {
	Port               int
	Interval           time.Duration
	HealthyThreshold   int
	UnhealthyThreshold int
}

// ResolvedHealthCheckConfig is a HealthCheckConfig with every field
// populated.
type ResolvedHealthCheckConfig struct {
	Port               int
	Interval           time.Duration
	HealthyThreshold   int
	UnhealthyThreshold int
}

func ResolveHealthCheckConfig(cfg HealthCheckConfig) ResolvedHealthCheckConfig {
	resolved := ResolvedHealthCheckConfig{
		Port:               cfg.Port,
		Interval:           cfg.Interval,
		HealthyThreshold:   cfg.HealthyThreshold,
		UnhealthyThreshold: cfg.UnhealthyThreshold,
	}
	if resolved.Port == 0 {
		resolved.Port = DefaultProbePort
	}
	if resolved.Interval == 0 {
		resolved.Interval = DefaultProbeInterval
	}
	if resolved.HealthyThreshold == 0 {
		resolved.HealthyThreshold = DefaultHealthyThreshold
	}
	if resolved.UnhealthyThreshold == 0 {
		resolved.UnhealthyThreshold = DefaultUnhealthyThreshold
	}
	return resolved
}
