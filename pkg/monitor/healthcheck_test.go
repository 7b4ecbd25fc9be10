package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolveHealthCheckConfigDefaults(t *testing.T) {
	resolved := ResolveHealthCheckConfig(HealthCheckConfig{})

	assert.Equal(t, DefaultProbePort, resolved.Port)
	assert.Equal(t, DefaultProbeInterval, resolved.Interval)
	assert.Equal(t, DefaultHealthyThreshold, resolved.HealthyThreshold)
	assert.Equal(t, DefaultUnhealthyThreshold, resolved.UnhealthyThreshold)
}

func TestResolveHealthCheckConfigKeepsExplicitValues(t *testing.T) {
	resolved := ResolveHealthCheckConfig(HealthCheckConfig{
		Port:               9100,
		Interval:           time.Minute,
		HealthyThreshold:   5,
		UnhealthyThreshold: 7,
	})

	assert.Equal(t, 9100, resolved.Port)
	assert.Equal(t, time.Minute, resolved.Interval)
	assert.Equal(t, 5, resolved.HealthyThreshold)
	assert.Equal(t, 7, resolved.UnhealthyThreshold)
}
