package placement

import (
	"github.com/Sh00ty/fleet-monitor/pkg/monitor"
)

const (
	QuotaTargetsPerBalancer      = "targets-per-balancer"
	QuotaTargetGroupsPerBalancer = "target-groups-per-balancer"
	QuotaListenersPerBalancer    = "listeners-per-balancer"
	QuotaTargetGroupsPerListener = "target-groups-per-listener"
)

// Quotas maps a quota name to its default maximum. The factory never
// mutates it, so one table can back any number of factories.
type Quotas map[string]int

var defaultQuotas = Quotas{
	QuotaTargetsPerBalancer:      1000,
	QuotaTargetGroupsPerBalancer: 100,
	QuotaListenersPerBalancer:    50,
	QuotaTargetGroupsPerListener: 5,
}

// DefaultQuotas returns the platform default quota table.
func DefaultQuotas() Quotas {
	return defaultQuotas
}

// effective resolves one quota: the first override matching by exact
// name wins, absence means the table default.
func (q Quotas) effective(name string, overrides []monitor.Limit) int {
	for _, limit := range overrides {
		if limit.Name == name {
			return limit.Max
		}
	}
	return q[name]
}
