package placement

import (
	"context"
	"fmt"

	"github.com/Sh00ty/fleet-monitor/internal/models"
	"github.com/Sh00ty/fleet-monitor/pkg/monitor"
)

// The platform forwards a listener to a single target group, so one
// listener can hold one fleet binding no matter what the numeric quota
// says. Lift this constant once multiple forward groups are supported.
const maxTargetGroupsPerListenerHardCap = 1

// targetGroupBinder owns the leaf placement operation: bind one fleet
// under one listener.
type targetGroupBinder struct {
	prov   Provisioner
	quotas Quotas
}

func newTargetGroupBinder(prov Provisioner, quotas Quotas) *targetGroupBinder {
	return &targetGroupBinder{
		prov:   prov,
		quotas: quotas,
	}
}

func (b *targetGroupBinder) bind(
	ctx context.Context,
	balancer *models.Balancer,
	listener *models.Listener,
	fleet monitor.Fleet,
	hc monitor.ResolvedHealthCheckConfig,
	limits []monitor.Limit,
) (models.Stats, *models.TargetGroup, error) {
	maxGroups := b.quotas.effective(QuotaTargetGroupsPerListener, limits)
	if listener.Stats.TargetGroupCount+1 > maxGroups {
		return models.Stats{}, nil, &CapacityExhaustedError{
			Quota: QuotaTargetGroupsPerListener,
			Limit: maxGroups,
		}
	}
	if listener.TargetGroup != nil {
		return models.Stats{}, nil, &CapacityExhaustedError{
			Quota: QuotaTargetGroupsPerListener,
			Limit: maxTargetGroupsPerListenerHardCap,
		}
	}

	tgID, err := b.prov.CreateTargetGroup(ctx, fleet.ScopeRef, balancer.ID, listener.ID, fleet, hc)
	if err != nil {
		return models.Stats{}, nil, fmt.Errorf(
			"failed to create target group for fleet %s on listener %s: %w",
			fleet.ID, listener.ID, err,
		)
	}

	targetGroup := &models.TargetGroup{
		ID:          tgID,
		Fleet:       fleet.ID,
		TargetCount: fleet.Capacity,
		HealthCheck: hc,
	}
	listener.TargetGroup = targetGroup

	delta := models.Stats{
		TargetGroupCount: 1,
		TargetCount:      fleet.Capacity,
	}
	listener.Stats.Merge(delta)
	return delta, targetGroup, nil
}
