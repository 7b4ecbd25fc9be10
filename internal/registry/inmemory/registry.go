package inmemory

import (
	"context"
	"fmt"
	"sync"

	"github.com/Sh00ty/fleet-monitor/internal/models"
	"github.com/Sh00ty/fleet-monitor/pkg/monitor"
)

type balancerEntry struct {
	scope     string
	listeners map[models.ListenerID]listenerEntry
}

type listenerEntry struct {
	port        uint16
	targetGroup models.TargetGroupID
}

type targetGroupEntry struct {
	fleet       monitor.FleetID
	targetRef   string
	healthCheck monitor.ResolvedHealthCheckConfig
}

// InMemRegistry provisions nothing: it only records what would be
// created and hands out deterministic identities. Used for dry-run
// planning and tests.
type InMemRegistry struct {
	mu           *sync.Mutex
	balancers    map[models.BalancerID]*balancerEntry
	targetGroups map[models.TargetGroupID]targetGroupEntry
}

func NewInMemRegistry() *InMemRegistry {
	return &InMemRegistry{
		mu:           &sync.Mutex{},
		balancers:    make(map[models.BalancerID]*balancerEntry, 16),
		targetGroups: make(map[models.TargetGroupID]targetGroupEntry, 128),
	}
}

func (r *InMemRegistry) CreateBalancer(ctx context.Context, scope string, name string) (models.BalancerID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := models.BalancerID(name)
	if _, exists := r.balancers[id]; exists {
		return "", fmt.Errorf("balancer %s already registered", id)
	}
	r.balancers[id] = &balancerEntry{
		scope:     scope,
		listeners: make(map[models.ListenerID]listenerEntry, 8),
	}
	return id, nil
}

func (r *InMemRegistry) CreateListener(
	ctx context.Context,
	scope string,
	balancer models.BalancerID,
	port uint16,
) (models.ListenerID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.balancers[balancer]
	if !exists {
		return "", fmt.Errorf("balancer %s is not registered", balancer)
	}
	id := models.ListenerID(fmt.Sprintf("%s/listener-%d", balancer, port))
	if _, exists := entry.listeners[id]; exists {
		return "", fmt.Errorf("listener %s already registered", id)
	}
	entry.listeners[id] = listenerEntry{port: port}
	return id, nil
}

func (r *InMemRegistry) CreateTargetGroup(
	ctx context.Context,
	scope string,
	balancer models.BalancerID,
	listener models.ListenerID,
	fleet monitor.Fleet,
	hc monitor.ResolvedHealthCheckConfig,
) (models.TargetGroupID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.balancers[balancer]
	if !exists {
		return "", fmt.Errorf("balancer %s is not registered", balancer)
	}
	lis, exists := entry.listeners[listener]
	if !exists {
		return "", fmt.Errorf("listener %s is not registered", listener)
	}
	if lis.targetGroup != "" {
		return "", fmt.Errorf("listener %s already forwards to target group %s", listener, lis.targetGroup)
	}

	id := models.TargetGroupID(fmt.Sprintf("%s/tg-%s", listener, fleet.ID))
	r.targetGroups[id] = targetGroupEntry{
		fleet:       fleet.ID,
		targetRef:   fleet.TargetRef,
		healthCheck: hc,
	}
	lis.targetGroup = id
	entry.listeners[listener] = lis
	return id, nil
}

// Resources reports how many balancers and target groups are
// registered, for run summaries.
func (r *InMemRegistry) Resources() (balancers int, targetGroups int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.balancers), len(r.targetGroups)
}
