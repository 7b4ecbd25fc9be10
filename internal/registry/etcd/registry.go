package etcd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/Sh00ty/fleet-monitor/internal/models"
	"github.com/Sh00ty/fleet-monitor/pkg/monitor"
)

type balancerSpecDto struct {
	Name      string    `json:"name"`
	Scope     string    `json:"scope"`
	CreatedAt time.Time `json:"created_at"`
}

type listenerSpecDto struct {
	Balancer  string    `json:"balancer"`
	Port      uint16    `json:"port"`
	CreatedAt time.Time `json:"created_at"`
}

type targetGroupSpecDto struct {
	Fleet       string    `json:"fleet"`
	TargetRef   string    `json:"target_ref"`
	UpdateGrant string    `json:"update_grant"`
	ProbePort   int       `json:"probe_port"`
	ProbeEvery  string    `json:"probe_every"`
	Healthy     int       `json:"healthy_threshold"`
	Unhealthy   int       `json:"unhealthy_threshold"`
	CreatedAt   time.Time `json:"created_at"`
}

// Registry registers desired load-balancing resources in etcd.
type Registry struct {
	etcd *clientv3.Client
}

func NewRegistry(ctx context.Context, endpoint string) (*Registry, error) {
	clnt, err := clientv3.New(clientv3.Config{
		Endpoints: []string{endpoint},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create etcd client: %w", err)
	}
	return &Registry{etcd: clnt}, nil
}

func (r *Registry) CreateBalancer(ctx context.Context, scope string, name string) (models.BalancerID, error) {
	folder := balancerFolder(scope, name)
	specKey := balancerSpecKey(folder)

	tx := r.etcd.Txn(ctx).If(
		clientv3.Compare(clientv3.CreateRevision(specKey), "=", 0),
	).Then(
		clientv3.OpPut(specKey, mustJsonMarshal(balancerSpecDto{
			Name:      name,
			Scope:     scope,
			CreatedAt: time.Now(),
		})),
	)
	resp, err := tx.Commit()
	if err != nil {
		return "", fmt.Errorf("failed to register balancer %s: %w", name, err)
	}
	if !resp.Succeeded {
		return "", fmt.Errorf("balancer %s already registered in scope %s", name, scope)
	}
	return models.BalancerID(folder), nil
}

func (r *Registry) CreateListener(
	ctx context.Context,
	scope string,
	balancer models.BalancerID,
	port uint16,
) (models.ListenerID, error) {
	folder := listenerFolder(balancer, port)
	specKey := listenerSpecKey(folder)

	tx := r.etcd.Txn(ctx).If(
		clientv3.Compare(clientv3.CreateRevision(specKey), "=", 0),
	).Then(
		clientv3.OpPut(specKey, mustJsonMarshal(listenerSpecDto{
			Balancer:  string(balancer),
			Port:      port,
			CreatedAt: time.Now(),
		})),
	)
	resp, err := tx.Commit()
	if err != nil {
		return "", fmt.Errorf("failed to register listener on port %d of %s: %w", port, balancer, err)
	}
	if !resp.Succeeded {
		return "", fmt.Errorf("listener on port %d of %s already registered", port, balancer)
	}
	return models.ListenerID(folder), nil
}

func (r *Registry) CreateTargetGroup(
	ctx context.Context,
	scope string,
	balancer models.BalancerID,
	listener models.ListenerID,
	fleet monitor.Fleet,
	hc monitor.ResolvedHealthCheckConfig,
) (models.TargetGroupID, error) {
	key := listenerTargetGroupKey(listener)

	// Registering the target group under the listener's forward key is
	// what attaches the route, there is no separate attachment step.
	tx := r.etcd.Txn(ctx).If(
		clientv3.Compare(clientv3.CreateRevision(key), "=", 0),
	).Then(
		clientv3.OpPut(key, mustJsonMarshal(targetGroupSpecDto{
			Fleet:       string(fleet.ID),
			TargetRef:   fleet.TargetRef,
			UpdateGrant: fleet.UpdateGrant,
			ProbePort:   hc.Port,
			ProbeEvery:  hc.Interval.String(),
			Healthy:     hc.HealthyThreshold,
			Unhealthy:   hc.UnhealthyThreshold,
			CreatedAt:   time.Now(),
		})),
	)
	resp, err := tx.Commit()
	if err != nil {
		return "", fmt.Errorf("failed to register target group for fleet %s: %w", fleet.ID, err)
	}
	if !resp.Succeeded {
		return "", fmt.Errorf("listener %s already forwards to a target group", listener)
	}
	return models.TargetGroupID(key), nil
}

func (r *Registry) Close() error {
	return r.etcd.Close()
}

func mustJsonMarshal(val any) string {
	js, err := json.Marshal(val)
	if err != nil {
		panic(err)
	}
	return string(js)
}
