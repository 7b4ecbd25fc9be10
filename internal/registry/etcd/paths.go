package etcd

import (
	"fmt"
	"path"

	"github.com/Sh00ty/fleet-monitor/internal/models"
)

/*
fleet-monitor-registry/<scope>/balancers/<balancer>/spec
fleet-monitor-registry/<scope>/balancers/<balancer>/listeners/<port>/spec
fleet-monitor-registry/<scope>/balancers/<balancer>/listeners/<port>/target-group

Creation here is registration of desired state: the reconciler owning
the physical resources watches the registry and converges the platform
towards it. A resource identity is its registry folder, so child keys
derive from the parent identity.
*/

const registryFolder = "/fleet-monitor-registry"

// /fleet-monitor-registry/<scope>/balancers/<name>
func balancerFolder(scope string, name string) string {
	return path.Join(registryFolder, scope, "balancers", name)
}

// <balancer>/spec
func balancerSpecKey(balancer string) string {
	return path.Join(balancer, "spec")
}

// <balancer>/listeners/<port>
func listenerFolder(balancer models.BalancerID, port uint16) string {
	return path.Join(
		string(balancer),
		"listeners",
		fmt.Sprintf("%d", port),
	)
}

// <listener>/spec
func listenerSpecKey(listener string) string {
	return path.Join(listener, "spec")
}

// <listener>/target-group
func listenerTargetGroupKey(listener models.ListenerID) string {
	return path.Join(string(listener), "target-group")
}
