package notifyer

import (
	"sync/atomic"

	"github.com/Sh00ty/fleet-monitor/internal/models"
)

// ChanNotifyer hands placement events from the planner to the sender
// without the planner ever blocking on a closed pipeline.
type ChanNotifyer struct {
	eventChan chan models.PlacementEvent
	closed    atomic.Bool
	close     chan struct{}
}

func NewNotifier(buf int) *ChanNotifyer {
	return &ChanNotifyer{
		eventChan: make(chan models.PlacementEvent, buf),
		closed:    atomic.Bool{},
		close:     make(chan struct{}),
	}
}

func (n *ChanNotifyer) NotifyFleetPlaced(event models.PlacementEvent) {
	if n.closed.Load() {
		return
	}
	select {
	case n.eventChan <- event:
	case <-n.close:
	default:
		if n.closed.Load() {
			return
		}
		select {
		case n.eventChan <- event:
		case <-n.close:
		}
	}
}

func (n *ChanNotifyer) GetEventChan() chan models.PlacementEvent {
	return n.eventChan
}

func (n *ChanNotifyer) Close() {
	n.closed.Store(true)
	close(n.close)
	close(n.eventChan)
}
