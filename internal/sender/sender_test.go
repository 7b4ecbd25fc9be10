package sender

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sh00ty/fleet-monitor/internal/models"
)

type fakeQueue struct {
	mu      sync.Mutex
	failing bool
	written []models.PlacementEvent
}

func (q *fakeQueue) WriteEvents(ctx context.Context, events []models.PlacementEvent) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.failing {
		return 0, fmt.Errorf("broker unavailable")
	}
	q.written = append(q.written, events...)
	return len(events), nil
}

func (q *fakeQueue) setFailing(failing bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.failing = failing
}

func (q *fakeQueue) writtenEvents() []models.PlacementEvent {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]models.PlacementEvent(nil), q.written...)
}

func runSender(events chan models.PlacementEvent, queue EventQueue) (wait func()) {
	ctl := NewSenderController(events, queue, 10*time.Millisecond)
	done := make(chan struct{})
	go func() {
		defer close(done)
		ctl.Run(context.Background())
	}()
	return func() { <-done }
}

func TestSenderDrainsChannel(t *testing.T) {
	queue := &fakeQueue{}
	events := make(chan models.PlacementEvent, 4)
	wait := runSender(events, queue)

	events <- models.PlacementEvent{Fleet: "fleet-a"}
	events <- models.PlacementEvent{Fleet: "fleet-b"}
	close(events)
	wait()

	written := queue.writtenEvents()
	require.Len(t, written, 2)
	assert.Equal(t, models.PlacementEvent{Fleet: "fleet-a"}, written[0])
}

func TestSenderFlushesUnsentOnTicker(t *testing.T) {
	queue := &fakeQueue{failing: true}
	events := make(chan models.PlacementEvent, 4)
	ctl := NewSenderController(events, queue, 10*time.Millisecond)
	done := make(chan struct{})
	go func() {
		defer close(done)
		ctl.Run(context.Background())
	}()

	events <- models.PlacementEvent{Fleet: "fleet-a"}
	require.Eventually(t, func() bool {
		return ctl.Pending() == 1
	}, time.Second, 5*time.Millisecond)

	queue.setFailing(false)
	require.Eventually(t, func() bool {
		return ctl.Pending() == 0
	}, time.Second, 5*time.Millisecond)

	close(events)
	<-done
	assert.Len(t, queue.writtenEvents(), 1)
}
