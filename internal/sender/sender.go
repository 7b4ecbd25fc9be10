package sender

import (
	"context"
	"sync"
	"time"

	retry "github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"

	"github.com/Sh00ty/fleet-monitor/internal/models"
)

type EventQueue interface {
	WriteEvents(ctx context.Context, events []models.PlacementEvent) (int, error)
}

func NewSenderController(
	eventCh chan models.PlacementEvent,
	queue EventQueue,
	retryTimeout time.Duration,
) *SenderControler {
	return &SenderControler{
		events:      eventCh,
		queue:       queue,
		ttlTicker:   time.NewTicker(retryTimeout),
		unsentGuard: &sync.Mutex{},
		unsent:      make([]models.PlacementEvent, 0),
	}
}

// SenderControler drains the placement event channel into the queue.
// Events that could not be written after retries go into an unsent
// buffer flushed on the ticker.
type SenderControler struct {
	events      chan models.PlacementEvent
	ttlTicker   *time.Ticker
	queue       EventQueue
	unsentGuard *sync.Mutex
	unsent      []models.PlacementEvent
}

func (c *SenderControler) Run(ctx context.Context) {
	for {
		select {
		case _, ok := <-c.ttlTicker.C:
			if !ok {
				return
			}
			c.sendUnsentEvents(ctx)
		case event, ok := <-c.events:
			if !ok {
				c.sendUnsentEvents(ctx)
				return
			}
			err := retry.Do(
				func() error {
					_, err := c.queue.WriteEvents(ctx, []models.PlacementEvent{event})
					return err
				},
				retry.Attempts(3),
			)
			if err != nil {
				log.Error().Err(err).Msgf(
					"failed to announce placement of fleet %s, put it into unsent queue",
					event.Fleet,
				)
				c.unsentGuard.Lock()
				c.unsent = append(c.unsent, event)
				c.unsentGuard.Unlock()
			}
		}
	}
}

// Pending reports how many events are stuck in the unsent buffer.
func (c *SenderControler) Pending() int {
	c.unsentGuard.Lock()
	defer c.unsentGuard.Unlock()
	return len(c.unsent)
}

func (c *SenderControler) sendUnsentEvents(ctx context.Context) {
	c.unsentGuard.Lock()
	defer c.unsentGuard.Unlock()

	if len(c.unsent) == 0 {
		return
	}
	done, err := c.queue.WriteEvents(ctx, c.unsent)
	if err != nil {
		log.Warn().Err(err).Msgf("failed to flush unsent placement events: done %d", done)

		newUnsent := make([]models.PlacementEvent, len(c.unsent)-done)
		copy(newUnsent, c.unsent[done:])
		c.unsent = newUnsent
		return
	}
	c.unsent = c.unsent[:0]
}
