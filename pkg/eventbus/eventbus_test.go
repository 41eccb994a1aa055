package eventbus

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type tradeEvent struct {
	ID string
}

type inquiryEvent struct {
	ListingID string
}

func TestSubscribeAndPublish(t *testing.T) {
	bus := New()

	var received tradeEvent
	var wg sync.WaitGroup
	wg.Add(1)

	bus.Subscribe(tradeEvent{}, func(event interface{}) {
		if e, ok := event.(tradeEvent); ok {
			received = e
			wg.Done()
		}
	})

	bus.Publish(tradeEvent{ID: "TXN-3000"})

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		assert.Equal(t, "TXN-3000", received.ID)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestPublishSync(t *testing.T) {
	bus := New()

	var received tradeEvent
	bus.Subscribe(tradeEvent{}, func(event interface{}) {
		if e, ok := event.(tradeEvent); ok {
			received = e
		}
	})

	bus.PublishSync(tradeEvent{ID: "TXN-3001"})
	assert.Equal(t, "TXN-3001", received.ID)
}

func TestPublishSync_OnlyMatchingType(t *testing.T) {
	bus := New()

	var trades, inquiries int
	bus.Subscribe(tradeEvent{}, func(event interface{}) { trades++ })
	bus.Subscribe(inquiryEvent{}, func(event interface{}) { inquiries++ })

	bus.PublishSync(inquiryEvent{ListingID: "LST-1000"})

	assert.Equal(t, 0, trades)
	assert.Equal(t, 1, inquiries)
}

func TestSubscriberCount(t *testing.T) {
	bus := New()
	assert.Equal(t, 0, bus.SubscriberCount(tradeEvent{}))

	bus.Subscribe(tradeEvent{}, func(event interface{}) {})
	bus.Subscribe(tradeEvent{}, func(event interface{}) {})

	assert.Equal(t, 2, bus.SubscriberCount(tradeEvent{}))
}
