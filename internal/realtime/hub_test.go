package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/hearth/pkg/logger"
)

type fakeSource struct {
	ch chan *pq.Notification
}

func (f *fakeSource) NotificationChannel() <-chan *pq.Notification { return f.ch }
func (f *fakeSource) Ping() error                                  { return nil }

func TestPublishRoutesByHousehold(t *testing.T) {
	h := NewHub(4, logger.Discard())
	a1 := h.Subscribe(1)
	a2 := h.Subscribe(1)
	b := h.Subscribe(2)
	defer a1.Close()
	defer a2.Close()
	defer b.Close()

	n := h.Publish(Change{Table: "tasks", Op: "insert", HouseholdID: 1})
	assert.Equal(t, 2, n)

	assert.Equal(t, "tasks", (<-a1.C).Table)
	assert.Equal(t, "tasks", (<-a2.C).Table)
	select {
	case c := <-b.C:
		t.Fatalf("household 2 got %+v", c)
	default:
	}
}

func TestPublishNeverBlocks(t *testing.T) {
	h := NewHub(1, logger.Discard())
	s := h.Subscribe(1)
	defer s.Close()

	assert.Equal(t, 1, h.Publish(Change{HouseholdID: 1, Table: "a"}))
	assert.Equal(t, 0, h.Publish(Change{HouseholdID: 1, Table: "b"}))

	assert.Equal(t, "a", (<-s.C).Table)
}

func TestCloseUnsubscribes(t *testing.T) {
	h := NewHub(1, logger.Discard())
	s := h.Subscribe(5)
	require.Equal(t, 1, h.Subscribers(5))

	s.Close()
	s.Close()
	assert.Zero(t, h.Subscribers(5))
	_, open := <-s.C
	assert.False(t, open)
	assert.Zero(t, h.Publish(Change{HouseholdID: 5}))
}

func TestRunDecodesNotifications(t *testing.T) {
	h := NewHub(4, logger.Discard())
	s := h.Subscribe(3)
	defer s.Close()

	src := &fakeSource{ch: make(chan *pq.Notification, 4)}
	src.ch <- nil
	src.ch <- &pq.Notification{Channel: Channel, Extra: "not json"}
	src.ch <- &pq.Notification{Channel: Channel, Extra: `{"table":"shopping_items","op":"delete","household_id":3}`}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.Run(ctx, src)
		close(done)
	}()

	select {
	case c := <-s.C:
		assert.Equal(t, Change{Table: "shopping_items", Op: "delete", HouseholdID: 3}, c)
	case <-time.After(2 * time.Second):
		t.Fatal("no change delivered")
	}

	cancel()
	<-done
}
