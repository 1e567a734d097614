// Package realtime fans database change notifications out to per-household
// subscribers.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// Channel is the LISTEN/NOTIFY channel the change triggers publish on.
const Channel = "hearth_changes"

const pingInterval = 90 * time.Second

// Change is one row-level change in a household's data.
type Change struct {
	Table       string `json:"table"`
	Op          string `json:"op"`
	HouseholdID int64  `json:"household_id"`
}

// Source delivers raw notifications. *pq.Listener satisfies it.
type Source interface {
	NotificationChannel() <-chan *pq.Notification
	Ping() error
}

// NewListener connects a pq.Listener to Channel.
func NewListener(databaseURL string, logger logrus.FieldLogger) (*pq.Listener, error) {
	l := pq.NewListener(databaseURL, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			logger.WithField("err", err).Warn("Change listener connection event")
		}
	})
	if err := l.Listen(Channel); err != nil {
		l.Close()
		return nil, fmt.Errorf("failed to listen on %s: %w", Channel, err)
	}
	return l, nil
}

// Subscription receives a household's changes on C until Close is called.
type Subscription struct {
	C <-chan Change

	ch          chan Change
	hub         *Hub
	householdID int64
	once        sync.Once
}

// Close unsubscribes and closes C.
func (s *Subscription) Close() {
	s.once.Do(func() { s.hub.remove(s) })
}

// Hub routes changes to subscribers. A subscriber whose buffer is full
// misses the change; the hub never blocks on a slow reader.
type Hub struct {
	mu     sync.RWMutex
	subs   map[int64]map[*Subscription]struct{}
	buffer int
	logger logrus.FieldLogger
}

// NewHub creates a hub whose subscriptions buffer up to buffer changes.
func NewHub(buffer int, logger logrus.FieldLogger) *Hub {
	if buffer < 1 {
		buffer = 1
	}
	return &Hub{subs: map[int64]map[*Subscription]struct{}{}, buffer: buffer, logger: logger}
}

// Subscribe starts delivering householdID's changes.
func (h *Hub) Subscribe(householdID int64) *Subscription {
	ch := make(chan Change, h.buffer)
	s := &Subscription{C: ch, ch: ch, hub: h, householdID: householdID}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[householdID] == nil {
		h.subs[householdID] = map[*Subscription]struct{}{}
	}
	h.subs[householdID][s] = struct{}{}
	return s
}

func (h *Hub) remove(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.subs[s.householdID]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(h.subs, s.householdID)
		}
	}
	close(s.ch)
}

// Subscribers returns the number of open subscriptions for householdID.
func (h *Hub) Subscribers(householdID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[householdID])
}

// Publish delivers c to every subscriber of its household and returns how
// many received it.
func (h *Hub) Publish(c Change) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	delivered := 0
	for s := range h.subs[c.HouseholdID] {
		select {
		case s.ch <- c:
			delivered++
		default:
			h.logger.WithFields(logrus.Fields{"household_id": c.HouseholdID, "table": c.Table}).
				Debug("Dropped change for slow subscriber")
		}
	}
	return delivered
}

// Run publishes every notification from src until ctx is done. The source
// is pinged periodically so a dead connection is noticed.
func (h *Hub) Run(ctx context.Context, src Source) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	h.logger.Info("Change hub started")
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("Change hub stopped")
			return
		case n := <-src.NotificationChannel():
			// nil after a reconnect; anything missed is gone.
			if n == nil {
				continue
			}
			var c Change
			if err := json.Unmarshal([]byte(n.Extra), &c); err != nil {
				h.logger.WithField("err", err).Warnf("Ignoring malformed change payload %q", n.Extra)
				continue
			}
			h.Publish(c)
		case <-ticker.C:
			if err := src.Ping(); err != nil {
				h.logger.WithField("err", err).Warn("Change listener ping failed")
			}
		}
	}
}
