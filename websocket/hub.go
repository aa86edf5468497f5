// Package websocket fans queue snapshots out to per-loket subscribers and
// serves them over WebSocket connections.
// file: websocket/hub.go
package websocket

import (
	"sort"
	"sync"

	"go-loket-queue/logger"
	"go-loket-queue/models"
)

// DefaultBufferSize is the per-subscriber outbound buffer.
var DefaultBufferSize = 64

// SnapshotProvider supplies the current state of a channel to new subscribers.
type SnapshotProvider interface {
	Snapshot(loket string) models.Snapshot
}

// Subscriber is the hub-side handle of one observer on one channel.
type Subscriber struct {
	loket string
	send  chan models.Message

	// guarded by the owning channel's mutex
	lastRevision uint64
	closed       bool
}

// Messages delivers the subscriber's messages in publish order. It is closed
// by Unsubscribe.
func (s *Subscriber) Messages() <-chan models.Message {
	return s.send
}

// Loket is the channel the subscriber is attached to.
func (s *Subscriber) Loket() string {
	return s.loket
}

// channelState holds one channel's subscribers. Each channel has its own lock
// so deliveries on different channels never wait on each other.
type channelState struct {
	mu   sync.Mutex
	subs map[*Subscriber]struct{}

	published uint64
	recalls   uint64
	sent      uint64
	dropped   uint64
	stale     uint64
}

// deliver never blocks: a full buffer drops the message for that subscriber.
// Caller holds c.mu.
func (c *channelState) deliver(sub *Subscriber, msg models.Message) bool {
	select {
	case sub.send <- msg:
		c.sent++
		return true
	default:
		c.dropped++
		logger.Warn.Printf("[Hub.deliver] Dropping %s message for a subscriber of loket %s", msg.Type, sub.loket)
		return false
	}
}

// Hub keeps the subscribers of every channel.
type Hub struct {
	provider   SnapshotProvider
	bufferSize int

	mu       sync.Mutex // guards the channels map only
	channels map[string]*channelState
}

// NewHub creates a hub that reads initial snapshots from provider.
func NewHub(provider SnapshotProvider) *Hub {
	return &Hub{
		provider:   provider,
		bufferSize: DefaultBufferSize,
		channels:   make(map[string]*channelState),
	}
}

func (h *Hub) channel(loket string) *channelState {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.channels[loket]
	if !ok {
		c = &channelState{subs: make(map[*Subscriber]struct{})}
		h.channels[loket] = c
	}
	return c
}

// Subscribe registers an observer on loket and queues the initial snapshot
// as its first message before any update can reach it.
func (h *Hub) Subscribe(loket string) *Subscriber {
	size := h.bufferSize
	if size < 1 {
		size = 1
	}
	sub := &Subscriber{loket: loket, send: make(chan models.Message, size)}

	c := h.channel(loket)
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := h.provider.Snapshot(loket)
	snap.Loket = loket
	sub.lastRevision = snap.Revision
	c.deliver(sub, models.InitialMessage(snap))
	c.subs[sub] = struct{}{}

	logger.Info.Printf("[Hub.Subscribe] New subscriber on loket %s (revision %d, %d subscribers)", loket, snap.Revision, len(c.subs))
	return sub
}

// Unsubscribe removes the observer and closes its message channel. Calling it
// again is a no-op.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	if sub == nil {
		return
	}
	c := h.channel(sub.loket)
	c.mu.Lock()
	defer c.mu.Unlock()

	if sub.closed {
		return
	}
	sub.closed = true
	delete(c.subs, sub)
	close(sub.send)
	logger.Info.Printf("[Hub.Unsubscribe] Subscriber left loket %s (%d remaining)", sub.loket, len(c.subs))
}

// Publish sends an update snapshot to every subscriber of the snapshot's
// channel. A subscriber never receives a snapshot older than, or equal to,
// one it has already been sent.
func (h *Hub) Publish(snap models.Snapshot) {
	c := h.channel(snap.Loket)
	c.mu.Lock()
	defer c.mu.Unlock()

	c.published++
	msg := models.UpdateMessage(snap)
	for sub := range c.subs {
		if snap.Revision <= sub.lastRevision {
			c.stale++
			continue
		}
		sub.lastRevision = snap.Revision
		c.deliver(sub, msg)
	}
	logger.Debug.Printf("[Hub.Publish] loket=%s revision=%d subscribers=%d", snap.Loket, snap.Revision, len(c.subs))
}

// NotifyRecall sends a recall notice to every subscriber of loket that has
// not yet been sent a snapshot newer than revision, the state the recall was
// checked against.
func (h *Hub) NotifyRecall(loket string, patient models.Patient, revision uint64) {
	c := h.channel(loket)
	c.mu.Lock()
	defer c.mu.Unlock()

	c.recalls++
	msg := models.RecallMessage(loket, patient)
	for sub := range c.subs {
		if sub.lastRevision > revision {
			c.stale++
			continue
		}
		c.deliver(sub, msg)
	}
	logger.Info.Printf("[Hub.NotifyRecall] loket=%s queueNumber=%s subscribers=%d", loket, patient.QueueNumber, len(c.subs))
}

// ChannelStats are the delivery counters of one channel.
type ChannelStats struct {
	Loket       string `json:"loket"`
	Subscribers int    `json:"subscribers"`
	Published   uint64 `json:"published"`
	Recalls     uint64 `json:"recalls"`
	Sent        uint64 `json:"sent"`
	Dropped     uint64 `json:"dropped"`
	Stale       uint64 `json:"stale"`
}

// HubStats lists per-channel counters ordered by loket.
type HubStats struct {
	Channels []ChannelStats `json:"channels"`
}

// Stats returns a point-in-time copy of every channel's counters.
func (h *Hub) Stats() HubStats {
	h.mu.Lock()
	lokets := make([]string, 0, len(h.channels))
	states := make(map[string]*channelState, len(h.channels))
	for loket, c := range h.channels {
		lokets = append(lokets, loket)
		states[loket] = c
	}
	h.mu.Unlock()
	sort.Strings(lokets)

	out := HubStats{Channels: make([]ChannelStats, 0, len(lokets))}
	for _, loket := range lokets {
		c := states[loket]
		c.mu.Lock()
		out.Channels = append(out.Channels, ChannelStats{
			Loket:       loket,
			Subscribers: len(c.subs),
			Published:   c.published,
			Recalls:     c.recalls,
			Sent:        c.sent,
			Dropped:     c.dropped,
			Stale:       c.stale,
		})
		c.mu.Unlock()
	}
	return out
}
