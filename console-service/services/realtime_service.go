package services

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ChangeEventType classifies a change-notification event
type ChangeEventType string

const (
	ChangeEventInsert ChangeEventType = "INSERT"
	ChangeEventUpdate ChangeEventType = "UPDATE"
	ChangeEventDelete ChangeEventType = "DELETE"
	// ChangeEventAll subscribes to every event type
	ChangeEventAll ChangeEventType = "*"
)

// ChangeEvent is a pushed notification that a row changed. Update events
// carry the new row state in New.
type ChangeEvent struct {
	Table     string          `json:"table"`
	Type      ChangeEventType `json:"type"`
	RowID     uuid.UUID       `json:"row_id"`
	New       interface{}     `json:"new,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// SubscriptionFilter narrows which change events a subscriber receives.
// An empty Event (or ChangeEventAll) matches every event type; a nil RowID
// matches every row of the table.
type SubscriptionFilter struct {
	Table string
	Event ChangeEventType
	RowID *uuid.UUID
}

// Subscription is one live change-notification stream
type Subscription struct {
	id     uint64
	filter SubscriptionFilter
	C      chan ChangeEvent
	hub    *Hub
	once   sync.Once
}

// Close detaches the subscription from the hub
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.unsubscribe(s.id)
		close(s.C)
	})
}

// Hub is the in-process change-notification channel. Mutations publish
// through it; form and list state, and websocket clients, subscribe.
type Hub struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[uint64]*Subscription
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{
		subs: make(map[uint64]*Subscription),
	}
}

// Subscribe registers a change-notification stream for the given filter
func (h *Hub) Subscribe(filter SubscriptionFilter) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	sub := &Subscription{
		id:     h.nextID,
		filter: filter,
		C:      make(chan ChangeEvent, 64),
		hub:    h,
	}
	h.subs[sub.id] = sub
	return sub
}

func (h *Hub) unsubscribe(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, id)
}

func (f SubscriptionFilter) matches(event ChangeEvent) bool {
	if f.Table != "" && f.Table != event.Table {
		return false
	}
	if f.Event != "" && f.Event != ChangeEventAll && f.Event != event.Type {
		return false
	}
	if f.RowID != nil && *f.RowID != event.RowID {
		return false
	}
	return true
}

// Publish pushes an event to every matching subscriber. A subscriber that
// cannot keep up has the event dropped rather than blocking the publisher.
func (h *Hub) Publish(event ChangeEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subs {
		if !sub.filter.matches(event) {
			continue
		}
		select {
		case sub.C <- event:
		default:
			log.Printf("⚠️ Change-event queue full, dropping %s %s for subscriber", event.Table, event.Type)
		}
	}
}

// SubscriberCount returns the number of active subscriptions
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
