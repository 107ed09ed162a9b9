package engine

import "log/slog"

// Event categories.
const (
	CategoryFeat      = "feat"
	CategoryRival     = "rival"
	CategoryNetwork   = "network"
	CategoryStrategy  = "strategy"
	CategoryDiplomacy = "diplomacy"
	CategoryCrew      = "crew"
	CategoryCouncil   = "council"
	CategoryWorld     = "world"
)

// Event is a notable occurrence in the simulation. Seq is unique and
// increasing for the life of the process.
type Event struct {
	Seq         uint64 `json:"seq" db:"seq"`
	Tick        uint64 `json:"tick" db:"tick"`
	Category    string `json:"category" db:"category"`
	Subject     string `json:"subject,omitempty" db:"subject"`
	Description string `json:"description" db:"description"`
}

const subscriberBuffer = 64

// emit appends an event, trims the log, and fans it out to subscribers.
// Callers hold s.mu.
func (s *Simulation) emit(category, subject, description string) {
	s.nextSeq++
	e := Event{
		Seq:         s.nextSeq,
		Tick:        s.LastTick,
		Category:    category,
		Subject:     subject,
		Description: description,
	}
	s.events = append(s.events, e)
	if over := len(s.events) - s.eventLimit; over > 0 {
		s.events = append(s.events[:0], s.events[over:]...)
	}
	for id, ch := range s.subs {
		select {
		case ch <- e:
		default:
			slog.Warn("event subscriber lagging, dropping event", "subscriber", id, "seq", e.Seq)
		}
	}
}

// Subscribe returns a channel receiving every event emitted from now on and
// a function that ends the subscription. Slow subscribers miss events.
func (s *Simulation) Subscribe() (<-chan Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSub++
	id := s.nextSub
	ch := make(chan Event, subscriberBuffer)
	s.subs[id] = ch
	return ch, func() { s.unsubscribe(id) }
}

func (s *Simulation) unsubscribe(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ch, ok := s.subs[id]; ok {
		delete(s.subs, id)
		close(ch)
	}
}

// Subscribers is the number of live subscriptions.
func (s *Simulation) Subscribers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

// RecentEvents returns up to limit of the newest events, oldest first.
func (s *Simulation) RecentEvents(limit int) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	start := 0
	if limit > 0 && len(s.events) > limit {
		start = len(s.events) - limit
	}
	return append([]Event(nil), s.events[start:]...)
}

// EventsSince returns buffered events with Seq greater than seq.
func (s *Simulation) EventsSince(seq uint64) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := len(s.events)
	for i > 0 && s.events[i-1].Seq > seq {
		i--
	}
	return append([]Event(nil), s.events[i:]...)
}
