// Package hold keeps the in-memory registry of soft holds. A hold is an
// advisory claim scoped to this process: it reserves a slot for one customer
// while intake is in progress, but the calendar provider stays authoritative
// at booking time. Holds are deliberately not persisted; a restart drops them.
package hold

import (
	"maps"
	"sync"
	"time"

	"github.com/belmontfield/dispatch/internal/domain"
	"github.com/belmontfield/dispatch/internal/observability"
)

// TransitionFunc observes hold lifecycle events ("hold.created",
// "hold.released", "hold.confirmed", "hold.expired"). It is invoked after the
// registry lock is dropped, so implementations may do I/O.
type TransitionFunc func(event string, h domain.Hold)

type Registry struct {
	mu         sync.Mutex
	holds      map[string]*domain.Hold
	byCustomer map[string]string
	timers     map[string]*time.Timer

	defaultTTL time.Duration
	logger     observability.Logger
	onEvent    TransitionFunc
}

func NewRegistry(defaultTTL time.Duration, logger observability.Logger, onEvent TransitionFunc) *Registry {
	if onEvent == nil {
		onEvent = func(string, domain.Hold) {}
	}
	return &Registry{
		holds:      make(map[string]*domain.Hold),
		byCustomer: make(map[string]string),
		timers:     make(map[string]*time.Timer),
		defaultTTL: defaultTTL,
		logger:     logger,
		onEvent:    onEvent,
	}
}

// Create places a new hold for the customer. A still-held prior hold for the
// same customer is superseded: it transitions to released and its id is
// returned so the caller can surface the supersession. The overlap check
// against the new slot is deliberately deferred to booking time.
func (r *Registry) Create(customerKey string, slot domain.TimeWindow, metadata map[string]string, ttl time.Duration) (domain.Hold, string, error) {
	if !slot.Valid() {
		return domain.Hold{}, "", domain.ErrInvalidSlot
	}
	if ttl <= 0 {
		ttl = r.defaultTTL
	}
	h := domain.NewHold(customerKey, slot, maps.Clone(metadata), ttl)

	var events []pendingEvent
	supersededID := ""

	r.mu.Lock()
	if prevID, ok := r.byCustomer[customerKey]; ok {
		if prev := r.holds[prevID]; prev != nil && prev.Status == domain.HoldHeld {
			r.transitionLocked(prev, domain.HoldReleased, "superseded")
			supersededID = prev.ID
			events = append(events, pendingEvent{"hold.released", *prev})
		}
	}
	stored := h
	r.holds[h.ID] = &stored
	r.byCustomer[customerKey] = h.ID
	r.timers[h.ID] = time.AfterFunc(ttl, func() { r.expire(h.ID) })
	r.mu.Unlock()

	if supersededID != "" {
		observability.ActiveHolds.Dec()
	}
	observability.ActiveHolds.Inc()
	events = append(events, pendingEvent{"hold.created", h})
	r.emit(events)
	return h, supersededID, nil
}

// Release is idempotent: releasing an already-terminal hold returns the
// current record unchanged, and an unknown id returns nil rather than an
// error so callers can treat lost holds gracefully.
func (r *Registry) Release(id string) *domain.Hold {
	return r.finish(id, domain.HoldReleased, "hold.released")
}

// Confirm transitions held to confirmed and cancels the expiry timer. Safe to
// call repeatedly for the same id under concurrent retries.
func (r *Registry) Confirm(id string) *domain.Hold {
	return r.finish(id, domain.HoldConfirmed, "hold.confirmed")
}

func (r *Registry) Get(id string) *domain.Hold {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.holds[id]; ok {
		cp := *h
		return &cp
	}
	return nil
}

func (r *Registry) GetByCustomer(customerKey string) *domain.Hold {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.byCustomer[customerKey]; ok {
		if h, ok := r.holds[id]; ok {
			cp := *h
			return &cp
		}
	}
	return nil
}

// ListActive returns all holds still in held status, for operational
// visibility.
func (r *Registry) ListActive() []domain.Hold {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Hold
	for _, h := range r.holds {
		if h.Status == domain.HoldHeld {
			out = append(out, *h)
		}
	}
	return out
}

// Stop cancels all pending expiry timers. Holds are not persisted, so there
// is nothing else to flush.
func (r *Registry) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, t := range r.timers {
		t.Stop()
		delete(r.timers, id)
	}
}

func (r *Registry) finish(id string, target domain.HoldStatus, event string) *domain.Hold {
	r.mu.Lock()
	h, ok := r.holds[id]
	if !ok {
		r.mu.Unlock()
		return nil
	}
	if h.Status != domain.HoldHeld {
		cp := *h
		r.mu.Unlock()
		return &cp
	}
	r.transitionLocked(h, target, string(target))
	cp := *h
	r.mu.Unlock()

	observability.ActiveHolds.Dec()
	r.emit([]pendingEvent{{event, cp}})
	return &cp
}

// expire fires from the per-hold timer. Whichever transition reaches the lock
// first wins; an expiry racing a confirm or release becomes a no-op.
func (r *Registry) expire(id string) {
	r.mu.Lock()
	h, ok := r.holds[id]
	if !ok || h.Status != domain.HoldHeld {
		r.mu.Unlock()
		return
	}
	r.transitionLocked(h, domain.HoldExpired, string(domain.HoldExpired))
	cp := *h
	r.mu.Unlock()

	observability.ActiveHolds.Dec()
	r.logger.WithField("hold_id", id).Info("hold expired")
	r.emit([]pendingEvent{{"hold.expired", cp}})
}

// transitionLocked applies a terminal transition. The outcome label usually
// matches the target status; supersession lands as released but is counted
// separately. Caller holds r.mu.
func (r *Registry) transitionLocked(h *domain.Hold, target domain.HoldStatus, outcome string) {
	h.Status = target
	if t, ok := r.timers[h.ID]; ok {
		t.Stop()
		delete(r.timers, h.ID)
	}
	if r.byCustomer[h.CustomerKey] == h.ID {
		delete(r.byCustomer, h.CustomerKey)
	}
	observability.HoldOutcomes.WithLabelValues(outcome).Inc()
}

type pendingEvent struct {
	name string
	hold domain.Hold
}

func (r *Registry) emit(events []pendingEvent) {
	for _, e := range events {
		r.onEvent(e.name, e.hold)
	}
}
