package kb

import (
	"fmt"
	"sort"
	"sync"

	"github.com/signalsfoundry/docking-alignment-display/model"
)

// EventType indicates what kind of change happened in the KB.
type EventType int

const (
	EventBodyUpdated EventType = iota
	EventActiveChanged
	EventTargetChanged
)

func (t EventType) String() string {
	switch t {
	case EventBodyUpdated:
		return "body_updated"
	case EventActiveChanged:
		return "active_changed"
	case EventTargetChanged:
		return "target_changed"
	default:
		return "unknown"
	}
}

// Event is emitted to subscribers when something interesting happens.
// For selection changes Body is the newly selected body (zero when the
// selection was cleared) and PreviousID is the ID it replaced.
type Event struct {
	Type       EventType
	Body       model.Body
	PreviousID string
}

// KnowledgeBase is an in-memory, thread-safe store for the vessels and
// docking ports of a session, together with the active vessel and its
// selected target.
type KnowledgeBase struct {
	mu sync.RWMutex

	bodies map[string]*model.Body

	activeID string
	targetID string

	subs    []subscriber
	nextSub uint64
}

type subscriber struct {
	id uint64
	fn func(Event)
}

// NewKnowledgeBase constructs an empty KB.
func NewKnowledgeBase() *KnowledgeBase {
	return &KnowledgeBase{
		bodies: make(map[string]*model.Body),
	}
}

// AddBody adds a new body. It returns an error if the ID already exists or
// if a port references a vessel that does not exist.
func (kb *KnowledgeBase) AddBody(b *model.Body) error {
	if b == nil || b.ID == "" {
		return fmt.Errorf("body must have an ID")
	}
	kb.mu.Lock()
	defer kb.mu.Unlock()

	if _, exists := kb.bodies[b.ID]; exists {
		return fmt.Errorf("body with ID %q already exists", b.ID)
	}
	if b.Kind == model.BodyKindPort {
		if _, ok := kb.bodies[b.VesselID]; !ok {
			return fmt.Errorf("vessel with ID %q not found for port %q", b.VesselID, b.ID)
		}
	}
	cp := *b
	kb.bodies[b.ID] = &cp
	return nil
}

// GetBody returns a copy of the body with the given ID.
func (kb *KnowledgeBase) GetBody(id string) (model.Body, bool) {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	b, ok := kb.bodies[id]
	if !ok {
		return model.Body{}, false
	}
	return *b, true
}

// ListBodies returns a snapshot of all bodies ordered by ID.
func (kb *KnowledgeBase) ListBodies() []model.Body {
	kb.mu.RLock()
	defer kb.mu.RUnlock()

	res := make([]model.Body, 0, len(kb.bodies))
	for _, b := range kb.bodies {
		res = append(res, *b)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

// UpdatePose updates a body's pose and notifies subscribers.
func (kb *KnowledgeBase) UpdatePose(id string, pose model.Pose) error {
	kb.mu.Lock()
	b, ok := kb.bodies[id]
	if !ok {
		kb.mu.Unlock()
		return fmt.Errorf("body with ID %q not found", id)
	}
	b.Pose = pose
	event := Event{
		Type: EventBodyUpdated,
		Body: *b, // copy for safety
	}
	subs := kb.snapshotSubs()
	kb.mu.Unlock()

	// Notify subscribers outside the lock to avoid deadlocks.
	notify(subs, event)
	return nil
}

// SetActive selects the vessel the player controls. An empty ID clears the
// selection.
func (kb *KnowledgeBase) SetActive(id string) error {
	return kb.selectBody(id, EventActiveChanged, &kb.activeID, func(b *model.Body) error {
		if b.Kind != model.BodyKindVessel {
			return fmt.Errorf("body %q is a %s, not a vessel", b.ID, b.Kind)
		}
		return nil
	})
}

// SetTarget selects the active vessel's target. Any body may be targeted;
// whether it is dockable is decided by the solver. An empty ID clears the
// target.
func (kb *KnowledgeBase) SetTarget(id string) error {
	return kb.selectBody(id, EventTargetChanged, &kb.targetID, nil)
}

func (kb *KnowledgeBase) selectBody(id string, typ EventType, slot *string, check func(*model.Body) error) error {
	kb.mu.Lock()
	var body model.Body
	if id != "" {
		b, ok := kb.bodies[id]
		if !ok {
			kb.mu.Unlock()
			return fmt.Errorf("body with ID %q not found", id)
		}
		if check != nil {
			if err := check(b); err != nil {
				kb.mu.Unlock()
				return err
			}
		}
		body = *b
	}
	prev := *slot
	if prev == id {
		kb.mu.Unlock()
		return nil
	}
	*slot = id
	event := Event{Type: typ, Body: body, PreviousID: prev}
	subs := kb.snapshotSubs()
	kb.mu.Unlock()

	notify(subs, event)
	return nil
}

// Active returns the active vessel, if any.
func (kb *KnowledgeBase) Active() (model.Body, bool) {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	return kb.lookup(kb.activeID)
}

// Target returns the current target, if any.
func (kb *KnowledgeBase) Target() (model.Body, bool) {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	return kb.lookup(kb.targetID)
}

func (kb *KnowledgeBase) lookup(id string) (model.Body, bool) {
	if id == "" {
		return model.Body{}, false
	}
	b, ok := kb.bodies[id]
	if !ok {
		return model.Body{}, false
	}
	return *b, true
}

// Subscribe registers a callback for KB events. It returns an unsubscribe function.
func (kb *KnowledgeBase) Subscribe(fn func(Event)) (unsubscribe func()) {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	kb.nextSub++
	id := kb.nextSub
	kb.subs = append(kb.subs, subscriber{id: id, fn: fn})

	return func() {
		kb.mu.Lock()
		defer kb.mu.Unlock()
		for i, sub := range kb.subs {
			if sub.id == id {
				kb.subs = append(kb.subs[:i:i], kb.subs[i+1:]...)
				return
			}
		}
	}
}

// snapshotSubs copies the subscriber list. Callers must hold kb.mu.
func (kb *KnowledgeBase) snapshotSubs() []func(Event) {
	subs := make([]func(Event), len(kb.subs))
	for i, sub := range kb.subs {
		subs[i] = sub.fn
	}
	return subs
}

func notify(subs []func(Event), events ...Event) {
	for _, ev := range events {
		for _, sub := range subs {
			sub(ev)
		}
	}
}
