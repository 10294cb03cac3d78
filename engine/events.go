package engine

import (
	"cmp"
	"slices"

	"github.com/akmonengine/featherserver/actor"
	"github.com/akmonengine/featherserver/constraint"
)

const (
	TRIGGER_ENTER EventType = iota
	COLLISION_ENTER
	TRIGGER_STAY
	COLLISION_STAY
	TRIGGER_EXIT
	COLLISION_EXIT
	ON_SLEEP
	ON_WAKE
)

type EventType uint8

// Event is implemented by every event the world emits
type Event interface {
	Type() EventType
}

// PairEvent reports a change in contact between two bodies. For trigger
// events BodyA is the trigger when only one of them is.
type PairEvent struct {
	Kind  EventType
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
}

func (e PairEvent) Type() EventType { return e.Kind }

type SleepEvent struct {
	Body *actor.RigidBody
}

func (e SleepEvent) Type() EventType { return ON_SLEEP }

type WakeEvent struct {
	Body *actor.RigidBody
}

func (e WakeEvent) Type() EventType { return ON_WAKE }

type EventListener func(event Event)

// pairKey orders body ids so (a, b) and (b, a) collapse
type pairKey struct {
	low, high uint64
}

func makePairKey(a, b *actor.RigidBody) pairKey {
	if b.ID < a.ID {
		a, b = b, a
	}
	return pairKey{low: a.ID, high: b.ID}
}

type activePair struct {
	bodyA, bodyB *actor.RigidBody
}

// Events tracks enter/stay/exit transitions across steps and dispatches them
// to listeners once per World.Step.
type Events struct {
	listeners map[EventType][]EventListener
	buffer    []Event

	previousActivePairs map[pairKey]activePair
	currentActivePairs  map[pairKey]activePair

	sleepStates map[uint64]bool
}

func NewEvents() Events {
	return Events{
		listeners:           make(map[EventType][]EventListener),
		buffer:              make([]Event, 0, 256),
		previousActivePairs: make(map[pairKey]activePair),
		currentActivePairs:  make(map[pairKey]activePair),
		sleepStates:         make(map[uint64]bool),
	}
}

func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

// recordCollisions marks every touching pair active and drops the trigger
// contacts, which are reported but never solved.
func (e *Events) recordCollisions(constraints []*constraint.ContactConstraint) []*constraint.ContactConstraint {
	n := 0
	for _, c := range constraints {
		a, b := c.BodyA, c.BodyB
		if b.IsTrigger && !a.IsTrigger {
			a, b = b, a
		}
		e.currentActivePairs[makePairKey(a, b)] = activePair{bodyA: a, bodyB: b}

		if !c.BodyA.IsTrigger && !c.BodyB.IsTrigger {
			constraints[n] = c
			n++
			continue
		}
		releaseContacts(c.Points)
	}

	return constraints[:n]
}

// forget drops every trace of a body leaving the world
func (e *Events) forget(body *actor.RigidBody) {
	delete(e.sleepStates, body.ID)
	for key := range e.previousActivePairs {
		if key.low == body.ID || key.high == body.ID {
			delete(e.previousActivePairs, key)
		}
	}
	for key := range e.currentActivePairs {
		if key.low == body.ID || key.high == body.ID {
			delete(e.currentActivePairs, key)
		}
	}
}

func sortedKeys(pairs map[pairKey]activePair) []pairKey {
	keys := make([]pairKey, 0, len(pairs))
	for key := range pairs {
		keys = append(keys, key)
	}
	slices.SortFunc(keys, func(a, b pairKey) int {
		if c := cmp.Compare(a.low, b.low); c != 0 {
			return c
		}
		return cmp.Compare(a.high, b.high)
	})
	return keys
}

// processCollisionEvents emits in pair-id order so listeners see a stable sequence
func (e *Events) processCollisionEvents() {
	for _, key := range sortedKeys(e.currentActivePairs) {
		pair := e.currentActivePairs[key]
		// both asleep: nothing changes, stay silent
		if pair.bodyA.IsSleeping && pair.bodyB.IsSleeping {
			continue
		}

		isTrigger := pair.bodyA.IsTrigger || pair.bodyB.IsTrigger
		kind := COLLISION_ENTER
		switch _, stay := e.previousActivePairs[key]; {
		case stay && isTrigger:
			kind = TRIGGER_STAY
		case stay:
			kind = COLLISION_STAY
		case isTrigger:
			kind = TRIGGER_ENTER
		}
		e.buffer = append(e.buffer, PairEvent{Kind: kind, BodyA: pair.bodyA, BodyB: pair.bodyB})
	}

	for _, key := range sortedKeys(e.previousActivePairs) {
		pair := e.previousActivePairs[key]
		if _, still := e.currentActivePairs[key]; still {
			continue
		}
		// a sleeping pair stays in contact
		if pair.bodyA.IsSleeping && pair.bodyB.IsSleeping {
			e.currentActivePairs[key] = pair
			continue
		}

		kind := COLLISION_EXIT
		if pair.bodyA.IsTrigger || pair.bodyB.IsTrigger {
			kind = TRIGGER_EXIT
		}
		e.buffer = append(e.buffer, PairEvent{Kind: kind, BodyA: pair.bodyA, BodyB: pair.bodyB})
	}

	e.previousActivePairs, e.currentActivePairs = e.currentActivePairs, e.previousActivePairs
	clear(e.currentActivePairs)
}

func (e *Events) processSleepEvents(bodies []*actor.RigidBody) {
	for _, body := range bodies {
		tracked, exists := e.sleepStates[body.ID]
		if !exists {
			e.sleepStates[body.ID] = body.IsSleeping
			continue
		}

		if !tracked && body.IsSleeping {
			e.buffer = append(e.buffer, SleepEvent{Body: body})
			e.sleepStates[body.ID] = true
		} else if tracked && !body.IsSleeping {
			e.buffer = append(e.buffer, WakeEvent{Body: body})
			e.sleepStates[body.ID] = false
		}
	}
}

// flush sends all buffered events in order and clears the buffer
func (e *Events) flush() {
	e.processCollisionEvents()

	for _, event := range e.buffer {
		for _, listener := range e.listeners[event.Type()] {
			listener(event)
		}
	}
	e.buffer = e.buffer[:0]
}
