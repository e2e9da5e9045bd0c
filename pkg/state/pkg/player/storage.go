package player

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/sarpt/mpv-music-api/internal/common"
	"github.com/sarpt/mpv-music-api/pkg/state/internal/revision"
)

const (
	// ActionsQueueSize bounds the number of actions waiting to be applied.
	ActionsQueueSize = 64
)

var (
	ErrStorageNotServing = errors.New("player storage is not serving actions")
)

type SubscriberCB = func(change Change)

// Change is emitted after every action which changed the state.
type Change struct {
	Action Action
	State  State
}

// MarshalJSON returns the state after the change in JSON format. Satisfies json.Marshaller.
func (c Change) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.State)
}

func (c Change) Variant() common.ChangeVariant {
	return c.Action.Variant()
}

type dispatchRequest struct {
	action Action
	result chan<- State
}

// Storage holds the player state. The state is transitioned only by the Serve loop, which applies
// actions one at a time in order of their arrival, regardless whether they were dispatched or posted.
type Storage struct {
	actions     chan dispatchRequest
	broadcaster *common.ChangesBroadcaster[Change]
	done        chan struct{}
	lock        *sync.RWMutex
	revision    *revision.Storage
	state       State
}

// NewStorage constructs Player state with a neutral State.
func NewStorage(broadcaster *common.ChangesBroadcaster[Change]) *Storage {
	return &Storage{
		actions:     make(chan dispatchRequest, ActionsQueueSize),
		broadcaster: broadcaster,
		done:        make(chan struct{}),
		lock:        &sync.RWMutex{},
		revision:    revision.NewStorage(),
		state:       NewState(),
	}
}

// Serve applies queued actions until ctx is done. Serve should be called only once.
func (s *Storage) Serve(ctx context.Context) error {
	defer close(s.done)

	for {
		select {
		case <-ctx.Done():
			return nil
		case req := <-s.actions:
			state := s.apply(req.action)
			if req.result != nil {
				req.result <- state
			}
		}
	}
}

// Dispatch queues an action and waits until it is applied.
// Returns the state right after the action has been applied.
func (s *Storage) Dispatch(ctx context.Context, action Action) (State, error) {
	err := Validate(action)
	if err != nil {
		return s.State(), err
	}

	result := make(chan State, 1)
	err = s.enqueue(ctx, dispatchRequest{action: action, result: result})
	if err != nil {
		return s.State(), err
	}

	select {
	case state := <-result:
		return state, nil
	case <-s.done:
		return s.State(), ErrStorageNotServing
	case <-ctx.Done():
		return s.State(), ctx.Err()
	}
}

// Post queues an action without waiting for it to be applied.
// Post blocks only when the queue is full.
func (s *Storage) Post(ctx context.Context, action Action) error {
	err := Validate(action)
	if err != nil {
		return err
	}

	return s.enqueue(ctx, dispatchRequest{action: action})
}

// State returns a copy of the current state.
func (s *Storage) State() State {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.state.Copy()
}

// MarshalJSON satisifes json.Marshaller.
func (s *Storage) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.State())
}

func (s *Storage) Revision() revision.Identifier {
	return s.revision.Revision()
}

func (s *Storage) Subscribe(cb SubscriberCB) func() {
	return s.broadcaster.Subscribe(common.SubscriberFunc[Change](cb))
}

func (s *Storage) apply(action Action) State {
	s.lock.Lock()
	next, changed := Reduce(s.state, action)
	s.state = next
	s.lock.Unlock()

	if !changed {
		return next.Copy()
	}

	s.revision.Tick()
	s.broadcaster.Send(Change{
		Action: action,
		State:  next.Copy(),
	})

	return next.Copy()
}

func (s *Storage) enqueue(ctx context.Context, req dispatchRequest) error {
	select {
	case <-s.done:
		return ErrStorageNotServing
	default:
	}

	select {
	case s.actions <- req:
		return nil
	case <-s.done:
		return ErrStorageNotServing
	case <-ctx.Done():
		return fmt.Errorf("could not queue %s action: %w", req.action.Variant(), ctx.Err())
	}
}
