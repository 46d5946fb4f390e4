package multiplayer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vovakirdan/antfarm/internal/action"
	"github.com/vovakirdan/antfarm/internal/orders"
	"github.com/vovakirdan/antfarm/internal/turn"
	"github.com/vovakirdan/antfarm/internal/world"
)

var errRejected = errors.New("rejected")

type fakeStore struct {
	mu        sync.Mutex
	state     world.State
	committed []turn.Selections
	reject    bool
}

func (f *fakeStore) CurrentState(game GameID) (world.State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.Clone(), nil
}

func (f *fakeStore) CommitTurn(game GameID, sel turn.Selections) (world.State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reject {
		return world.State{}, errRejected
	}
	f.committed = append(f.committed, sel)
	f.state.Turn++
	return f.state.Clone(), nil
}

func (f *fakeStore) advance() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.Turn++
}

func nextEvent(t *testing.T, s *ChannelSession) SessionEvent {
	t.Helper()
	select {
	case evt := <-s.Events():
		return evt
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for an event")
		return nil
	}
}

func startHub(t *testing.T, store GameStore, cfg HubConfig) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	h := NewHub(cfg, store, NewSessionRegistry(), nil)
	h.Start(ctx)
	t.Cleanup(func() {
		h.Stop()
		cancel()
	})
	return h
}

func TestHubResolvesWhenComplete(t *testing.T) {
	store := &fakeStore{state: twoColonies()}
	h := startHub(t, store, HubConfig{})
	viewer := NewChannelSession("viewer", 8)
	h.Watch(viewer, "g1")
	ctx := context.Background()

	res, err := h.Submit(ctx, "g1", orders.Submission{Turn: 4, Colony: 1, Orders: []orders.Order{{Ant: 0, Action: action.Defend()}}})
	if err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}
	if res.Committed || len(res.Missing) != 1 || res.Missing[0] != 0 {
		t.Errorf("Submit() = %+v, expected colony 0 missing", res)
	}
	evt, ok := nextEvent(t, viewer).(OrdersReceivedEvent)
	if !ok || evt.Colony != 1 || len(evt.Missing) != 1 || evt.Missing[0] != 0 {
		t.Errorf("first event = %+v, expected orders from colony 1", evt)
	}
	if missing, _ := h.Missing("g1"); len(missing) != 1 {
		t.Errorf("Missing() = %v, expected [0]", missing)
	}

	res, err = h.Submit(ctx, "g1", orders.Submission{Turn: 4, Colony: 0})
	if err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}
	if !res.Committed {
		t.Errorf("Submit() = %+v, expected the turn to be committed", res)
	}
	nextEvent(t, viewer)
	committed, ok := nextEvent(t, viewer).(TurnCommittedEvent)
	if !ok || committed.Turn != 4 {
		t.Errorf("event = %+v, expected TurnCommittedEvent for turn 4", committed)
	}

	if len(store.committed) != 1 {
		t.Fatalf("committed %d turns, expected 1", len(store.committed))
	}
	if store.committed[0][1][0].Kind != action.KindDefend {
		t.Errorf("committed selections = %+v", store.committed[0])
	}
	if missing, _ := h.Missing("g1"); len(missing) != 2 {
		t.Errorf("Missing() after commit = %v, expected both colonies", missing)
	}
}

func TestHubResolveFailure(t *testing.T) {
	store := &fakeStore{state: twoColonies(), reject: true}
	h := startHub(t, store, HubConfig{})
	ctx := context.Background()

	if _, err := h.Submit(ctx, "g1", orders.Submission{Turn: 4, Colony: 0}); err != nil {
		t.Fatal(err)
	}
	_, err := h.Submit(ctx, "g1", orders.Submission{Turn: 4, Colony: 1})
	if !errors.Is(err, errRejected) {
		t.Errorf("Submit() error = %v, expected the store error", err)
	}
	missing, _ := h.Missing("g1")
	if len(missing) != 1 || missing[0] != 1 {
		t.Errorf("Missing() = %v, expected [1]", missing)
	}
}

func TestHubPollAnnouncesExternalTurns(t *testing.T) {
	store := &fakeStore{state: twoColonies()}
	h := startHub(t, store, HubConfig{PollPeriod: 10 * time.Millisecond})
	viewer := NewChannelSession("viewer", 8)
	h.Watch(viewer, "g1")

	store.advance()

	evt, ok := nextEvent(t, viewer).(TurnCommittedEvent)
	if !ok || evt.Turn != 4 {
		t.Errorf("event = %+v, expected TurnCommittedEvent for turn 4", evt)
	}
}

func TestHubStop(t *testing.T) {
	store := &fakeStore{state: twoColonies()}
	h := NewHub(HubConfig{}, store, NewSessionRegistry(), nil)
	viewer := NewChannelSession("viewer", 8)
	h.Watch(viewer, "g1")
	h.Stop()
	h.Stop()

	if _, ok := nextEvent(t, viewer).(HubClosedEvent); !ok {
		t.Error("expected HubClosedEvent")
	}
	if _, err := h.Submit(context.Background(), "g1", orders.Submission{Turn: 4}); !errors.Is(err, ErrHubClosed) {
		t.Errorf("Submit() after Stop error = %v, expected ErrHubClosed", err)
	}
}
