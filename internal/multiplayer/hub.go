package multiplayer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/antfarm/internal/orders"
	"github.com/vovakirdan/antfarm/internal/turn"
	"github.com/vovakirdan/antfarm/internal/world"
)

// ErrHubClosed is returned by Submit after the hub has stopped.
var ErrHubClosed = errors.New("multiplayer: hub closed")

// GameStore is the persistence the hub needs.
// This allows the hub to resolve turns without depending on the storage package.
type GameStore interface {
	// CurrentState returns the latest committed turn-start state of a game.
	CurrentState(game GameID) (world.State, error)
	// CommitTurn resolves the current turn with sel and stores the result.
	CommitTurn(game GameID, sel turn.Selections) (world.State, error)
}

// HubConfig holds configuration for the hub.
type HubConfig struct {
	// PollPeriod is how often stored games are checked for turns committed
	// by another process. Zero disables polling.
	PollPeriod time.Duration
}

// DefaultHubConfig returns sensible defaults.
func DefaultHubConfig() HubConfig {
	return HubConfig{PollPeriod: 5 * time.Second}
}

// SubmitResult tells a submitter what happened to the turn.
type SubmitResult struct {
	// Missing lists the colonies that still have to submit.
	Missing []int
	// Committed is set when the submission completed the turn and it was resolved.
	Committed bool
}

type submitReply struct {
	result SubmitResult
	err    error
}

type submitMsg struct {
	game  GameID
	sub   orders.Submission
	reply chan submitReply
}

// Hub collects orders for stored games and resolves a turn as soon as every
// colony has submitted. Sessions watching a game are told about progress.
type Hub struct {
	config   HubConfig
	store    GameStore
	sessions *SessionRegistry
	logger   *log.Logger

	mu         sync.Mutex
	collectors map[GameID]*Collector
	seen       map[GameID]int

	msgChan  chan submitMsg
	done     chan struct{}
	stopOnce sync.Once
}

// NewHub creates a hub. A nil logger discards log output.
func NewHub(cfg HubConfig, store GameStore, sessions *SessionRegistry, logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Hub{
		config:     cfg,
		store:      store,
		sessions:   sessions,
		logger:     logger,
		collectors: make(map[GameID]*Collector),
		seen:       make(map[GameID]int),
		msgChan:    make(chan submitMsg, 64),
		done:       make(chan struct{}),
	}
}

// Start begins the hub's background processing. It stops when ctx is done
// or Stop is called.
func (h *Hub) Start(ctx context.Context) {
	go h.processMessages(ctx)
	if h.config.PollPeriod > 0 {
		go h.pollLoop(ctx)
	}
}

// Stop shuts down the hub and notifies every session.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)
		h.sessions.SendAll(HubClosedEvent{})
	})
}

// Watch registers a session as a viewer of game.
func (h *Hub) Watch(session SessionHandle, game GameID) {
	h.sessions.Register(session, game)
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.seen[game]; !ok {
		if st, err := h.store.CurrentState(game); err == nil {
			h.seen[game] = st.Turn
		}
	}
}

// Submit hands a colony's orders to the hub and waits until they are
// accepted. When they complete the turn it is resolved before Submit returns.
func (h *Hub) Submit(ctx context.Context, game GameID, sub orders.Submission) (SubmitResult, error) {
	msg := submitMsg{game: game, sub: sub, reply: make(chan submitReply, 1)}
	select {
	case h.msgChan <- msg:
	case <-h.done:
		return SubmitResult{}, ErrHubClosed
	case <-ctx.Done():
		return SubmitResult{}, ctx.Err()
	}
	select {
	case r := <-msg.reply:
		return r.result, r.err
	case <-h.done:
		return SubmitResult{}, ErrHubClosed
	case <-ctx.Done():
		return SubmitResult{}, ctx.Err()
	}
}

// Missing returns the colonies that still have to submit for game.
func (h *Hub) Missing(game GameID) ([]int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, err := h.collectorLocked(game)
	if err != nil {
		return nil, err
	}
	return c.Missing(), nil
}

func (h *Hub) processMessages(ctx context.Context) {
	for {
		select {
		case msg := <-h.msgChan:
			res, err := h.handleSubmit(msg)
			msg.reply <- submitReply{result: res, err: err}
		case <-h.done:
			return
		case <-ctx.Done():
			h.Stop()
			return
		}
	}
}

func (h *Hub) handleSubmit(msg submitMsg) (SubmitResult, error) {
	h.mu.Lock()
	c, err := h.collectorLocked(msg.game)
	if err != nil {
		h.mu.Unlock()
		return SubmitResult{}, err
	}
	if err := c.Submit(msg.sub); err != nil {
		h.mu.Unlock()
		return SubmitResult{}, err
	}
	missing := c.Missing()
	h.mu.Unlock()

	h.logger.Info("orders received", "game", msg.game, "turn", msg.sub.Turn, "colony", msg.sub.Colony, "missing", len(missing))
	h.sessions.Broadcast(msg.game, OrdersReceivedEvent{
		Game:    msg.game,
		Turn:    msg.sub.Turn,
		Colony:  msg.sub.Colony,
		Missing: missing,
	})
	if len(missing) > 0 {
		return SubmitResult{Missing: missing}, nil
	}

	next, err := h.store.CommitTurn(msg.game, c.Selections())
	if err != nil {
		// The last submission completed an unresolvable set; it has to be resent.
		c.Withdraw(msg.sub.Colony)
		h.logger.Warn("turn not resolved", "game", msg.game, "turn", c.Turn(), "err", err)
		h.sessions.Broadcast(msg.game, ResolveFailedEvent{Game: msg.game, Turn: c.Turn(), Message: err.Error()})
		return SubmitResult{Missing: []int{msg.sub.Colony}}, fmt.Errorf("multiplayer: resolve turn %d: %w", c.Turn(), err)
	}

	h.mu.Lock()
	delete(h.collectors, msg.game)
	h.seen[msg.game] = next.Turn
	h.mu.Unlock()

	h.logger.Info("turn committed", "game", msg.game, "turn", c.Turn())
	h.sessions.Broadcast(msg.game, TurnCommittedEvent{Game: msg.game, Turn: c.Turn()})
	return SubmitResult{Committed: true}, nil
}

// collectorLocked returns the collector for the game's current turn,
// replacing one left over from an older turn. Callers hold h.mu.
func (h *Hub) collectorLocked(game GameID) (*Collector, error) {
	st, err := h.store.CurrentState(game)
	if err != nil {
		return nil, err
	}
	if c, ok := h.collectors[game]; ok && c.Turn() == st.Turn {
		return c, nil
	}
	c := NewCollector(&st)
	h.collectors[game] = c
	return c, nil
}

func (h *Hub) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(h.config.PollPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			h.poll()
		case <-h.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// poll announces turns that were committed outside the hub.
func (h *Hub) poll() {
	h.mu.Lock()
	games := make([]GameID, 0, len(h.seen))
	for g := range h.seen {
		games = append(games, g)
	}
	h.mu.Unlock()

	for _, g := range games {
		st, err := h.store.CurrentState(g)
		if err != nil {
			h.logger.Debug("poll failed", "game", g, "err", err)
			continue
		}
		h.mu.Lock()
		last := h.seen[g]
		if st.Turn > last {
			h.seen[g] = st.Turn
		}
		h.mu.Unlock()
		for t := last; t < st.Turn; t++ {
			h.sessions.Broadcast(g, TurnCommittedEvent{Game: g, Turn: t})
		}
	}
}
