package multiplayer

import "sync"

// SessionHandle is the transport-neutral interface for communicating with a session.
type SessionHandle interface {
	// ID returns the unique session identifier.
	ID() SessionID

	// Send sends an event to the session asynchronously.
	// Must be non-blocking; implementations should use buffered channels.
	Send(evt SessionEvent)

	// Done returns a channel that closes when the session ends.
	Done() <-chan struct{}
}

// ChannelSession is a SessionHandle implementation using Go channels.
// The viewer reads its Events channel from a tea.Cmd.
type ChannelSession struct {
	id       SessionID
	events   chan SessionEvent
	done     chan struct{}
	doneOnce sync.Once
}

// NewChannelSession creates a new channel-based session handle.
// eventBufferSize controls how many events can be buffered before dropping.
func NewChannelSession(id SessionID, eventBufferSize int) *ChannelSession {
	if eventBufferSize < 1 {
		eventBufferSize = 16
	}
	return &ChannelSession{
		id:     id,
		events: make(chan SessionEvent, eventBufferSize),
		done:   make(chan struct{}),
	}
}

// ID returns the session identifier.
func (s *ChannelSession) ID() SessionID {
	return s.id
}

// Send queues an event. When the buffer is full the oldest event is dropped.
func (s *ChannelSession) Send(evt SessionEvent) {
	select {
	case <-s.done:
		return
	default:
	}

	select {
	case s.events <- evt:
	default:
		select {
		case <-s.events:
		default:
		}
		select {
		case s.events <- evt:
		default:
		}
	}
}

// Events returns the channel to receive events from.
func (s *ChannelSession) Events() <-chan SessionEvent {
	return s.events
}

// Done returns the done channel.
func (s *ChannelSession) Done() <-chan struct{} {
	return s.done
}

// Close marks the session as done. Safe to call multiple times.
func (s *ChannelSession) Close() {
	s.doneOnce.Do(func() {
		close(s.done)
	})
}

type watcher struct {
	handle SessionHandle
	game   GameID
}

// SessionRegistry tracks which game each active session is watching.
// Thread-safe for concurrent access.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[SessionID]watcher
}

// NewSessionRegistry creates a new session registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[SessionID]watcher),
	}
}

// Register adds a session watching game. Registering an ID again moves it.
func (r *SessionRegistry) Register(session SessionHandle, game GameID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID()] = watcher{handle: session, game: game}
}

// Unregister removes a session from the registry.
func (r *SessionRegistry) Unregister(id SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Get retrieves a session by ID.
func (r *SessionRegistry) Get(id SessionID) (SessionHandle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.sessions[id]
	return w.handle, ok
}

// Count returns the number of registered sessions.
func (r *SessionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Broadcast sends evt to every session watching game. Sessions that have
// ended are dropped from the registry.
func (r *SessionRegistry) Broadcast(game GameID, evt SessionEvent) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	sent := 0
	for id, w := range r.sessions {
		select {
		case <-w.handle.Done():
			delete(r.sessions, id)
			continue
		default:
		}
		if w.game != game {
			continue
		}
		w.handle.Send(evt)
		sent++
	}
	return sent
}

// SendAll sends evt to every registered session.
func (r *SessionRegistry) SendAll(evt SessionEvent) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, w := range r.sessions {
		w.handle.Send(evt)
	}
}
