package multiplayer

// SessionEvent represents an event sent from the hub to a session.
type SessionEvent interface {
	sessionEvent()
}

// OrdersReceivedEvent is sent when a colony's orders are accepted.
// Missing lists the colonies still to submit.
type OrdersReceivedEvent struct {
	Game    GameID
	Turn    int
	Colony  int
	Missing []int
}

func (OrdersReceivedEvent) sessionEvent() {}

// TurnCommittedEvent is sent when a turn has been resolved and stored.
// Turn is the number of the turn that was resolved.
type TurnCommittedEvent struct {
	Game GameID
	Turn int
}

func (TurnCommittedEvent) sessionEvent() {}

// ResolveFailedEvent is sent when a complete set of orders could not be resolved.
type ResolveFailedEvent struct {
	Game    GameID
	Turn    int
	Message string
}

func (ResolveFailedEvent) sessionEvent() {}

// HubClosedEvent is sent to every session when the hub shuts down.
type HubClosedEvent struct{}

func (HubClosedEvent) sessionEvent() {}
