package types

import "time"

// kind of lease event, doubles as the notification topic
type EventKind string

const (
	EventBook   EventKind = "book"
	EventReturn EventKind = "return"
)

// emitted after a successful book or return
type Event struct {
	ID        string    `json:"id"`
	Kind      EventKind `json:"kind"`
	Mobile    string    `json:"mobile"`
	Requester string    `json:"requester"`
	Made      time.Time `json:"made"`
	Due       time.Time `json:"due,omitzero"`
	At        time.Time `json:"at"`
}
