package entity

type EventKind string

const (
	KindRoomCreated EventKind = "room:created"
	KindJoinedRoom  EventKind = "room:joined"
	KindLeftRoom    EventKind = "room:left"
	KindRoomDeleted EventKind = "room:deleted"
	KindGameStarted EventKind = "game:started"
	KindGameEnded   EventKind = "game:ended"
	KindMadeMove    EventKind = "game:move"
)

// Event is what the transport broadcasts after a successful room operation.
type Event struct {
	Kind      EventKind `json:"kind"`
	RoomID    string    `json:"roomId"`
	OwnerName string    `json:"ownerName,omitempty"`
	GuestName string    `json:"guestName,omitempty"`
	Move      *MoveInfo `json:"move,omitempty"`
}

// RoomScoped reports whether only the room's group receives the event.
// Lobby-visible changes go to every connection.
func (that Event) RoomScoped() bool {
	return that.Kind == KindMadeMove
}

func RoomCreated(id, ownerName string) Event {
	return Event{Kind: KindRoomCreated, RoomID: id, OwnerName: ownerName}
}

func JoinedRoom(id, guestName string) Event {
	return Event{Kind: KindJoinedRoom, RoomID: id, GuestName: guestName}
}

func LeftRoom(id string) Event {
	return Event{Kind: KindLeftRoom, RoomID: id}
}

func RoomDeleted(id string) Event {
	return Event{Kind: KindRoomDeleted, RoomID: id}
}

func GameStarted(id string) Event {
	return Event{Kind: KindGameStarted, RoomID: id}
}

func GameEnded(id string) Event {
	return Event{Kind: KindGameEnded, RoomID: id}
}

func MadeMove(id string, move MoveInfo) Event {
	return Event{Kind: KindMadeMove, RoomID: id, Move: &move}
}
