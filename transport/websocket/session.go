package websocket

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/gobang-backend/internal/entity"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 4096
	sendBuffer     = 64
)

var (
	errSlowClient = errors.New("client send buffer is full")
	errClosed     = errors.New("connection is closed")
)

// Session is what the server knows about a caller. Only the connection's
// read loop touches it.
type Session struct {
	ID       string
	Name     string
	RoomID   string
	IsOwner  bool
	Watching bool
}

func (that *Session) LoggedIn() bool {
	return that.Name != ""
}

// Seated reports whether the caller plays in a room, as owner or guest.
func (that *Session) Seated() bool {
	return that.RoomID != "" && !that.Watching
}

func (that *Session) enter(roomID string, isOwner, watching bool) {
	that.RoomID = roomID
	that.IsOwner = isOwner
	that.Watching = watching
}

func (that *Session) leave() {
	that.enter("", false, false)
}

// connection serializes all writes to one socket through a buffered queue.
type connection struct {
	ws      *websocket.Conn
	session Session

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once

	// room mirrors session.RoomID for the hub goroutines; gone is set once
	// that room's deletion is delivered.
	mu   sync.Mutex
	room string
	gone bool
}

func newConnection(ws *websocket.Conn, id string) *connection {
	return &connection{
		ws:      ws,
		session: Session{ID: id},
		send:    make(chan []byte, sendBuffer),
		done:    make(chan struct{}),
	}
}

func (that *connection) ID() string {
	return that.session.ID
}

// Send queues an event for the client. Called from the hub.
func (that *connection) Send(ev entity.Event) error {
	if ev.Kind == entity.KindRoomDeleted {
		that.mu.Lock()
		if ev.RoomID == that.room {
			that.gone = true
		}
		that.mu.Unlock()
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	return that.write(Message{Action: eventAction(ev.Kind), Payload: payload})
}

func (that *connection) reply(action string, reply Reply) error {
	payload, err := json.Marshal(reply)
	if err != nil {
		return fmt.Errorf("failed to encode reply: %w", err)
	}

	return that.write(Message{Action: action, Payload: payload})
}

func (that *connection) write(msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	select {
	case <-that.done:
		return errClosed
	default:
	}

	select {
	case that.send <- data:
		return nil
	case <-that.done:
		return errClosed
	default:
		return errSlowClient
	}
}

// setRoom records the room the session is now in and forgets any deletion
// seen for the previous one.
func (that *connection) setRoom(roomID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.room = roomID
	that.gone = false
}

// roomDeleted reports whether a deletion of the session's room was seen.
func (that *connection) roomDeleted() bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.gone
}

func (that *connection) close() {
	that.closeOnce.Do(func() {
		close(that.done)
		_ = that.ws.Close()
	})
}

// writeLoop owns the socket's write side until the connection closes.
func (that *connection) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		that.close()
	}()

	for {
		select {
		case data := <-that.send:
			_ = that.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := that.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = that.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := that.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-that.done:
			return
		}
	}
}
