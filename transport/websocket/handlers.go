package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/gobang-backend/internal/apperror"
	"github.com/rocketscienceinc/gobang-backend/internal/entity"
	"github.com/rocketscienceinc/gobang-backend/internal/gobang"
)

func decode(msg *Message, v any) bool {
	if len(msg.Payload) == 0 {
		return true
	}

	return json.Unmarshal(msg.Payload, v) == nil
}

func (that *Server) handleLogin(_ context.Context, conn *connection, msg *Message) error {
	var req loginRequest
	if !decode(msg, &req) || req.Name == "" {
		that.send(conn, msg.Action, failed(errTextBadPayload))
		return nil
	}

	conn.session.Name = req.Name
	that.send(conn, msg.Action, Reply{OK: true, ID: conn.ID()})

	return nil
}

func (that *Server) handleRoomsList(ctx context.Context, conn *connection, msg *Message) error {
	rooms := []entity.RoomInfo{}

	for info, err := range that.rooms.GetRooms(ctx) {
		if err != nil {
			return fmt.Errorf("failed to list rooms: %w", err)
		}
		rooms = append(rooms, info)
	}

	that.send(conn, msg.Action, Reply{OK: true, Rooms: rooms})

	return nil
}

func (that *Server) handleCreateRoom(ctx context.Context, conn *connection, msg *Message) error {
	if !that.canEnter(conn, msg) {
		return nil
	}

	id, err := that.rooms.CreateRoom(ctx, conn.ID(), conn.session.Name)
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}

	that.enter(conn, id, true, false)
	that.publish(ctx, entity.RoomCreated(id, conn.session.Name))
	that.send(conn, msg.Action, Reply{OK: true, RoomID: id})

	return nil
}

func (that *Server) handleJoinRoom(ctx context.Context, conn *connection, msg *Message) error {
	var req roomRequest
	if !decode(msg, &req) || req.RoomID == "" {
		that.send(conn, msg.Action, failed(errTextBadPayload))
		return nil
	}

	if !that.canEnter(conn, msg) {
		return nil
	}

	ok, err := that.rooms.JoinRoom(ctx, req.RoomID, conn.ID(), conn.session.Name)
	if err != nil {
		return fmt.Errorf("failed to join room: %w", err)
	}

	if !ok {
		that.send(conn, msg.Action, failed(errTextRejected))
		return nil
	}

	that.enter(conn, req.RoomID, false, false)
	that.publish(ctx, entity.JoinedRoom(req.RoomID, conn.session.Name))
	that.send(conn, msg.Action, Reply{OK: true, RoomID: req.RoomID})

	return nil
}

// handleWatchRoom makes the caller a spectator: it receives the room's moves
// but holds no seat in the stored room.
func (that *Server) handleWatchRoom(ctx context.Context, conn *connection, msg *Message) error {
	var req roomRequest
	if !decode(msg, &req) || req.RoomID == "" {
		that.send(conn, msg.Action, failed(errTextBadPayload))
		return nil
	}

	if conn.session.Seated() {
		that.send(conn, msg.Action, failed(errTextSeated))
		return nil
	}

	that.enter(conn, req.RoomID, false, true)

	return that.replyBoard(ctx, conn, msg.Action, req.RoomID)
}

func (that *Server) handleLeaveRoom(ctx context.Context, conn *connection, msg *Message) error {
	session := &conn.session
	roomID := session.RoomID

	switch {
	case roomID == "":
		that.send(conn, msg.Action, failed(errTextNoRoom))
		return nil
	case session.Watching:
		that.exit(conn)
		that.send(conn, msg.Action, Reply{OK: true, RoomID: roomID})
		return nil
	}

	ok, err := that.rooms.LeaveRoom(ctx, roomID, conn.ID())
	if err != nil {
		return fmt.Errorf("failed to leave room: %w", err)
	}

	if !ok {
		that.send(conn, msg.Action, failed(errTextRejected))
		return nil
	}

	that.exit(conn)
	that.publish(ctx, entity.LeftRoom(roomID))
	that.send(conn, msg.Action, Reply{OK: true, RoomID: roomID})

	return nil
}

func (that *Server) handleDeleteRoom(ctx context.Context, conn *connection, msg *Message) error {
	roomID, ok := that.seatedRoom(conn, msg)
	if !ok {
		return nil
	}

	ok, err := that.rooms.DeleteRoom(ctx, roomID, conn.ID())
	if err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}

	if !ok {
		that.send(conn, msg.Action, failed(errTextRejected))
		return nil
	}

	that.exit(conn)
	that.publish(ctx, entity.RoomDeleted(roomID))
	that.send(conn, msg.Action, Reply{OK: true, RoomID: roomID})

	return nil
}

func (that *Server) handleStartGame(ctx context.Context, conn *connection, msg *Message) error {
	req := startRequest{Rows: that.size.Rows, Columns: that.size.Columns}
	if !decode(msg, &req) {
		that.send(conn, msg.Action, failed(errTextBadPayload))
		return nil
	}

	roomID, ok := that.seatedRoom(conn, msg)
	if !ok {
		return nil
	}

	ok, err := that.rooms.StartGame(ctx, roomID, conn.ID(), req.Rows, req.Columns)
	if err != nil {
		return fmt.Errorf("failed to start game: %w", err)
	}

	if !ok {
		that.send(conn, msg.Action, failed(errTextRejected))
		return nil
	}

	that.publish(ctx, entity.GameStarted(roomID))
	that.send(conn, msg.Action, Reply{OK: true, RoomID: roomID})

	return nil
}

func (that *Server) handleEndGame(ctx context.Context, conn *connection, msg *Message) error {
	roomID, ok := that.seatedRoom(conn, msg)
	if !ok {
		return nil
	}

	ok, err := that.endGame(ctx, roomID, conn.ID())
	if err != nil {
		return err
	}

	if !ok {
		that.send(conn, msg.Action, failed(errTextRejected))
		return nil
	}

	that.send(conn, msg.Action, Reply{OK: true, RoomID: roomID})

	return nil
}

func (that *Server) handleMove(ctx context.Context, conn *connection, msg *Message) error {
	var req moveRequest
	if !decode(msg, &req) {
		that.send(conn, msg.Action, failed(errTextBadPayload))
		return nil
	}

	roomID, ok := that.seatedRoom(conn, msg)
	if !ok {
		return nil
	}

	info, err := that.rooms.MakeMove(ctx, roomID, conn.ID(), conn.session.IsOwner, req.X, req.Y)
	if errors.Is(err, apperror.ErrCorruptGame) {
		that.publish(ctx, entity.GameEnded(roomID))
		that.send(conn, msg.Action, failed(errTextCorruptGame))
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to make move: %w", err)
	}

	if info == nil {
		that.send(conn, msg.Action, failed(errTextRejected))
		return nil
	}

	that.publish(ctx, entity.MadeMove(roomID, *info))

	if info.Result != gobang.OutcomeNone {
		if _, err = that.endGame(ctx, roomID, conn.ID()); err != nil {
			return err
		}
	}

	that.send(conn, msg.Action, Reply{OK: true, RoomID: roomID, Move: info})

	return nil
}

func (that *Server) handleBoard(ctx context.Context, conn *connection, msg *Message) error {
	roomID := conn.session.RoomID
	if roomID == "" {
		that.send(conn, msg.Action, failed(errTextNoRoom))
		return nil
	}

	return that.replyBoard(ctx, conn, msg.Action, roomID)
}

func (that *Server) replyBoard(ctx context.Context, conn *connection, action, roomID string) error {
	rows, err := that.rooms.GetBoard(ctx, roomID)
	if errors.Is(err, apperror.ErrCorruptGame) {
		that.publish(ctx, entity.GameEnded(roomID))
		that.send(conn, action, failed(errTextCorruptGame))
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to get board: %w", err)
	}

	that.send(conn, action, Reply{OK: true, RoomID: roomID, Board: boardRows(rows)})

	return nil
}

// endGame ends the room's game and announces it when that succeeded.
func (that *Server) endGame(ctx context.Context, roomID, caller string) (bool, error) {
	ok, err := that.rooms.EndGame(ctx, roomID, caller)
	if err != nil {
		return false, fmt.Errorf("failed to end game: %w", err)
	}

	if ok {
		that.publish(ctx, entity.GameEnded(roomID))
	}

	return ok, nil
}

// disconnect releases whatever the session still holds: its game, its guest
// seat and the room it owns. Each step that succeeds is announced.
func (that *Server) disconnect(ctx context.Context, conn *connection) {
	session := conn.session
	if !session.Seated() {
		return
	}

	log := that.logger.With("method", "disconnect", "session", session.ID, "roomID", session.RoomID)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()

	if _, err := that.endGame(ctx, session.RoomID, session.ID); err != nil {
		log.Error("failed to end game", "error", err)
	}

	if ok, err := that.rooms.LeaveRoom(ctx, session.RoomID, session.ID); err != nil {
		log.Error("failed to leave room", "error", err)
	} else if ok {
		that.publish(ctx, entity.LeftRoom(session.RoomID))
	}

	if ok, err := that.rooms.DeleteRoom(ctx, session.RoomID, session.ID); err != nil {
		log.Error("failed to delete room", "error", err)
	} else if ok {
		that.publish(ctx, entity.RoomDeleted(session.RoomID))
	}
}

// canEnter checks that the caller may take a seat in a room.
func (that *Server) canEnter(conn *connection, msg *Message) bool {
	switch {
	case !conn.session.LoggedIn():
		that.send(conn, msg.Action, failed(errTextLoginRequired))
		return false
	case conn.session.Seated():
		that.send(conn, msg.Action, failed(errTextSeated))
		return false
	}

	return true
}

// seatedRoom returns the room the caller plays in, replying an error if none.
func (that *Server) seatedRoom(conn *connection, msg *Message) (string, bool) {
	if !conn.session.Seated() {
		that.send(conn, msg.Action, failed(errTextNoRoom))
		return "", false
	}

	return conn.session.RoomID, true
}

// enter moves the connection into roomID's group, leaving any watched room.
func (that *Server) enter(conn *connection, roomID string, isOwner, watching bool) {
	if conn.session.RoomID != "" {
		that.hub.Leave(conn.session.RoomID, conn)
	}

	conn.session.enter(roomID, isOwner, watching)
	conn.setRoom(roomID)
	that.hub.Join(roomID, conn)
}

func (that *Server) exit(conn *connection) {
	that.hub.Leave(conn.session.RoomID, conn)
	conn.session.leave()
	conn.setRoom("")
}
