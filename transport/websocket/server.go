package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/gobang-backend/internal/broadcast"
	"github.com/rocketscienceinc/gobang-backend/internal/entity"
	"github.com/rocketscienceinc/gobang-backend/internal/gobang"
)

const (
	shutdownTimeout = 5 * time.Second
	cleanupTimeout  = 5 * time.Second
)

type roomManager interface {
	CreateRoom(ctx context.Context, owner, ownerName string) (string, error)
	JoinRoom(ctx context.Context, id, guest, guestName string) (bool, error)
	LeaveRoom(ctx context.Context, id, guest string) (bool, error)
	DeleteRoom(ctx context.Context, id, owner string) (bool, error)

	StartGame(ctx context.Context, id, owner string, rows, columns int) (bool, error)
	EndGame(ctx context.Context, id, caller string) (bool, error)
	GetBoard(ctx context.Context, id string) (iter.Seq[[]gobang.Stone], error)
	MakeMove(ctx context.Context, id, caller string, isOwner bool, x, y int) (*entity.MoveInfo, error)

	GetRooms(ctx context.Context) iter.Seq2[entity.RoomInfo, error]
}

type publisher interface {
	Publish(ctx context.Context, ev entity.Event) error
}

type handlerFunc func(ctx context.Context, conn *connection, msg *Message) error

// BoardSize is used by game:start when the client sends no dimensions.
type BoardSize struct {
	Rows    int
	Columns int
}

type Server struct {
	logger *slog.Logger
	rooms  roomManager
	hub    *broadcast.Hub
	events publisher
	size   BoardSize

	upgrader websocket.Upgrader
	handlers map[string]handlerFunc
}

// New builds the WebSocket server. Events go out through events, which is the
// hub itself on a single instance or a relay feeding every instance's hub.
func New(logger *slog.Logger, rooms roomManager, hub *broadcast.Hub, events publisher, size BoardSize) *Server {
	server := &Server{
		logger: logger.With("component", "websocket"),
		rooms:  rooms,
		hub:    hub,
		events: events,
		size:   size,

		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},
	}

	server.handlers = map[string]handlerFunc{
		actionLogin:     server.handleLogin,
		actionRoomsList: server.handleRoomsList,
		actionCreate:    server.handleCreateRoom,
		actionJoin:      server.handleJoinRoom,
		actionWatch:     server.handleWatchRoom,
		actionLeave:     server.handleLeaveRoom,
		actionDelete:    server.handleDeleteRoom,
		actionStart:     server.handleStartGame,
		actionEnd:       server.handleEndGame,
		actionMove:      server.handleMove,
		actionBoard:     server.handleBoard,
	}

	return server
}

// Handler serves the WebSocket endpoint on /ws.
func (that *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.serve(ctx, w, r)
	})

	return mux
}

// Start - starts WebSocket server and stops it when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     that.Handler(ctx),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) serve(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serve")

	ws, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	conn := newConnection(ws, uuid.NewString())
	that.hub.Register(conn)

	log.Info("WebSocket connection established", "session", conn.ID())

	go conn.writeLoop()

	that.readLoop(ctx, conn)

	that.hub.Unregister(conn)
	that.disconnect(ctx, conn)
	conn.close()

	log.Info("WebSocket connection closed", "session", conn.ID())
}

// readLoop - processes messages from the client until it goes away.
func (that *Server) readLoop(ctx context.Context, conn *connection) {
	log := that.logger.With("method", "readLoop", "session", conn.ID())

	conn.ws.SetReadLimit(maxMessageSize)
	_ = conn.ws.SetReadDeadline(time.Now().Add(pongWait))
	conn.ws.SetPongHandler(func(string) error {
		return conn.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg Message
		if err := conn.ws.ReadJSON(&msg); err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				that.send(conn, "", failed(errTextBadPayload))
				continue
			}

			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("connection closed unexpectedly", "error", err)
			}

			return
		}

		that.dispatch(ctx, conn, &msg)
	}
}

func (that *Server) dispatch(ctx context.Context, conn *connection, msg *Message) {
	log := that.logger.With("method", "dispatch", "session", conn.ID(), "action", msg.Action)

	handler, ok := that.handlers[msg.Action]
	if !ok {
		that.send(conn, msg.Action, failed(errTextUnknownAction))
		return
	}

	// the owner deleted the room we were sitting or watching in
	if conn.session.RoomID != "" && conn.roomDeleted() {
		that.exit(conn)
	}

	if err := handler(ctx, conn, msg); err != nil {
		log.Error("error processing message", "error", err)
		that.send(conn, msg.Action, failed(errTextInternal))
	}
}

func (that *Server) send(conn *connection, action string, reply Reply) {
	if err := conn.reply(action, reply); err != nil {
		that.logger.Warn("failed to send reply", "session", conn.ID(), "action", action, "error", err)
	}
}

func (that *Server) publish(ctx context.Context, ev entity.Event) {
	if err := that.events.Publish(ctx, ev); err != nil {
		that.logger.Error("failed to publish event", "kind", ev.Kind, "roomID", ev.RoomID, "error", err)
	}
}
