package websocket

import (
	"encoding/json"
	"iter"

	"github.com/rocketscienceinc/gobang-backend/internal/entity"
	"github.com/rocketscienceinc/gobang-backend/internal/gobang"
)

const (
	actionLogin     = "login"
	actionRoomsList = "rooms:list"
	actionCreate    = "room:create"
	actionJoin      = "room:join"
	actionWatch     = "room:watch"
	actionLeave     = "room:leave"
	actionDelete    = "room:delete"
	actionStart     = "game:start"
	actionEnd       = "game:end"
	actionMove      = "game:move"
	actionBoard     = "game:board"
)

// Client-facing error texts. Rejections stay vague on purpose.
const (
	errTextBadPayload    = "invalid payload"
	errTextUnknownAction = "unknown action"
	errTextLoginRequired = "login required"
	errTextSeated        = "already in a room"
	errTextNoRoom        = "not in a room"
	errTextRejected      = "rejected"
	errTextInternal      = "internal error"
	errTextCorruptGame   = "game was corrupted and has been ended"
)

// eventPrefix keeps broadcast events apart from replies, which reuse the
// request's action name.
const eventPrefix = "event:"

func eventAction(kind entity.EventKind) string {
	return eventPrefix + string(kind)
}

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Reply struct {
	OK     bool              `json:"ok"`
	Error  string            `json:"error,omitempty"`
	ID     string            `json:"id,omitempty"`
	RoomID string            `json:"roomId,omitempty"`
	Rooms  []entity.RoomInfo `json:"rooms,omitempty"`
	Board  [][]int           `json:"board,omitempty"`
	Move   *entity.MoveInfo  `json:"move,omitempty"`
}

func failed(text string) Reply {
	return Reply{Error: text}
}

type loginRequest struct {
	Name string `json:"name"`
}

type roomRequest struct {
	RoomID string `json:"roomId"`
}

type startRequest struct {
	Rows    int `json:"rows"`
	Columns int `json:"columns"`
}

type moveRequest struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// boardRows turns board rows into plain numbers; a []Stone would encode as base64.
func boardRows(rows iter.Seq[[]gobang.Stone]) [][]int {
	board := [][]int{}

	for row := range rows {
		cells := make([]int, len(row))
		for i, stone := range row {
			cells[i] = int(stone)
		}
		board = append(board, cells)
	}

	return board
}
