package entity

import (
	"slices"

	"github.com/rocketscienceinc/gobang-backend/internal/apperror"
	"github.com/rocketscienceinc/gobang-backend/internal/gobang"
)

// Room is the stored record of a room. An empty Guest means no guest and a nil
// Game means no match is in progress; the store keeps those fields absent.
type Room struct {
	ID        string
	Owner     string
	OwnerName string
	Guest     string
	GuestName string
	Game      []byte
}

func NewRoom(id, owner, ownerName string) *Room {
	return &Room{
		ID:        id,
		Owner:     owner,
		OwnerName: ownerName,
	}
}

func (that *Room) HasGuest() bool {
	return that.Guest != ""
}

func (that *Room) HasGame() bool {
	return that.Game != nil
}

func (that *Room) IsOwner(id string) bool {
	return id != "" && that.Owner == id
}

func (that *Room) IsGuest(id string) bool {
	return id != "" && that.Guest == id
}

func (that *Room) IsParticipant(id string) bool {
	return that.IsOwner(id) || that.IsGuest(id)
}

// Join seats guest as the second player.
func (that *Room) Join(guest, guestName string) error {
	switch {
	case guest == "":
		return apperror.ErrNoIdentity
	case that.IsOwner(guest):
		return apperror.ErrOwnRoom
	case that.HasGuest():
		return apperror.ErrRoomFull
	case that.HasGame():
		return apperror.ErrGameInProgress
	}

	that.Guest = guest
	that.GuestName = guestName

	return nil
}

// Leave frees the guest seat. A guest cannot walk out of a running game.
func (that *Room) Leave(guest string) error {
	switch {
	case !that.IsGuest(guest):
		return apperror.ErrNotRoomGuest
	case that.HasGame():
		return apperror.ErrGameInProgress
	}

	that.Guest = ""
	that.GuestName = ""

	return nil
}

func (that *Room) CanDelete(owner string) error {
	if !that.IsOwner(owner) {
		return apperror.ErrNotRoomOwner
	}

	return nil
}

// Start attaches an encoded board.
func (that *Room) Start(owner string, board []byte) error {
	switch {
	case !that.IsOwner(owner):
		return apperror.ErrNotRoomOwner
	case !that.HasGuest():
		return apperror.ErrNoGuest
	case that.HasGame():
		return apperror.ErrGameInProgress
	}

	that.Game = board

	return nil
}

// End drops the game, whether it was won, tied or abandoned.
func (that *Room) End(caller string) error {
	switch {
	case !that.IsParticipant(caller):
		return apperror.ErrNotParticipant
	case !that.HasGame():
		return apperror.ErrGameIsNotStarted
	}

	that.Game = nil

	return nil
}

// PlayerFor returns the identity that plays color.
func (that *Room) PlayerFor(color gobang.Stone) string {
	switch color {
	case gobang.Black:
		return that.Owner
	case gobang.White:
		return that.Guest
	default:
		return ""
	}
}

func (that *Room) Clone() *Room {
	clone := *that
	clone.Game = slices.Clone(that.Game)

	return &clone
}

func (that *Room) Info() RoomInfo {
	return RoomInfo{
		ID:          that.ID,
		OwnerName:   that.OwnerName,
		GuestName:   that.GuestName,
		GameStarted: that.HasGame(),
	}
}

// RoomInfo summarizes a room for the lobby.
type RoomInfo struct {
	ID          string `json:"id"`
	OwnerName   string `json:"ownerName"`
	GuestName   string `json:"guestName,omitempty"`
	GameStarted bool   `json:"gameStarted"`
}

// MoveInfo describes an accepted move.
type MoveInfo struct {
	X      int            `json:"x"`
	Y      int            `json:"y"`
	Turn   gobang.Stone   `json:"turn"`
	Result gobang.Outcome `json:"result"`
}

// ColorOf returns the color played by the owner or the guest.
func ColorOf(isOwner bool) gobang.Stone {
	if isOwner {
		return gobang.Black
	}

	return gobang.White
}
