package apperror

import (
	"errors"
	"fmt"
)

// ErrRejected marks ordinary game-flow refusals. Callers only learn that an
// operation did not happen, never which precondition failed.
var ErrRejected = errors.New("operation rejected")

var (
	ErrNoIdentity       = fmt.Errorf("%w: caller identity is empty", ErrRejected)
	ErrNotRoomOwner     = fmt.Errorf("%w: caller is not the room owner", ErrRejected)
	ErrNotRoomGuest     = fmt.Errorf("%w: caller is not the room guest", ErrRejected)
	ErrNotParticipant   = fmt.Errorf("%w: caller is not playing in the room", ErrRejected)
	ErrOwnRoom          = fmt.Errorf("%w: owner cannot join own room", ErrRejected)
	ErrRoomFull         = fmt.Errorf("%w: room already has a guest", ErrRejected)
	ErrNoGuest          = fmt.Errorf("%w: room has no guest", ErrRejected)
	ErrGameInProgress   = fmt.Errorf("%w: game is in progress", ErrRejected)
	ErrGameIsNotStarted = fmt.Errorf("%w: game is not started", ErrRejected)
	ErrNotYourTurn      = fmt.Errorf("%w: it's not your turn", ErrRejected)
	ErrInvalidMove      = fmt.Errorf("%w: invalid move", ErrRejected)
	ErrInvalidBoardSize = fmt.Errorf("%w: invalid board size", ErrRejected)
)

// ErrCorruptGame means a stored board could not be decoded. The game is dropped.
var ErrCorruptGame = errors.New("stored game is corrupt")
