package rest

import (
	"context"
	"encoding/json"
	"iter"
	"log/slog"
	"net/http"

	"github.com/rocketscienceinc/gobang-backend/internal/entity"
)

type roomLister interface {
	GetRooms(ctx context.Context) iter.Seq2[entity.RoomInfo, error]
}

type roomsHandler struct {
	logger *slog.Logger
	rooms  roomLister
}

// ServeHTTP lists the lobby as a JSON array.
func (that *roomsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "listRooms")

	rooms := []entity.RoomInfo{}
	for info, err := range that.rooms.GetRooms(r.Context()) {
		if err != nil {
			log.Error("failed to list rooms", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		rooms = append(rooms, info)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(rooms); err != nil {
		log.Error("failed to write rooms", "error", err)
	}
}
