package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cwrk-planet/liveroom/internal/coordinator"
	"github.com/cwrk-planet/liveroom/internal/domain"
	"github.com/cwrk-planet/liveroom/internal/postgres"
	"github.com/cwrk-planet/liveroom/internal/service"
	httpmw "github.com/cwrk-planet/liveroom/internal/transport/http/middleware"

	"github.com/go-chi/chi/v5"
)

// LiveView is the read side of the coordinator the REST API exposes.
type LiveView interface {
	Snapshot(roomID string) (coordinator.RoomSnapshot, bool)
	Stats() coordinator.Stats
}

type Handler struct {
	roomSvc   *service.RoomService
	memberSvc *service.MemberService
	live      LiveView
}

func NewHandler(room *service.RoomService, member *service.MemberService, live LiveView) *Handler {
	return &Handler{
		roomSvc:   room,
		memberSvc: member,
		live:      live,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr maps domain errors to statuses; anything unknown is a 500.
func writeErr(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrRoomNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "room not found"})
	case errors.Is(err, domain.ErrNotInRoom):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "user not in room"})
	case errors.Is(err, domain.ErrRoomFull):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: "room full"})
	case errors.Is(err, domain.ErrInvalidRoom):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, postgres.ErrInvalidCursor):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_cursor"})
	default:
		slog.Error("handler."+op+":", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

// POST /rooms
func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Debug("handler.CreateRoom.Decode:", slog.Any("err", err))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}
	room, err := h.roomSvc.CreateRoom(r.Context(), httpmw.UserIDFromCtx(r.Context()), service.CreateRoomInput{
		Name:            req.Name,
		Description:     req.Description,
		Type:            req.RoomType,
		MaxParticipants: req.MaxParticipants,
		Features:        req.EnabledFeatures,
	})
	if err != nil {
		writeErr(w, "CreateRoom", err)
		return
	}

	writeJSON(w, http.StatusCreated, toRoomItem(room))
}

// GET /rooms?limit=&cursor=
func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			limit = n
		}
	}
	cursor := r.URL.Query().Get("cursor")

	rooms, next, err := h.roomSvc.ListRooms(r.Context(), limit, cursor)
	if err != nil {
		writeErr(w, "ListRooms", err)
		return
	}
	resp := RoomsListResponse{Items: make([]RoomItem, 0, len(rooms)), NextCursor: next}
	for i := range rooms {
		resp.Items = append(resp.Items, toRoomItem(&rooms[i]))
	}

	writeJSON(w, http.StatusOK, resp)
}

// GET /rooms/{id}
func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request) {
	room, err := h.roomSvc.GetRoom(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, "GetRoom", err)
		return
	}

	writeJSON(w, http.StatusOK, toRoomItem(room))
}

// POST /rooms/{id}/join
func (h *Handler) JoinRoom(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")
	userID := httpmw.UserIDFromCtx(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "missing user id"})
		return
	}

	resp := JoinRoomResponse{RoomID: roomID, UserID: userID}
	p, err := h.memberSvc.JoinRoom(r.Context(), roomID, userID)
	switch {
	case err == nil:
		resp.Role = p.Role
	case errors.Is(err, domain.ErrAlreadyJoined):
		// already a member
	default:
		writeErr(w, "JoinRoom", err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// POST /rooms/{id}/leave
func (h *Handler) LeaveRoom(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")
	userID := httpmw.UserIDFromCtx(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "missing user id"})
		return
	}

	if err := h.memberSvc.LeaveRoom(r.Context(), roomID, userID); err != nil {
		writeErr(w, "LeaveRoom", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "left"})
}

// GET /rooms/{id}/participants
func (h *Handler) GetParticipants(w http.ResponseWriter, r *http.Request) {
	items, err := h.memberSvc.ListParticipants(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, "GetParticipants", err)
		return
	}

	resp := ParticipantsResponse{Items: make([]ParticipantItem, 0, len(items))}
	for _, it := range items {
		resp.Items = append(resp.Items, ParticipantItem{
			UserID:   it.UserID,
			Role:     it.Role,
			JoinedAt: it.JoinedAt,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// PUT /rooms/{id}/playlist
func (h *Handler) UpdatePlaylist(w http.ResponseWriter, r *http.Request) {
	var req UpdatePlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}
	roomID := chi.URLParam(r, "id")
	playlist, err := h.roomSvc.UpdatePlaylist(r.Context(), roomID, req.Playlist)
	if err != nil {
		writeErr(w, "UpdatePlaylist", err)
		return
	}

	writeJSON(w, http.StatusOK, PlaylistResponse{RoomID: roomID, Playlist: playlist})
}

// GET /rooms/{id}/live
func (h *Handler) GetLive(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.live.Snapshot(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "room not live"})
		return
	}

	writeJSON(w, http.StatusOK, snap)
}

// GET /stats
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.live.Stats())
}
