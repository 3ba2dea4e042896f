package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/text-mate/chatroom-service/internal/domain"
	"github.com/text-mate/chatroom-service/internal/service"
	httpmw "github.com/text-mate/chatroom-service/internal/transport/http/middleware"
)

const (
	defaultPageSize  = 20
	maxUploadBytes   = 10 << 20 // 10MB на выгрузку переписки
	multipartMaxMem  = 4 << 20
	uploadFieldName  = "file"
	uploadFieldTyped = "chatRoomType"
)

type Handler struct {
	roomSvc     *service.RoomService
	querySvc    *service.QueryService
	analysisSvc *service.AnalysisService
}

func NewHandler(room *service.RoomService, query *service.QueryService, analysis *service.AnalysisService) *Handler {
	return &Handler{
		roomSvc:     room,
		querySvc:    query,
		analysisSvc: analysis,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeDomainError раскладывает ошибки ядра по статусам.
func writeDomainError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrRoomNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "room not found"})
	case errors.Is(err, domain.ErrInvalidRoomID), errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	default:
		slog.Error(op, slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}
}

// parseTypeFilter: пустое значение — фильтра нет.
func parseTypeFilter(s string) (*domain.RoomType, error) {
	if s == "" {
		return nil, nil
	}
	typ, err := domain.ParseRoomType(s)
	if err != nil {
		return nil, err
	}
	return &typ, nil
}

// GET /api/chatrooms?query=&type=&sort=&page=0&size=20
func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	userID := httpmw.UserIDFromCtx(r.Context())
	q := r.URL.Query()

	typ, err := parseTypeFilter(q.Get("type"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	sort := domain.ParseRoomSort(q.Get("sort"))

	page := 0
	if s := q.Get("page"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			page = n
		}
	}
	size := defaultPageSize
	if s := q.Get("size"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			size = n
		}
	}

	result, err := h.querySvc.ListPage(r.Context(), userID, q.Get("query"), typ, sort, page, size)
	if err != nil {
		writeDomainError(w, "handler.ListRooms:", err)
		return
	}

	writeJSON(w, http.StatusOK, RoomPageResponse{
		Content:       toRoomItems(result.Content),
		Page:          result.Page,
		Size:          result.Size,
		TotalElements: result.TotalElements,
		TotalPages:    result.TotalPages,
	})
}

// GET /api/chatrooms/all?query=&type=&sort=
func (h *Handler) ListAllRooms(w http.ResponseWriter, r *http.Request) {
	userID := httpmw.UserIDFromCtx(r.Context())
	q := r.URL.Query()

	typ, err := parseTypeFilter(q.Get("type"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	sort := domain.ParseRoomSort(q.Get("sort"))

	views, err := h.querySvc.ListAll(r.Context(), userID, q.Get("query"), typ, sort)
	if err != nil {
		writeDomainError(w, "handler.ListAllRooms:", err)
		return
	}

	writeJSON(w, http.StatusOK, toRoomItems(views))
}

// GET /api/chatrooms/{id}
func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request) {
	userID := httpmw.UserIDFromCtx(r.Context())
	roomID := chi.URLParam(r, "id")

	view, err := h.roomSvc.GetOne(r.Context(), userID, roomID)
	if err != nil {
		writeDomainError(w, "handler.GetRoom:", err)
		return
	}

	writeJSON(w, http.StatusOK, toRoomResponse(view))
}

// PATCH /api/chatrooms/{id}
func (h *Handler) PatchRoom(w http.ResponseWriter, r *http.Request) {
	userID := httpmw.UserIDFromCtx(r.Context())
	roomID := chi.URLParam(r, "id")

	var req UpdateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("handler.PatchRoom.Decode:", slog.Any("err", err))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}

	var typ *domain.RoomType
	if req.Type != nil && *req.Type != "" {
		parsed, err := domain.ParseRoomType(*req.Type)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		typ = &parsed
	}

	view, err := h.roomSvc.Patch(r.Context(), userID, roomID, req.Name, typ)
	if err != nil {
		writeDomainError(w, "handler.PatchRoom:", err)
		return
	}

	writeJSON(w, http.StatusOK, toRoomResponse(view))
}

// DELETE /api/chatrooms/{id} — мягкое удаление
func (h *Handler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")

	if err := h.roomSvc.SoftDelete(r.Context(), roomID); err != nil {
		writeDomainError(w, "handler.DeleteRoom:", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// PUT /api/chatrooms/{id}/pin | DELETE /api/chatrooms/{id}/pin
func (h *Handler) SetPin(pinned bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := httpmw.UserIDFromCtx(r.Context())
		if userID == nil {
			writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "missing user id"})
			return
		}
		roomID := chi.URLParam(r, "id")

		if err := h.roomSvc.SetPinned(r.Context(), *userID, roomID, pinned); err != nil {
			writeDomainError(w, "handler.SetPin:", err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]bool{"pinned": pinned})
	}
}

// POST /api/analysis — multipart: chatRoomType + file.
// Создаёт комнату из события анализа.
func (h *Handler) AnalyzeChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMaxMem); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid multipart form"})
		return
	}

	typ, err := domain.ParseRoomType(r.FormValue(uploadFieldTyped))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	file, header, err := r.FormFile(uploadFieldName)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "file is required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		slog.Error("handler.AnalyzeChat.Read:", slog.Any("err", err))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "cannot read file"})
		return
	}

	result, err := h.analysisSvc.Analyze(r.Context(), typ, header.Filename, data)
	if err != nil {
		writeDomainError(w, "handler.AnalyzeChat:", err)
		return
	}

	writeJSON(w, http.StatusOK, AnalysisResponse{
		ID:         result.ID.String(),
		RoomID:     result.RoomID.String(),
		Type:       string(result.Type),
		Summary:    result.Summary,
		ResultJSON: result.ResultJSON,
		CreatedAt:  isoTime(result.CreatedAt),
	})
}
