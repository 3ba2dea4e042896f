package http

import (
	"time"

	"github.com/text-mate/chatroom-service/internal/service"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// RoomResponse — единичная комната (без lastMessageAt).
type RoomResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Type      string  `json:"type"`
	Pinned    bool    `json:"pinned"`
	Deleted   bool    `json:"deleted"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt *string `json:"updatedAt,omitempty"`
}

// RoomItemResponse — элемент листинга (c lastMessageAt, без updatedAt).
type RoomItemResponse struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Type          string  `json:"type"`
	Pinned        bool    `json:"pinned"`
	Deleted       bool    `json:"deleted"`
	CreatedAt     string  `json:"createdAt"`
	LastMessageAt *string `json:"lastMessageAt,omitempty"`
}

type RoomPageResponse struct {
	Content       []RoomItemResponse `json:"content"`
	Page          int                `json:"page"`
	Size          int                `json:"size"`
	TotalElements int                `json:"totalElements"`
	TotalPages    int                `json:"totalPages"`
}

type UpdateRoomRequest struct {
	Name *string `json:"name"`
	Type *string `json:"type"`
}

type AnalysisResponse struct {
	ID         string `json:"id"`
	RoomID     string `json:"roomId"`
	Type       string `json:"type"`
	Summary    string `json:"summary"`
	ResultJSON string `json:"resultJson"`
	CreatedAt  string `json:"createdAt"`
}

func isoTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

func isoTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := isoTime(*t)
	return &s
}

func toRoomResponse(v service.RoomView) RoomResponse {
	return RoomResponse{
		ID:        v.Room.ID.String(),
		Name:      v.Room.Name,
		Type:      string(v.Room.Type),
		Pinned:    v.Pinned,
		Deleted:   v.Room.Deleted,
		CreatedAt: isoTime(v.Room.CreatedAt),
		UpdatedAt: isoTimePtr(v.Room.UpdatedAt),
	}
}

func toRoomItemResponse(v service.RoomView) RoomItemResponse {
	return RoomItemResponse{
		ID:            v.Room.ID.String(),
		Name:          v.Room.Name,
		Type:          string(v.Room.Type),
		Pinned:        v.Pinned,
		Deleted:       v.Room.Deleted,
		CreatedAt:     isoTime(v.Room.CreatedAt),
		LastMessageAt: isoTimePtr(v.Room.LastMessageAt),
	}
}

func toRoomItems(views []service.RoomView) []RoomItemResponse {
	items := make([]RoomItemResponse, 0, len(views))
	for _, v := range views {
		items = append(items, toRoomItemResponse(v))
	}
	return items
}
