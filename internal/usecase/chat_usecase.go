package usecase

import (
	"context"
	"net/http"
	"time"

	"github.com/BekzhanK1/fms-server/internal/chat"
	repo "github.com/BekzhanK1/fms-server/internal/repository"
)

// ChatUsecase はチャット履歴とルーム一覧のREST側。
// リアルタイム側は internal/chat のハブが持つ。
type ChatUsecase struct {
	roomRepo    repo.RoomRepository
	messageRepo repo.MessageRepository
	userRepo    repo.UserRepository
}

// DI
func NewChatUsecase(
	roomRepo repo.RoomRepository,
	messageRepo repo.MessageRepository,
	userRepo repo.UserRepository,
) *ChatUsecase {
	return &ChatUsecase{
		roomRepo:    roomRepo,
		messageRepo: messageRepo,
		userRepo:    userRepo,
	}
}

type CompanionOutput struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

type HistoryMessageOutput struct {
	SenderID  int64     `json:"sender_id"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Who       string    `json:"who"` // "me" か "companion"
}

type HistoryOutput struct {
	Companion CompanionOutput        `json:"companion"`
	Messages  []HistoryMessageOutput `json:"messages"`
}

type RoomOutput struct {
	Name      string          `json:"name"`
	Companion CompanionOutput `json:"companion"`
}

// History はルームの履歴を古い順で返す。参加者以外は参照不可。
func (u *ChatUsecase) History(ctx context.Context, userID int64, roomLabel string) (HistoryOutput, error) {
	name, _, _, ok := chat.CanonicalRoomKey(roomLabel)
	if !ok {
		return HistoryOutput{}, NewHTTPError(http.StatusBadRequest, "invalid room name")
	}

	room, err := u.roomRepo.FindByName(ctx, name)
	if err == repo.ErrNotFound {
		return HistoryOutput{}, NewHTTPError(http.StatusNotFound, "room not found")
	}
	if err != nil {
		return HistoryOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	companionID, ok := room.Companion(userID)
	if !ok {
		return HistoryOutput{}, NewHTTPError(http.StatusForbidden, "not a participant")
	}

	companion, err := u.userRepo.FindByID(ctx, companionID)
	if err == repo.ErrNotFound {
		return HistoryOutput{}, NewHTTPError(http.StatusNotFound, "companion not found")
	}
	if err != nil {
		return HistoryOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	msgs, err := u.messageRepo.ListByRoomID(ctx, room.ID)
	if err != nil {
		return HistoryOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	out := HistoryOutput{
		Companion: CompanionOutput{
			ID:       companion.ID,
			FullName: companion.FirstName + " " + companion.LastName,
			Email:    companion.Email,
		},
		Messages: make([]HistoryMessageOutput, 0, len(msgs)),
	}

	for _, m := range msgs {
		who := "companion"
		if m.SenderID == userID {
			who = "me"
		}
		out.Messages = append(out.Messages, HistoryMessageOutput{
			SenderID:  m.SenderID,
			Message:   m.Body,
			Timestamp: m.CreatedAt,
			Who:       who,
		})
	}

	return out, nil
}

// ListRooms は自分が参加しているルーム一覧。
func (u *ChatUsecase) ListRooms(ctx context.Context, userID int64) ([]RoomOutput, error) {
	rooms, err := u.roomRepo.ListByUserID(ctx, userID)
	if err != nil {
		return []RoomOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	outs := make([]RoomOutput, 0, len(rooms))
	for _, room := range rooms {
		companionID, ok := room.Companion(userID)
		if !ok {
			continue
		}

		companion, err := u.userRepo.FindByID(ctx, companionID)
		if err == repo.ErrNotFound {
			continue
		}
		if err != nil {
			return []RoomOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs = append(outs, RoomOutput{
			Name: room.Name,
			Companion: CompanionOutput{
				ID:       companion.ID,
				FullName: companion.FirstName + " " + companion.LastName,
				Email:    companion.Email,
			},
		})
	}

	return outs, nil
}
