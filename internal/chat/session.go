package chat

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/BekzhanK1/fms-server/internal/domain/model"
	"github.com/BekzhanK1/fms-server/internal/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 64
)

// MessageStore はメッセージ永続化の約束。repo.MessageRepository が満たす。
type MessageStore interface {
	Create(ctx context.Context, m model.Message) (model.Message, error)
}

// クライアント→サーバー
type inboundMessage struct {
	Message string `json:"message"`
}

// サーバー→クライアント。senderはサーバー側で付ける。
type outboundMessage struct {
	Message string `json:"message"`
	Sender  int64  `json:"sender"`
}

// Session は1本のWebSocket接続。
// 読み取りは readPump、書き込みは writePump の各1ゴルーチンに限定する。
type Session struct {
	ID      string
	UserID  int64
	RoomKey string
	RoomID  int64

	hub   *Hub
	store MessageStore
	conn  *websocket.Conn

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// NewSession はアップグレード済みの接続からセッションを作る。
// 呼び出し側は認可が終わってから呼ぶこと。
func NewSession(hub *Hub, store MessageStore, conn *websocket.Conn, userID int64, roomKey string, roomID int64) *Session {
	return &Session{
		ID:      uuid.NewString(),
		UserID:  userID,
		RoomKey: roomKey,
		RoomID:  roomID,
		hub:     hub,
		store:   store,
		conn:    conn,
		send:    make(chan []byte, sendBufferSize),
		done:    make(chan struct{}),
	}
}

// Run はグループ登録してポンプを回す。readPump が戻るまでブロックする。
// どんな終わり方でも必ず Leave と切断が走る。
func (s *Session) Run(ctx context.Context) {
	s.hub.Join(s.RoomKey, s)

	go s.writePump()
	s.readPump(ctx)
}

func (s *Session) readPump(ctx context.Context) {
	defer func() {
		s.hub.Leave(s.RoomKey, s)
		s.closeSlow()
	}()

	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.L().Warn("chat read error",
					zap.String("session", s.ID),
					zap.Error(err),
				)
			}
			return
		}

		var in inboundMessage
		if err := json.Unmarshal(data, &in); err != nil || in.Message == "" {
			// 形式外のフレームは黙って捨てる
			continue
		}

		// 永続化してから配信する。送信者IDはこちらで付ける。
		// クライアントが名乗ったsenderは一切信用しない。
		saved, err := s.store.Create(ctx, model.Message{
			RoomID:   s.RoomID,
			SenderID: s.UserID,
			Body:     in.Message,
		})
		if err != nil {
			logger.L().Error("chat message persist failed",
				zap.String("room", s.RoomKey),
				zap.Error(err),
			)
			continue
		}

		payload, err := json.Marshal(outboundMessage{
			Message: saved.Body,
			Sender:  saved.SenderID,
		})
		if err != nil {
			continue
		}

		s.hub.Broadcast(s.RoomKey, payload)
	}
}

func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case payload := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-s.done:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// deliver はハブからの配信。バッファが詰まっていたら false。
func (s *Session) deliver(payload []byte) bool {
	select {
	case <-s.done:
		return true
	case s.send <- payload:
		return true
	default:
		return false
	}
}

// closeSlow はセッションを終了させる。二重呼び出し安全。
func (s *Session) closeSlow() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}
