package chat

import (
	"sync"

	"github.com/BekzhanK1/fms-server/internal/logger"

	"go.uber.org/zap"
)

// Hub はルームキー→参加セッション集合のプロセス内レジストリ。
// ルームごとに独立したロックを持ち、別ルーム同士の join/leave は競合しない。
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]*roomGroup
}

type roomGroup struct {
	mu      sync.Mutex
	members map[*Session]struct{}
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]*roomGroup)}
}

// Join はセッションをルームの配信グループに登録する。
func (h *Hub) Join(key string, s *Session) {
	h.mu.Lock()
	g, ok := h.rooms[key]
	if !ok {
		g = &roomGroup{members: make(map[*Session]struct{})}
		h.rooms[key] = g
	}
	// 空ルーム削除と競合しないよう、登録はレジストリロック内で行う
	g.mu.Lock()
	g.members[s] = struct{}{}
	g.mu.Unlock()
	h.mu.Unlock()

	logger.L().Debug("chat session joined",
		zap.String("room", key),
		zap.String("session", s.ID),
		zap.Int64("user_id", s.UserID),
	)
}

// Leave はセッションを配信グループから外す。空になったルームは片付ける。
func (h *Hub) Leave(key string, s *Session) {
	h.mu.Lock()
	g, ok := h.rooms[key]
	if !ok {
		h.mu.Unlock()
		return
	}

	g.mu.Lock()
	delete(g.members, s)
	empty := len(g.members) == 0
	g.mu.Unlock()

	if empty {
		delete(h.rooms, key)
	}
	h.mu.Unlock()

	logger.L().Debug("chat session left",
		zap.String("room", key),
		zap.String("session", s.ID),
	)
}

// Broadcast はルームの全セッションへ配信する（送信者自身のセッションも含む）。
// 送信バッファが詰まっているセッションには配らず切り離す。
func (h *Hub) Broadcast(key string, payload []byte) {
	h.mu.RLock()
	g, ok := h.rooms[key]
	h.mu.RUnlock()
	if !ok {
		return
	}

	g.mu.Lock()
	members := make([]*Session, 0, len(g.members))
	for s := range g.members {
		members = append(members, s)
	}
	g.mu.Unlock()

	for _, s := range members {
		if !s.deliver(payload) {
			logger.L().Warn("chat session send buffer full, dropping session",
				zap.String("room", key),
				zap.String("session", s.ID),
			)
			s.closeSlow()
		}
	}
}

// MemberCount はテストと監視用。
func (h *Hub) MemberCount(key string) int {
	h.mu.RLock()
	g, ok := h.rooms[key]
	h.mu.RUnlock()
	if !ok {
		return 0
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.members)
}
