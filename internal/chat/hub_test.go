package chat

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// connなしのテスト用セッション。deliver/Join/Leaveはconnに触らない。
func newTestSession(hub *Hub, userID int64, roomKey string) *Session {
	return NewSession(hub, nil, nil, userID, roomKey, 1)
}

func TestHub_JoinLeave(t *testing.T) {
	hub := NewHub()

	s1 := newTestSession(hub, 3, "3-15")
	s2 := newTestSession(hub, 15, "3-15")

	hub.Join("3-15", s1)
	hub.Join("3-15", s2)
	assert.Equal(t, 2, hub.MemberCount("3-15"))

	hub.Leave("3-15", s1)
	assert.Equal(t, 1, hub.MemberCount("3-15"))

	hub.Leave("3-15", s2)
	assert.Equal(t, 0, hub.MemberCount("3-15"))

	// 空ルームは片付いているので再Joinで作り直せる
	hub.Join("3-15", s1)
	assert.Equal(t, 1, hub.MemberCount("3-15"))
}

func TestHub_LeaveUnknownRoom_NoPanic(t *testing.T) {
	hub := NewHub()
	s := newTestSession(hub, 3, "3-15")
	hub.Leave("3-15", s)
	assert.Equal(t, 0, hub.MemberCount("3-15"))
}

// 配信はルーム内全員（送信者含む）に届き、他ルームには漏れない
func TestHub_Broadcast_RoomScoped(t *testing.T) {
	hub := NewHub()

	s1 := newTestSession(hub, 3, "3-15")
	s2 := newTestSession(hub, 15, "3-15")
	other := newTestSession(hub, 4, "4-15")

	hub.Join("3-15", s1)
	hub.Join("3-15", s2)
	hub.Join("4-15", other)

	payload := []byte(`{"message":"hi","sender":3}`)
	hub.Broadcast("3-15", payload)

	assert.Equal(t, payload, <-s1.send)
	assert.Equal(t, payload, <-s2.send)

	select {
	case got := <-other.send:
		t.Fatalf("unexpected delivery to other room: %s", got)
	default:
	}
}

func TestHub_Broadcast_UnknownRoom_NoPanic(t *testing.T) {
	hub := NewHub()
	hub.Broadcast("9-10", []byte("x"))
}

// 送信バッファが一杯のセッションは落とされ、他のセッションは配信され続ける
func TestHub_Broadcast_DropsSlowConsumer(t *testing.T) {
	hub := NewHub()

	slow := newTestSession(hub, 3, "3-15")
	fast := newTestSession(hub, 15, "3-15")

	hub.Join("3-15", slow)
	hub.Join("3-15", fast)

	// slowのバッファを埋める
	for i := 0; i < sendBufferSize; i++ {
		hub.Broadcast("3-15", []byte("fill"))
		<-fast.send
	}

	hub.Broadcast("3-15", []byte("overflow"))

	// slowはdoneが閉じられている
	select {
	case <-slow.done:
	default:
		t.Fatal("slow session should be closed")
	}

	// fastには届いている
	assert.Equal(t, []byte("overflow"), <-fast.send)

	// 閉じたセッションへの再配信はdropにならない（doneを見て素通し）
	assert.True(t, slow.deliver([]byte("late")))
}

func TestHub_ConcurrentJoinLeave(t *testing.T) {
	hub := NewHub()

	const rooms = 8
	const perRoom = 16

	var wg sync.WaitGroup
	for r := 0; r < rooms; r++ {
		key := fmt.Sprintf("%d-%d", r+1, r+100)
		for i := 0; i < perRoom; i++ {
			wg.Add(1)
			go func(key string, userID int64) {
				defer wg.Done()
				s := newTestSession(hub, userID, key)
				hub.Join(key, s)
				hub.Broadcast(key, []byte("m"))
				hub.Leave(key, s)
			}(key, int64(i+1))
		}
	}
	wg.Wait()

	for r := 0; r < rooms; r++ {
		key := fmt.Sprintf("%d-%d", r+1, r+100)
		assert.Equal(t, 0, hub.MemberCount(key))
	}
}
