package model

import "time"

// 2者間チャットルーム。Name は "小ID-大ID" の正規形。
type Room struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	User1ID   int64     `gorm:"not null;index" json:"user1_id"`
	User2ID   int64     `gorm:"not null;index" json:"user2_id"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

// Companion は自分から見た相手のIDを返す。
func (r *Room) Companion(userID int64) (int64, bool) {
	switch userID {
	case r.User1ID:
		return r.User2ID, true
	case r.User2ID:
		return r.User1ID, true
	}
	return 0, false
}
