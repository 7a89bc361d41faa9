package chat

import (
	"strconv"
	"strings"
)

// CanonicalRoomKey は "<id1>-<id2>" 形式のルームラベルを正規化する。
// 整数2つ以外は不正。小さいID-大きいID に並べ替えた文字列が正規形キー。
// どちらの順で指定しても同じルームに解決される。
func CanonicalRoomKey(label string) (key string, user1 int64, user2 int64, ok bool) {
	parts := strings.Split(label, "-")
	if len(parts) != 2 {
		return "", 0, 0, false
	}

	a, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return "", 0, 0, false
	}
	b, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return "", 0, 0, false
	}
	if a <= 0 || b <= 0 {
		return "", 0, 0, false
	}

	if a > b {
		a, b = b, a
	}

	return strconv.FormatInt(a, 10) + "-" + strconv.FormatInt(b, 10), a, b, true
}

// IsParticipant は認証ユーザーがルームの当事者かどうか。
func IsParticipant(userID int64, user1 int64, user2 int64) bool {
	return userID == user1 || userID == user2
}
