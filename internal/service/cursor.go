package service

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"math"
	"time"
)

// 游标编码上一页末行的 (score, created_at)：
// 16 字节大端 = float64 位模式 + unix 纳秒，base64url 包装。
// decode(encode(x)) 必须逐位还原。

var ErrInvalidCursor = errors.New("invalid cursor")

func encodeCursor(score float64, createdAt time.Time) string {
	var buf [16]byte
	binary.BigEndian.PutUint64(buf[:8], math.Float64bits(score))
	binary.BigEndian.PutUint64(buf[8:], uint64(createdAt.UnixNano()))
	return base64.RawURLEncoding.EncodeToString(buf[:])
}

func decodeCursor(cursor string) (float64, time.Time, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil || len(raw) != 16 {
		return 0, time.Time{}, ErrInvalidCursor
	}
	score := math.Float64frombits(binary.BigEndian.Uint64(raw[:8]))
	nanos := int64(binary.BigEndian.Uint64(raw[8:]))
	return score, time.Unix(0, nanos), nil
}
