package service

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	cases := []struct {
		score float64
		at    time.Time
	}{
		{0.8, time.Unix(1700000000, 123456789)},
		{0, time.Unix(0, 0)},
		{MaxScore, time.Now()},
		{math.SmallestNonzeroFloat64, time.Unix(1, 1)},
		{0.1 + 0.2, time.Unix(1700000000, 999999999)}, // 浮点噪声也要逐位还原
	}
	for _, c := range cases {
		cur := encodeCursor(c.score, c.at)
		score, at, err := decodeCursor(cur)
		require.NoError(t, err)
		assert.Equal(t, math.Float64bits(c.score), math.Float64bits(score))
		assert.Equal(t, c.at.UnixNano(), at.UnixNano())
	}
}

func TestCursorDecodeInvalid(t *testing.T) {
	for _, bad := range []string{"", "not-base64!!", "c3VyZQ", "AAAA"} {
		_, _, err := decodeCursor(bad)
		assert.ErrorIs(t, err, ErrInvalidCursor, "cursor %q", bad)
	}
}
