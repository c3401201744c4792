package repository

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCursor_RoundTrip(t *testing.T) {
	req := require.New(t)
	in := Cursor{CreatedAt: time.Date(2026, 3, 4, 5, 6, 7, 8, time.UTC), ID: "4f0c6a1e-aaaa"}

	out, err := ParseCursor(in.String())
	req.NoError(err)
	req.True(in.CreatedAt.Equal(out.CreatedAt))
	req.Equal(in.ID, out.ID)
}

func TestParseCursor_EmptyAndInvalid(t *testing.T) {
	req := require.New(t)

	c, err := ParseCursor("")
	req.NoError(err)
	req.Nil(c)

	for _, raw := range []string{"%%%", enc("no-separator"), enc("123:"), enc("abc:id")} {
		_, err = ParseCursor(raw)
		req.ErrorIs(err, ErrInvalidCursor, raw)
	}
}

func enc(s string) string { return base64.RawURLEncoding.EncodeToString([]byte(s)) }
