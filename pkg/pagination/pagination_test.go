package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, NormalizeLimit(0))
	assert.Equal(t, MaxLimit, NormalizeLimit(MaxLimit+50))
	assert.Equal(t, 7, NormalizeLimit(7))
	assert.Equal(t, 8, LimitWithBuffer(7))
}

func TestCursorRoundTrip(t *testing.T) {
	encoded := EncodeCursor(Cursor{ID: 42})
	decoded, err := ParseCursor(encoded)
	require.NoError(t, err)
	assert.Equal(t, int64(42), decoded.ID)

	empty, err := ParseCursor("  ")
	require.NoError(t, err)
	assert.Nil(t, empty)

	for _, bad := range []string{"!!!", EncodeCursor(Cursor{ID: 0}), "aWQ6eHl6"} {
		_, err := ParseCursor(bad)
		assert.Error(t, err, bad)
	}
}
