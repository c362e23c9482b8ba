package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Speaker/internal/domain"
)

func TestCodecLookups(t *testing.T) {
	c, err := New([]domain.Sound{
		{Token: "boo", File: "sounds/boo.wav"},
		{Token: "horn", File: "sounds/horn.ogg"},
		{Token: "honk", File: "sounds/horn.ogg"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())

	f, ok := c.File("boo")
	assert.True(t, ok)
	assert.Equal(t, "sounds/boo.wav", f)

	_, ok = c.File("sounds/boo.wav")
	assert.False(t, ok)

	tok, ok := c.TokenFor("boo")
	assert.True(t, ok)
	assert.Equal(t, domain.Token("boo"), tok)

	tok, ok = c.TokenFor("sounds/horn.ogg")
	assert.True(t, ok)
	assert.Equal(t, domain.Token("horn"), tok)

	_, ok = c.TokenFor("sounds/missing.wav")
	assert.False(t, ok)
}

func TestCodecRejectsBadTables(t *testing.T) {
	_, err := New([]domain.Sound{{Token: "boo", File: "a"}, {Token: "boo", File: "b"}})
	assert.ErrorIs(t, err, ErrDuplicateToken)

	_, err = New([]domain.Sound{{Token: "", File: "a"}})
	assert.ErrorIs(t, err, ErrEmptyToken)
}
