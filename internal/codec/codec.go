// Package codec maps wire tokens to local sound files and back.
package codec

import (
	"errors"
	"fmt"

	"github.com/dkeye/Speaker/internal/domain"
)

var (
	ErrDuplicateToken = errors.New("duplicate sound token")
	ErrEmptyToken     = errors.New("empty sound token")
)

// Codec is immutable after New and safe for concurrent reads.
type Codec struct {
	files  map[domain.Token]string
	tokens map[string]domain.Token
}

func New(sounds []domain.Sound) (*Codec, error) {
	c := &Codec{
		files:  make(map[domain.Token]string, len(sounds)),
		tokens: make(map[string]domain.Token, len(sounds)),
	}
	for _, s := range sounds {
		if s.Token == "" {
			return nil, ErrEmptyToken
		}
		if _, dup := c.files[s.Token]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateToken, s.Token)
		}
		c.files[s.Token] = s.File
		// first token wins when two tokens share a file
		if _, ok := c.tokens[s.File]; !ok {
			c.tokens[s.File] = s.Token
		}
	}
	return c, nil
}

// File resolves a received token to the file to play.
func (c *Codec) File(t domain.Token) (string, bool) {
	f, ok := c.files[t]
	return f, ok
}

// TokenFor accepts either a token or a configured file path and returns
// the token to put on the wire.
func (c *Codec) TokenFor(sound string) (domain.Token, bool) {
	if _, ok := c.files[domain.Token(sound)]; ok {
		return domain.Token(sound), true
	}
	t, ok := c.tokens[sound]
	return t, ok
}

func (c *Codec) Len() int { return len(c.files) }
