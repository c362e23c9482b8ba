// Package keyspec parses hotkey combos such as "ctrl+shift+h" or "alt+f5".
package keyspec

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidCombo = errors.New("invalid hotkey combo")

type Combo struct {
	Ctrl  bool
	Shift bool
	Alt   bool
	// Key is the lower-case key name: a-z, 0-9, f1-f12 or space.
	Key string
}

func (c Combo) String() string {
	var parts []string
	if c.Ctrl {
		parts = append(parts, "ctrl")
	}
	if c.Shift {
		parts = append(parts, "shift")
	}
	if c.Alt {
		parts = append(parts, "alt")
	}
	return strings.Join(append(parts, c.Key), "+")
}

func Parse(s string) (Combo, error) {
	var c Combo
	fields := strings.Split(strings.ToLower(strings.TrimSpace(s)), "+")
	for i, f := range fields {
		f = strings.TrimSpace(f)
		last := i == len(fields)-1
		switch {
		case f == "ctrl" || f == "control":
			c.Ctrl = true
		case f == "shift":
			c.Shift = true
		case f == "alt" || f == "option":
			c.Alt = true
		case last && IsKey(f):
			c.Key = f
		default:
			return Combo{}, fmt.Errorf("%w: %q", ErrInvalidCombo, s)
		}
	}
	if c.Key == "" {
		return Combo{}, fmt.Errorf("%w: %q has no key", ErrInvalidCombo, s)
	}
	return c, nil
}

func IsKey(name string) bool {
	switch {
	case name == "space":
		return true
	case len(name) == 1:
		r := name[0]
		return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
	case len(name) >= 2 && name[0] == 'f':
		var n int
		if _, err := fmt.Sscanf(name[1:], "%d", &n); err != nil {
			return false
		}
		return n >= 1 && n <= 12 && name == fmt.Sprintf("f%d", n)
	}
	return false
}
