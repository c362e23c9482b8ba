// Package hotkey registers global OS hotkeys.
package hotkey

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.design/x/hotkey"

	"github.com/dkeye/Speaker/internal/adapters/hotkey/keyspec"
)

type binding struct {
	name string
	hk   *hotkey.Hotkey
	done chan struct{}
}

// Listener owns a set of registered hotkeys. Callbacks run on the
// listener's own goroutines, never on the caller's.
type Listener struct {
	mu       sync.Mutex
	bindings []*binding
	wg       sync.WaitGroup
}

func NewListener() *Listener {
	return &Listener{}
}

func (l *Listener) Register(name, combo string, cb func()) error {
	kc, err := keyspec.Parse(combo)
	if err != nil {
		return fmt.Errorf("hotkey %s: %w", name, err)
	}
	key, ok := keys[kc.Key]
	if !ok {
		return fmt.Errorf("hotkey %s: %w: %q", name, keyspec.ErrInvalidCombo, combo)
	}

	hk := hotkey.New(modifiers(kc), key)
	if err := hk.Register(); err != nil {
		return fmt.Errorf("hotkey %s (%s): %w", name, kc, err)
	}
	b := &binding{name: name, hk: hk, done: make(chan struct{})}

	l.mu.Lock()
	l.bindings = append(l.bindings, b)
	l.mu.Unlock()

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		for {
			select {
			case <-b.done:
				return
			case _, ok := <-hk.Keydown():
				if !ok {
					return
				}
				log.Debug().Str("module", "hotkey").Str("name", name).Msg("pressed")
				cb()
			}
		}
	}()

	log.Info().Str("module", "hotkey").Str("name", name).Str("combo", kc.String()).Msg("registered")
	return nil
}

func (l *Listener) Close() {
	l.mu.Lock()
	bindings := l.bindings
	l.bindings = nil
	l.mu.Unlock()

	for _, b := range bindings {
		close(b.done)
		if err := b.hk.Unregister(); err != nil {
			log.Warn().Err(err).Str("module", "hotkey").Str("name", b.name).Msg("unregister")
		}
	}
	l.wg.Wait()
}

func modifiers(c keyspec.Combo) []hotkey.Modifier {
	var mods []hotkey.Modifier
	if c.Ctrl {
		mods = append(mods, hotkey.ModCtrl)
	}
	if c.Shift {
		mods = append(mods, hotkey.ModShift)
	}
	if c.Alt {
		mods = append(mods, modAlt)
	}
	return mods
}

var keys = map[string]hotkey.Key{
	"a": hotkey.KeyA, "b": hotkey.KeyB, "c": hotkey.KeyC, "d": hotkey.KeyD,
	"e": hotkey.KeyE, "f": hotkey.KeyF, "g": hotkey.KeyG, "h": hotkey.KeyH,
	"i": hotkey.KeyI, "j": hotkey.KeyJ, "k": hotkey.KeyK, "l": hotkey.KeyL,
	"m": hotkey.KeyM, "n": hotkey.KeyN, "o": hotkey.KeyO, "p": hotkey.KeyP,
	"q": hotkey.KeyQ, "r": hotkey.KeyR, "s": hotkey.KeyS, "t": hotkey.KeyT,
	"u": hotkey.KeyU, "v": hotkey.KeyV, "w": hotkey.KeyW, "x": hotkey.KeyX,
	"y": hotkey.KeyY, "z": hotkey.KeyZ,

	"0": hotkey.Key0, "1": hotkey.Key1, "2": hotkey.Key2, "3": hotkey.Key3, "4": hotkey.Key4,
	"5": hotkey.Key5, "6": hotkey.Key6, "7": hotkey.Key7, "8": hotkey.Key8, "9": hotkey.Key9,

	"f1": hotkey.KeyF1, "f2": hotkey.KeyF2, "f3": hotkey.KeyF3, "f4": hotkey.KeyF4,
	"f5": hotkey.KeyF5, "f6": hotkey.KeyF6, "f7": hotkey.KeyF7, "f8": hotkey.KeyF8,
	"f9": hotkey.KeyF9, "f10": hotkey.KeyF10, "f11": hotkey.KeyF11, "f12": hotkey.KeyF12,

	"space": hotkey.KeySpace,
}
