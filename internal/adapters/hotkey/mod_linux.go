package hotkey

import "golang.design/x/hotkey"

// Mod1 is Alt on every common X11 keymap.
const modAlt = hotkey.Mod1
