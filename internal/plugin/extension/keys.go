package extension

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
)

// namedKeys maps lowercased special-key names ("enter", "esc", "f1", ...)
// to their canonical spelling.
var namedKeys = buildNamedKeys()

func buildNamedKeys() map[string]string {
	m := make(map[string]string, len(tcell.KeyNames)+2)
	for _, name := range tcell.KeyNames {
		m[strings.ToLower(name)] = strings.ToLower(name)
	}
	// Spellings tcell does not list but plugin authors use.
	m["space"] = "space"
	m["escape"] = "esc"
	m["return"] = "enter"
	return m
}

var modifierOrder = []string{"ctrl", "alt", "meta", "shift"}

var modifierAliases = map[string]string{
	"ctrl":    "ctrl",
	"control": "ctrl",
	"c":       "ctrl",
	"alt":     "alt",
	"opt":     "alt",
	"option":  "alt",
	"meta":    "meta",
	"cmd":     "meta",
	"super":   "meta",
	"shift":   "shift",
}

// NormalizeCombo canonicalizes a key-combo string: modifiers are lowercased
// and ordered ctrl, alt, meta, shift; the final part must be a single rune
// or a known special-key name. Two spellings of the same chord normalize to
// the same string, which is what keybinding identity is based on.
func NormalizeCombo(combo string) (string, error) {
	parts := strings.Split(combo, "+")
	if combo == "" || len(parts) == 0 {
		return "", fmt.Errorf("empty key combo")
	}

	mods := make(map[string]bool, 4)
	for _, raw := range parts[:len(parts)-1] {
		mod, ok := modifierAliases[strings.ToLower(strings.TrimSpace(raw))]
		if !ok {
			return "", fmt.Errorf("unknown modifier %q in combo %q", raw, combo)
		}
		if mods[mod] {
			return "", fmt.Errorf("repeated modifier %q in combo %q", mod, combo)
		}
		mods[mod] = true
	}

	key := strings.TrimSpace(parts[len(parts)-1])
	switch {
	case key == "":
		return "", fmt.Errorf("missing key in combo %q", combo)
	case utf8.RuneCountInString(key) == 1:
		key = strings.ToLower(key)
	default:
		canonical, ok := namedKeys[strings.ToLower(key)]
		if !ok {
			return "", fmt.Errorf("unknown key %q in combo %q", key, combo)
		}
		key = canonical
	}

	var b strings.Builder
	for _, mod := range modifierOrder {
		if mods[mod] {
			b.WriteString(mod)
			b.WriteByte('+')
		}
	}
	b.WriteString(key)
	return b.String(), nil
}
