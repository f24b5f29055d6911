package hytopia

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NamePrefix is prepended to names that cannot start an identifier.
const NamePrefix = "hytopia_"

var nameReplacer = strings.NewReplacer(" ", "_", "-", "_", "/", "_", "\\", "_")

// SafeName converts a block or model name into an object/material-safe name.
// Accented letters are folded to their base letter so names stay ASCII where possible.
func SafeName(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}

	safe := nameReplacer.Replace(folded)

	first := []rune(safe)
	if len(first) == 0 || !(unicode.IsLetter(first[0]) || first[0] == '_') {
		safe = NamePrefix + safe
	}
	return safe
}
