package languageutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var TitleCaser = cases.Title(language.English)
var LowerCaser = cases.Lower(language.English)

// HumanizeLabel turns classifier labels like "lehenga_set" or "midi_dress"
// into display text ("Lehenga Set", "Midi Dress").
func HumanizeLabel(label string) string {
	if label == "" {
		return "Unknown"
	}
	return TitleCaser.String(strings.ReplaceAll(label, "_", " "))
}
