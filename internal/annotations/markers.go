package annotations

import (
	"strings"
	"unicode"

	"github.com/toyz/autoimpl/internal/models"
)

// ParseMarker recognises a directive-style comment line such as
// //nolint:revive or //json:created_at. Plain prose comments
// ("// note: ...") are not markers.
func ParseMarker(line string) (models.Marker, bool) {
	raw := strings.TrimRightFunc(line, unicode.IsSpace)
	text, ok := strings.CutPrefix(strings.TrimLeftFunc(raw, unicode.IsSpace), "//")
	if !ok || text == "" || unicode.IsSpace(rune(text[0])) {
		return models.Marker{}, false
	}

	colon := strings.IndexByte(text, ':')
	if colon <= 0 {
		return models.Marker{}, false
	}
	namespace := text[:colon]
	if !isMarkerNamespace(namespace) {
		return models.Marker{}, false
	}

	rest := strings.TrimPrefix(text[colon+1:], ":")
	name, args, _ := strings.Cut(rest, " ")
	if name == "" || strings.ContainsAny(name, "\t") || !isMarkerNamespace(name[:1]) {
		return models.Marker{}, false
	}

	return models.Marker{
		Namespace: namespace,
		Name:      name,
		Args:      strings.TrimSpace(args),
		Raw:       strings.TrimLeftFunc(raw, unicode.IsSpace),
	}, true
}

// ParseMarkers collects every marker in a doc comment, in order
func ParseMarkers(lines []string) []models.Marker {
	var markers []models.Marker
	for _, line := range lines {
		if marker, ok := ParseMarker(line); ok {
			markers = append(markers, marker)
		}
	}
	return markers
}

// IsInternal reports whether a marker belongs to the autoimpl control namespace
func IsInternal(marker models.Marker) bool {
	return marker.Namespace == Namespace
}

func isMarkerNamespace(s string) bool {
	for i, r := range s {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && (unicode.IsDigit(r) || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return true
}
