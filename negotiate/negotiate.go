// Package negotiate chooses the response representation for a request from
// its Accept header. The engine supports exactly two representations:
// structured data (HAL JSON) for machine clients and hypertext (HTML) for
// browsers and everything that does not clearly ask for JSON.
//
// The policy is deliberately asymmetric rather than strict RFC 7231
// precedence: browsers and naive clients are treated as hypertext-preferring
// (missing header, */*, anything mentioning text/html), an exact structured
// media type anywhere in the header wins for JSON clients regardless of its
// quality weight relative to hypertext types, and anything unrecognised
// falls back to hypertext so a human is never shown raw bytes. Existing
// clients depend on this ordering; do not "fix" it toward spec precedence.
package negotiate

import (
	"sort"
	"strconv"
	"strings"
)

// Representation identifies one of the two supported response formats.
type Representation int

const (
	// Hypertext is the navigable HTML representation.
	Hypertext Representation = iota
	// StructuredData is the machine-readable HAL JSON representation.
	StructuredData
)

// Supported media types on the wire.
const (
	MediaHALJSON = "application/hal+json"
	MediaJSON    = "application/json"
	MediaProblem = "application/problem+json"
	MediaHTML    = "text/html"
	MediaXHTML   = "application/xhtml+xml"
)

// String returns the representation name used in logs.
func (r Representation) String() string {
	if r == StructuredData {
		return "structured-data"
	}
	return "hypertext"
}

// ContentType returns the Content-Type header value emitted for successful
// responses in this representation.
func (r Representation) ContentType() string {
	if r == StructuredData {
		return MediaHALJSON
	}
	return MediaHTML + "; charset=utf-8"
}

// ProblemContentType returns the Content-Type header value emitted for error
// responses in this representation.
func (r Representation) ProblemContentType() string {
	if r == StructuredData {
		return MediaProblem
	}
	return MediaHTML + "; charset=utf-8"
}

// Preference is one parsed Accept header entry.
type Preference struct {
	MediaType string
	Quality   float64
}

// ParseAccept splits an Accept header into preferences ordered by descending
// quality. Entries without a q parameter, or with one that does not parse,
// weigh 1.0. The sort is stable: ties keep their declaration order.
func ParseAccept(raw string) []Preference {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	preferences := make([]Preference, 0, len(parts))
	for _, part := range parts {
		entry := strings.TrimSpace(part)
		if entry == "" {
			continue
		}
		preferences = append(preferences, parsePreference(entry))
	}

	sort.SliceStable(preferences, func(i, j int) bool {
		return preferences[i].Quality > preferences[j].Quality
	})
	return preferences
}

func parsePreference(entry string) Preference {
	pref := Preference{Quality: 1.0}

	params := strings.Split(entry, ";")
	pref.MediaType = strings.TrimSpace(params[0])

	for _, param := range params[1:] {
		param = strings.TrimSpace(param)
		if !strings.HasPrefix(param, "q=") && !strings.HasPrefix(param, "Q=") {
			continue
		}
		q, err := strconv.ParseFloat(param[2:], 64)
		if err != nil || q < 0 || q > 1 {
			// Garbage weights fall back to 1.0 instead of dropping the entry.
			continue
		}
		pref.Quality = q
	}

	return pref
}

// Select decides the representation for the given Accept header value.
func Select(accept string) Representation {
	trimmed := strings.TrimSpace(accept)
	if trimmed == "" || trimmed == "*/*" {
		return Hypertext
	}

	preferences := ParseAccept(accept)

	for _, pref := range preferences {
		if strings.Contains(pref.MediaType, MediaHTML) {
			return Hypertext
		}
	}

	for _, pref := range preferences {
		if isStructured(pref.MediaType) {
			return StructuredData
		}
	}

	for _, pref := range preferences {
		switch pref.MediaType {
		case "application/*", "*/*":
			return StructuredData
		case MediaXHTML:
			return Hypertext
		}
	}

	return Hypertext
}

func isStructured(mediaType string) bool {
	return mediaType == MediaJSON || mediaType == MediaHALJSON
}
