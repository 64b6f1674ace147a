package render

import (
	"github.com/drblury/hyperweave/apierr"
	"github.com/drblury/hyperweave/hypermedia"
	"github.com/drblury/hyperweave/jsonutil"
)

// Problem is the flat error payload rendered for failed requests. It aligns
// with RFC 9457 problem documents, extended with a correlation trace ID,
// field-level violations, and the base navigation links so clients always
// have an escape route.
type Problem struct {
	Type       string
	Title      string
	Status     int
	Detail     string
	Instance   string
	Timestamp  string
	TraceID    string
	Violations []apierr.Violation
	Links      hypermedia.Links
}

type problemJSON struct {
	Type       string             `json:"type,omitempty"`
	Title      string             `json:"title"`
	Status     int                `json:"status"`
	Detail     string             `json:"detail,omitempty"`
	Instance   string             `json:"instance,omitempty"`
	Timestamp  string             `json:"timestamp,omitempty"`
	TraceID    string             `json:"traceId,omitempty"`
	Violations []apierr.Violation `json:"violations,omitempty"`
	Links      map[string]any     `json:"_links,omitempty"`
}

// JSONProblem renders the problem as pretty-printed application/problem+json.
func JSONProblem(p Problem) ([]byte, error) {
	payload := problemJSON{
		Type:       p.Type,
		Title:      p.Title,
		Status:     p.Status,
		Detail:     p.Detail,
		Instance:   p.Instance,
		Timestamp:  p.Timestamp,
		TraceID:    p.TraceID,
		Violations: p.Violations,
	}

	if len(p.Links) > 0 {
		payload.Links = make(map[string]any, len(p.Links))
		for rel, links := range p.Links {
			if len(links) == 0 {
				continue
			}
			payload.Links[rel] = linkValue(links)
		}
	}

	data, err := jsonutil.MarshalIndent(payload, "", jsonIndent)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
