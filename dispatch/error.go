package dispatch

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/drblury/hyperweave/apierr"
	"github.com/drblury/hyperweave/negotiate"
	"github.com/drblury/hyperweave/render"
)

// writeError is the outermost catch point of the engine: every failure a
// handler raises, plus routing misses, ends up here. The error is
// classified into the taxonomy, logged with its correlation identifier, and
// rendered as a problem document in the representation the client asked
// for, so errors are never swallowed and never served in the wrong format.
func (d *Dispatcher) writeError(w http.ResponseWriter, r *http.Request, err error) {
	typed := apierr.Classify(err)
	traceID := newTraceID()
	status := typed.Status()

	level := slog.LevelWarn
	if typed.Kind == apierr.KindInternal {
		level = slog.LevelError
	}
	d.log.With(
		"error", err.Error(),
		"traceId", traceID,
		"status", status,
	).Log(r.Context(), level, typed.Kind.Title())

	problem := render.Problem{
		Title:      typed.Kind.Title(),
		Status:     status,
		Detail:     typed.Detail,
		Instance:   r.URL.RequestURI(),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		TraceID:    traceID,
		Violations: typed.Violations,
		Links:      d.base,
	}

	representation := negotiate.Select(r.Header.Get("Accept"))

	var body []byte
	var renderErr error
	if representation == negotiate.StructuredData {
		body, renderErr = render.JSONProblem(problem)
	} else {
		body, renderErr = render.HTMLProblem(problem)
	}
	if renderErr != nil {
		d.log.Error("failed to render problem response", "error", renderErr)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", representation.ProblemContentType())
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		d.log.Error("failed to write problem response", "error", err)
	}
}
