package main

import (
	"net/http"

	"bulkwala/internal/degrade"
)

// degradedHeader carries the reason a response was served from a fallback.
const degradedHeader = "X-Degraded-Reason"

// messages are the envelope messages for the three ways an outcome can be
// served. Unconfigured is used when the primary was skipped, Degraded when
// it ran and failed. An empty Unconfigured falls back to Degraded.
type messages struct {
	OK           string
	Degraded     string
	Unconfigured string
}

// writeOutcome renders out. Success uses status; degraded responses are
// always 200 and name their reason in a header; failures are mapped by
// errorResponse.
func writeOutcome[T any](app *application, w http.ResponseWriter, r *http.Request, out degrade.Outcome[T], status int, msg messages) {
	switch out.Status {
	case degrade.StatusSuccess:
		if err := app.jsonResponse(w, status, out.Value, msg.OK); err != nil {
			app.internalServerError(w, r, err)
		}
	case degrade.StatusDegraded:
		message := msg.Degraded
		if out.Skipped && msg.Unconfigured != "" {
			message = msg.Unconfigured
		}
		w.Header().Set(degradedHeader, out.Reason)
		if err := app.jsonResponse(w, http.StatusOK, out.Value, message); err != nil {
			app.internalServerError(w, r, err)
		}
	default:
		app.errorResponse(w, r, out.Err)
	}
}

// mapOutcome converts the value of out, keeping its status and reason.
func mapOutcome[T, U any](out degrade.Outcome[T], f func(T) U) degrade.Outcome[U] {
	mapped := degrade.Outcome[U]{Status: out.Status, Reason: out.Reason, Err: out.Err, Skipped: out.Skipped}
	if out.Status != degrade.StatusFailure {
		mapped.Value = f(out.Value)
	}
	return mapped
}
