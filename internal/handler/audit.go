package handler

import (
	"net/http"
	"time"

	"github.com/liflo-ai/liflo/internal/audit"
	"github.com/liflo-ai/liflo/internal/ctxkeys"
	"github.com/liflo-ai/liflo/internal/middleware"
)

// auditor turns handled requests into audit events.
type auditor struct {
	log        audit.Logger
	trustProxy bool
}

// emit completes e from the request and hands it to the audit log.
// It never blocks on the sink.
func (a auditor) emit(r *http.Request, statusCode int, e audit.Event) {
	if a.log == nil {
		return
	}

	ctx := r.Context()
	now := time.Now()

	e.Timestamp = now.UTC()
	e.RequestID = ctxkeys.RequestID(ctx)
	if e.UserID == "" {
		e.UserID = ctxkeys.UserID(ctx)
	}
	e.Endpoint = r.URL.Path
	e.Method = r.Method
	e.StatusCode = statusCode
	e.IP = middleware.ClientIP(r, a.trustProxy)
	e.UserAgent = r.UserAgent()

	e.Status = audit.StatusSuccess
	if statusCode >= http.StatusBadRequest {
		e.Status = audit.StatusFail
	}

	if start := ctxkeys.RequestStart(ctx); !start.IsZero() {
		ms := now.Sub(start).Milliseconds()
		e.LatencyMs = &ms
	}

	a.log.Append(e)
}

// fail writes err and emits a failed event carrying its error code.
func (a auditor) fail(w http.ResponseWriter, r *http.Request, err error, e audit.Event) {
	status := writeError(w, r, err)
	_, body := classify(err)
	e.Note = body.Error
	a.emit(r, status, e)
}
