package handler

import (
	"net/http"

	"github.com/liflo-ai/liflo/internal/audit"
	"github.com/liflo-ai/liflo/internal/ctxkeys"
	"github.com/liflo-ai/liflo/internal/service"
)

type ReviewHandler struct {
	reviewService *service.ReviewService
	audit         auditor
}

func NewReviewHandler(reviewService *service.ReviewService, log audit.Logger, trustProxy bool) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		audit:         auditor{log: log, trustProxy: trustProxy},
	}
}

func (h *ReviewHandler) Summary(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	q := r.URL.Query()
	ev := audit.Event{Event: audit.EventReviewViewed, GoalID: goalIDParam(r)}

	summary, err := h.reviewService.Summary(r.Context(), userID, service.ReviewQuery{
		From:   q.Get("from"),
		To:     q.Get("to"),
		GoalID: ev.GoalID,
	})
	if err != nil {
		h.audit.fail(w, r, err, ev)
		return
	}

	writeJSON(w, http.StatusOK, summary)
	h.audit.emit(r, http.StatusOK, ev)
}

func (h *ReviewHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	ev := audit.Event{Event: audit.EventStatsViewed}

	stats, err := h.reviewService.Stats(r.Context(), userID)
	if err != nil {
		h.audit.fail(w, r, err, ev)
		return
	}

	writeJSON(w, http.StatusOK, stats)
	h.audit.emit(r, http.StatusOK, ev)
}
