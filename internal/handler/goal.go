package handler

import (
	"net/http"

	"github.com/liflo-ai/liflo/internal/audit"
	"github.com/liflo-ai/liflo/internal/ctxkeys"
	"github.com/liflo-ai/liflo/internal/model"
	"github.com/liflo-ai/liflo/internal/service"
)

type GoalHandler struct {
	goalService *service.GoalService
	audit       auditor
}

func NewGoalHandler(goalService *service.GoalService, log audit.Logger, trustProxy bool) *GoalHandler {
	return &GoalHandler{
		goalService: goalService,
		audit:       auditor{log: log, trustProxy: trustProxy},
	}
}

type goalCreateRequest struct {
	Content string `json:"content"`
}

type goalUpdateRequest struct {
	Content *string           `json:"content"`
	Status  *model.GoalStatus `json:"status"`
	ReasonU *string           `json:"reasonU"`
}

func (h *GoalHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	ev := audit.Event{Event: audit.EventGoalsListed}

	goals, err := h.goalService.Goals(r.Context(), userID)
	if err != nil {
		h.audit.fail(w, r, err, ev)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"items": goals})
	h.audit.emit(r, http.StatusOK, ev)
}

func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	ev := audit.Event{Event: audit.EventGoalCreated}

	var req goalCreateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.audit.fail(w, r, err, ev)
		return
	}

	goal, err := h.goalService.Create(r.Context(), userID, req.Content)
	if err != nil {
		h.audit.fail(w, r, err, ev)
		return
	}

	writeJSON(w, http.StatusCreated, goal)
	ev.GoalID = goal.ID
	h.audit.emit(r, http.StatusCreated, ev)
}

func (h *GoalHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	goal, err := h.goalService.ByID(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, goal)
}

func (h *GoalHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	goalID := r.PathValue("id")
	ev := audit.Event{Event: audit.EventGoalUpdated, GoalID: goalID}

	var req goalUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.audit.fail(w, r, err, ev)
		return
	}

	goal, err := h.goalService.Update(r.Context(), userID, goalID, service.GoalUpdate{
		Content: req.Content,
		Status:  req.Status,
		ReasonU: req.ReasonU,
	})
	if err != nil {
		h.audit.fail(w, r, err, ev)
		return
	}

	writeJSON(w, http.StatusOK, goal)
	ev.Note = goal.Status.String()
	h.audit.emit(r, http.StatusOK, ev)
}
