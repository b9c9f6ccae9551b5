package handler

import (
	"net/http"

	"github.com/liflo-ai/liflo/internal/audit"
	"github.com/liflo-ai/liflo/internal/ctxkeys"
	"github.com/liflo-ai/liflo/internal/service"
)

type RecordHandler struct {
	recordService *service.RecordService
	audit         auditor
}

func NewRecordHandler(recordService *service.RecordService, log audit.Logger, trustProxy bool) *RecordHandler {
	return &RecordHandler{
		recordService: recordService,
		audit:         auditor{log: log, trustProxy: trustProxy},
	}
}

type recordCreateRequest struct {
	GoalID     string  `json:"goalId"`
	Date       string  `json:"date"`
	ChallengeU int     `json:"challengeU"`
	SkillU     int     `json:"skillU"`
	ReasonU    *string `json:"reasonU"`
}

func (h *RecordHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	ev := audit.Event{Event: audit.EventRecordCreated}

	var req recordCreateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.audit.fail(w, r, err, ev)
		return
	}
	ev.GoalID = req.GoalID
	ev.Date = req.Date
	ev.ChallengeU = &req.ChallengeU
	ev.SkillU = &req.SkillU

	record, err := h.recordService.Create(r.Context(), userID, service.CreateRecordInput{
		GoalID:     req.GoalID,
		Date:       req.Date,
		ChallengeU: req.ChallengeU,
		SkillU:     req.SkillU,
		ReasonU:    req.ReasonU,
	})
	if err != nil {
		h.audit.fail(w, r, err, ev)
		return
	}

	writeJSON(w, http.StatusCreated, record)
	ev.RecordID = record.ID
	ev.AIChallenge = record.AIChallenge
	ev.AISkill = record.AISkill
	h.audit.emit(r, http.StatusCreated, ev)
}

func (h *RecordHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	q := r.URL.Query()
	ev := audit.Event{Event: audit.EventRecordsListed, GoalID: goalIDParam(r)}

	records, err := h.recordService.Records(r.Context(), userID, service.RecordQuery{
		From:   q.Get("from"),
		To:     q.Get("to"),
		GoalID: ev.GoalID,
	})
	if err != nil {
		h.audit.fail(w, r, err, ev)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"items": records})
	h.audit.emit(r, http.StatusOK, ev)
}

func (h *RecordHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	record, err := h.recordService.ByID(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// goalIDParam accepts goalId and the older goal_id spelling.
func goalIDParam(r *http.Request) string {
	q := r.URL.Query()
	if id := q.Get("goalId"); id != "" {
		return id
	}
	return q.Get("goal_id")
}
