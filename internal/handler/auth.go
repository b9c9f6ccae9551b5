package handler

import (
	"net/http"

	"github.com/liflo-ai/liflo/internal/audit"
	"github.com/liflo-ai/liflo/internal/ctxkeys"
	"github.com/liflo-ai/liflo/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
	audit       auditor
}

func NewAuthHandler(authService *service.AuthService, log audit.Logger, trustProxy bool) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		audit:       auditor{log: log, trustProxy: trustProxy},
	}
}

type credentialsRequest struct {
	Nickname string `json:"nickname"`
	PIN      string `json:"pin"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	ev := audit.Event{Event: audit.EventUserSignedUp}

	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.audit.fail(w, r, err, ev)
		return
	}

	session, err := h.authService.Signup(r.Context(), req.Nickname, req.PIN)
	if err != nil {
		h.audit.fail(w, r, err, ev)
		return
	}

	writeJSON(w, http.StatusCreated, session)
	ev.UserID = session.User.ID
	h.audit.emit(r, http.StatusCreated, ev)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ev := audit.Event{Event: audit.EventUserLoggedIn}

	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.audit.fail(w, r, err, ev)
		return
	}

	session, err := h.authService.Login(r.Context(), req.Nickname, req.PIN)
	if err != nil {
		h.audit.fail(w, r, err, ev)
		return
	}

	writeJSON(w, http.StatusOK, session)
	ev.UserID = session.User.ID
	h.audit.emit(r, http.StatusOK, ev)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.authService.User(r.Context(), ctxkeys.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": user, "authMode": h.authService.Mode()})
}
