package handler

import (
	"net/http"

	"github.com/liflo-ai/liflo/internal/service"
)

type FlowHandler struct {
	flowService *service.FlowService
}

func NewFlowHandler(flowService *service.FlowService) *FlowHandler {
	return &FlowHandler{flowService: flowService}
}

func (h *FlowHandler) Tips(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.flowService.Guide())
}
