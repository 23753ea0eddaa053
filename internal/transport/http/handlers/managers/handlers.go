package managershandler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"intranet/internal/domain/auth"
	"intranet/internal/domain/managers"
	"intranet/internal/transport/http/api"
	"intranet/internal/transport/http/middleware"
	"intranet/internal/transport/http/shared"
)

type Handler struct {
	Service *managers.Service
}

func NewHandler(service *managers.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/managers", func(r chi.Router) {
		r.Use(middleware.RequireUser)
		r.Use(middleware.RequireRole(auth.RoleAdmin))
		r.Get("/mappings", h.handleListMappings)
		r.Post("/mappings", h.handleCreateMapping)
		r.Delete("/mappings/{mappingID}", h.handleDeactivateMapping)
		r.Put("/{userID}/toggle", h.handleToggle)
	})
}

func (h *Handler) handleListMappings(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	items, err := h.Service.List(r.Context(), r.URL.Query().Get("collaboratorId"))
	if err != nil {
		api.FailDomain(w, err, reqID)
		return
	}
	api.Success(w, items, reqID)
}

type createMappingRequest struct {
	CollaboratorID string  `json:"collaboratorId"`
	ManagerID      string  `json:"managerId"`
	PeriodID       *string `json:"periodId"`
}

func (h *Handler) handleCreateMapping(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload createMappingRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("collaboratorId", payload.CollaboratorID, "collaboratorId is required")
	v.Required("managerId", payload.ManagerID, "managerId is required")
	if payload.CollaboratorID != "" && payload.CollaboratorID == payload.ManagerID {
		v.Add("managerId", "an employee cannot be their own manager")
	}
	if v.Reject(w, reqID) {
		return
	}

	id, err := h.Service.Create(r.Context(), payload.CollaboratorID, payload.ManagerID, payload.PeriodID)
	if err != nil {
		api.FailDomain(w, err, reqID)
		return
	}
	api.Created(w, map[string]string{"id": id}, reqID)
}

func (h *Handler) handleDeactivateMapping(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	if err := h.Service.Deactivate(r.Context(), chi.URLParam(r, "mappingID")); err != nil {
		api.FailDomain(w, err, reqID)
		return
	}
	api.Success(w, map[string]string{"status": "deactivated"}, reqID)
}

type toggleRequest struct {
	Enabled bool `json:"enabled"`
}

func (h *Handler) handleToggle(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	userID := chi.URLParam(r, "userID")

	var payload toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	if err := h.Service.SetEvaluationManager(r.Context(), userID, payload.Enabled); err != nil {
		api.FailDomain(w, err, reqID)
		return
	}
	api.Success(w, map[string]any{"userId": userID, "enabled": payload.Enabled}, reqID)
}
