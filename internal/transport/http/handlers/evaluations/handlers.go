package evaluationshandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"intranet/internal/domain/auth"
	"intranet/internal/domain/evaluation"
	"intranet/internal/domain/reports"
	"intranet/internal/platform/metrics"
	"intranet/internal/transport/http/api"
	"intranet/internal/transport/http/middleware"
)

type Handler struct {
	Service *evaluation.Service
	Reports *reports.Service
	Metrics *metrics.Collector
}

func NewHandler(service *evaluation.Service, reportSvc *reports.Service, collector *metrics.Collector) *Handler {
	return &Handler{Service: service, Reports: reportSvc, Metrics: collector}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/evaluations", func(r chi.Router) {
		r.Use(middleware.RequireUser)
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.With(middleware.RequireRole(auth.RoleAdmin)).Get("/trash", h.handleListTrash)
		r.Get("/{evaluationID}", h.handleGet)
		r.Delete("/{evaluationID}", h.handleDelete)
		r.With(middleware.RequireRole(auth.RoleAdmin)).Post("/{evaluationID}/restore", h.handleRestore)
		r.Post("/{evaluationID}/actions/{action}", h.handleAction)
		r.Get("/{evaluationID}/pdf", h.handlePDF)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	items, err := h.Service.List(r.Context(), user, r.URL.Query().Get("status"))
	if err != nil {
		api.FailDomain(w, err, reqID)
		return
	}
	api.Success(w, items, reqID)
}

type createRequest struct {
	EmployeeID string  `json:"employeeId"`
	PeriodID   *string `json:"periodId"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload createRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	if payload.EmployeeID == "" {
		payload.EmployeeID = user.UserID
	}
	if !user.IsAdmin() && payload.EmployeeID != user.UserID {
		api.Fail(w, http.StatusForbidden, "forbidden", "cannot create evaluations for other employees", reqID)
		return
	}

	created, err := h.Service.Create(r.Context(), payload.EmployeeID, payload.PeriodID)
	if err != nil {
		api.FailDomain(w, err, reqID)
		return
	}
	api.Created(w, created, reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	eval, err := h.Service.Get(r.Context(), user, chi.URLParam(r, "evaluationID"))
	if err != nil {
		api.FailDomain(w, err, reqID)
		return
	}
	api.Success(w, eval, reqID)
}

func (h *Handler) handleAction(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	action := chi.URLParam(r, "action")

	var payload evaluation.ActionPayload
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
			return
		}
	}

	result, err := h.Service.Apply(r.Context(), user, chi.URLParam(r, "evaluationID"), action, payload)
	if err != nil {
		// The record's actual status rides along so clients can resync.
		if result.Status != "" {
			w.Header().Set("X-Evaluation-Status", result.Status)
		}
		api.FailDomain(w, err, reqID)
		return
	}
	if h.Metrics != nil {
		h.Metrics.RecordAction(action)
	}
	api.Success(w, result, reqID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	if err := h.Service.SoftDelete(r.Context(), user, chi.URLParam(r, "evaluationID")); err != nil {
		api.FailDomain(w, err, reqID)
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, reqID)
}

func (h *Handler) handleRestore(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	if err := h.Service.Restore(r.Context(), user, chi.URLParam(r, "evaluationID")); err != nil {
		api.FailDomain(w, err, reqID)
		return
	}
	api.Success(w, map[string]string{"status": "restored"}, reqID)
}

func (h *Handler) handleListTrash(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	items, err := h.Service.ListTrash(r.Context(), user)
	if err != nil {
		api.FailDomain(w, err, reqID)
		return
	}
	api.Success(w, items, reqID)
}

func (h *Handler) handlePDF(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	evaluationID := chi.URLParam(r, "evaluationID")

	data, err := h.Reports.EvaluationPDF(r.Context(), user, evaluationID)
	if errors.Is(err, reports.ErrNotCompleted) {
		api.Fail(w, http.StatusUnprocessableEntity, "not_completed", "only completed evaluations can be exported", reqID)
		return
	}
	if err != nil {
		api.FailDomain(w, err, reqID)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="evaluation-`+evaluationID+`.pdf"`)
	_, _ = w.Write(data)
}
