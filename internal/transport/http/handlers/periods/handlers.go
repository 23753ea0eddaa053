package periodshandler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"intranet/internal/domain/auth"
	"intranet/internal/domain/evaluation"
	"intranet/internal/domain/periods"
	"intranet/internal/platform/jobs"
	"intranet/internal/transport/http/api"
	"intranet/internal/transport/http/middleware"
	"intranet/internal/transport/http/shared"
)

type Handler struct {
	Service     *periods.Service
	Evaluations *evaluation.Service
	Jobs        *jobs.Service
}

func NewHandler(service *periods.Service, evals *evaluation.Service, jobsSvc *jobs.Service) *Handler {
	return &Handler{Service: service, Evaluations: evals, Jobs: jobsSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/periods", func(r chi.Router) {
		r.Use(middleware.RequireUser)
		r.Get("/", h.handleList)
		r.Get("/{periodID}", h.handleGet)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(auth.RoleAdmin))
			r.Post("/", h.handleCreate)
			r.Delete("/{periodID}", h.handleDelete)
			r.Post("/{periodID}/activate", h.handleActivate)
			r.Post("/{periodID}/deactivate", h.handleDeactivate)
			r.Post("/{periodID}/open", h.handleOpen)
			r.Post("/sweep", h.handleSweep)
		})
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	items, err := h.Service.List(r.Context())
	if err != nil {
		api.FailDomain(w, err, reqID)
		return
	}
	api.Success(w, items, reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	period, err := h.Service.Get(r.Context(), chi.URLParam(r, "periodID"))
	if err != nil {
		api.FailDomain(w, err, reqID)
		return
	}
	api.Success(w, period, reqID)
}

type createPeriodRequest struct {
	Name                   string `json:"name"`
	Description            string `json:"description"`
	StartDate              string `json:"startDate"`
	EndDate                string `json:"endDate"`
	SelfAssessmentDeadline string `json:"selfAssessmentDeadline"`
	ApprovalDeadline       string `json:"approvalDeadline"`
	Active                 bool   `json:"active"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload createPeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "name is required")
	start, _ := v.Date("startDate", payload.StartDate)
	end, _ := v.Date("endDate", payload.EndDate)
	selfDeadline, _ := v.Date("selfAssessmentDeadline", payload.SelfAssessmentDeadline)
	approvalDeadline, _ := v.Date("approvalDeadline", payload.ApprovalDeadline)
	v.DateOrder("startDate", start, "endDate", end)
	if v.Reject(w, reqID) {
		return
	}

	id, err := h.Service.Create(r.Context(), periods.Period{
		Name:                   payload.Name,
		Description:            payload.Description,
		StartDate:              start,
		EndDate:                end,
		SelfAssessmentDeadline: selfDeadline,
		ApprovalDeadline:       approvalDeadline,
		Active:                 payload.Active,
	})
	if err != nil {
		api.FailDomain(w, err, reqID)
		return
	}
	api.Created(w, map[string]string{"id": id}, reqID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "periodID")); err != nil {
		api.FailDomain(w, err, reqID)
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, reqID)
}

func (h *Handler) handleActivate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	if err := h.Service.Activate(r.Context(), chi.URLParam(r, "periodID")); err != nil {
		api.FailDomain(w, err, reqID)
		return
	}
	api.Success(w, map[string]string{"status": "active"}, reqID)
}

func (h *Handler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	if err := h.Service.Deactivate(r.Context(), chi.URLParam(r, "periodID")); err != nil {
		api.FailDomain(w, err, reqID)
		return
	}
	api.Success(w, map[string]string{"status": "inactive"}, reqID)
}

// handleOpen creates the period's draft evaluations on demand instead of
// waiting for the background sweep.
func (h *Handler) handleOpen(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	result, err := h.Evaluations.OpenPeriod(r.Context(), chi.URLParam(r, "periodID"))
	if err != nil {
		api.FailDomain(w, err, reqID)
		return
	}
	api.Success(w, result, reqID)
}

func (h *Handler) handleSweep(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	details, err := h.Jobs.RunPeriodSweep(r.Context())
	if err != nil {
		api.FailDomain(w, err, reqID)
		return
	}
	api.Success(w, details, reqID)
}
