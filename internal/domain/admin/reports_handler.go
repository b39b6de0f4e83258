package admin

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/giftbay/giftbay-api/internal/domain/report"
	"github.com/giftbay/giftbay-api/internal/pkg/response"
	"github.com/giftbay/giftbay-api/internal/pkg/validator"
)

func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	reports, err := h.reports.List(r.Context(), report.Status(r.URL.Query().Get("status")), limit, offset)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, map[string]interface{}{"reports": reports})
}

type resolveReportRequest struct {
	Reply string `json:"reply" validate:"required,max=2000"`
}

func (h *Handler) ResolveReport(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid report id")
		return
	}

	var req resolveReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(&req); details != nil {
		response.ValidationError(w, details)
		return
	}

	rep, err := h.reports.Resolve(r.Context(), id, req.Reply)
	if err != nil {
		switch {
		case errors.Is(err, report.ErrNotFound):
			response.NotFound(w, "Report not found")
		case errors.Is(err, report.ErrAlreadyResolved):
			response.Conflict(w, "Report is already resolved")
		default:
			response.InternalError(w)
		}
		return
	}
	response.OK(w, rep)
}
