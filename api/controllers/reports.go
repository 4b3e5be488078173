package controllers

import (
	"net/http"

	"github.com/ejidepharmacy/pharmabot-backend/api/responses"
	"github.com/ejidepharmacy/pharmabot-backend/internal/reports"
	pkgerrors "github.com/ejidepharmacy/pharmabot-backend/pkg/errors"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/logger"
)

type weeklyReportResponse struct {
	Report string `json:"report"`
}

// WeeklyReport renders the admin weekly summary.
func WeeklyReport(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reports unavailable"))
			return
		}

		summary, err := svc.Weekly(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, weeklyReportResponse{Report: summary.Render()})
	}
}
