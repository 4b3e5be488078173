package controllers

import (
	"net/http"

	"github.com/ejidepharmacy/pharmabot-backend/api/responses"
	"github.com/ejidepharmacy/pharmabot-backend/internal/adherence"
	pkgerrors "github.com/ejidepharmacy/pharmabot-backend/pkg/errors"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/logger"
)

type remindersResponse struct {
	Reminders []adherence.Reminder `json:"reminders"`
}

// MedicationReminders runs a reminder scan for today and lists what was sent.
// Reminders that went out before a partial failure are still returned.
func MedicationReminders(svc adherence.Service, deliverer adherence.Deliverer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || deliverer == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reminder service unavailable"))
			return
		}

		sent, err := svc.Dispatch(r.Context(), deliverer)
		if err != nil && len(sent) == 0 {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err != nil && logg != nil {
			ctx := logg.WithField(r.Context(), "sent", len(sent))
			logg.Error(ctx, "reminders.partial_dispatch", err)
		}
		if sent == nil {
			sent = []adherence.Reminder{}
		}

		responses.WriteSuccess(w, remindersResponse{Reminders: sent})
	}
}
