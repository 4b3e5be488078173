package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/ejidepharmacy/pharmabot-backend/api/responses"
	"github.com/ejidepharmacy/pharmabot-backend/api/validators"
	"github.com/ejidepharmacy/pharmabot-backend/internal/chat"
	pkgerrors "github.com/ejidepharmacy/pharmabot-backend/pkg/errors"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/logger"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/types"
)

const maxMessageRunes = 4096

type chatRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required,phone"`
	Message     string `json:"message" validate:"required,max=4096"`
	IsAdmin     bool   `json:"is_admin"`
	Timestamp   string `json:"timestamp,omitempty"`
}

func (req chatRequest) toInbound() (chat.Inbound, error) {
	in := chat.Inbound{
		CustomerID: strings.TrimSpace(req.PhoneNumber),
		Message:    validators.SanitizeString(req.Message, maxMessageRunes),
		IsAdmin:    req.IsAdmin,
	}
	if ts := strings.TrimSpace(req.Timestamp); ts != "" {
		parsed, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			return in, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "timestamp must be RFC3339").
				WithDetails(map[string]string{"timestamp": "must be a timestamp like 2006-01-02T15:04:05Z07:00"})
		}
		in.Timestamp = parsed
	}
	return in, nil
}

// Chat answers one customer (or admin) message.
func Chat(svc chat.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "chat service unavailable"))
			return
		}

		var payload chatRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		in, err := payload.toInbound()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reply, err := svc.Handle(r.Context(), in)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, types.ChatReply{Reply: reply})
	}
}
