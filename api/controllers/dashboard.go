package controllers

import (
	"net/http"

	"github.com/dmfierro/bookhaven-backend/api/responses"
	"github.com/dmfierro/bookhaven-backend/api/validators"
	"github.com/dmfierro/bookhaven-backend/internal/activities"
	"github.com/dmfierro/bookhaven-backend/internal/notify"
	"github.com/dmfierro/bookhaven-backend/internal/stats"
	pkgerrors "github.com/dmfierro/bookhaven-backend/pkg/errors"
	"github.com/dmfierro/bookhaven-backend/pkg/logger"
	"github.com/google/uuid"
)

// DashboardStats returns the headline library numbers.
func DashboardStats(svc stats.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stats service unavailable"))
			return
		}

		dash, err := svc.Dashboard(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dash)
	}
}

// RecentActivities returns the newest feed entries.
func RecentActivities(svc activities.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "activities service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", activities.DefaultFeedSize, 1, 50)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		feed, err := svc.Recent(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, feed)
	}
}

type dueReminderRequest struct {
	LendingID uuid.UUID `json:"lending_id" validate:"required"`
	ReaderID  uuid.UUID `json:"reader_id" validate:"required"`
}

// SendDueReminder emails the reader about an open loan.
func SendDueReminder(svc notify.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notification service unavailable"))
			return
		}

		var body dueReminderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		err := svc.SendDueReminder(r.Context(), notify.DueReminderInput{
			LendingID: body.LendingID,
			ReaderID:  body.ReaderID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "sent"})
	}
}
