package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/dmfierro/bookhaven-backend/api/responses"
	"github.com/dmfierro/bookhaven-backend/api/validators"
	"github.com/dmfierro/bookhaven-backend/internal/readers"
	pkgerrors "github.com/dmfierro/bookhaven-backend/pkg/errors"
	"github.com/dmfierro/bookhaven-backend/pkg/logger"
)

// RegisterReader adds a reader to the roster.
func RegisterReader(svc readers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "readers service unavailable"))
			return
		}

		var body readers.CreateInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reader, err := svc.Create(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, reader)
	}
}

// UpdateReader applies a partial roster edit.
func UpdateReader(svc readers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "readers service unavailable"))
			return
		}

		readerID, err := uuidParam(r, "readerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body readers.UpdateInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reader, err := svc.Update(r.Context(), readerID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, reader)
	}
}

// DeleteReader removes a roster entry with no open loans.
func DeleteReader(svc readers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "readers service unavailable"))
			return
		}

		readerID, err := uuidParam(r, "readerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), readerID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// GetReader returns one roster entry.
func GetReader(svc readers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "readers service unavailable"))
			return
		}

		readerID, err := uuidParam(r, "readerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reader, err := svc.Get(r.Context(), readerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, reader)
	}
}

// ListReaders returns a roster page, searchable by name or email.
func ListReaders(svc readers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "readers service unavailable"))
			return
		}

		filters := readers.ListFilters{
			Query: strings.TrimSpace(validators.SanitizeString(r.URL.Query().Get("q"), 120)),
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("active")); raw != "" {
			active, err := strconv.ParseBool(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid active filter"))
				return
			}
			filters.Active = &active
		}

		list, err := svc.List(r.Context(), filters, paginationParams(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
