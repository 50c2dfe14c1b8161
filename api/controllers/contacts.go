package controllers

import (
	"net/http"

	"github.com/crmbase-app/crmbase-backend/api/middleware"
	"github.com/crmbase-app/crmbase-backend/api/responses"
	"github.com/crmbase-app/crmbase-backend/api/validators"
	"github.com/crmbase-app/crmbase-backend/internal/contacts"
	pkgerrors "github.com/crmbase-app/crmbase-backend/pkg/errors"
	"github.com/crmbase-app/crmbase-backend/pkg/logger"
)

// ContactsCreate adds a contact person to a company.
func ContactsCreate(svc contacts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "contact service unavailable"))
			return
		}

		companyID, err := pathID(r, "companyId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body contacts.CreateContactRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actorID := middleware.UserIDFromContext(r.Context())
		result, err := svc.Create(r.Context(), actorID, companyID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// ContactsUpdate replaces the editable fields. Ownership never changes on
// edit.
func ContactsUpdate(svc contacts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "contact service unavailable"))
			return
		}

		id, err := pathID(r, "contactId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body contacts.CreateContactRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Update(r.Context(), id, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ContactsDelete soft-deletes a contact person.
func ContactsDelete(svc contacts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "contact service unavailable"))
			return
		}

		id, err := pathID(r, "contactId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actorID := middleware.UserIDFromContext(r.Context())
		caps := middleware.CapabilitiesFromContext(r.Context())
		if err := svc.Delete(r.Context(), actorID, caps, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// ContactsSearch finds contact people by exact surname across all companies.
func ContactsSearch(svc contacts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "contact service unavailable"))
			return
		}

		term := validators.SanitizeString(r.URL.Query().Get("search"), 40)
		result, err := svc.Search(r.Context(), term)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": result})
	}
}
