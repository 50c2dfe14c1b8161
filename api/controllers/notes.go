package controllers

import (
	"net/http"

	"github.com/crmbase-app/crmbase-backend/api/middleware"
	"github.com/crmbase-app/crmbase-backend/api/responses"
	"github.com/crmbase-app/crmbase-backend/api/validators"
	"github.com/crmbase-app/crmbase-backend/internal/notes"
	pkgerrors "github.com/crmbase-app/crmbase-backend/pkg/errors"
	"github.com/crmbase-app/crmbase-backend/pkg/logger"
)

// NotesCreate attaches a note to a company.
func NotesCreate(svc notes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "note service unavailable"))
			return
		}

		companyID, err := pathID(r, "companyId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body notes.CreateNoteRequest
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

// NotesUpdate replaces the note body. Authorship never changes on edit.
func NotesUpdate(svc notes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "note service unavailable"))
			return
		}

		id, err := pathID(r, "noteId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body notes.CreateNoteRequest
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

// NotesDelete soft-deletes a note.
func NotesDelete(svc notes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "note service unavailable"))
			return
		}

		id, err := pathID(r, "noteId")
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
