package controllers

import (
	"math"
	"net/http"

	"github.com/crmbase-app/crmbase-backend/api/middleware"
	"github.com/crmbase-app/crmbase-backend/api/responses"
	"github.com/crmbase-app/crmbase-backend/api/validators"
	"github.com/crmbase-app/crmbase-backend/internal/companies"
	pkgerrors "github.com/crmbase-app/crmbase-backend/pkg/errors"
	"github.com/crmbase-app/crmbase-backend/pkg/logger"
)

// CompaniesList returns one page of companies, optionally filtered by
// industry.
func CompaniesList(svc companies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "company service unavailable"))
			return
		}

		page, err := validators.ParsePage(r, "page")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		industry, err := validators.ParseQueryInt(r, "industry_id", 0, 1, math.MaxInt32)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var industryID *int64
		if industry > 0 {
			id := int64(industry)
			industryID = &id
		}

		result, err := svc.List(r.Context(), page, industryID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// CompaniesGet returns a company with its notes and contact people.
func CompaniesGet(svc companies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "company service unavailable"))
			return
		}

		id, err := pathID(r, "companyId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// CompaniesCreate records a new company owned by the actor.
func CompaniesCreate(svc companies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "company service unavailable"))
			return
		}

		var body companies.CreateCompanyRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actorID := middleware.UserIDFromContext(r.Context())
		result, err := svc.Create(r.Context(), actorID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// CompaniesUpdate edits a company. The owner stays whoever created it.
func CompaniesUpdate(svc companies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "company service unavailable"))
			return
		}

		id, err := pathID(r, "companyId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body companies.UpdateCompanyRequest
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

// CompaniesDelete soft-deletes a company.
func CompaniesDelete(svc companies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "company service unavailable"))
			return
		}

		id, err := pathID(r, "companyId")
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
