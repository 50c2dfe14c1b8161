package controllers

import (
	"context"
	"net/http"

	"github.com/crmbase-app/crmbase-backend/api/responses"
	"github.com/crmbase-app/crmbase-backend/internal/industries"
	pkgerrors "github.com/crmbase-app/crmbase-backend/pkg/errors"
	"github.com/crmbase-app/crmbase-backend/pkg/logger"
)

// IndustryLister provides the industry dictionary.
type IndustryLister interface {
	List(ctx context.Context) ([]industries.IndustryDTO, error)
}

// IndustriesList returns the full industry dictionary ordered by name.
func IndustriesList(repo IndustryLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "industry repository unavailable"))
			return
		}

		items, err := repo.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing industries"))
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": items})
	}
}
