package contacts

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/crmbase-app/crmbase-backend/pkg/db/models"
	pkgerrors "github.com/crmbase-app/crmbase-backend/pkg/errors"
	"github.com/crmbase-app/crmbase-backend/pkg/policy"
)

// Service defines the behavior needed by the contacts controller.
type Service interface {
	Create(ctx context.Context, actorID, companyID int64, req CreateContactRequest) (*ContactDTO, error)
	Update(ctx context.Context, id int64, req CreateContactRequest) (*ContactDTO, error)
	Delete(ctx context.Context, actorID int64, caps policy.Capabilities, id int64) error
	Search(ctx context.Context, surname string) ([]ContactDTO, error)
}

type contactRepository interface {
	Create(ctx context.Context, dto CreateContactDTO) (*models.ContactPerson, error)
	FindByID(ctx context.Context, id int64) (*models.ContactPerson, error)
	SearchBySurname(ctx context.Context, surname string) ([]models.ContactPerson, error)
	Update(ctx context.Context, contact *models.ContactPerson) error
	SoftDelete(ctx context.Context, id int64) error
}

type companyFinder interface {
	FindByID(ctx context.Context, id int64) (*models.Company, error)
}

type service struct {
	repo      contactRepository
	companies companyFinder
}

// ServiceParams bundles the dependencies required to build a contacts service.
type ServiceParams struct {
	Repo      contactRepository
	Companies companyFinder
}

// NewService constructs a contacts service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "contact repository required")
	}
	if params.Companies == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "company repository required")
	}
	return &service{repo: params.Repo, companies: params.Companies}, nil
}

func (s *service) Create(ctx context.Context, actorID, companyID int64, req CreateContactRequest) (*ContactDTO, error) {
	if _, err := s.companies.FindByID(ctx, companyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "company not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup company")
	}

	contact, err := s.repo.Create(ctx, CreateContactDTO{
		Name:      req.Name,
		Surname:   req.Surname,
		Phone:     req.Phone,
		Mail:      req.Mail,
		CompanyID: companyID,
		OwnerID:   actorID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create contact")
	}

	created, err := s.repo.FindByID(ctx, contact.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload contact")
	}
	return FromModel(created), nil
}

// Update replaces the editable fields. The owner and company stamps survive
// edits.
func (s *service) Update(ctx context.Context, id int64, req CreateContactRequest) (*ContactDTO, error) {
	contact, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "contact not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup contact")
	}

	contact.Name = req.Name
	contact.Surname = req.Surname
	contact.Phone = req.Phone
	contact.Mail = req.Mail
	if err := s.repo.Update(ctx, contact); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update contact")
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload contact")
	}
	return FromModel(updated), nil
}

func (s *service) Delete(ctx context.Context, actorID int64, caps policy.Capabilities, id int64) error {
	contact, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "contact not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup contact")
	}
	if !caps.CanDeleteRecord(actorID, contact.UserID) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the owner or a moderator may delete this contact")
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete contact")
	}
	return nil
}

// Search matches surnames exactly. An empty term returns an empty result
// instead of the full directory.
func (s *service) Search(ctx context.Context, surname string) ([]ContactDTO, error) {
	term := strings.TrimSpace(surname)
	if term == "" {
		return []ContactDTO{}, nil
	}

	rows, err := s.repo.SearchBySurname(ctx, term)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "search contacts")
	}

	out := make([]ContactDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}
