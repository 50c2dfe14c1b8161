package companies

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/crmbase-app/crmbase-backend/internal/contacts"
	"github.com/crmbase-app/crmbase-backend/internal/notes"
	"github.com/crmbase-app/crmbase-backend/pkg/db"
	"github.com/crmbase-app/crmbase-backend/pkg/db/models"
	pkgerrors "github.com/crmbase-app/crmbase-backend/pkg/errors"
	"github.com/crmbase-app/crmbase-backend/pkg/pagination"
	"github.com/crmbase-app/crmbase-backend/pkg/policy"
)

const nipConstraint = "idx_companies_nip"

// Service defines the behavior needed by the companies controller.
type Service interface {
	List(ctx context.Context, page int, industryID *int64) (*ListCompaniesResponse, error)
	Get(ctx context.Context, id int64) (*CompanyDetailDTO, error)
	Create(ctx context.Context, actorID int64, req CreateCompanyRequest) (*CompanyDTO, error)
	Update(ctx context.Context, id int64, req UpdateCompanyRequest) (*CompanyDTO, error)
	Delete(ctx context.Context, actorID int64, caps policy.Capabilities, id int64) error
}

type companyRepository interface {
	Create(ctx context.Context, dto CreateCompanyDTO) (*models.Company, error)
	FindByID(ctx context.Context, id int64) (*models.Company, error)
	Count(ctx context.Context, industryID *int64) (int64, error)
	List(ctx context.Context, offset, limit int, industryID *int64) ([]models.Company, error)
	Update(ctx context.Context, company *models.Company) error
	SoftDelete(ctx context.Context, id int64) error
}

type industryFinder interface {
	FindByID(ctx context.Context, id int64) (*models.Industry, error)
}

type noteLister interface {
	ListByCompany(ctx context.Context, companyID int64) ([]models.Note, error)
}

type contactLister interface {
	ListByCompany(ctx context.Context, companyID int64) ([]models.ContactPerson, error)
}

type service struct {
	repo       companyRepository
	industries industryFinder
	notes      noteLister
	contacts   contactLister
	pageSize   int
}

// ServiceParams bundles the dependencies required to build a companies service.
type ServiceParams struct {
	Repo       companyRepository
	Industries industryFinder
	Notes      noteLister
	Contacts   contactLister
	PageSize   int
}

// NewService constructs a companies service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "company repository required")
	}
	if params.Notes == nil || params.Contacts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "note and contact repositories required")
	}
	pageSize := params.PageSize
	if pageSize <= 0 {
		pageSize = pagination.DefaultPageSize
	}
	return &service{
		repo:       params.Repo,
		industries: params.Industries,
		notes:      params.Notes,
		contacts:   params.Contacts,
		pageSize:   pageSize,
	}, nil
}

func (s *service) List(ctx context.Context, page int, industryID *int64) (*ListCompaniesResponse, error) {
	total, err := s.repo.Count(ctx, industryID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count companies")
	}

	meta := pagination.Resolve(page, s.pageSize, total)
	rows, err := s.repo.List(ctx, meta.Offset(), s.pageSize, industryID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list companies")
	}

	items := make([]CompanyDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *FromModel(&rows[i]))
	}
	return &ListCompaniesResponse{Items: items, Meta: meta}, nil
}

func (s *service) Get(ctx context.Context, id int64) (*CompanyDetailDTO, error) {
	company, err := s.findCompany(ctx, id)
	if err != nil {
		return nil, err
	}

	noteRows, err := s.notes.ListByCompany(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list company notes")
	}
	contactRows, err := s.contacts.ListByCompany(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list company contacts")
	}

	detail := &CompanyDetailDTO{
		CompanyDTO: *FromModel(company),
		Notes:      make([]notes.NoteDTO, 0, len(noteRows)),
		Contacts:   make([]contacts.ContactDTO, 0, len(contactRows)),
	}
	for i := range noteRows {
		detail.Notes = append(detail.Notes, *notes.FromModel(&noteRows[i]))
	}
	for i := range contactRows {
		detail.Contacts = append(detail.Contacts, *contacts.FromModel(&contactRows[i]))
	}
	return detail, nil
}

func (s *service) Create(ctx context.Context, actorID int64, req CreateCompanyRequest) (*CompanyDTO, error) {
	if err := s.checkIndustry(ctx, req.IndustryID); err != nil {
		return nil, err
	}

	company, err := s.repo.Create(ctx, CreateCompanyDTO{
		Name:       req.Name,
		NIP:        req.NIP,
		Address:    req.Address,
		City:       req.City,
		IndustryID: req.IndustryID,
		OwnerID:    actorID,
	})
	if err != nil {
		if db.IsUniqueViolation(err, nipConstraint) {
			return nil, nipTakenError()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create company")
	}

	return s.reload(ctx, company.ID)
}

func (s *service) Update(ctx context.Context, id int64, req UpdateCompanyRequest) (*CompanyDTO, error) {
	company, err := s.findCompany(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkIndustry(ctx, req.IndustryID); err != nil {
		return nil, err
	}

	company.Name = req.Name
	company.NIP = req.NIP
	company.Address = req.Address
	company.City = req.City
	company.IndustryID = req.IndustryID

	if err := s.repo.Update(ctx, company); err != nil {
		if db.IsUniqueViolation(err, nipConstraint) {
			return nil, nipTakenError()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update company")
	}

	return s.reload(ctx, id)
}

func (s *service) Delete(ctx context.Context, actorID int64, caps policy.Capabilities, id int64) error {
	company, err := s.findCompany(ctx, id)
	if err != nil {
		return err
	}
	if !caps.CanDeleteRecord(actorID, company.UserID) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the owner or a moderator may delete this company")
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete company")
	}
	return nil
}

func (s *service) findCompany(ctx context.Context, id int64) (*models.Company, error) {
	company, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "company not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup company")
	}
	return company, nil
}

func (s *service) checkIndustry(ctx context.Context, industryID *int64) error {
	if industryID == nil || s.industries == nil {
		return nil
	}
	if _, err := s.industries.FindByID(ctx, *industryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
				WithDetails(map[string]string{"industry_id": "industry does not exist"})
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup industry")
	}
	return nil
}

func (s *service) reload(ctx context.Context, id int64) (*CompanyDTO, error) {
	company, err := s.findCompany(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(company), nil
}

func nipTakenError() *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
		WithDetails(map[string]string{"nip": "a company with this nip already exists"})
}
