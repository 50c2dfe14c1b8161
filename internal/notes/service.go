package notes

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/crmbase-app/crmbase-backend/pkg/db/models"
	pkgerrors "github.com/crmbase-app/crmbase-backend/pkg/errors"
	"github.com/crmbase-app/crmbase-backend/pkg/policy"
)

// Service defines the behavior needed by the notes controller.
type Service interface {
	Create(ctx context.Context, actorID, companyID int64, req CreateNoteRequest) (*NoteDTO, error)
	Update(ctx context.Context, id int64, req CreateNoteRequest) (*NoteDTO, error)
	Delete(ctx context.Context, actorID int64, caps policy.Capabilities, id int64) error
}

type noteRepository interface {
	Create(ctx context.Context, dto CreateNoteDTO) (*models.Note, error)
	FindByID(ctx context.Context, id int64) (*models.Note, error)
	Update(ctx context.Context, note *models.Note) error
	SoftDelete(ctx context.Context, id int64) error
}

type companyFinder interface {
	FindByID(ctx context.Context, id int64) (*models.Company, error)
}

type service struct {
	repo      noteRepository
	companies companyFinder
}

// ServiceParams bundles the dependencies required to build a notes service.
type ServiceParams struct {
	Repo      noteRepository
	Companies companyFinder
}

// NewService constructs a notes service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "note repository required")
	}
	if params.Companies == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "company repository required")
	}
	return &service{repo: params.Repo, companies: params.Companies}, nil
}

func (s *service) Create(ctx context.Context, actorID, companyID int64, req CreateNoteRequest) (*NoteDTO, error) {
	if _, err := s.companies.FindByID(ctx, companyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "company not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup company")
	}

	note, err := s.repo.Create(ctx, CreateNoteDTO{
		Content:   req.Content,
		CompanyID: companyID,
		AuthorID:  actorID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create note")
	}

	created, err := s.repo.FindByID(ctx, note.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload note")
	}
	return FromModel(created), nil
}

// Update replaces the note body. The author and company stamps survive edits.
func (s *service) Update(ctx context.Context, id int64, req CreateNoteRequest) (*NoteDTO, error) {
	note, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "note not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup note")
	}

	note.Content = req.Content
	if err := s.repo.Update(ctx, note); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update note")
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload note")
	}
	return FromModel(updated), nil
}

func (s *service) Delete(ctx context.Context, actorID int64, caps policy.Capabilities, id int64) error {
	note, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "note not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup note")
	}
	if !caps.CanDeleteRecord(actorID, note.UserID) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the author or a moderator may delete this note")
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete note")
	}
	return nil
}
