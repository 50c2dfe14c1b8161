package contacts

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/crmbase-app/crmbase-backend/pkg/db/models"
	pkgerrors "github.com/crmbase-app/crmbase-backend/pkg/errors"
	"github.com/crmbase-app/crmbase-backend/pkg/policy"
)

type fakeContactRepo struct {
	byID   map[int64]*models.ContactPerson
	nextID int64
}

func newFakeContactRepo() *fakeContactRepo {
	return &fakeContactRepo{byID: map[int64]*models.ContactPerson{}, nextID: 1}
}

func (f *fakeContactRepo) Create(ctx context.Context, dto CreateContactDTO) (*models.ContactPerson, error) {
	contact := dto.ToModel()
	contact.ID = f.nextID
	f.nextID++
	f.byID[contact.ID] = contact
	return contact, nil
}

func (f *fakeContactRepo) FindByID(ctx context.Context, id int64) (*models.ContactPerson, error) {
	contact, ok := f.byID[id]
	if !ok || contact.IsDeleted {
		return nil, gorm.ErrRecordNotFound
	}
	return contact, nil
}

func (f *fakeContactRepo) SearchBySurname(ctx context.Context, surname string) ([]models.ContactPerson, error) {
	var rows []models.ContactPerson
	for id := int64(1); id < f.nextID; id++ {
		c, ok := f.byID[id]
		if ok && !c.IsDeleted && c.Surname == surname {
			rows = append(rows, *c)
		}
	}
	return rows, nil
}

func (f *fakeContactRepo) Update(ctx context.Context, contact *models.ContactPerson) error {
	stored, ok := f.byID[contact.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Name = contact.Name
	stored.Surname = contact.Surname
	stored.Phone = contact.Phone
	stored.Mail = contact.Mail
	return nil
}

func (f *fakeContactRepo) SoftDelete(ctx context.Context, id int64) error {
	contact, ok := f.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	contact.IsDeleted = true
	return nil
}

type fakeCompanies struct {
	known map[int64]*models.Company
}

func (f *fakeCompanies) FindByID(ctx context.Context, id int64) (*models.Company, error) {
	company, ok := f.known[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return company, nil
}

func buildTestService(t *testing.T, repo *fakeContactRepo) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:      repo,
		Companies: &fakeCompanies{known: map[int64]*models.Company{5: {ID: 5, Name: "Firm"}}},
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func seedContact(repo *fakeContactRepo, surname string, ownerID int64) *models.ContactPerson {
	owner := ownerID
	companyID := int64(5)
	contact := &models.ContactPerson{
		ID:        repo.nextID,
		Name:      "Ola",
		Surname:   surname,
		Phone:     "123456789",
		Mail:      "ola@example.com",
		CompanyID: &companyID,
		UserID:    &owner,
	}
	repo.byID[contact.ID] = contact
	repo.nextID++
	return contact
}

func TestSearchMatchesSurnameExactly(t *testing.T) {
	repo := newFakeContactRepo()
	seedContact(repo, "Kowalska", 11)
	seedContact(repo, "Kowalski", 11)
	deleted := seedContact(repo, "Kowalska", 11)
	deleted.IsDeleted = true
	svc := buildTestService(t, repo)

	rows, err := svc.Search(context.Background(), "Kowalska")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one exact visible match, got %d", len(rows))
	}
	if rows[0].Surname != "Kowalska" {
		t.Fatalf("unexpected surname %q", rows[0].Surname)
	}
}

func TestSearchEmptyTermReturnsNothing(t *testing.T) {
	repo := newFakeContactRepo()
	seedContact(repo, "Kowalska", 11)
	svc := buildTestService(t, repo)

	rows, err := svc.Search(context.Background(), "   ")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected empty result, got %d", len(rows))
	}
}

func TestCreateRejectsUnknownCompany(t *testing.T) {
	svc := buildTestService(t, newFakeContactRepo())

	_, err := svc.Create(context.Background(), 11, 99, CreateContactRequest{
		Name:    "Ola",
		Surname: "Kowalska",
		Phone:   "123456789",
		Mail:    "ola@example.com",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateKeepsStamps(t *testing.T) {
	repo := newFakeContactRepo()
	contact := seedContact(repo, "Nowak", 11)
	svc := buildTestService(t, repo)

	updated, err := svc.Update(context.Background(), contact.ID, CreateContactRequest{
		Name:    "Anna",
		Surname: "Nowak-Lis",
		Phone:   "987654321",
		Mail:    "anna@example.com",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Surname != "Nowak-Lis" || updated.Phone != "987654321" {
		t.Fatalf("unexpected result %+v", updated)
	}

	stored := repo.byID[contact.ID]
	if stored.UserID == nil || *stored.UserID != 11 {
		t.Fatalf("owner stamp changed: %v", stored.UserID)
	}
	if stored.CompanyID == nil || *stored.CompanyID != 5 {
		t.Fatalf("company stamp changed: %v", stored.CompanyID)
	}
}

func TestDeleteAuthorization(t *testing.T) {
	repo := newFakeContactRepo()
	contact := seedContact(repo, "Kowalska", 11)
	svc := buildTestService(t, repo)

	err := svc.Delete(context.Background(), 22, policy.Capabilities{}, contact.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}

	if err := svc.Delete(context.Background(), 11, policy.Capabilities{}, contact.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if !repo.byID[contact.ID].IsDeleted {
		t.Fatal("expected soft delete")
	}
}
