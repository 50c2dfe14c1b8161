package users

import (
	"context"
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	pkgAuth "github.com/crmbase-app/crmbase-backend/pkg/auth"
	"github.com/crmbase-app/crmbase-backend/pkg/config"
	"github.com/crmbase-app/crmbase-backend/pkg/db/models"
	pkgerrors "github.com/crmbase-app/crmbase-backend/pkg/errors"
	"github.com/crmbase-app/crmbase-backend/pkg/policy"
	"github.com/crmbase-app/crmbase-backend/pkg/security"
)

var testPasswordCfg = config.PasswordConfig{
	ArgonMemoryKB:    8,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     8,
	ArgonKeyLen:      16,
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "secret", Issuer: "crmbase", ExpirationMinutes: 30}
}

type fakeRepo struct {
	byID      map[int64]*models.User
	roles     map[int64]*models.Role
	updateErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: map[int64]*models.User{}, roles: map[int64]*models.Role{}}
}

func (f *fakeRepo) FindByID(ctx context.Context, id int64) (*models.User, error) {
	user, ok := f.byID[id]
	if !ok || user.IsDeleted {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (f *fakeRepo) Count(ctx context.Context) (int64, error) {
	var total int64
	for _, u := range f.byID {
		if !u.IsDeleted {
			total++
		}
	}
	return total, nil
}

func (f *fakeRepo) List(ctx context.Context, offset, limit int) ([]models.User, error) {
	var rows []models.User
	for id := int64(1); id <= int64(len(f.byID)); id++ {
		if u, ok := f.byID[id]; ok && !u.IsDeleted {
			rows = append(rows, *u)
		}
	}
	if offset >= len(rows) {
		return nil, nil
	}
	rows = rows[offset:]
	if limit < len(rows) {
		rows = rows[:limit]
	}
	return rows, nil
}

func (f *fakeRepo) Update(ctx context.Context, user *models.User) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.byID[user.ID] = user
	return nil
}

func (f *fakeRepo) UpdatePassword(ctx context.Context, id int64, hash string) error {
	user, ok := f.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.PasswordHash = hash
	return nil
}

func (f *fakeRepo) SoftDelete(ctx context.Context, id int64) error {
	user, ok := f.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.IsDeleted = true
	return nil
}

func (f *fakeRepo) FindRoleByID(ctx context.Context, id int64) (*models.Role, error) {
	role, ok := f.roles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return role, nil
}

type fakeSessions struct {
	active map[string]bool
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{active: map[string]bool{}}
}

func (f *fakeSessions) Create(ctx context.Context, accessID string) error {
	f.active[accessID] = true
	return nil
}

func (f *fakeSessions) Revoke(ctx context.Context, accessID string) error {
	delete(f.active, accessID)
	return nil
}

func buildTestService(t *testing.T, repo *fakeRepo, sessions *fakeSessions) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:           repo,
		SessionManager: sessions,
		JWTConfig:      testJWTConfig(),
		PasswordConfig: testPasswordCfg,
		PageSize:       20,
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func seedUser(repo *fakeRepo, id int64) *models.User {
	user := &models.User{
		ID:          id,
		Login:       fmt.Sprintf("user%02d", id),
		Name:        "Jan",
		Surname:     "Kowalski",
		DateOfBirth: time.Date(1990, 4, 1, 0, 0, 0, 0, time.UTC),
	}
	repo.byID[id] = user
	return user
}

func TestListClampsPastLastPage(t *testing.T) {
	repo := newFakeRepo()
	for id := int64(1); id <= 45; id++ {
		seedUser(repo, id)
	}
	svc := buildTestService(t, repo, newFakeSessions())

	resp, err := svc.List(context.Background(), 99)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if resp.Meta.Page != 3 || resp.Meta.TotalPages != 3 {
		t.Fatalf("expected clamp to page 3 of 3, got %+v", resp.Meta)
	}
	if len(resp.Items) != 5 {
		t.Fatalf("expected 5 items on last page, got %d", len(resp.Items))
	}
}

func TestGetDeniedForOtherPlainUser(t *testing.T) {
	repo := newFakeRepo()
	seedUser(repo, 1)
	seedUser(repo, 2)
	svc := buildTestService(t, repo, newFakeSessions())

	_, err := svc.Get(context.Background(), 1, policy.Capabilities{}, 2)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}

	if _, err := svc.Get(context.Background(), 1, policy.Capabilities{Moderator: true}, 2); err != nil {
		t.Fatalf("moderator should see other accounts: %v", err)
	}
}

func TestUpdateRoleChangeRequiresAdmin(t *testing.T) {
	repo := newFakeRepo()
	seedUser(repo, 1)
	repo.roles[5] = &models.Role{ID: 5, Name: "moderator", IsModerator: true}
	svc := buildTestService(t, repo, newFakeSessions())

	roleID := int64(5)
	req := UpdateUserRequest{
		Login:       "user01",
		Name:        "Jan",
		Surname:     "Kowalski",
		DateOfBirth: "1990-04-01",
		RoleID:      &roleID,
	}

	_, err := svc.Update(context.Background(), 1, policy.Capabilities{Moderator: true}, 1, req)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for moderator role change, got %v", err)
	}

	updated, err := svc.Update(context.Background(), 1, policy.Capabilities{Moderator: true, Admin: true}, 1, req)
	if err != nil {
		t.Fatalf("admin role change: %v", err)
	}
	if updated == nil {
		t.Fatal("expected updated payload")
	}
	if repo.byID[1].RoleID == nil || *repo.byID[1].RoleID != 5 {
		t.Fatalf("expected role 5 assigned, got %v", repo.byID[1].RoleID)
	}
}

func TestUpdateReportsOccupiedLogin(t *testing.T) {
	repo := newFakeRepo()
	seedUser(repo, 1)
	repo.updateErr = fmt.Errorf(`duplicate key value violates unique constraint "idx_users_login"`)
	svc := buildTestService(t, repo, newFakeSessions())

	_, err := svc.Update(context.Background(), 1, policy.Capabilities{}, 1, UpdateUserRequest{
		Login:       "other",
		Name:        "Jan",
		Surname:     "Kowalski",
		DateOfBirth: "1990-04-01",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok || details["login"] != "login occupied" {
		t.Fatalf("unexpected details %v", typed.Details())
	}
}

func TestBatchUpdateReportsPerRowOutcomes(t *testing.T) {
	repo := newFakeRepo()
	seedUser(repo, 1)
	svc := buildTestService(t, repo, newFakeSessions())

	resp, err := svc.BatchUpdate(context.Background(), BatchUpdateRequest{
		Updates: []BatchUserUpdate{
			{ID: 1, Name: "Anna", Surname: "Nowak", DateOfBirth: "1991-05-02"},
			{ID: 99, Name: "Ghost", Surname: "Ghost", DateOfBirth: "1991-05-02"},
		},
	})
	if err != nil {
		t.Fatalf("batch update: %v", err)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(resp.Results))
	}
	if !resp.Results[0].OK {
		t.Fatalf("expected first row ok, got %+v", resp.Results[0])
	}
	if resp.Results[1].OK || resp.Results[1].Error != "user not found" {
		t.Fatalf("expected not found for second row, got %+v", resp.Results[1])
	}
	if repo.byID[1].Name != "Anna" {
		t.Fatalf("expected first row applied, got %q", repo.byID[1].Name)
	}
}

func TestSelfDeleteRevokesSession(t *testing.T) {
	repo := newFakeRepo()
	seedUser(repo, 1)
	seedUser(repo, 2)
	sessions := newFakeSessions()
	sessions.active["sid"] = true
	svc := buildTestService(t, repo, sessions)

	selfDeleted, err := svc.Delete(context.Background(), 1, policy.Capabilities{}, "sid", 1)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !selfDeleted {
		t.Fatal("expected self deletion")
	}
	if sessions.active["sid"] {
		t.Fatal("expected session revoked")
	}
	if !repo.byID[1].IsDeleted {
		t.Fatal("expected soft delete")
	}

	sessions.active["mod-sid"] = true
	selfDeleted, err = svc.Delete(context.Background(), 2, policy.Capabilities{Moderator: true}, "mod-sid", 2)
	if err != nil {
		t.Fatalf("moderator self delete: %v", err)
	}
	if !selfDeleted {
		t.Fatal("expected self deletion flag")
	}
}

func TestDeleteOtherUserRequiresElevation(t *testing.T) {
	repo := newFakeRepo()
	seedUser(repo, 1)
	seedUser(repo, 2)
	sessions := newFakeSessions()
	sessions.active["sid"] = true
	svc := buildTestService(t, repo, sessions)

	_, err := svc.Delete(context.Background(), 1, policy.Capabilities{}, "sid", 2)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}

	selfDeleted, err := svc.Delete(context.Background(), 1, policy.Capabilities{Moderator: true}, "sid", 2)
	if err != nil {
		t.Fatalf("moderator delete: %v", err)
	}
	if selfDeleted {
		t.Fatal("deleting another account must not revoke the actor's session")
	}
	if !sessions.active["sid"] {
		t.Fatal("actor session should survive")
	}
}

func TestChangePasswordRotatesSession(t *testing.T) {
	repo := newFakeRepo()
	user := seedUser(repo, 1)
	hash, err := security.HashPassword("old-pass", testPasswordCfg)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	user.PasswordHash = hash

	sessions := newFakeSessions()
	sessions.active["old-sid"] = true
	svc := buildTestService(t, repo, sessions)

	resp, err := svc.ChangePassword(context.Background(), 1, "old-sid", ChangePasswordRequest{
		CurrentPassword: "old-pass",
		NewPassword:     "new-pass-123",
	})
	if err != nil {
		t.Fatalf("change password: %v", err)
	}
	if sessions.active["old-sid"] {
		t.Fatal("expected old session revoked")
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if !sessions.active[claims.ID] {
		t.Fatal("expected replacement session active")
	}

	ok, err := security.VerifyPassword("new-pass-123", repo.byID[1].PasswordHash)
	if err != nil || !ok {
		t.Fatalf("new password not stored: ok=%v err=%v", ok, err)
	}
}

func TestChangePasswordRejectsWrongCurrent(t *testing.T) {
	repo := newFakeRepo()
	user := seedUser(repo, 1)
	hash, err := security.HashPassword("old-pass", testPasswordCfg)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	user.PasswordHash = hash
	svc := buildTestService(t, repo, newFakeSessions())

	_, err = svc.ChangePassword(context.Background(), 1, "sid", ChangePasswordRequest{
		CurrentPassword: "wrong",
		NewPassword:     "new-pass-123",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
