package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/crmbase-app/crmbase-backend/api/controllers"
	internalauth "github.com/crmbase-app/crmbase-backend/internal/auth"
	"github.com/crmbase-app/crmbase-backend/internal/companies"
	"github.com/crmbase-app/crmbase-backend/internal/contacts"
	"github.com/crmbase-app/crmbase-backend/internal/industries"
	"github.com/crmbase-app/crmbase-backend/internal/notes"
	"github.com/crmbase-app/crmbase-backend/internal/users"
	pkgAuth "github.com/crmbase-app/crmbase-backend/pkg/auth"
	"github.com/crmbase-app/crmbase-backend/pkg/config"
	"github.com/crmbase-app/crmbase-backend/pkg/metrics"
	"github.com/crmbase-app/crmbase-backend/pkg/policy"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(context.Context, string) (bool, error) { return true, nil }

type routerAuthService struct{}

func (routerAuthService) Register(context.Context, internalauth.RegisterRequest) (*internalauth.AuthResponse, error) {
	return &internalauth.AuthResponse{AccessToken: "token"}, nil
}

func (routerAuthService) Login(context.Context, internalauth.LoginRequest) (*internalauth.AuthResponse, error) {
	return &internalauth.AuthResponse{AccessToken: "token"}, nil
}

func (routerAuthService) Logout(context.Context, string) error { return nil }

type routerUserService struct{}

func (routerUserService) List(context.Context, int) (*users.ListUsersResponse, error) {
	return &users.ListUsersResponse{}, nil
}

func (routerUserService) Get(ctx context.Context, actorID int64, caps policy.Capabilities, targetID int64) (*users.UserDTO, error) {
	return &users.UserDTO{ID: targetID}, nil
}

func (routerUserService) Update(ctx context.Context, actorID int64, caps policy.Capabilities, targetID int64, req users.UpdateUserRequest) (*users.UserDTO, error) {
	return &users.UserDTO{ID: targetID}, nil
}

func (routerUserService) BatchUpdate(context.Context, users.BatchUpdateRequest) (*users.BatchUpdateResponse, error) {
	return &users.BatchUpdateResponse{}, nil
}

func (routerUserService) Delete(context.Context, int64, policy.Capabilities, string, int64) (bool, error) {
	return false, nil
}

func (routerUserService) ChangePassword(context.Context, int64, string, users.ChangePasswordRequest) (*users.ChangePasswordResponse, error) {
	return &users.ChangePasswordResponse{AccessToken: "token"}, nil
}

type routerCompanyService struct{}

func (routerCompanyService) List(context.Context, int, *int64) (*companies.ListCompaniesResponse, error) {
	return &companies.ListCompaniesResponse{}, nil
}

func (routerCompanyService) Get(ctx context.Context, id int64) (*companies.CompanyDetailDTO, error) {
	return &companies.CompanyDetailDTO{}, nil
}

func (routerCompanyService) Create(context.Context, int64, companies.CreateCompanyRequest) (*companies.CompanyDTO, error) {
	return &companies.CompanyDTO{}, nil
}

func (routerCompanyService) Update(context.Context, int64, companies.UpdateCompanyRequest) (*companies.CompanyDTO, error) {
	return &companies.CompanyDTO{}, nil
}

func (routerCompanyService) Delete(context.Context, int64, policy.Capabilities, int64) error {
	return nil
}

type routerNoteService struct{}

func (routerNoteService) Create(context.Context, int64, int64, notes.CreateNoteRequest) (*notes.NoteDTO, error) {
	return &notes.NoteDTO{}, nil
}

func (routerNoteService) Update(context.Context, int64, notes.CreateNoteRequest) (*notes.NoteDTO, error) {
	return &notes.NoteDTO{}, nil
}

func (routerNoteService) Delete(context.Context, int64, policy.Capabilities, int64) error {
	return nil
}

type routerContactService struct{}

func (routerContactService) Create(context.Context, int64, int64, contacts.CreateContactRequest) (*contacts.ContactDTO, error) {
	return &contacts.ContactDTO{}, nil
}

func (routerContactService) Update(context.Context, int64, contacts.CreateContactRequest) (*contacts.ContactDTO, error) {
	return &contacts.ContactDTO{}, nil
}

func (routerContactService) Delete(context.Context, int64, policy.Capabilities, int64) error {
	return nil
}

func (routerContactService) Search(context.Context, string) ([]contacts.ContactDTO, error) {
	return []contacts.ContactDTO{}, nil
}

type routerIndustryRepo struct{}

func (routerIndustryRepo) List(context.Context) ([]industries.IndustryDTO, error) {
	return []industries.IndustryDTO{}, nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.JWT = config.JWTConfig{Secret: "test-secret", Issuer: "crmbase", ExpirationMinutes: 15}
	return cfg
}

func newTestRouter(t *testing.T, gatherer prometheus.Gatherer, httpMetrics *metrics.HTTPMetrics) http.Handler {
	t.Helper()
	return NewRouter(
		testConfig(),
		nil,
		stubPinger{},
		nil,
		stubSessionChecker{},
		httpMetrics,
		gatherer,
		routerAuthService{},
		routerUserService{},
		routerCompanyService{},
		routerNoteService{},
		routerContactService{},
		routerIndustryRepo{},
	)
}

func mintToken(t *testing.T, caps policy.Capabilities) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(testConfig().JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID:       5,
		Login:        "jkowalski",
		Capabilities: caps,
		JTI:          "sess-1",
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(t, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if env := resp.Header().Get("X-CRMBase-Env"); env != "test" {
		t.Fatalf("unexpected env header %q", env)
	}
}

func TestHealthReady(t *testing.T) {
	router := newTestRouter(t, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestLoginIsPublic(t *testing.T) {
	router := newTestRouter(t, nil, nil)
	body := strings.NewReader(`{"login":"jkowalski","password":"correct horse"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", body)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestCompaniesRequireToken(t *testing.T) {
	router := newTestRouter(t, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/companies", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCompaniesWithToken(t *testing.T) {
	router := newTestRouter(t, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/companies", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, policy.Capabilities{}))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestUserListIsModeratorOnly(t *testing.T) {
	router := newTestRouter(t, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, policy.Capabilities{}))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for plain user got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, policy.Capabilities{Moderator: true}))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for moderator got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestUsersMeRoute(t *testing.T) {
	router := newTestRouter(t, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, policy.Capabilities{}))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestContactSearchRoute(t *testing.T) {
	router := newTestRouter(t, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/contacts/search?search=Nowak", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, policy.Capabilities{}))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestMetricsEndpointExposed(t *testing.T) {
	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)
	router := newTestRouter(t, registry, httpMetrics)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "http_requests_total") {
		t.Fatalf("expected request counter in exposition, got:\n%s", resp.Body.String())
	}
}

var _ controllers.IndustryLister = routerIndustryRepo{}
