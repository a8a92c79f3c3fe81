package routes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dmfierro/bookhaven-backend/internal/activities"
	"github.com/dmfierro/bookhaven-backend/internal/auth"
	"github.com/dmfierro/bookhaven-backend/internal/books"
	"github.com/dmfierro/bookhaven-backend/internal/loans"
	"github.com/dmfierro/bookhaven-backend/internal/notify"
	"github.com/dmfierro/bookhaven-backend/internal/readers"
	"github.com/dmfierro/bookhaven-backend/internal/stats"
	"github.com/dmfierro/bookhaven-backend/internal/users"
	pkgauth "github.com/dmfierro/bookhaven-backend/pkg/auth"
	"github.com/dmfierro/bookhaven-backend/pkg/config"
	"github.com/dmfierro/bookhaven-backend/pkg/enums"
	"github.com/dmfierro/bookhaven-backend/pkg/logger"
	"github.com/dmfierro/bookhaven-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

type stubAuthService struct{}

func (stubAuthService) Signup(ctx context.Context, req auth.SignupRequest) (*users.UserDTO, error) {
	return nil, fmt.Errorf("not implemented")
}

func (stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	return nil, fmt.Errorf("not implemented")
}

func (stubAuthService) Refresh(ctx context.Context, req auth.RefreshRequest) (*auth.TokenPair, error) {
	return nil, fmt.Errorf("not implemented")
}

func (stubAuthService) Logout(ctx context.Context, accessToken string) error {
	return nil
}

func (stubAuthService) Me(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error) {
	return &users.UserDTO{ID: userID}, nil
}

type stubBookService struct {
	deleted []uuid.UUID
}

func (s *stubBookService) Create(ctx context.Context, input books.CreateInput) (*books.BookDTO, error) {
	panic("unimplemented")
}

func (s *stubBookService) Update(ctx context.Context, id uuid.UUID, input books.UpdateInput) (*books.BookDTO, error) {
	panic("unimplemented")
}

func (s *stubBookService) Delete(ctx context.Context, id uuid.UUID) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubBookService) Get(ctx context.Context, id uuid.UUID) (*books.BookDTO, error) {
	panic("unimplemented")
}

func (s *stubBookService) List(ctx context.Context, filters books.ListFilters, params pagination.Params) (*books.BookList, error) {
	return &books.BookList{}, nil
}

type stubReaderService struct{}

func (stubReaderService) Create(ctx context.Context, input readers.CreateInput) (*readers.ReaderDTO, error) {
	panic("unimplemented")
}

func (stubReaderService) Update(ctx context.Context, id uuid.UUID, input readers.UpdateInput) (*readers.ReaderDTO, error) {
	panic("unimplemented")
}

func (stubReaderService) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (stubReaderService) Get(ctx context.Context, id uuid.UUID) (*readers.ReaderDTO, error) {
	panic("unimplemented")
}

func (stubReaderService) List(ctx context.Context, filters readers.ListFilters, params pagination.Params) (*readers.ReaderList, error) {
	return &readers.ReaderList{}, nil
}

type stubLendingService struct{}

func (stubLendingService) Checkout(ctx context.Context, input loans.CheckoutInput) (*loans.LoanView, error) {
	panic("unimplemented")
}

func (stubLendingService) Return(ctx context.Context, loanID uuid.UUID) (*loans.LoanView, error) {
	panic("unimplemented")
}

func (stubLendingService) Update(ctx context.Context, loanID uuid.UUID, input loans.UpdateInput) (*loans.LoanView, error) {
	panic("unimplemented")
}

func (stubLendingService) Delete(ctx context.Context, loanID uuid.UUID) error {
	return nil
}

func (stubLendingService) Get(ctx context.Context, loanID uuid.UUID) (*loans.LoanView, error) {
	panic("unimplemented")
}

func (stubLendingService) List(ctx context.Context, filters loans.ListFilters, params pagination.Params) (*loans.LoanList, error) {
	return &loans.LoanList{Lendings: []loans.LoanView{}}, nil
}

type stubStatsService struct{}

func (stubStatsService) Dashboard(ctx context.Context) (*stats.Dashboard, error) {
	return &stats.Dashboard{}, nil
}

type stubActivityService struct{}

func (stubActivityService) Recent(ctx context.Context, limit int) ([]activities.ActivityDTO, error) {
	return nil, nil
}

type stubNotifyService struct{}

func (stubNotifyService) SendDueReminder(ctx context.Context, input notify.DueReminderInput) error {
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:                 "secret",
			Issuer:                 "bookhaven",
			ExpirationMinutes:      60,
			RefreshTokenTTLMinutes: 120,
		},
	}
}

func newTestRouter(cfg *config.Config, bookSvc books.Service) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	if bookSvc == nil {
		bookSvc = &stubBookService{}
	}
	return NewRouter(Deps{
		Config:      cfg,
		Logger:      logg,
		Session:     stubSessionChecker{},
		DBPinger:    stubPinger{},
		RedisPinger: stubPinger{},
		Auth:        stubAuthService{},
		Books:       bookSvc,
		Readers:     stubReaderService{},
		Lendings:    stubLendingService{},
		Stats:       stubStatsService{},
		Activities:  stubActivityService{},
		Notify:      stubNotifyService{},
	})
}

func buildToken(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
		JTI:    uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLiveIsPublic(t *testing.T) {
	router := newTestRouter(testConfig(), nil)
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for liveness got %d", resp.Code)
	}
}

func TestProtectedGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig(), nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/books", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestProtectedGroupSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/books", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleStaff))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for book list got %d", resp.Code)
	}
}

func TestBookDeleteRequiresAdminRole(t *testing.T) {
	cfg := testConfig()
	svc := &stubBookService{}
	router := newTestRouter(cfg, svc)
	target := "/api/v1/books/" + uuid.NewString()

	staff := httptest.NewRequest(http.MethodDelete, target, nil)
	staff.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleStaff))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, staff)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for staff delete got %d", resp.Code)
	}
	if len(svc.deleted) != 0 {
		t.Fatalf("expected delete to be blocked for staff")
	}

	admin := httptest.NewRequest(http.MethodDelete, target, nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin delete got %d", resp.Code)
	}
	if len(svc.deleted) != 1 {
		t.Fatalf("expected delete to reach the service once, got %d", len(svc.deleted))
	}
}

func TestLendingRoutesAreRegistered(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, nil)
	token := buildToken(t, cfg, enums.UserRoleStaff)

	paths := []string{
		"/api/v1/lendings",
		"/api/v1/lendings/reader/" + uuid.NewString(),
		"/api/v1/lendings/book/" + uuid.NewString(),
	}
	for _, path := range paths {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s got %d", path, resp.Code)
		}
	}
}
