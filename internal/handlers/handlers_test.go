package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"estudio/internal/models"
	recat "estudio/internal/recategorization"
	"estudio/internal/repositories"
	"estudio/internal/services/period"
	"estudio/internal/services/recategorization"
	"estudio/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRecategorization struct {
	mock.Mock
}

func (m *MockRecategorization) Report(ctx context.Context, schema, p string, clientID uint) (*recategorization.ClientReport, error) {
	args := m.Called(ctx, schema, p, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recategorization.ClientReport), args.Error(1)
}

func (m *MockRecategorization) Batch(ctx context.Context, schema, p string, ids []uint) (*recategorization.BatchResult, error) {
	args := m.Called(ctx, schema, p, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recategorization.BatchResult), args.Error(1)
}

func (m *MockRecategorization) Listing(ctx context.Context, schema, p string) (*recategorization.BatchResult, error) {
	args := m.Called(ctx, schema, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recategorization.BatchResult), args.Error(1)
}

type MockPeriodService struct {
	mock.Mock
}

func (m *MockPeriodService) Get(ctx context.Context, code string) (*models.Period, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Period), args.Error(1)
}

func (m *MockPeriodService) List(ctx context.Context) ([]models.Period, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Period), args.Error(1)
}

func (m *MockPeriodService) Create(ctx context.Context, in period.Input) (*models.Period, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Period), args.Error(1)
}

func (m *MockPeriodService) Update(ctx context.Context, code string, in period.Input) (*models.Period, error) {
	args := m.Called(ctx, code, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Period), args.Error(1)
}

func (m *MockPeriodService) Activate(ctx context.Context, code string) (*models.Period, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Period), args.Error(1)
}

func (m *MockPeriodService) ReplaceScales(ctx context.Context, code string, rows []period.ScaleInput) error {
	return m.Called(ctx, code, rows).Error(0)
}

func (m *MockPeriodService) ReplaceComponents(ctx context.Context, code string, rows []period.ComponentInput) error {
	return m.Called(ctx, code, rows).Error(0)
}

func (m *MockPeriodService) ActivePeriod(ctx context.Context) (*models.Period, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Period), args.Error(1)
}

// withClaims stands in for the auth middleware.
func withClaims(c *fiber.Ctx) error {
	c.Locals("claims", &models.StudioClaims{UserID: 1, StudioID: 7, TenantSchema: "studio_7", Role: models.RoleAdmin})
	return c.Next()
}

func newTestApp(rs recategorization.Service, ps period.Service) *fiber.App {
	app := fiber.New()
	rh := NewRecategorizationHandler(rs)
	ph := NewPeriodHandler(ps)

	api := app.Group("/api", withClaims)
	api.Get("/periods/:periodId/clients/:clientId/recategorization", rh.Report)
	api.Post("/periods/:periodId/recategorizations", rh.Batch)
	api.Get("/periods/:periodId/recategorizations", rh.Listing)
	api.Post("/admin/periods", ph.Create)
	api.Put("/admin/periods/:id/scales", ph.ReplaceScales)
	return app
}

type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
	Pagination struct {
		Page     int   `json:"page"`
		Total    int64 `json:"total"`
		LastPage int   `json:"last_page"`
	} `json:"pagination"`
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	return resp.StatusCode, env
}

func TestRecategorizationHandler_ReportStatuses(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		setupMock  func(*MockRecategorization)
		wantStatus int
		wantCode   string
	}{
		{
			name: "report",
			path: "/api/periods/2025-H1/clients/3/recategorization",
			setupMock: func(m *MockRecategorization) {
				m.On("Report", mock.Anything, "studio_7", "2025-H1", uint(3)).
					Return(&recategorization.ClientReport{Result: &recat.Result{Category: "B", Change: recat.ChangeUpgraded}}, nil)
			},
			wantStatus: fiber.StatusOK,
		},
		{
			name:       "bad client id",
			path:       "/api/periods/2025-H1/clients/abc/recategorization",
			wantStatus: fiber.StatusBadRequest,
			wantCode:   "INVALID_REQUEST",
		},
		{
			name: "invalid client data",
			path: "/api/periods/2025-H1/clients/3/recategorization",
			setupMock: func(m *MockRecategorization) {
				m.On("Report", mock.Anything, "studio_7", "2025-H1", uint(3)).
					Return(nil, &recat.InputError{ClientID: "3", Fields: map[string]string{"activity": "must be one of goods, services, leasing, dual_leasing"}})
			},
			wantStatus: fiber.StatusBadRequest,
			wantCode:   "INVALID_INPUT",
		},
		{
			name: "missing fee component",
			path: "/api/periods/2025-H1/clients/3/recategorization",
			setupMock: func(m *MockRecategorization) {
				m.On("Report", mock.Anything, "studio_7", "2025-H1", uint(3)).
					Return(nil, &recat.ConfigError{Period: "2025-H1", Kind: recat.KindMissingComponent, Category: "B"})
			},
			wantStatus: fiber.StatusUnprocessableEntity,
			wantCode:   "CONFIGURATION_ERROR",
		},
		{
			name: "unknown client",
			path: "/api/periods/2025-H1/clients/3/recategorization",
			setupMock: func(m *MockRecategorization) {
				m.On("Report", mock.Anything, "studio_7", "2025-H1", uint(3)).Return(nil, repositories.ErrClientNotFound)
			},
			wantStatus: fiber.StatusNotFound,
			wantCode:   "CLIENT_NOT_FOUND",
		},
		{
			name: "database failure",
			path: "/api/periods/2025-H1/clients/3/recategorization",
			setupMock: func(m *MockRecategorization) {
				m.On("Report", mock.Anything, "studio_7", "2025-H1", uint(3)).Return(nil, errors.New("connection reset"))
			},
			wantStatus: fiber.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := new(MockRecategorization)
			if tt.setupMock != nil {
				tt.setupMock(rs)
			}

			status, env := do(t, newTestApp(rs, new(MockPeriodService)), fiber.MethodGet, tt.path, "")
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, env.Error.Code)
			if tt.wantCode == "INTERNAL_ERROR" {
				assert.NotContains(t, env.Error.Message, "connection reset")
			}
			rs.AssertExpectations(t)
		})
	}
}

func TestRecategorizationHandler_Batch(t *testing.T) {
	rs := new(MockRecategorization)
	rs.On("Batch", mock.Anything, "studio_7", "2025-H1", []uint{4, 2}).
		Return(&recategorization.BatchResult{
			BatchID: "b-1",
			Outcomes: []recategorization.OutcomeView{
				{ClientID: 4, Status: recategorization.StatusOutOfRange},
				{ClientID: 2, Status: recategorization.StatusOK},
			},
		}, nil)

	status, env := do(t, newTestApp(rs, new(MockPeriodService)), fiber.MethodPost,
		"/api/periods/2025-H1/recategorizations", `{"client_ids":[4,2]}`)
	require.Equal(t, fiber.StatusOK, status)

	var result recategorization.BatchResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, "b-1", result.BatchID)
	assert.Len(t, result.Outcomes, 2)
	rs.AssertExpectations(t)
}

func TestRecategorizationHandler_BatchValidationError(t *testing.T) {
	rs := new(MockRecategorization)
	rs.On("Batch", mock.Anything, "studio_7", "2025-H1", []uint(nil)).
		Return(nil, &validation.Error{Fields: map[string]string{"client_ids": "must contain at least one client"}})

	status, env := do(t, newTestApp(rs, new(MockPeriodService)), fiber.MethodPost,
		"/api/periods/2025-H1/recategorizations", `{}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "INVALID_REQUEST", env.Error.Code)
	assert.Contains(t, env.Error.Fields, "client_ids")
}

func TestRecategorizationHandler_ListingPages(t *testing.T) {
	outcomes := make([]recategorization.OutcomeView, 5)
	for i := range outcomes {
		outcomes[i] = recategorization.OutcomeView{ClientID: uint(i + 1), Status: recategorization.StatusOK}
	}

	rs := new(MockRecategorization)
	rs.On("Listing", mock.Anything, "studio_7", "2025-H1").
		Return(&recategorization.BatchResult{Outcomes: outcomes, Summary: recategorization.Summary{Total: 5, Succeeded: 5}}, nil)

	status, env := do(t, newTestApp(rs, new(MockPeriodService)), fiber.MethodGet,
		"/api/periods/2025-H1/recategorizations?page=2&limit=2", "")
	require.Equal(t, fiber.StatusOK, status)

	var result recategorization.BatchResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	require.Len(t, result.Outcomes, 2)
	assert.Equal(t, uint(3), result.Outcomes[0].ClientID)
	assert.Equal(t, 5, result.Summary.Total)
	assert.Equal(t, int64(5), env.Pagination.Total)
	assert.Equal(t, 3, env.Pagination.LastPage)
}

func TestRecategorizationHandler_ListingPageBeyondEnd(t *testing.T) {
	tests := []struct {
		name string
		page string
	}{
		{name: "past the last page", page: "7"},
		{name: "offset would overflow", page: "9223372036854775807"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := new(MockRecategorization)
			rs.On("Listing", mock.Anything, "studio_7", "2025-H1").
				Return(&recategorization.BatchResult{
					Outcomes: make([]recategorization.OutcomeView, 3),
					Summary:  recategorization.Summary{Total: 3},
				}, nil)

			status, env := do(t, newTestApp(rs, new(MockPeriodService)), fiber.MethodGet,
				"/api/periods/2025-H1/recategorizations?limit=500&page="+tt.page, "")
			require.Equal(t, fiber.StatusOK, status)

			var result recategorization.BatchResult
			require.NoError(t, json.Unmarshal(env.Data, &result))
			assert.Empty(t, result.Outcomes)
			assert.Equal(t, 3, result.Summary.Total)
			assert.Equal(t, 1, env.Pagination.LastPage)
		})
	}
}

func TestPeriodHandler_Create(t *testing.T) {
	in := period.Input{Code: "2025-H1", SalesFrom: "2024-07-01", SalesTo: "2024-12-31", FeeFrom: "2025-02-01", FeeTo: "2025-07-31"}

	ps := new(MockPeriodService)
	ps.On("Create", mock.Anything, in).Return(&models.Period{ID: 1, Code: "2025-H1"}, nil)

	body, err := json.Marshal(in)
	require.NoError(t, err)

	status, _ := do(t, newTestApp(new(MockRecategorization), ps), fiber.MethodPost, "/api/admin/periods", string(body))
	assert.Equal(t, fiber.StatusCreated, status)
	ps.AssertExpectations(t)
}

func TestPeriodHandler_ReplaceScalesRejectsInvalidTable(t *testing.T) {
	ps := new(MockPeriodService)
	ps.On("ReplaceScales", mock.Anything, "2025-H1", mock.MatchedBy(func(rows []period.ScaleInput) bool {
		return len(rows) == 2 && rows[0].MaxIncome.Valid && !rows[0].MaxArea.Valid
	})).Return(&recat.ConfigError{Kind: recat.KindInvalidScale, Category: "B"})

	status, env := do(t, newTestApp(new(MockRecategorization), ps), fiber.MethodPut, "/api/admin/periods/2025-H1/scales",
		`{"scales":[{"category":"A","max_income":"200000"},{"category":"B","max_income":100000}]}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Equal(t, "CONFIGURATION_ERROR", env.Error.Code)
	assert.Equal(t, "invalid_scale", env.Error.Fields["kind"])
	ps.AssertExpectations(t)
}

func TestPeriodHandler_UnknownPeriodIsNotFound(t *testing.T) {
	ps := new(MockPeriodService)
	ps.On("ReplaceScales", mock.Anything, "1999-H1", mock.Anything).Return(repositories.ErrPeriodNotFound)

	status, env := do(t, newTestApp(new(MockRecategorization), ps), fiber.MethodPut, "/api/admin/periods/1999-H1/scales",
		`{"scales":[{"category":"A"}]}`)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "PERIOD_NOT_FOUND", env.Error.Code)
}

func TestHealthHandler(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("refused") }

	tests := []struct {
		name       string
		checks     map[string]Check
		wantStatus int
	}{
		{name: "all up", checks: map[string]Check{"database": ok, "redis": ok}, wantStatus: fiber.StatusOK},
		{name: "redis down", checks: map[string]Check{"database": ok, "redis": down}, wantStatus: fiber.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/health", NewHealthHandler(tt.checks, nil).HealthCheck)

			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/health", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}
