package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	alertdomain "github.com/smallbiznis/stockroom/internal/alert/domain"
	authdomain "github.com/smallbiznis/stockroom/internal/auth/domain"
	"github.com/smallbiznis/stockroom/internal/auth/session"
	"github.com/smallbiznis/stockroom/internal/authorization"
	"github.com/smallbiznis/stockroom/internal/config"
	productdomain "github.com/smallbiznis/stockroom/internal/product/domain"
	saledomain "github.com/smallbiznis/stockroom/internal/sale/domain"
	salereturndomain "github.com/smallbiznis/stockroom/internal/salereturn/domain"
	"github.com/smallbiznis/stockroom/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	adminToken = "admin-token"
	userToken  = "user-token"
)

type fakeAuthService struct {
	authdomain.Service
	loginErr error
}

func (f *fakeAuthService) Authenticate(_ context.Context, rawToken string) (*authdomain.Principal, error) {
	switch rawToken {
	case adminToken:
		return &authdomain.Principal{UserID: 1, Username: "admin", Role: authdomain.RoleAdmin}, nil
	case userToken:
		return &authdomain.Principal{UserID: 2, Username: "staff", Role: authdomain.RoleUser}, nil
	}
	return nil, authdomain.ErrInvalidSession
}

func (f *fakeAuthService) Login(_ context.Context, req authdomain.LoginRequest) (*authdomain.LoginResult, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &authdomain.LoginResult{
		User:      authdomain.UserResponse{ID: "2", Username: req.Username, Role: authdomain.RoleUser},
		RawToken:  userToken,
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil
}

type fakeProductService struct {
	productdomain.Service
	created int
}

func (f *fakeProductService) List(context.Context, productdomain.ListRequest) ([]productdomain.Response, error) {
	return []productdomain.Response{{ID: "10", Code: "SR-001", Name: "Starlight"}}, nil
}

func (f *fakeProductService) Create(_ context.Context, req productdomain.CreateRequest) (*productdomain.Response, error) {
	f.created++
	return &productdomain.Response{ID: "11", Code: req.Code, Name: req.Name}, nil
}

type fakeSaleService struct {
	saledomain.Service
	lastUserID int64
	err        error
}

func (f *fakeSaleService) Create(_ context.Context, req saledomain.CreateRequest) (*saledomain.Response, error) {
	f.lastUserID = req.UserID
	if f.err != nil {
		return nil, f.err
	}
	return &saledomain.Response{ID: "20", Quantity: req.Quantity}, nil
}

type fakeReturnService struct {
	salereturndomain.Service
}

func (f *fakeReturnService) List(_ context.Context, req salereturndomain.ListRequest) (*salereturndomain.ListResponse, error) {
	return &salereturndomain.ListResponse{
		Data:       []salereturndomain.Response{{ID: "30", ReturnNo: "RT20250301007"}},
		Pagination: pagination.BuildPageInfo(req.Pagination, 1),
	}, nil
}

type fakeAlertService struct {
	alertdomain.Service
	checks int
}

func (f *fakeAlertService) CheckAll(context.Context) (alertdomain.CheckResult, error) {
	f.checks++
	return alertdomain.CheckResult{
		Message:           alertdomain.CheckCompleteMessage(1, 2, 0),
		LowInventoryCount: 1,
		SentCount:         2,
	}, nil
}

type fakeCodeSender struct {
	sent []string
}

func (f *fakeCodeSender) Send(_ context.Context, target string) error {
	f.sent = append(f.sent, target)
	return nil
}

type testServer struct {
	engine   *gin.Engine
	auth     *fakeAuthService
	products *fakeProductService
	sales    *fakeSaleService
	alerts   *fakeAlertService
	codes    *fakeCodeSender
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	enforcer, err := authorization.NewEnforcer()
	require.NoError(t, err)

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	ts := &testServer{
		engine:   engine,
		auth:     &fakeAuthService{},
		products: &fakeProductService{},
		sales:    &fakeSaleService{},
		alerts:   &fakeAlertService{},
		codes:    &fakeCodeSender{},
	}
	srv := NewServer(ServerParams{
		Gin:        engine,
		Cfg:        config.Config{},
		Log:        zap.NewNop(),
		Authsvc:    ts.auth,
		Sessions:   session.NewManager(config.Config{}),
		AuthzSvc:   authorization.NewService(authorization.Params{Log: zap.NewNop(), Enforcer: enforcer}),
		ProductSvc: ts.products,
		SaleSvc:    ts.sales,
		ReturnSvc:  &fakeReturnService{},
		AlertSvc:   ts.alerts,
	})
	srv.codes = ts.codes
	RegisterRoutes(srv)
	return ts
}

func (ts *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: session.DefaultCookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	ts.engine.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorPayload {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}

func TestAPIRequiresSession(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/api/products", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", decodeError(t, rec).Type)

	rec = ts.do(http.MethodGet, "/api/products", "stale", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBearerTokenAccepted(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	rec := httptest.NewRecorder()
	ts.engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRoleChecks(t *testing.T) {
	ts := newTestServer(t)
	body := map[string]any{"code": "SR-002", "name": "Moonlight"}

	rec := ts.do(http.MethodPost, "/api/products", userToken, body)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, 0, ts.products.created)

	rec = ts.do(http.MethodPost, "/api/products", adminToken, body)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, ts.products.created)

	rec = ts.do(http.MethodPost, "/api/check-inventory-alerts", userToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, 0, ts.alerts.checks)
}

func TestCheckInventoryAlertsReturnsPlainResult(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/check-inventory-alerts", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var result alertdomain.CheckResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "检查完成：发现 1 个低库存商品，成功发送 2 封邮件，失败 0 封", result.Message)
	assert.Equal(t, 1, result.LowInventoryCount)
	assert.Equal(t, 2, result.SentCount)
}

func TestCreateSale(t *testing.T) {
	ts := newTestServer(t)
	body := map[string]any{"productId": "10", "quantity": 3, "salePrice": "15"}

	rec := ts.do(http.MethodPost, "/api/sales", userToken, body)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.EqualValues(t, 2, ts.sales.lastUserID)

	ts.sales.err = saledomain.ErrInsufficientStock
	rec = ts.do(http.MethodPost, "/api/sales", userToken, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	payload := decodeError(t, rec)
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, "insufficient_stock", payload.Errors[0].Code)
}

func TestListReturnsPaginated(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/api/returns?page=1&limit=5", userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data       []salereturndomain.Response `json:"data"`
		Pagination pagination.PageInfo         `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, 5, resp.Pagination.Limit)
	assert.EqualValues(t, 1, resp.Pagination.Total)
}

func TestLoginSetsCookie(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/auth/login", "", map[string]string{"username": "staff", "password": "secret1"})
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, session.DefaultCookieName, cookies[0].Name)
	assert.Equal(t, userToken, cookies[0].Value)

	ts.auth.loginErr = authdomain.ErrInvalidCredentials
	rec = ts.do(http.MethodPost, "/auth/login", "", map[string]string{"username": "staff", "password": "bad"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSendVerification(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/admin/send-verification", userToken, map[string]string{"email": "new@example.com"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(http.MethodPost, "/api/admin/send-verification", adminToken, map[string]string{"email": "new@example.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"new@example.com"}, ts.codes.sent)
}

func TestConvertUnits(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/api/units/convert?quantity=1&unit=case&boxesPerCase=4&boxesPerSet=10", userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data unitConversion `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, float64(40), resp.Data.Boxes)
	assert.Equal(t, "1箱", resp.Data.Display)

	rec = ts.do(http.MethodGet, "/api/units/convert?quantity=1&unit=crate", userToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
