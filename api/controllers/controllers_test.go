package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/tableside-backend/api/middleware"
	"github.com/angelmondragon/tableside-backend/internal/auth"
	"github.com/angelmondragon/tableside-backend/internal/members"
	"github.com/angelmondragon/tableside-backend/internal/posts"
	"github.com/angelmondragon/tableside-backend/internal/products"
	"github.com/angelmondragon/tableside-backend/internal/queue"
	"github.com/angelmondragon/tableside-backend/internal/tables"
	"github.com/angelmondragon/tableside-backend/pkg/config"
	"github.com/angelmondragon/tableside-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/tableside-backend/pkg/errors"
	"github.com/angelmondragon/tableside-backend/pkg/pagination"
	"github.com/angelmondragon/tableside-backend/pkg/types"
)

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) types.ErrorEnvelope {
	t.Helper()
	var env types.ErrorEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "dev"}}

	t.Run("all dependencies up", func(t *testing.T) {
		rec := httptest.NewRecorder()
		HealthReady(cfg, nil, map[string]Pinger{
			"db":    pingerFunc(func(context.Context) error { return nil }),
			"redis": nil,
		}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"db":"ok"`)
		assert.Contains(t, rec.Body.String(), `"redis":"skipped"`)
	})

	t.Run("database down", func(t *testing.T) {
		rec := httptest.NewRecorder()
		HealthReady(cfg, nil, map[string]Pinger{
			"db": pingerFunc(func(context.Context) error { return errors.New("dial tcp: refused") }),
		}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, string(pkgerrors.CodeDependency), decodeError(t, rec).Error.Code)
	})
}

func TestHealthLive(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthLive(&config.Config{App: config.AppConfig{Env: "prod"}}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "prod", rec.Header().Get("X-Tableside-Env"))
}

type stubAuth struct {
	register func(ctx context.Context, req auth.RegisterRequest) (*auth.TokenResponse, error)
}

func (s stubAuth) Register(ctx context.Context, req auth.RegisterRequest) (*auth.TokenResponse, error) {
	return s.register(ctx, req)
}

func (s stubAuth) Login(context.Context, auth.LoginRequest) (*auth.TokenResponse, error) {
	return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
}

func TestAuthRegisterReturnsCreated(t *testing.T) {
	svc := stubAuth{register: func(_ context.Context, req auth.RegisterRequest) (*auth.TokenResponse, error) {
		assert.Equal(t, "owner@example.com", req.Email)
		return &auth.TokenResponse{AccessToken: "tok", TokenType: "Bearer", ExpiresIn: 3600}, nil
	}}
	body := `{"email":"owner@example.com","password":"longenough","name":"Owner"}`
	rec := httptest.NewRecorder()
	AuthRegister(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"access_token":"tok"`)
}

func TestAuthRegisterRejectsShortPassword(t *testing.T) {
	svc := stubAuth{register: func(context.Context, auth.RegisterRequest) (*auth.TokenResponse, error) {
		t.Fatal("service must not be called")
		return nil, nil
	}}
	body := `{"email":"owner@example.com","password":"short","name":"Owner"}`
	rec := httptest.NewRecorder()
	AuthRegister(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body)))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(pkgerrors.CodeValidation), decodeError(t, rec).Error.Code)
}

func TestAuthLoginFailure(t *testing.T) {
	body := `{"email":"owner@example.com","password":"whatever"}`
	rec := httptest.NewRecorder()
	AuthLogin(stubAuth{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body)))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

type stubMembers struct {
	members.Service
	get func(ctx context.Context, wpOpenID string) (*members.MemberDTO, error)
}

func (s stubMembers) Get(ctx context.Context, wpOpenID string) (*members.MemberDTO, error) {
	return s.get(ctx, wpOpenID)
}

func TestMemberGetUsesPathParam(t *testing.T) {
	svc := stubMembers{get: func(_ context.Context, wpOpenID string) (*members.MemberDTO, error) {
		if wpOpenID != "wx-1" {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
		}
		return &members.MemberDTO{ID: 4, WPOpenID: wpOpenID}, nil
	}}
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/member/wx-1", nil), "wp_openid", "wx-1")
	rec := httptest.NewRecorder()
	MemberGet(svc, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"wp_openid":"wx-1"`)
}

type stubProducts struct {
	products.Service
	list func(ctx context.Context, openID string) ([]products.ProductDTO, error)
}

func (s stubProducts) ListByRestaurant(ctx context.Context, openID string) ([]products.ProductDTO, error) {
	return s.list(ctx, openID)
}

func TestProductListRequiresOpenID(t *testing.T) {
	rec := httptest.NewRecorder()
	ProductList(stubProducts{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/product", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProductListReturnsMenu(t *testing.T) {
	svc := stubProducts{list: func(_ context.Context, openID string) ([]products.ProductDTO, error) {
		assert.Equal(t, "r1", openID)
		return []products.ProductDTO{{ID: 1, Name: "Dumplings"}}, nil
	}}
	rec := httptest.NewRecorder()
	ProductList(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/product?openid=r1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Dumplings")
}

func TestProductCreateWithoutUserIs401(t *testing.T) {
	rec := httptest.NewRecorder()
	ProductCreate(stubProducts{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/product", strings.NewReader(`{}`)))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

type stubTables struct {
	tables.Service
	qr     func(ctx context.Context, tableID int64) ([]byte, error)
	assign func(ctx context.Context, ownerID, tableID, orderID int64) (*tables.TableDetail, error)
}

func (s stubTables) QRCode(ctx context.Context, tableID int64) ([]byte, error) {
	return s.qr(ctx, tableID)
}

func (s stubTables) AssignOrder(ctx context.Context, ownerID, tableID, orderID int64) (*tables.TableDetail, error) {
	return s.assign(ctx, ownerID, tableID, orderID)
}

func TestTableQRCodeWritesPNG(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G'}
	svc := stubTables{qr: func(_ context.Context, tableID int64) ([]byte, error) {
		assert.EqualValues(t, 7, tableID)
		return png, nil
	}}
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/table/7/qrcode", nil), "id", "7")
	rec := httptest.NewRecorder()
	TableQRCode(svc, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, png, rec.Body.Bytes())
}

func TestTableAssignOrderPassesOwner(t *testing.T) {
	svc := stubTables{assign: func(_ context.Context, ownerID, tableID, orderID int64) (*tables.TableDetail, error) {
		assert.EqualValues(t, 42, ownerID)
		assert.EqualValues(t, 3, tableID)
		assert.EqualValues(t, 9, orderID)
		return &tables.TableDetail{ID: tableID}, nil
	}}
	req := withURLParam(httptest.NewRequest(http.MethodPost, "/table/3/order", strings.NewReader(`{"order_id":9}`)), "id", "3")
	req = req.WithContext(middleware.WithUserID(req.Context(), 42))
	rec := httptest.NewRecorder()
	TableAssignOrder(svc, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestTableTypeListRequiresOpenID(t *testing.T) {
	rec := httptest.NewRecorder()
	TableTypeList(stubTables{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/table-type", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

type stubQueue struct {
	queue.Service
	register     func(ctx context.Context, input queue.RegisterInput) (*queue.RegistrationDTO, error)
	updateStatus func(ctx context.Context, ownerID, id int64, status enums.RegistrationStatus) (*queue.RegistrationDTO, error)
}

func (s stubQueue) Register(ctx context.Context, input queue.RegisterInput) (*queue.RegistrationDTO, error) {
	return s.register(ctx, input)
}

func (s stubQueue) UpdateStatus(ctx context.Context, ownerID, id int64, status enums.RegistrationStatus) (*queue.RegistrationDTO, error) {
	return s.updateStatus(ctx, ownerID, id, status)
}

func TestRegistrationCreate(t *testing.T) {
	svc := stubQueue{register: func(_ context.Context, input queue.RegisterInput) (*queue.RegistrationDTO, error) {
		assert.Equal(t, 4, input.PartySize)
		return &queue.RegistrationDTO{ID: 1, TableTypeID: input.TableTypeID, QueueNumber: 12}, nil
	}}
	body := `{"table_type_id":2,"wp_openid":"wx-1","party_size":4}`
	rec := httptest.NewRecorder()
	RegistrationCreate(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/registration", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"queue_number":12`)
}

func TestRegistrationUpdateStatusRejectsUnknownStatus(t *testing.T) {
	req := withURLParam(httptest.NewRequest(http.MethodPut, "/registration/1/status", strings.NewReader(`{"status":"waiting"}`)), "id", "1")
	req = req.WithContext(middleware.WithUserID(req.Context(), 1))
	rec := httptest.NewRecorder()
	RegistrationUpdateStatus(stubQueue{}, nil).ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegistrationUpdateStatusSeats(t *testing.T) {
	svc := stubQueue{updateStatus: func(_ context.Context, _, id int64, status enums.RegistrationStatus) (*queue.RegistrationDTO, error) {
		assert.Equal(t, enums.RegistrationStatusSeated, status)
		return &queue.RegistrationDTO{ID: id, Status: status}, nil
	}}
	req := withURLParam(httptest.NewRequest(http.MethodPut, "/registration/5/status", strings.NewReader(`{"status":"seated"}`)), "id", "5")
	req = req.WithContext(middleware.WithUserID(req.Context(), 1))
	rec := httptest.NewRecorder()
	RegistrationUpdateStatus(svc, nil).ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

type stubPosts struct {
	posts.Service
	list func(ctx context.Context, wpOpenID string, params pagination.Params) (*posts.PostPage, error)
	like func(ctx context.Context, id int64, wpOpenID string) (*posts.PostDTO, error)
}

func (s stubPosts) List(ctx context.Context, wpOpenID string, params pagination.Params) (*posts.PostPage, error) {
	return s.list(ctx, wpOpenID, params)
}

func (s stubPosts) Like(ctx context.Context, id int64, wpOpenID string) (*posts.PostDTO, error) {
	return s.like(ctx, id, wpOpenID)
}

func TestPostListForwardsPaging(t *testing.T) {
	svc := stubPosts{list: func(_ context.Context, wpOpenID string, params pagination.Params) (*posts.PostPage, error) {
		assert.Equal(t, "wx-1", wpOpenID)
		assert.Equal(t, 5, params.Limit)
		assert.Equal(t, "abc", params.Cursor)
		return &posts.PostPage{NextCursor: "def"}, nil
	}}
	rec := httptest.NewRecorder()
	PostList(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/post?wp_openid=wx-1&limit=5&cursor=abc", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"next_cursor":"def"`)
}

func TestPostLikeRequiresMember(t *testing.T) {
	req := withURLParam(httptest.NewRequest(http.MethodPost, "/post/1/like", nil), "id", "1")
	rec := httptest.NewRecorder()
	PostLike(stubPosts{}, nil).ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPostLike(t *testing.T) {
	svc := stubPosts{like: func(_ context.Context, id int64, wpOpenID string) (*posts.PostDTO, error) {
		return &posts.PostDTO{ID: id, Likes: 1}, nil
	}}
	req := withURLParam(httptest.NewRequest(http.MethodPost, "/post/1/like?wp_openid=wx-1", nil), "id", "1")
	rec := httptest.NewRecorder()
	PostLike(svc, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"likes":1`)
}

func TestNilServiceIsInternal(t *testing.T) {
	rec := httptest.NewRecorder()
	TagCreate(nil, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/tag", strings.NewReader(`{}`)))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
