package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-occupational-backend/internal/authz"
	"go-occupational-backend/internal/domain"
	"go-occupational-backend/pkg/apperror"
	"go-occupational-backend/pkg/auth"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubParser struct {
	claims *auth.Claims
	err    error
}

func (s stubParser) Parse(string) (*auth.Claims, error) { return s.claims, s.err }

// MockUsers implements only what the middleware calls.
type MockUsers struct {
	mock.Mock
	domain.UserUsecase
}

func (m *MockUsers) EnsureUser(ctx context.Context, id, email string) (*domain.User, error) {
	args := m.Called(ctx, id, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type stubPerms struct {
	granted map[string]bool
	err     error
}

func (s stubPerms) PermissionsOf(context.Context, int64) (map[string]bool, error) {
	return s.granted, s.err
}

func claimsFor(sub string) *auth.Claims {
	return &auth.Claims{Email: "ana@example.co", RegisteredClaims: jwt.RegisteredClaims{Subject: sub}}
}

func viewerEcho(c *gin.Context) {
	v, ok := ViewerFrom(c)
	if !ok {
		c.Status(http.StatusTeapot)
		return
	}
	c.JSON(http.StatusOK, v)
}

func withViewer(v *domain.Viewer) gin.HandlerFunc {
	return func(c *gin.Context) {
		setViewer(c, v)
		c.Next()
	}
}

func TestAuthMiddleware(t *testing.T) {
	t.Run("missing token", func(t *testing.T) {
		r := gin.New()
		r.GET("/", AuthMiddleware(stubParser{}, &MockUsers{}), viewerEcho)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		r := gin.New()
		r.GET("/", AuthMiddleware(stubParser{err: auth.ErrInvalidToken}, &MockUsers{}), viewerEcho)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer bad")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("inactive user", func(t *testing.T) {
		users := new(MockUsers)
		users.On("EnsureUser", mock.Anything, "user-1", "ana@example.co").
			Return(&domain.User{ID: "user-1", Active: false}, nil)

		r := gin.New()
		r.GET("/", AuthMiddleware(stubParser{claims: claimsFor("user-1")}, users), viewerEcho)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer ok")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("cookie token builds viewer", func(t *testing.T) {
		users := new(MockUsers)
		users.On("EnsureUser", mock.Anything, "user-1", "ana@example.co").
			Return(&domain.User{ID: "user-1", Email: "ana@example.co", RoleID: 3, Role: domain.RoleCompanyUser, Active: true, Companies: []int64{7}}, nil)

		r := gin.New()
		r.GET("/", AuthMiddleware(stubParser{claims: claimsFor("user-1")}, users), viewerEcho)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: AuthCookie, Value: "tok"})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"role":"company_user"`)
		assert.Contains(t, w.Body.String(), `"companies":[7]`)
		users.AssertExpectations(t)
	})

	t.Run("non bearer scheme", func(t *testing.T) {
		r := gin.New()
		r.GET("/", AuthMiddleware(stubParser{claims: claimsFor("user-1")}, &MockUsers{}), viewerEcho)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic abc")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestCompanyContext(t *testing.T) {
	member := &domain.Viewer{UserID: "u", Role: domain.RoleCompanyUser, Companies: []int64{7}}

	serve := func(v *domain.Viewer, setup func(*http.Request)) *httptest.ResponseRecorder {
		r := gin.New()
		r.GET("/", withViewer(v), CompanyContext(), viewerEcho)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		setup(req)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := serve(member, func(r *http.Request) { r.Header.Set(CompanyHeader, "7") })
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"company_id":7`)

	w = serve(member, func(r *http.Request) { r.AddCookie(&http.Cookie{Name: CompanyCookie, Value: "7"}) })
	assert.Contains(t, w.Body.String(), `"company_id":7`)

	w = serve(member, func(r *http.Request) { r.Header.Set(CompanyHeader, "8") })
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = serve(member, func(r *http.Request) { r.Header.Set(CompanyHeader, "abc") })
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(member, func(*http.Request) {})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "company_id")

	admin := &domain.Viewer{UserID: "a", Role: domain.RoleAdmin, Global: true}
	w = serve(admin, func(r *http.Request) { r.Header.Set(CompanyHeader, "99") })
	assert.Contains(t, w.Body.String(), `"company_id":99`)
}

func TestGuardRequire(t *testing.T) {
	reg := authz.NewRegistry()
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }

	serve := func(g *Guard, v *domain.Viewer) int {
		r := gin.New()
		r.POST("/", withViewer(v), g.Require("orders.create", "Create service orders"), ok)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
		return w.Code
	}

	operator := &domain.Viewer{UserID: "o", RoleID: 2, Role: domain.RoleOperator, Global: true}

	assert.Equal(t, http.StatusOK, serve(NewGuard(reg, stubPerms{granted: map[string]bool{"orders.create": true}}), operator))
	assert.Equal(t, http.StatusForbidden, serve(NewGuard(reg, stubPerms{granted: map[string]bool{}}), operator))
	assert.Equal(t, http.StatusInternalServerError, serve(NewGuard(reg, stubPerms{err: errors.New("redis down")}), operator))

	admin := &domain.Viewer{UserID: "a", Role: domain.RoleAdmin, Global: true}
	assert.Equal(t, http.StatusOK, serve(NewGuard(reg, stubPerms{err: errors.New("not consulted")}), admin))

	require.True(t, reg.Has("orders.create"))
	assert.Equal(t, "orders", reg.List()[0].Module)
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/conflict", func(c *gin.Context) { _ = c.Error(apperror.Conflict("company cannot be deleted while active")) })
	r.GET("/boom", func(c *gin.Context) { _ = c.Error(errors.New("pq: relation does not exist")) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/conflict", nil))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "company cannot be deleted while active")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "relation")
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"https://app.example.co/"}, true))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	preflight := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/", nil)
		req.Header.Set("Origin", origin)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := preflight("https://app.example.co")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.co", w.Header().Get("Access-Control-Allow-Origin"))

	w = preflight("http://localhost:5173")
	assert.Equal(t, http.StatusForbidden, w.Code, "localhost is not allowed in production")
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimitInMemory(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(RateLimitConfig{Limit: 2, Window: 60e9, KeyPrefix: "rl:test:"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 3)
	for i := range codes {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.1.1.1:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes[i] = w.Code
		if i == 2 {
			assert.NotEmpty(t, w.Header().Get("Retry-After"))
		}
	}
	assert.Equal(t, []int{200, 200, 429}, codes)
}

func TestCSRFMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CSRFMiddleware(false))
	r.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	post := func(setup func(*http.Request)) int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		setup(req)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	cookieAuth := func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: AuthCookie, Value: "tok"})
		req.AddCookie(&http.Cookie{Name: CSRFTokenCookieName, Value: "abc"})
	}

	assert.Equal(t, http.StatusForbidden, post(cookieAuth))
	assert.Equal(t, http.StatusForbidden, post(func(req *http.Request) {
		cookieAuth(req)
		req.Header.Set(CSRFTokenHeaderName, "xyz")
	}))
	assert.Equal(t, http.StatusOK, post(func(req *http.Request) {
		cookieAuth(req)
		req.Header.Set(CSRFTokenHeaderName, "abc")
	}))
	assert.Equal(t, http.StatusOK, post(func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer tok")
	}), "bearer clients are not exposed to CSRF")
}

func TestRequestIDKeepsValidCallerID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("RequestID")) })

	const id = "3f1c8c1e-4d6a-4f59-9c57-3d2b8a1f0e11"
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, id)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, id, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "not-a-uuid")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEqual(t, "not-a-uuid", w.Body.String())
	assert.Len(t, w.Body.String(), 36)
}
