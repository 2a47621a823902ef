package session_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"caseflow/bizerror"
	"caseflow/session"
	"caseflow/testinfra"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
	"github.com/patrickmn/go-cache"
)

func TestSimpleAuthFilter(t *testing.T) {
	RegisterTestingT(t)

	router := gin.Default()
	router.Use(bizerror.ErrorHandling())
	router.GET("/secured", session.SimpleAuthFilter(), func(c *gin.Context) {
		s := session.ExtractSessionFromGinContext(c)
		c.String(http.StatusOK, s.Identity.Name)
	})

	t.Run("should reject requests without a token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/secured", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusUnauthorized))
		Expect(body).To(MatchJSON(`{"code":"common.unauthenticated", "message":"unauthenticated", "data":null}`))
	})

	t.Run("should reject requests with an unknown token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/secured", nil)
		req.Header.Set("Authorization", "Bearer some-unknown-token")
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusUnauthorized))
	})

	t.Run("should bind the cached session for a bearer token", func(t *testing.T) {
		secCtx := testinfra.BuildSecCtx(100, "manager_1")
		secCtx.Token = "test-token-bearer"
		secCtx.Identity.Name = "ann"
		session.TokenCache.Set(secCtx.Token, secCtx, cache.DefaultExpiration)
		defer session.TokenCache.Delete(secCtx.Token)

		req := httptest.NewRequest(http.MethodGet, "/secured", nil)
		req.Header.Set("Authorization", "Bearer "+secCtx.Token)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(Equal("ann"))
	})

	t.Run("should fall back to the token cookie", func(t *testing.T) {
		secCtx := testinfra.BuildSecCtx(101, "viewer_1")
		secCtx.Token = "test-token-cookie"
		secCtx.Identity.Name = "bob"
		session.TokenCache.Set(secCtx.Token, secCtx, cache.DefaultExpiration)
		defer session.TokenCache.Delete(secCtx.Token)

		req := httptest.NewRequest(http.MethodGet, "/secured", nil)
		req.AddCookie(&http.Cookie{Name: session.KeySecToken, Value: secCtx.Token})
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(Equal("bob"))
	})
}

func TestTenantPathFilter(t *testing.T) {
	RegisterTestingT(t)

	router := gin.Default()
	router.Use(bizerror.ErrorHandling())
	router.GET("/v1/tenants/:tenantId/things", session.SimpleAuthFilter(), session.TenantPathFilter(),
		func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

	secCtx := testinfra.BuildSecCtx(200, "maker_10")
	secCtx.Token = "tenant-filter-token"
	session.TokenCache.Set(secCtx.Token, secCtx, cache.DefaultExpiration)
	defer session.TokenCache.Delete(secCtx.Token)

	t.Run("should pass for a visible tenant", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/tenants/10/things", nil)
		req.Header.Set("Authorization", "Bearer "+secCtx.Token)
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
	})

	t.Run("should forbid a foreign tenant", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/tenants/11/things", nil)
		req.Header.Set("Authorization", "Bearer "+secCtx.Token)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusForbidden))
		Expect(body).To(MatchJSON(`{"code":"security.forbidden", "message":"access forbidden", "data":null}`))
	})

	t.Run("should reject a malformed tenant id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/tenants/abc/things", nil)
		req.Header.Set("Authorization", "Bearer "+secCtx.Token)
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
	})
}

func TestExtractSessionFromGinContext(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should return an anonymous session when nothing is bound", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		s := session.ExtractSessionFromGinContext(c)
		Expect(s.Token).To(BeEmpty())
		Expect(s.Context).ToNot(BeNil())
	})
}
