package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"leadcrm/internal/models"
	"leadcrm/internal/repositories/repotest"
	"leadcrm/internal/services"
)

const testUserID = "65a1b2c3d4e5f60718293a4b"

func init() {
	gin.SetMode(gin.TestMode)
}

func newSessionRouter(t *testing.T) (*gin.Engine, services.AuthService) {
	t.Helper()
	store := repotest.NewUserStore()
	if err := store.Create(context.Background(), &models.User{ID: testUserID, Email: "ada@example.com", FullName: "Ada"}); err != nil {
		t.Fatal(err)
	}
	auth := services.NewAuthService("test-secret", time.Hour)
	users := services.NewUserService(store, nil, auth)

	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/private", RequireSession("jwt", auth, users), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextUserID))
	})
	return r, auth
}

func TestRequireSession(t *testing.T) {
	r, auth := newSessionRouter(t)
	good, _, err := auth.IssueToken(testUserID)
	if err != nil {
		t.Fatal(err)
	}
	ghost, _, _ := auth.IssueToken("ffffffffffffffffffffffff")
	foreign, _, _ := services.NewAuthService("other", time.Hour).IssueToken(testUserID)

	cases := []struct {
		name   string
		cookie string
		want   int
	}{
		{"no cookie", "", http.StatusUnauthorized},
		{"garbage", "abc.def.ghi", http.StatusUnauthorized},
		{"wrong secret", foreign, http.StatusUnauthorized},
		{"vanished user", ghost, http.StatusUnauthorized},
		{"valid", good, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "jwt", Value: tc.cookie})
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tc.want {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tc.want, w.Body.String())
			}
			if tc.want == http.StatusOK && w.Body.String() != testUserID {
				t.Errorf("user id = %q", w.Body.String())
			}
		})
	}
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextRequestID)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	id := w.Header().Get(RequestIDHeader)
	if id == "" || id != w.Body.String() {
		t.Errorf("request id header %q body %q", id, w.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("incoming id not reused: %q", got)
	}
}
