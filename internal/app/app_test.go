package app

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"leadcrm/internal/config"
)

func TestCORSAllowsConfiguredClientsWithCredentials(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(cors.New(corsConfig(config.CORSConfig{Clients: []string{"http://localhost:5173"}})))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	preflight := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/x", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := preflight("http://localhost:5173")
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("allow origin = %q", got)
	}
	if w.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Error("credentials not allowed")
	}

	if w = preflight("http://evil.example"); w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("unknown origin allowed")
	}
}

func TestCORSWithNoClients(t *testing.T) {
	cc := corsConfig(config.CORSConfig{})
	if cc.AllowOriginFunc == nil || cc.AllowOriginFunc("http://localhost:5173") {
		t.Error("empty client list must reject every origin")
	}
	// must not panic
	_ = cors.New(cc)
}
