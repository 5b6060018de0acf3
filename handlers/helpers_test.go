package handlers

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vishalmadargaon/Flight-delay-predictor/config"
	"github.com/vishalmadargaon/Flight-delay-predictor/database"
	"github.com/vishalmadargaon/Flight-delay-predictor/inference"
	"github.com/vishalmadargaon/Flight-delay-predictor/inference/inferencetest"
	"github.com/vishalmadargaon/Flight-delay-predictor/middleware"
	"github.com/vishalmadargaon/Flight-delay-predictor/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type testApp struct {
	server *httptest.Server
	db     *gorm.DB
}

func loadEngine(t *testing.T) *inference.Engine {
	t.Helper()
	dir := t.TempDir()
	if err := inferencetest.WriteArtifacts(dir); err != nil {
		t.Fatalf("write artifacts: %v", err)
	}
	engine, err := inference.Load(dir)
	if err != nil {
		t.Fatalf("load engine: %v", err)
	}
	return engine
}

func newTestApp(t *testing.T, engine DelayPredictor) *testApp {
	t.Helper()
	return newTestAppWithCache(t, engine, nil)
}

func newTestAppWithCache(t *testing.T, engine DelayPredictor, cache *services.CacheService) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Database: config.DatabaseConfig{Driver: config.DriverSQLite, Path: filepath.Join(t.TempDir(), "test.db")},
		Session:  config.SessionConfig{Secret: "test-secret", CookieName: "session", ExpiryHours: 1},
		CORS:     config.CORSConfig{AllowedOrigins: "*"},
		Security: config.SecurityConfig{PasswordHashing: config.HashingPlain},
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.Initialize(db); err != nil {
		t.Fatalf("initialize db: %v", err)
	}
	t.Cleanup(func() { database.Close(db) })

	router, err := NewRouter(cfg, Deps{
		Accounts:    services.NewAccountService(db, services.NewPasswordHasher(cfg.Security), nil),
		Predictions: services.NewPredictionService(db, cache, nil),
		Cache:       cache,
		Sessions:    middleware.NewSessions(services.NewAuthService(cfg.Session), cfg.Session, nil),
		Engine:      engine,
	})
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return &testApp{server: server, db: db}
}

// browser follows redirects and keeps cookies.
func (a *testApp) browser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	return &http.Client{Jar: jar}
}

// noRedirect stops at the first response.
func noRedirect(client *http.Client) *http.Client {
	return &http.Client{
		Jar: client.Jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

type page struct {
	status int
	path   string
	body   string
}

func (a *testApp) get(t *testing.T, client *http.Client, path string) page {
	t.Helper()
	resp, err := client.Get(a.server.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return readPage(t, resp)
}

func (a *testApp) post(t *testing.T, client *http.Client, path string, form url.Values) page {
	t.Helper()
	resp, err := client.PostForm(a.server.URL+path, form)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return readPage(t, resp)
}

func readPage(t *testing.T, resp *http.Response) page {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return page{status: resp.StatusCode, path: resp.Request.URL.Path, body: string(body)}
}

func (p page) expect(t *testing.T, status int, path string, fragments ...string) {
	t.Helper()
	if p.status != status {
		t.Errorf("status = %d, want %d", p.status, status)
	}
	if path != "" && p.path != path {
		t.Errorf("landed on %s, want %s", p.path, path)
	}
	for _, f := range fragments {
		if !strings.Contains(p.body, f) {
			t.Errorf("page %s missing %q", p.path, f)
		}
	}
}

func registerAndLogin(t *testing.T, app *testApp, client *http.Client, username string) {
	t.Helper()
	app.post(t, client, "/register", url.Values{
		"username": {username},
		"email":    {username + "@x.com"},
		"password": {"pw1"},
	}).expect(t, http.StatusOK, "/login")
	app.post(t, client, "/login", url.Values{
		"username": {username},
		"password": {"pw1"},
	}).expect(t, http.StatusOK, "/dashboard")
}

func sampleForm() url.Values {
	return url.Values{
		"year":             {"2023"},
		"month":            {"1"},
		"carrier":          {"AA"},
		"airport":          {"JFK"},
		"arr_flights":      {"100"},
		"arr_del15":        {"10"},
		"carrier_ct":       {"2.0"},
		"weather_ct":       {"1.0"},
		"nas_ct":           {"0.5"},
		"security_ct":      {"0.0"},
		"late_aircraft_ct": {"1.5"},
		"arr_cancelled":    {"1"},
		"arr_diverted":     {"0"},
	}
}
