// Marquee - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/marquee/internal/catalog"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/recommend"
	"github.com/tomtom215/marquee/internal/service"
	"github.com/tomtom215/marquee/internal/users"
)

const testCSV = `title,genre,director,view_the_collection,synopsis
Heat,"Crime, Drama",Michael Mann,,A detective hunts a crew of bank robbers in Los Angeles
Casino,"Crime, Drama",Martin Scorsese,,A casino boss runs Las Vegas for the mob
Alien,"Horror, Sci-Fi",Ridley Scott,Alien,A crew aboard a spaceship meets a deadly alien
Aliens,"Action, Horror, Sci-Fi",James Cameron,Alien,Marines return to the alien planet
The Matrix,"Action, Sci-Fi",Lana Wachowski,,A hacker learns reality is a simulation
`

type envelope struct {
	Status   string          `json:"status"`
	Data     json.RawMessage `json:"data"`
	Metadata models.Metadata `json:"metadata"`
	Error    *models.APIError `json:"error"`
}

func setupTestServer(t *testing.T, mwCfg *ChiMiddlewareConfig) http.Handler {
	t.Helper()
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "movies.csv")
	if err := os.WriteFile(csvPath, []byte(testCSV), 0o600); err != nil {
		t.Fatal(err)
	}

	logger := zerolog.Nop()
	c, err := catalog.LoadFile(csvPath, logger)
	if err != nil {
		t.Fatal(err)
	}
	engine, err := recommend.NewEngine(c, nil, logger)
	if err != nil {
		t.Fatal(err)
	}
	store, err := users.Open(users.BackendFile, filepath.Join(dir, "users.json"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })

	svc, err := service.New(service.Config{
		CatalogPath: csvPath,
		BcryptCost:  bcrypt.MinCost,
		DefaultTopN: 10,
		MaxTopN:     50,
	}, store, engine, logger)
	if err != nil {
		t.Fatal(err)
	}

	if mwCfg == nil {
		mwCfg = DefaultChiMiddlewareConfig()
		mwCfg.RateLimitDisabled = true
	}
	return NewRouter(NewHandler(svc, "test"), RouterConfig{Middleware: mwCfg, MaxBodyBytes: 1 << 16})
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %s %s: %v (%s)", method, path, err, rec.Body.String())
		}
	}
	return rec, env
}

func register(t *testing.T, h http.Handler, email string) {
	t.Helper()
	rec, env := do(t, h, http.MethodPost, "/api/v1/users",
		`{"name":"Ana","email":"`+email+`","password":"secret1"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", rec.Code, rec.Body.String())
	}
	if env.Status != "success" {
		t.Fatalf("register status %q", env.Status)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	h := setupTestServer(t, nil)
	register(t, h, "ana@example.com")

	rec, env := do(t, h, http.MethodPost, "/api/v1/auth/login", `{"email":"ana@example.com","password":"secret1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: %d %s", rec.Code, rec.Body.String())
	}
	if bytes.Contains(env.Data, []byte("password_hash")) {
		t.Error("login response leaks password hash")
	}
	var p models.PublicProfile
	if err := json.Unmarshal(env.Data, &p); err != nil {
		t.Fatal(err)
	}
	if p.Email != "ana@example.com" || p.ID == "" {
		t.Errorf("unexpected profile %+v", p)
	}
	if env.Metadata.RequestID == "" || rec.Header().Get("X-Request-ID") != env.Metadata.RequestID {
		t.Errorf("request id mismatch: header=%q body=%q", rec.Header().Get("X-Request-ID"), env.Metadata.RequestID)
	}
}

func TestErrorMapping(t *testing.T) {
	h := setupTestServer(t, nil)
	register(t, h, "ana@example.com")

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   string
	}{
		{"duplicate registration", "POST", "/api/v1/users", `{"name":"B","email":"ANA@example.com","password":"secret2"}`, 409, models.CodeAlreadyExists},
		{"invalid registration", "POST", "/api/v1/users", `{"name":"B","email":"nope","password":"secret2"}`, 400, models.CodeValidation},
		{"wrong password", "POST", "/api/v1/auth/login", `{"email":"ana@example.com","password":"bad"}`, 401, models.CodeAuth},
		{"unknown user login", "POST", "/api/v1/auth/login", `{"email":"x@example.com","password":"secret1"}`, 401, models.CodeAuth},
		{"rating too high", "POST", "/api/v1/users/ana@example.com/ratings", `{"title":"Heat","rating":6}`, 400, models.CodeValidation},
		{"rating zero", "POST", "/api/v1/users/ana@example.com/ratings", `{"title":"Heat","rating":0}`, 400, models.CodeValidation},
		{"unknown movie", "POST", "/api/v1/users/ana@example.com/ratings", `{"title":"Vertigo","rating":4}`, 404, models.CodeNotFound},
		{"unknown user rating", "POST", "/api/v1/users/x@example.com/ratings", `{"title":"Heat","rating":4}`, 404, models.CodeNotFound},
		{"unknown genre", "POST", "/api/v1/users/ana@example.com/favorite-genres", `{"genres":["Western"]}`, 400, models.CodeValidation},
		{"malformed json", "POST", "/api/v1/users", `{"name":`, 400, models.CodeBadRequest},
		{"unknown field", "POST", "/api/v1/users", `{"nickname":"x"}`, 400, models.CodeBadRequest},
		{"bad mode", "GET", "/api/v1/users/ana@example.com/recommendations?mode=random", "", 400, models.CodeValidation},
		{"bad space", "GET", "/api/v1/users/ana@example.com/recommendations?space=graph", "", 400, models.CodeValidation},
		{"bad top_n", "GET", "/api/v1/users/ana@example.com/recommendations?top_n=abc", "", 400, models.CodeValidation},
		{"zero top_n", "GET", "/api/v1/users/ana@example.com/recommendations?top_n=0", "", 400, models.CodeValidation},
		{"by-item without title", "GET", "/api/v1/users/ana@example.com/recommendations?mode=by-item", "", 400, models.CodeValidation},
		{"unknown similar", "GET", "/api/v1/catalog/items/Vertigo/similar", "", 404, models.CodeNotFound},
		{"unknown route", "GET", "/api/v1/nope", "", 404, models.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := do(t, h, tt.method, tt.path, tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
			if env.Error == nil || env.Error.Code != tt.code {
				t.Fatalf("error = %+v, want code %s", env.Error, tt.code)
			}
			if env.Status != "error" {
				t.Errorf("status field = %q", env.Status)
			}
		})
	}
}

func TestRatingFlowAndRecommendations(t *testing.T) {
	h := setupTestServer(t, nil)
	register(t, h, "ana@example.com")

	rec, env := do(t, h, http.MethodPost, "/api/v1/users/ana@example.com/ratings", `{"title":"alien","rating":5}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("rate: %d %s", rec.Code, rec.Body.String())
	}
	var p models.PublicProfile
	if err := json.Unmarshal(env.Data, &p); err != nil {
		t.Fatal(err)
	}
	if p.Ratings["alien"] != 5 || p.GenrePreference["Horror"] != 5 {
		t.Errorf("unexpected profile after rating: %+v", p)
	}

	rec, env = do(t, h, http.MethodGet, "/api/v1/users/ana@example.com/recommendations?top_n=2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("recommend: %d %s", rec.Code, rec.Body.String())
	}
	var resp recommend.Response
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Metadata.Mode != "by-profile" || len(resp.Items) != 2 {
		t.Fatalf("unexpected response %+v", resp)
	}
	if resp.Items[0].Item.Title != "Aliens" {
		t.Errorf("top item = %q, want Aliens", resp.Items[0].Item.Title)
	}
	for _, it := range resp.Items {
		if it.Item.Title == "Alien" {
			t.Error("rated title returned")
		}
	}

	rec, env = do(t, h, http.MethodGet, "/api/v1/users/ana@example.com/recommendations?mode=by-high-ratings&space=lexical&top_n=3", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("by-high-ratings: %d %s", rec.Code, rec.Body.String())
	}
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Metadata.Space != "lexical" {
		t.Errorf("space = %q", resp.Metadata.Space)
	}
	for _, it := range resp.Items {
		if it.Source != "Alien" {
			t.Errorf("source = %q, want Alien", it.Source)
		}
	}
}

func TestFavoriteGenresAndGenreScore(t *testing.T) {
	h := setupTestServer(t, nil)
	register(t, h, "ana@example.com")

	rec, _ := do(t, h, http.MethodPost, "/api/v1/users/ana@example.com/favorite-genres", `{"genres":["Crime"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("favorites: %d %s", rec.Code, rec.Body.String())
	}

	rec, env := do(t, h, http.MethodGet, "/api/v1/users/ana@example.com/recommendations?mode=genre-score&top_n=2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("genre-score: %d %s", rec.Code, rec.Body.String())
	}
	var resp recommend.Response
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Items) != 2 || resp.Items[0].Item.Title != "Heat" || resp.Items[1].Item.Title != "Casino" {
		t.Errorf("unexpected genre-score order %+v", resp.Items)
	}
}

func TestCatalogEndpoints(t *testing.T) {
	h := setupTestServer(t, nil)

	rec, env := do(t, h, http.MethodGet, "/api/v1/catalog/genres", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("genres: %d", rec.Code)
	}
	var g struct {
		Genres []string `json:"genres"`
	}
	if err := json.Unmarshal(env.Data, &g); err != nil {
		t.Fatal(err)
	}
	want := []string{"Crime", "Drama", "Horror", "Sci-Fi", "Action"}
	if strings.Join(g.Genres, ",") != strings.Join(want, ",") {
		t.Errorf("genres = %v, want %v", g.Genres, want)
	}

	rec, env = do(t, h, http.MethodGet, "/api/v1/catalog/items/The%20Matrix/similar?top_n=1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("similar: %d %s", rec.Code, rec.Body.String())
	}
	var resp recommend.Response
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Items) != 1 || resp.Items[0].Item.Title != "Aliens" {
		t.Errorf("similar = %+v", resp.Items)
	}

	rec, env = do(t, h, http.MethodPost, "/api/v1/catalog/reload", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("reload: %d %s", rec.Code, rec.Body.String())
	}
	var res service.ReloadResult
	if err := json.Unmarshal(env.Data, &res); err != nil {
		t.Fatal(err)
	}
	if res.Items != 5 {
		t.Errorf("reload items = %d", res.Items)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	h := setupTestServer(t, nil)

	rec, env := do(t, h, http.MethodGet, "/api/v1/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("health: %d", rec.Code)
	}
	var hr HealthResponse
	if err := json.Unmarshal(env.Data, &hr); err != nil {
		t.Fatal(err)
	}
	if hr.Status != "healthy" || hr.Genres != 5 {
		t.Errorf("health = %+v", hr)
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing security headers")
	}

	rec, _ = do(t, h, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "api_requests_total") {
		t.Errorf("metrics endpoint: %d", rec.Code)
	}
}

func TestLoginRateLimit(t *testing.T) {
	cfg := DefaultChiMiddlewareConfig()
	cfg.RateLimitRequests = 100
	cfg.LoginRateLimitRequests = 2
	cfg.RateLimitWindow = time.Minute
	h := setupTestServer(t, cfg)

	var last *httptest.ResponseRecorder
	var env envelope
	for i := 0; i < 3; i++ {
		last, env = do(t, h, http.MethodPost, "/api/v1/auth/login", `{"email":"x@example.com","password":"secret1"}`)
	}
	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("third login status = %d, want 429", last.Code)
	}
	if env.Error == nil || env.Error.Code != models.CodeRateLimited {
		t.Errorf("error = %+v", env.Error)
	}
}

func TestBodyTooLarge(t *testing.T) {
	h := setupTestServer(t, nil)
	big := `{"name":"` + strings.Repeat("a", 1<<17) + `","email":"a@b.co","password":"secret1"}`
	rec, env := do(t, h, http.MethodPost, "/api/v1/users", big)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d", rec.Code)
	}
	if env.Error == nil {
		t.Error("expected error body")
	}
}
