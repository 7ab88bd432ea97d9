//go:build integration

package e2e

// End-to-end integration tests using real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./tests/e2e/... -v
//
// These tests:
//   T-E2E-1: Grid preview → bulk create → set quantity → movement history
//   T-E2E-2: Quick entry: scan, debounce, commit as one batch
//   T-E2E-3: Sell-out crossing produces an alert via the watcher
//   T-E2E-4: Role enforcement: reseller is read-only

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DrgGomes/cft-estoque-fast/internal/config"
	"github.com/DrgGomes/cft-estoque-fast/internal/infra"
	"github.com/DrgGomes/cft-estoque-fast/internal/repository"
	"github.com/DrgGomes/cft-estoque-fast/internal/router"
	"github.com/DrgGomes/cft-estoque-fast/internal/service"
	"github.com/DrgGomes/cft-estoque-fast/internal/watch"
	"github.com/DrgGomes/cft-estoque-fast/internal/worker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"golang.org/x/crypto/bcrypt"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// ── Test Suite Setup ─────────────────────────────────────────────────────────

type testEnv struct {
	server        *httptest.Server
	supplierToken string
	resellerToken string
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("stock_test"),
		tcPostgres.WithUsername("stock"),
		tcPostgres.WithPassword("stock"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:               8000,
		Env:                "test",
		JWTSecret:          "test-secret-key",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
		WorkerPoolSize:     1,
		ScanDebounceMs:     2500,
		ScanFeedbackTTLMs:  3000,
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	require.NoError(t, infra.RunMigrations(db))

	// Seed one user per role
	hash, err := bcrypt.GenerateFromPassword([]byte("e2e-password"), 10)
	require.NoError(t, err)
	require.NoError(t, db.Exec(`INSERT INTO users (id, username, name, password_hash, role, active, created_at, updated_at)
		VALUES (gen_random_uuid(), 'supplier@e2e.test', 'Supplier E2E', ?, 'supplier', true, NOW(), NOW()),
		       (gen_random_uuid(), 'reseller@e2e.test', 'Reseller E2E', ?, 'reseller', true, NOW(), NOW())`,
		string(hash), string(hash)).Error)

	// Watcher runs alongside the API, like in cmd/server
	productRepo := repository.NewProductRepository(db)
	alertSvc := service.NewAlertService(
		repository.NewAlertRepository(db), worker.NewDispatcher(rdb), nil, nil, "")
	watcher := watch.New(rdb, productRepo, alertSvc)
	watchCtx, watchCancel := context.WithCancel(ctx)
	t.Cleanup(watchCancel)
	go func() { _ = watcher.Run(watchCtx) }()

	r := router.New(cfg, db, rdb, nil)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &testEnv{
		server:        srv,
		supplierToken: login(t, srv, "supplier@e2e.test"),
		resellerToken: login(t, srv, "reseller@e2e.test"),
	}
}

func login(t *testing.T, srv *httptest.Server, username string) string {
	t.Helper()
	resp := do(t, srv, "POST", "/v1/auth/login",
		jsonBody(t, map[string]string{"username": username, "password": "e2e-password"}), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		AccessToken string `json:"access_token"`
	}
	decodeJSON(t, resp, &body)
	require.NotEmpty(t, body.AccessToken)
	return body.AccessToken
}

// ── Tests ────────────────────────────────────────────────────────────────────

// T-E2E-1: Grid preview → bulk create → set quantity → movement history
func TestE2E_GridToLedger(t *testing.T) {
	env := setupTestEnv(t)

	// 1. Preview the variation grid
	previewResp := do(t, env.server, "POST", "/v1/grid/preview",
		jsonBody(t, map[string]any{
			"base_sku": "600",
			"colors":   []string{"Preto", "Café"},
			"sizes":    []string{"39", "40"},
		}),
		env.supplierToken,
	)
	require.Equal(t, http.StatusOK, previewResp.StatusCode)
	var preview struct {
		Rows []map[string]any `json:"rows"`
	}
	decodeJSON(t, previewResp, &preview)
	require.Len(t, preview.Rows, 4)
	assert.Equal(t, "600-PRETO-39", preview.Rows[0]["sku"])

	// 2. Bulk-create the variants
	createResp := do(t, env.server, "POST", "/v1/grid",
		jsonBody(t, map[string]any{
			"name":     "Sapatilha 600",
			"base_sku": "600",
			"rows":     preview.Rows,
		}),
		env.supplierToken,
	)
	require.Equal(t, http.StatusCreated, createResp.StatusCode)
	var created struct {
		Created []struct {
			ID       string `json:"id"`
			Quantity int    `json:"quantity"`
		} `json:"created"`
	}
	decodeJSON(t, createResp, &created)
	require.Len(t, created.Created, 4)
	for _, p := range created.Created {
		assert.Zero(t, p.Quantity, "variants start at zero stock")
	}

	// 3. Set an absolute quantity
	productID := created.Created[0].ID
	qtyResp := do(t, env.server, "PUT", "/v1/products/"+productID+"/quantity",
		jsonBody(t, map[string]any{"quantity": 12}), env.supplierToken)
	require.Equal(t, http.StatusOK, qtyResp.StatusCode)
	qtyResp.Body.Close()

	// 4. Movement history shows one entry of 12
	histResp := do(t, env.server, "GET", "/v1/movements?product_id="+productID, nil, env.resellerToken)
	require.Equal(t, http.StatusOK, histResp.StatusCode)
	var hist struct {
		Data []struct {
			Type        string `json:"type"`
			Amount      int    `json:"amount"`
			PreviousQty int    `json:"previous_qty"`
			NewQty      int    `json:"new_qty"`
		} `json:"data"`
	}
	decodeJSON(t, histResp, &hist)
	require.Len(t, hist.Data, 1)
	assert.Equal(t, "entry", hist.Data[0].Type)
	assert.Equal(t, 12, hist.Data[0].Amount)
	assert.Equal(t, 0, hist.Data[0].PreviousQty)
	assert.Equal(t, 12, hist.Data[0].NewQty)
}

// T-E2E-2: Quick entry — duplicate scans are debounced, commit is one batch
func TestE2E_QuickEntryDebounceAndCommit(t *testing.T) {
	env := setupTestEnv(t)

	createResp := do(t, env.server, "POST", "/v1/products",
		jsonBody(t, map[string]any{
			"name": "Bota 710", "sku": "710-CAFE-38", "color": "Café", "size": "38",
		}),
		env.supplierToken,
	)
	require.Equal(t, http.StatusCreated, createResp.StatusCode)
	createResp.Body.Close()

	sessResp := do(t, env.server, "POST", "/v1/quick-entry", nil, env.supplierToken)
	require.Equal(t, http.StatusCreated, sessResp.StatusCode)
	var sess struct {
		ID string `json:"id"`
	}
	decodeJSON(t, sessResp, &sess)

	scan := func() string {
		resp := do(t, env.server, "POST", "/v1/quick-entry/"+sess.ID+"/scan",
			jsonBody(t, map[string]string{"code": "710-CAFE-38"}), env.supplierToken)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var fb struct {
			Status string `json:"status"`
		}
		decodeJSON(t, resp, &fb)
		return fb.Status
	}

	assert.Equal(t, "accepted", scan())
	assert.Equal(t, "duplicate", scan(), "same code inside the window is one physical scan")

	commitResp := do(t, env.server, "POST", "/v1/quick-entry/"+sess.ID+"/commit", nil, env.supplierToken)
	require.Equal(t, http.StatusOK, commitResp.StatusCode)
	var commit struct {
		Movements []struct {
			Amount int    `json:"amount"`
			NewQty int    `json:"new_qty"`
			Type   string `json:"type"`
		} `json:"movements"`
	}
	decodeJSON(t, commitResp, &commit)
	require.Len(t, commit.Movements, 1)
	assert.Equal(t, "entry", commit.Movements[0].Type)
	assert.Equal(t, 1, commit.Movements[0].Amount)
	assert.Equal(t, 1, commit.Movements[0].NewQty)

	// Session is gone after a successful commit
	getResp := do(t, env.server, "GET", "/v1/quick-entry/"+sess.ID, nil, env.supplierToken)
	assert.Equal(t, http.StatusNotFound, getResp.StatusCode)
	getResp.Body.Close()
}

// T-E2E-3: Selling out produces exactly one alert via the watcher
func TestE2E_SellOutAlert(t *testing.T) {
	env := setupTestEnv(t)

	createResp := do(t, env.server, "POST", "/v1/products",
		jsonBody(t, map[string]any{
			"name": "Rasteira 120", "sku": "120-NUDE-36", "color": "Nude", "size": "36",
		}),
		env.supplierToken,
	)
	require.Equal(t, http.StatusCreated, createResp.StatusCode)
	var prod struct {
		ID string `json:"id"`
	}
	decodeJSON(t, createResp, &prod)

	setQty := func(q int) {
		resp := do(t, env.server, "PUT", "/v1/products/"+prod.ID+"/quantity",
			jsonBody(t, map[string]any{"quantity": q}), env.supplierToken)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}

	setQty(5)
	setQty(0) // the crossing

	require.Eventually(t, func() bool {
		resp := do(t, env.server, "GET", "/v1/alerts", nil, env.resellerToken)
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return false
		}
		var alerts struct {
			Total int64 `json:"total"`
			Data  []struct {
				ProductName string `json:"product_name"`
			} `json:"data"`
		}
		if json.NewDecoder(resp.Body).Decode(&alerts) != nil {
			return false
		}
		return alerts.Total == 1 && alerts.Data[0].ProductName == "Rasteira 120"
	}, 10*time.Second, 100*time.Millisecond, "watcher should turn the crossing into one alert")

	// Staying at zero produces no further alerts
	time.Sleep(500 * time.Millisecond)
	resp := do(t, env.server, "GET", "/v1/alerts", nil, env.resellerToken)
	var alerts struct {
		Total int64 `json:"total"`
	}
	decodeJSON(t, resp, &alerts)
	assert.EqualValues(t, 1, alerts.Total)
}

// T-E2E-4: Reseller is read-only
func TestE2E_ResellerRoleEnforcement(t *testing.T) {
	env := setupTestEnv(t)

	resp := do(t, env.server, "POST", "/v1/products",
		jsonBody(t, map[string]any{
			"name": "Sapatilha 600", "color": "Preto", "size": "40",
		}),
		env.resellerToken,
	)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = do(t, env.server, "POST", "/v1/quick-entry", nil, env.resellerToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = do(t, env.server, "GET", "/v1/products", nil, env.resellerToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// No token at all
	resp = do(t, env.server, "GET", "/v1/products", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}
