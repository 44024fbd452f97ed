package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/piwi3910/matcalc/internal/config"
	"github.com/piwi3910/matcalc/internal/model"
	"github.com/piwi3910/matcalc/internal/project"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const scenarioRod = `{"shape":"circle","diameter":10,"productLength":100,"quantity":100,
"cuttingLoss":2,"headCut":20,"tailCut":250,"standardBarLength":2500,
"materialDensity":7850,"materialPrice":7000}`

type testEnv struct {
	srv     *Server
	router  *gin.Engine
	history *project.OrderHistory
}

func newTestEnv(t *testing.T, mutate ...func(*Options)) *testEnv {
	t.Helper()
	history := project.NewOrderHistory(project.NewMemoryStore())
	opts := Options{
		Version:  "test",
		Mode:     gin.TestMode,
		Catalog:  model.DefaultCatalog(),
		Defaults: model.FactoryDefaults(),
		History:  history,
	}
	for _, m := range mutate {
		m(&opts)
	}
	srv := New(zap.NewNop(), opts)
	return &testEnv{srv: srv, router: srv.Router(), history: history}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/api/v1/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[healthResponse](t, w)
	assert.Equal(t, healthResponse{Status: "ok", Version: "test", Store: "memory"}, resp)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRequestIDPropagated(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodOptions, "/api/v1/calculate/rod", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCalculateRod_Scenario(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodPost, "/api/v1/calculate/rod", scenarioRod)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	res := decode[model.CalculationResult](t, w)
	assert.Equal(t, 5, res.BarsNeeded)
	assert.Equal(t, 21, res.PiecesPerBar)
	assert.InDelta(t, 7.70672, res.StockWeightKg, 1e-4)
	assert.InDelta(t, 53947, res.MaterialCost, 1)
	assert.InDelta(t, 91.48, res.UtilizationRate, 0.01)
	assert.False(t, res.ScrapActive())
	assert.NotNil(t, res.Warnings)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	assert.Contains(t, raw, "materialCost")
	assert.NotContains(t, raw, "totalCost", "responses use canonical names only")
	assert.NotContains(t, raw, "scrapWeight")
}

func TestCalculateRod_ScrapAlias(t *testing.T) {
	env := newTestEnv(t)
	body := strings.TrimSuffix(scenarioRod, "}") + `,"actualProductWeight":55,"recoveryRatio":90,"scrapPrice":5600}`
	w := env.do(t, http.MethodPost, "/api/v1/calculate/rod", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	res := decode[model.CalculationResult](t, w)
	require.True(t, res.ScrapActive(), "scrapPrice should be accepted for scrapUnitPrice")
	assert.Greater(t, *res.ScrapSavings, 0.0)
	assert.InDelta(t, res.MaterialCost-*res.ScrapSavings, *res.RealCost, 1e-6)
}

func TestCalculateRod_Errors(t *testing.T) {
	env := newTestEnv(t)
	tests := []struct {
		name   string
		body   string
		status int
		kind   string
		field  string
	}{
		{"empty body", "", http.StatusBadRequest, "invalid_input", "body"},
		{"malformed", "{", http.StatusBadRequest, "invalid_input", "body"},
		{"wrong type", `{"quantity":"many"}`, http.StatusBadRequest, "invalid_input", "quantity"},
		{"unknown shape", strings.Replace(scenarioRod, "circle", "triangle", 1), http.StatusBadRequest, "unknown_shape", "shape"},
		{"zero quantity", strings.Replace(scenarioRod, `"quantity":100`, `"quantity":0`, 1), http.StatusBadRequest, "invalid_input", "quantity"},
		{"infeasible", strings.Replace(scenarioRod, `"productLength":100`, `"productLength":5000`, 1), http.StatusUnprocessableEntity, "infeasible_cut", "productLength"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/v1/calculate/rod", tt.body)
			require.Equal(t, tt.status, w.Code, w.Body.String())
			resp := decode[ErrorResponse](t, w)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.kind, resp.Kind)
			assert.Equal(t, tt.field, resp.Field)
			assert.NotEmpty(t, resp.Message)
			assert.NotNil(t, resp.Suggestions)
		})
	}
}

func TestCalculateRod_ShapeCaseInsensitive(t *testing.T) {
	env := newTestEnv(t)
	body := strings.Replace(scenarioRod, `"shape":"circle"`, `"shape":"Circle"`, 1)
	w := env.do(t, http.MethodPost, "/api/v1/calculate/rod", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 5, decode[model.CalculationResult](t, w).BarsNeeded)

	w = env.do(t, http.MethodPost, "/api/v1/calculate/cutplan", strings.Replace(scenarioRod, `"circle"`, `" HEXAGON "`, 1))
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestCalculate_HugeQuantityRejected(t *testing.T) {
	env := newTestEnv(t)
	body := strings.Replace(scenarioRod, `"quantity":100`, fmt.Sprintf(`"quantity":%d`, math.MaxInt64), 1)
	for _, path := range []string{"/api/v1/calculate/rod", "/api/v1/calculate/cutplan"} {
		w := env.do(t, http.MethodPost, path, body)
		require.Equal(t, http.StatusBadRequest, w.Code, "%s: %s", path, w.Body.String())
		resp := decode[ErrorResponse](t, w)
		assert.Equal(t, "invalid_input", resp.Kind, path)
		assert.Equal(t, "quantity", resp.Field, path)
	}

	plate := fmt.Sprintf(`{"plateThickness":10,"plateWidth":100,"plateLength":200,"quantity":%d,"materialDensity":7850,"plateUnitPrice":7000}`, math.MaxInt64)
	w := env.do(t, http.MethodPost, "/api/v1/calculate/plate", plate)
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
}

func TestCalculatePlate_Aliases(t *testing.T) {
	env := newTestEnv(t)
	body := `{"thickness":10,"width_plate":100,"length_plate":100,"quantity":1,"materialDensity":7850,"plateUnitPrice":7000}`
	w := env.do(t, http.MethodPost, "/api/v1/calculate/plate", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	res := decode[model.CalculationResult](t, w)
	assert.True(t, res.IsPlate)
	assert.InDelta(t, 0.785, res.StockWeightKg, 1e-9)
	assert.Zero(t, res.BarsNeeded)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	assert.NotContains(t, raw, "barsNeeded")
}

func TestCalculateScrap(t *testing.T) {
	env := newTestEnv(t)
	body := `{"totalWeight":7.70672,"materialCost":53947.04,"quantity":100,"actualProductWeight":55,"recoveryRatio":100,"scrapUnitPrice":5600}`
	w := env.do(t, http.MethodPost, "/api/v1/calculate/scrap", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	res := decode[model.ScrapResult](t, w)
	assert.InDelta(t, 7.70672-5.5, res.ScrapWeight, 1e-9)
	assert.InDelta(t, res.ScrapWeight*5600, res.ScrapSavings, 1e-6)
	assert.InDelta(t, res.RealCost/100, res.UnitCost, 1e-9)

	w = env.do(t, http.MethodPost, "/api/v1/calculate/scrap", `{"totalWeight":7.7,"totalCost":53900,"quantity":100,"recoveryRatio":100}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res = decode[model.ScrapResult](t, w)
	assert.Zero(t, res.ScrapWeight)
	assert.Equal(t, 53900.0, res.RealCost)
	require.NotNil(t, res.UpdatedTotalWeight)
	assert.Equal(t, 7.7, *res.UpdatedTotalWeight)
}

func TestCalculateScrap_UnitCostAlias(t *testing.T) {
	env := newTestEnv(t)
	body := `{"totalWeight":10,"costPerPiece":700,"quantity":100,"actualProductWeight":50,"recoveryRatio":50,"scrapPrice":1000}`
	w := env.do(t, http.MethodPost, "/api/v1/calculate/scrap", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	res := decode[model.ScrapResult](t, w)
	// total cost 70000, scrap 5 kg at 1000 with 50% recovery = 2500
	assert.InDelta(t, 2500, res.ScrapSavings, 1e-9)
	assert.InDelta(t, 67500, res.RealCost, 1e-9)

	w = env.do(t, http.MethodPost, "/api/v1/calculate/scrap", `{"totalWeight":10,"quantity":1,"actualProductWeight":1,"recoveryRatio":1,"scrapUnitPrice":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "totalCost", decode[ErrorResponse](t, w).Field)
}

func TestCutPlanAndCompare(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/calculate/cutplan", scenarioRod)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"piecesPerBar":21`)
	assert.Contains(t, w.Body.String(), `"usedLength":`)
	plan := decode[model.CutPlan](t, w)
	require.Len(t, plan.Bars, 5)
	assert.Equal(t, 100, plan.TotalPieces())
	assert.InDelta(t, 598, plan.Bars[4].Remnant, 1e-9)

	w = env.do(t, http.MethodPost, "/api/v1/calculate/compare", scenarioRod)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cmp := decode[compareResponse](t, w)
	require.NotEmpty(t, cmp.Scenarios)
	assert.Equal(t, "Current Settings", cmp.Scenarios[0].Name)
	assert.GreaterOrEqual(t, cmp.Best, 0)
	for _, sc := range cmp.Scenarios {
		assert.True(t, (sc.Result == nil) != (sc.Error == nil), sc.Name)
	}
}

func TestValidate(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/validate", scenarioRod)
	require.Equal(t, http.StatusOK, w.Code)
	summary := decode[model.ValidationSummary](t, w)
	assert.True(t, summary.Valid)

	bad := strings.Replace(scenarioRod, `"standardBarLength":2500`, `"standardBarLength":50`, 1)
	summary = decode[model.ValidationSummary](t, env.do(t, http.MethodPost, "/api/v1/validate", bad))
	assert.False(t, summary.Valid)
	assert.NotEmpty(t, summary.Errors)

	plate := `{"thickness":0.1,"plateWidth":100,"plateLength":100,"quantity":1,"materialDensity":7850,"plateUnitPrice":7000}`
	summary = decode[model.ValidationSummary](t, env.do(t, http.MethodPost, "/api/v1/validate", plate))
	assert.True(t, summary.Valid)
	assert.NotEmpty(t, summary.Warnings, "thin plate should warn")

	assert.True(t, isPlateRequest(map[string]json.RawMessage{"form": json.RawMessage(`"plate"`)}))
	assert.False(t, isPlateRequest(map[string]json.RawMessage{"form": json.RawMessage(`"rod"`), "plateWidth": json.RawMessage(`1`)}))
}

func TestQuoteRod_SavesToHistory(t *testing.T) {
	env := newTestEnv(t)
	body := `{"materialKey":"steel","shape":"circle","diameter":10,"productLength":100,"quantity":100,"cuttingLoss":2,
"order":{"customer":"ACME","productName":"Pin"}}`
	w := env.do(t, http.MethodPost, "/api/v1/quote/rod", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[quoteResponse](t, w)
	require.NotNil(t, resp.Rod)
	assert.Equal(t, 20.0, resp.Rod.HeadCut, "head cut comes from the defaults")
	assert.Equal(t, 250.0, resp.Rod.TailCut)
	assert.InDelta(t, 7850, resp.Rod.MaterialDensity, 1e-6)
	assert.Equal(t, 5, resp.Result.BarsNeeded)
	require.NotNil(t, resp.CutPlan)
	require.NotNil(t, resp.Order)
	assert.Equal(t, "ACME", resp.Order.Customer)

	stored, err := env.history.Get(t.Context(), resp.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, "steel", stored.MaterialKey)
	assert.Equal(t, model.RoundCurrency(resp.Result.MaterialCost), stored.MaterialCost)
}

func TestQuote_SaveDisabled(t *testing.T) {
	env := newTestEnv(t)
	body := `{"materialKey":"aluminum","plateThickness":10,"plateWidth":100,"plateLength":100,"quantity":2}`
	w := env.do(t, http.MethodPost, "/api/v1/quote/plate?save=false", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Nil(t, decode[quoteResponse](t, w).Order)

	env = newTestEnv(t, func(o *Options) { o.Defaults.SaveHistory = false })
	w = env.do(t, http.MethodPost, "/api/v1/quote/plate", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decode[quoteResponse](t, w).Order)

	orders, err := env.history.List(t.Context())
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestQuote_UnknownMaterialFallsBack(t *testing.T) {
	env := newTestEnv(t)
	body := `{"materialKey":"unobtainium","plateThickness":10,"plateWidth":100,"plateLength":100,"quantity":1}`
	w := env.do(t, http.MethodPost, "/api/v1/quote/plate?save=false", body)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[quoteResponse](t, w)
	assert.Equal(t, model.FallbackMaterialKey, resp.MaterialKey)
	var fields []string
	for _, warn := range resp.Result.Warnings {
		fields = append(fields, warn.Field)
	}
	assert.Contains(t, fields, "materialKey")
}

func TestMaterials(t *testing.T) {
	catalogPath := filepath.Join(t.TempDir(), "catalog.json")
	env := newTestEnv(t, func(o *Options) { o.CatalogPath = catalogPath })

	w := env.do(t, http.MethodGet, "/api/v1/materials", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[model.Catalog](t, w).Materials, len(model.DefaultCatalog().Materials))

	w = env.do(t, http.MethodGet, "/api/v1/materials/brass", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 8.5, decode[model.MaterialDefaults](t, w).Density)

	w = env.do(t, http.MethodGet, "/api/v1/materials/copper", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decode[ErrorResponse](t, w).Kind)

	copper := `{"key":"ignored","name":"C1100","standardBarLength":2500,"materialDensity":8.96,"barUnitPrice":12000,"plateUnitPrice":12500,"scrapUnitPrice":9000}`
	w = env.do(t, http.MethodPut, "/api/v1/materials/copper", copper)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "copper", decode[model.MaterialDefaults](t, w).Key)

	w = env.do(t, http.MethodGet, "/api/v1/materials/copper", "")
	require.Equal(t, http.StatusOK, w.Code)

	saved, err := project.LoadCatalog(catalogPath)
	require.NoError(t, err)
	_, ok := saved.Lookup("copper")
	assert.True(t, ok, "catalog edits are persisted")

	w = env.do(t, http.MethodPut, "/api/v1/materials/bad", `{"name":"x","standardBarLength":2500}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "materialDensity", decode[ErrorResponse](t, w).Field)
}

func TestDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "defaults.json")
	env := newTestEnv(t, func(o *Options) { o.DefaultsPath = path })

	w := env.do(t, http.MethodPut, "/api/v1/defaults", `{"headCut":5}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decode[model.DefaultsConfig](t, w)
	assert.Equal(t, 5.0, got.HeadCut)
	assert.Equal(t, 250.0, got.TailCut, "missing keys keep their values")

	saved, err := project.LoadDefaults(path)
	require.NoError(t, err)
	assert.Equal(t, 5.0, saved.HeadCut)

	w = env.do(t, http.MethodPut, "/api/v1/defaults", `{"tailCut":-1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 250.0, decode[model.DefaultsConfig](t, env.do(t, http.MethodGet, "/api/v1/defaults", "")).TailCut)
}

func TestOrders(t *testing.T) {
	env := newTestEnv(t)
	rod := `{"materialKey":"steel","shape":"circle","diameter":10,"productLength":100,"quantity":100,"cuttingLoss":2}`
	plate := `{"materialKey":"steel","plateThickness":10,"plateWidth":100,"plateLength":100,"quantity":1}`

	rodOrder := decode[quoteResponse](t, env.do(t, http.MethodPost, "/api/v1/quote/rod", rod)).Order
	plateOrder := decode[quoteResponse](t, env.do(t, http.MethodPost, "/api/v1/quote/plate", plate)).Order
	require.NotNil(t, rodOrder)
	require.NotNil(t, plateOrder)

	w := env.do(t, http.MethodGet, "/api/v1/orders", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]model.OrderRecord](t, w), 2)

	w = env.do(t, http.MethodGet, "/api/v1/orders/"+rodOrder.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, rodOrder.ID, decode[model.OrderRecord](t, w).ID)

	w = env.do(t, http.MethodGet, "/api/v1/orders/export.json", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".json")
	assert.Len(t, decode[[]model.OrderRecord](t, w), 2)

	w = env.do(t, http.MethodGet, "/api/v1/orders/export.xlsx", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, mimeXLSX, w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")), "xlsx is a zip archive")

	w = env.do(t, http.MethodGet, "/api/v1/orders/"+rodOrder.ID+"/quote.pdf", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))

	w = env.do(t, http.MethodGet, "/api/v1/orders/"+plateOrder.ID+"/quote.pdf", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodGet, "/api/v1/orders/"+rodOrder.ID+"/tags.pdf", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, mimePDF, w.Header().Get("Content-Type"))

	w = env.do(t, http.MethodGet, "/api/v1/orders/"+plateOrder.ID+"/tags.pdf", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodDelete, "/api/v1/orders/"+rodOrder.ID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = env.do(t, http.MethodGet, "/api/v1/orders/"+rodOrder.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = env.do(t, http.MethodDelete, "/api/v1/orders/"+rodOrder.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodDelete, "/api/v1/orders", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]int{"deleted": 1}, decode[map[string]int](t, w))
}

func TestOrders_NoHistory(t *testing.T) {
	env := newTestEnv(t, func(o *Options) { o.History = nil })
	w := env.do(t, http.MethodGet, "/api/v1/orders", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/health", "")
	assert.Equal(t, "none", decode[healthResponse](t, w).Store)
}

func TestRateLimit(t *testing.T) {
	env := newTestEnv(t, func(o *Options) { o.RateLimit = config.RateLimitConfig{RPS: 0.001, Burst: 2} })

	for i := 0; i < 2; i++ {
		w := env.do(t, http.MethodGet, "/api/v1/health", "")
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := env.do(t, http.MethodGet, "/api/v1/health", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "rate_limited", decode[ErrorResponse](t, w).Kind)
}

func TestIPRateLimiter_PerIP(t *testing.T) {
	l := NewIPRateLimiter(0.001, 1)
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.2"), "each IP has its own bucket")
}

func TestIPRateLimiter_Sweep(t *testing.T) {
	l := NewIPRateLimiter(0.001, 1)
	assert.True(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.2"))
	require.Equal(t, 2, l.Len())

	assert.Zero(t, l.Sweep(time.Now().Add(-time.Minute)), "recent clients stay")
	assert.Equal(t, 2, l.Sweep(time.Now().Add(time.Second)))
	assert.Zero(t, l.Len())
	assert.True(t, l.Allow("10.0.0.1"), "a swept client starts with a full bucket")
}

func TestIPRateLimiter_RunSweeper(t *testing.T) {
	l := NewIPRateLimiter(1, 1)
	l.Allow("10.0.0.1")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		l.RunSweeper(ctx, 5*time.Millisecond, time.Nanosecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return l.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}

func TestSnapshotUpdate(t *testing.T) {
	s := newSnapshot(1)
	v, err := s.Update(func(cur int) (int, error) { return cur + 1, nil })
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	_, err = s.Update(func(cur int) (int, error) { return 0, assert.AnError })
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 2, s.Load(), "failed updates keep the old value")
}
