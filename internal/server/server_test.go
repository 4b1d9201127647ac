package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	classificationservice "github.com/smallbiznis/tractionlens/internal/classification/service"
	"github.com/smallbiznis/tractionlens/internal/clock"
	"github.com/smallbiznis/tractionlens/internal/config"
	diagnosticdomain "github.com/smallbiznis/tractionlens/internal/diagnostic/domain"
	diagnosticrepository "github.com/smallbiznis/tractionlens/internal/diagnostic/repository"
	diagnosticservice "github.com/smallbiznis/tractionlens/internal/diagnostic/service"
	metricrepository "github.com/smallbiznis/tractionlens/internal/metric/repository"
	metricservice "github.com/smallbiznis/tractionlens/internal/metric/service"
	"github.com/smallbiznis/tractionlens/internal/providers/pdf"
	"github.com/smallbiznis/tractionlens/internal/ratelimit"
	"github.com/smallbiznis/tractionlens/internal/reference"
	"github.com/smallbiznis/tractionlens/internal/report/render"
	reportservice "github.com/smallbiznis/tractionlens/internal/report/service"
	"github.com/smallbiznis/tractionlens/internal/seed/seedtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testClient struct {
	t      *testing.T
	router *gin.Engine
	cookie *http.Cookie
}

func newTestServer(t *testing.T) *testClient {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn := seedtest.NewDB(t)
	log := zap.NewNop()
	ref := reference.NewRepository(conn)
	fake := clock.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	holder := config.NewStaticDiagnosticConfigHolder(config.DefaultDiagnosticConfig())
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	cfg := config.Config{
		Session: config.SessionConfig{TTL: time.Hour},
		Export:  config.ExportConfig{RatePerMinute: 1, Burst: 1},
	}

	classification := classificationservice.New(classificationservice.Params{Log: log, Repo: ref, Config: holder})
	metrics := metricservice.New(metricservice.Params{Log: log, Repo: metricrepository.Provide(conn)})

	router := gin.New()
	router.Use(ErrorHandlingMiddleware())

	NewServer(ServerParams{
		Gin:               router,
		Cfg:               cfg,
		Refrepo:           ref,
		ClassificationSvc: classification,
		MetricSvc:         metrics,
		DiagnosticSvc: diagnosticservice.New(diagnosticservice.Params{
			Log:            log,
			Store:          diagnosticrepository.NewMemoryStore(time.Hour),
			Locker:         diagnosticrepository.NewMemoryLocker(),
			Clock:          fake,
			Reference:      ref,
			Classification: classification,
			Metrics:        metrics,
		}),
		ReportSvc: reportservice.New(reportservice.Params{
			Log:       log,
			Reference: ref,
			Config:    holder,
			Clock:     fake,
			Node:      node,
			Renderer:  render.NewRenderer(),
			PDF:       pdf.New(),
		}),
		ExportLimiter: ratelimit.NewExportLimiter(ratelimit.ExportParams{Config: cfg, Log: log}),
	})

	return &testClient{t: t, router: router}
}

func (tc *testClient) do(method, path string, body any) *httptest.ResponseRecorder {
	tc.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(tc.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tc.cookie != nil {
		req.AddCookie(tc.cookie)
	}

	w := httptest.NewRecorder()
	tc.router.ServeHTTP(w, req)

	for _, ck := range w.Result().Cookies() {
		if ck.Name == diagnosticCookieName {
			tc.cookie = ck
		}
	}
	return w
}

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   errorPayload    `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func TestReferenceRoutes(t *testing.T) {
	tc := newTestServer(t)

	w := tc.do(http.MethodGet, "/api/saas-types", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var types []map[string]any
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &types))
	assert.Len(t, types, 3)

	w = tc.do(http.MethodGet, "/api/industries?saas_type_id=2&orientation_id=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var industries []map[string]any
	env := decode(t, w)
	require.NoError(t, json.Unmarshal(env.Data, &industries))
	assert.Len(t, industries, 4)
	assert.Empty(t, env.Message)

	w = tc.do(http.MethodGet, "/api/industries?saas_type_id=3&orientation_id=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no valid combination", decode(t, w).Message)

	w = tc.do(http.MethodGet, "/api/industries?saas_type_id=3", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = tc.do(http.MethodGet, "/api/metrics?growth_stage_id=2&pillar_id=1&saas_type_id=2&industry_id=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var sliders []map[string]any
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &sliders))
	assert.Len(t, sliders, 5)
	assert.Equal(t, "metric_1_14", sliders[0]["persistent_key"])
}

func TestResolveGrowthStage(t *testing.T) {
	tc := newTestServer(t)

	w := tc.do(http.MethodGet, "/api/growth-stages/resolve?revenue=1.5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var result struct {
		Determined bool `json:"determined"`
		Stages     []struct {
			ID int64 `json:"id"`
		} `json:"stages"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &result))
	assert.True(t, result.Determined)
	require.NotEmpty(t, result.Stages)
	assert.EqualValues(t, 2, result.Stages[0].ID)

	w = tc.do(http.MethodGet, "/api/growth-stages/resolve?revenue=lots", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w)
	assert.Equal(t, "validation_error", env.Error.Type)
	require.Len(t, env.Error.Errors, 1)
	assert.Equal(t, "revenue", env.Error.Errors[0].Field)
	assert.Equal(t, "invalid_revenue", env.Error.Errors[0].Code)

	w = tc.do(http.MethodGet, "/api/metrics?pillar_id=1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_growth_stage", decode(t, w).Error.Errors[0].Code)
}

func TestDiagnosticRequiresSession(t *testing.T) {
	tc := newTestServer(t)

	w := tc.do(http.MethodGet, "/api/diagnostic", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	env := decode(t, w)
	assert.Equal(t, "not_found", env.Error.Type)
	assert.Contains(t, env.Error.Message, "start a new diagnostic session")

	tc.cookie = &http.Cookie{Name: diagnosticCookieName, Value: "not-a-ulid"}
	w = tc.do(http.MethodGet, "/api/diagnostic", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDiagnosticWizardFlow(t *testing.T) {
	tc := newTestServer(t)

	w := tc.do(http.MethodPost, "/api/diagnostic/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, tc.cookie)
	assert.True(t, tc.cookie.HttpOnly)
	assert.Equal(t, 3600, tc.cookie.MaxAge)

	w = tc.do(http.MethodGet, "/api/diagnostic/report", nil)
	require.Equal(t, http.StatusConflict, w.Code)
	env := decode(t, w)
	assert.Equal(t, "step_locked", env.Error.Type)
	assert.Equal(t, "company_profile", env.Error.Errors[0].Code)

	w = tc.do(http.MethodPut, "/api/diagnostic/profile", map[string]any{
		"saas_type":      "B2C",
		"orientation":    "Horizontal",
		"industry":       "Healthcare",
		"months_existed": 36,
		"revenue":        1.5,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var profile struct {
		Qualified bool `json:"qualified"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &profile))
	assert.True(t, profile.Qualified)

	w = tc.do(http.MethodGet, "/api/diagnostic/steps/revenue_metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var view struct {
		Step    string           `json:"step"`
		Sliders []map[string]any `json:"sliders"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &view))
	assert.Equal(t, "revenue_metrics", view.Step)
	assert.Len(t, view.Sliders, 5)

	w = tc.do(http.MethodPut, "/api/diagnostic/steps/revenue_metrics/values", map[string]any{
		"values": map[string]any{"metric_1_14": 1e9},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	env = decode(t, w)
	assert.Equal(t, "metric_1_14", env.Error.Errors[0].Field)
	assert.Equal(t, "value_out_of_range", env.Error.Errors[0].Code)

	w = tc.do(http.MethodPut, "/api/diagnostic/steps/revenue_metrics/values", map[string]any{
		"values": map[string]any{"metric_1_14": 40.0},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = tc.do(http.MethodPost, "/api/diagnostic/steps/bogus/complete", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	for _, step := range []string{"revenue_metrics", "product_metrics", "system_metrics", "people_metrics"} {
		w = tc.do(http.MethodPost, "/api/diagnostic/steps/"+step+"/complete", nil)
		require.Equal(t, http.StatusOK, w.Code, "step %s: %s", step, w.Body.String())
	}

	w = tc.do(http.MethodGet, "/api/diagnostic/report", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var report struct {
		Title    string `json:"title"`
		Sections []any  `json:"sections"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &report))
	assert.Equal(t, "SaaS Traction Diagnostic Report", report.Title)
	assert.Len(t, report.Sections, 4)

	w = tc.do(http.MethodGet, "/api/diagnostic/report.md", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "traction-report-validation-seekers-2026-03-01.md")
	assert.True(t, strings.HasPrefix(w.Body.String(), "# SaaS Traction Diagnostic Report"))
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))

	w = tc.do(http.MethodGet, "/api/diagnostic/report.pdf", nil)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, "rate_limited", decode(t, w).Error.Type)
}

func TestBackAndReset(t *testing.T) {
	tc := newTestServer(t)

	require.Equal(t, http.StatusCreated, tc.do(http.MethodPost, "/api/diagnostic/sessions", nil).Code)
	w := tc.do(http.MethodPut, "/api/diagnostic/profile", map[string]any{
		"saas_type":      "B2C",
		"orientation":    "Horizontal",
		"industry":       "Healthcare",
		"months_existed": 36,
		"revenue":        1.5,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = tc.do(http.MethodPost, "/api/diagnostic/back", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var session struct {
		CurrentStep string `json:"current_step"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &session))
	assert.Equal(t, "company_profile", session.CurrentStep)

	w = tc.do(http.MethodDelete, "/api/diagnostic", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, -1, tc.cookie.MaxAge)
}

func TestMapError(t *testing.T) {
	status, payload := mapError(ErrRateLimited)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, "rate_limited", payload.Type)

	errType, code := classifyErrorForLog(invalidRequestError())
	assert.Equal(t, "validation_error", errType)
	assert.Equal(t, "invalid_request", code)

	status, _ = mapError(assert.AnError)
	assert.Equal(t, http.StatusInternalServerError, status)
}

func TestMapErrorSuggestsRecovery(t *testing.T) {
	status, payload := mapError(fmt.Errorf("load: %w", diagnosticdomain.ErrSessionNotFound))
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not_found", payload.Type)
	assert.Contains(t, payload.Message, "start a new diagnostic session")

	status, payload = mapError(diagnosticdomain.ErrSessionBusy)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "conflict", payload.Type)
	assert.Contains(t, payload.Message, "retry shortly")

	_, payload = mapError(ErrRateLimited)
	assert.Contains(t, payload.Message, "retry shortly")
}
