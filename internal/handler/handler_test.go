package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpgo/retirement-projector/internal/calculation"
	"github.com/rpgo/retirement-projector/internal/domain"
	"github.com/rpgo/retirement-projector/internal/featureflag"
	"github.com/rpgo/retirement-projector/internal/service"
)

const baselineJSON = `{"currentAge": 30, "retirementAge": 65, "currentSavings": 50000, "monthlyContribution": 500,
	"annualReturn": 7, "inflationRate": 3, "desiredIncome": 60000, "lifeExpectancy": 90}`

func newTestServer(t *testing.T, flagOn bool) (http.Handler, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	flags := featureflag.NewStaticSource(map[string]bool{featureflag.InflationAdjuster: flagOn})
	svc := service.NewProjectionService(calculation.NewCalculationEngine(), flags, service.Options{Logger: logger})
	return NewHandler(svc, logger).Router(nil), hook
}

func do(h http.Handler, method, target, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCalculate(t *testing.T) {
	h, _ := newTestServer(t, false)
	rec := do(h, http.MethodPost, "/calculate", "application/json", baselineJSON)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var res domain.ProjectionResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "1389535.89", res.TotalSavingsAtRetirement.StringFixed(2))
	assert.Equal(t, "876519.01", res.RequiredSavings.StringFixed(2))
	assert.True(t, res.IsSufficient)
	assert.False(t, res.InflationAdjustmentEnabled)
}

func TestCalculate_FlagOn(t *testing.T) {
	h, _ := newTestServer(t, true)
	rec := do(h, http.MethodPost, "/calculate", "application/json", baselineJSON)
	require.Equal(t, http.StatusOK, rec.Code)

	var res domain.ProjectionResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "968820.81", res.RequiredSavings.StringFixed(2))
	assert.True(t, res.InflationAdjustmentEnabled)
}

func TestCalculate_BadRequests(t *testing.T) {
	h, _ := newTestServer(t, false)

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"empty body", "", "request body is empty"},
		{"malformed JSON", "{", "malformed JSON"},
		{"non-numeric field", strings.Replace(baselineJSON, `"currentAge": 30`, `"currentAge": "thirty"`, 1), "malformed JSON"},
		{"missing field", strings.Replace(baselineJSON, `"lifeExpectancy": 90`, `"lifeExpectancy": null`, 1), "lifeExpectancy is required"},
		{"retirement before current age", strings.Replace(baselineJSON, `"retirementAge": 65`, `"retirementAge": 25`, 1), "retirement_age"},
		{"return of -100%", strings.Replace(baselineJSON, `"annualReturn": 7`, `"annualReturn": -100`, 1), "annual_return_rate"},
		{"savings beyond float range", strings.Replace(baselineJSON, `"currentSavings": 50000`, `"currentSavings": 1e400`, 1), "current_savings"},
		{"life expectancy past the age ceiling", strings.Replace(baselineJSON, `"lifeExpectancy": 90`, `"lifeExpectancy": 100000`, 1), "life_expectancy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(h, http.MethodPost, "/calculate", "application/json", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var body errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Contains(t, body.Error, tt.wantErr)
		})
	}
}

func TestCalculate_MethodNotAllowed(t *testing.T) {
	h, _ := newTestServer(t, false)
	rec := do(h, http.MethodGet, "/calculate", "", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

type brokenService struct{ *service.ProjectionService }

func (brokenService) Project(context.Context, domain.ProjectionRequest) (domain.ProjectionResult, error) {
	return domain.ProjectionResult{}, errors.New("disk on fire")
}

func TestCalculate_InternalError(t *testing.T) {
	logger, hook := test.NewNullLogger()
	svc := brokenService{service.NewProjectionService(calculation.NewCalculationEngine(), featureflag.NewStaticSource(nil), service.Options{})}
	h := NewHandler(svc, logger).Router(nil)

	rec := do(h, http.MethodPost, "/calculate", "application/json", baselineJSON)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "disk on fire")

	var logged bool
	for _, e := range hook.AllEntries() {
		if e.Message == "request failed" {
			logged = true
			assert.Equal(t, "disk on fire", e.Data[logrus.ErrorKey].(error).Error())
		}
	}
	assert.True(t, logged)
}

func TestSavingsGoalEndpoint(t *testing.T) {
	h, _ := newTestServer(t, true)
	body := `{"targetAmount": 1000000, "years": 30, "annualReturn": 7, "inflationRate": 2.5, "adjustForInflation": true}`
	rec := do(h, http.MethodPost, "/savings-goal", "application/json", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res domain.SavingsGoalResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "22205.70", res.AnnualContribution.StringFixed(2))
	assert.Equal(t, "2097567.58", res.AdjustedTarget.StringFixed(2))

	rec = do(h, http.MethodPost, "/savings-goal", "application/json", `{"targetAmount": 0, "years": 30, "annualReturn": 7}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckFeatureFlag(t *testing.T) {
	h, _ := newTestServer(t, true)
	rec := do(h, http.MethodGet, "/check-feature-flag", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"inflation_enabled": true, "error": null}`, rec.Body.String())
}

type erroringFlags struct{}

func (erroringFlags) BoolVariation(context.Context, string, bool) (bool, error) {
	return false, errors.New("client not initialized")
}

func TestCheckFeatureFlag_Error(t *testing.T) {
	logger, _ := test.NewNullLogger()
	svc := service.NewProjectionService(calculation.NewCalculationEngine(), erroringFlags{}, service.Options{Logger: logger})
	h := NewHandler(svc, logger).Router(nil)

	rec := do(h, http.MethodGet, "/check-feature-flag", "", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"inflation_enabled": false, "error": "client not initialized"}`, rec.Body.String())
}

func TestCheckFeatureFlag_WatcherRefreshFailed(t *testing.T) {
	logger, _ := test.NewNullLogger()
	w, err := featureflag.NewWatcher(erroringFlags{}, featureflag.InflationAdjuster, false, "@every 1h", logger)
	require.NoError(t, err)
	w.Refresh(context.Background())

	svc := service.NewProjectionService(calculation.NewCalculationEngine(), w, service.Options{Logger: logger})
	h := NewHandler(svc, logger).Router(nil)

	rec := do(h, http.MethodGet, "/check-feature-flag", "", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"inflation_enabled": false, "error": "client not initialized"}`, rec.Body.String())

	rec = do(h, http.MethodPost, "/calculate", "application/json", baselineJSON)
	assert.Equal(t, http.StatusOK, rec.Code, "projections still run on the last good value")
}

func TestIndex_InflationFieldFollowsFlag(t *testing.T) {
	off, _ := newTestServer(t, false)
	rec := do(off, http.MethodGet, "/", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `name="current_age"`)
	assert.NotContains(t, rec.Body.String(), `name="inflation_rate"`)

	on, _ := newTestServer(t, true)
	rec = do(on, http.MethodGet, "/", "", "")
	assert.Contains(t, rec.Body.String(), `name="inflation_rate"`)
}

func formBody(values map[string]string) string {
	v := url.Values{}
	for k, val := range values {
		v.Set(k, val)
	}
	return v.Encode()
}

func baselineForm() map[string]string {
	return map[string]string{
		"current_age":          "30",
		"retirement_age":       "65",
		"current_savings":      "$50,000",
		"monthly_contribution": "500",
		"annual_return":        "7%",
		"inflation_rate":       "3",
		"desired_income":       "60,000",
		"life_expectancy":      "90",
	}
}

func TestSubmitProjection(t *testing.T) {
	h, _ := newTestServer(t, false)
	rec := do(h, http.MethodPost, "/", "application/x-www-form-urlencoded", formBody(baselineForm()))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := rec.Body.String()
	assert.Contains(t, body, "$1,389,535.89")
	assert.Contains(t, body, "$876,519.01")
	assert.Contains(t, body, "You are on track.")
	assert.Contains(t, body, "2.00% (default)")
}

func TestSubmitProjection_Shortfall(t *testing.T) {
	h, _ := newTestServer(t, false)
	form := baselineForm()
	form["annual_return"] = "0"
	rec := do(h, http.MethodPost, "/", "application/x-www-form-urlencoded", formBody(form))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<td id="shortfall">$1,679,371.66</td>`)
}

func TestSubmitProjection_InvalidNumber(t *testing.T) {
	h, _ := newTestServer(t, false)
	form := baselineForm()
	form["current_age"] = "thirty"
	rec := do(h, http.MethodPost, "/", "application/x-www-form-urlencoded", formBody(form))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "current_age must be a number")
	assert.Contains(t, rec.Body.String(), `value="thirty"`, "form is re-rendered as entered")
}

func TestAnnualSavingsPages(t *testing.T) {
	h, _ := newTestServer(t, true)

	rec := do(h, http.MethodGet, "/annual-savings", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="adjust_for_inflation"`)

	form := map[string]string{
		"annual_savings":       "10000",
		"interest_rate":        "5",
		"years":                "30",
		"inflation_rate":       "2",
		"adjust_for_inflation": "on",
	}
	rec = do(h, http.MethodPost, "/annual-savings", "application/x-www-form-urlencoded", formBody(form))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "$485,106.50")
	assert.Contains(t, rec.Body.String(), "in today's dollars")

	delete(form, "adjust_for_inflation")
	rec = do(h, http.MethodPost, "/annual-savings", "application/x-www-form-urlencoded", formBody(form))
	assert.Contains(t, rec.Body.String(), "$697,607.90")

	form["years"] = "thirty"
	rec = do(h, http.MethodPost, "/annual-savings", "application/x-www-form-urlencoded", formBody(form))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "years must be a whole number")
}

func TestHealthz(t *testing.T) {
	h, _ := newTestServer(t, false)
	rec := do(h, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestRequestIDAndAccessLog(t *testing.T) {
	h, hook := newTestServer(t, false)

	rec := do(h, http.MethodGet, "/healthz", "", "")
	id := rec.Header().Get(RequestIDHeader)
	assert.Len(t, id, 36)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "request completed", entry.Message)
	assert.Equal(t, id, entry.Data["request_id"])
	assert.Equal(t, http.StatusOK, entry.Data["status"])
	assert.Equal(t, "/healthz", entry.Data["path"])

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "6f1c2a4e-3b7d-4e8a-9c0f-1a2b3c4d5e6f")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "6f1c2a4e-3b7d-4e8a-9c0f-1a2b3c4d5e6f", rec.Header().Get(RequestIDHeader))
}

func TestRateLimitedRouter(t *testing.T) {
	logger, _ := test.NewNullLogger()
	svc := service.NewProjectionService(calculation.NewCalculationEngine(), featureflag.NewStaticSource(nil), service.Options{})
	limiter := NewRateLimiter(2, time.Hour)
	defer limiter.Stop()
	h := NewHandler(svc, logger).Router(limiter)

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/check-feature-flag", "", "").Code)
	}
	rec := do(h, http.MethodGet, "/check-feature-flag", "", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "3600", rec.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/healthz", "", "").Code, "health checks are not limited")
}
