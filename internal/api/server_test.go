package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"kickpredict/domain/campaign"
	"kickpredict/domain/core"
	"kickpredict/domain/verdict"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// predictorFunc adapts a function to ports.Predictor
type predictorFunc func(ctx context.Context, in campaign.Input) (verdict.Verdict, error)

func (f predictorFunc) Predict(ctx context.Context, in campaign.Input) (verdict.Verdict, error) {
	return f(ctx, in)
}

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(t *testing.T, p predictorFunc, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	router := NewRouter(p, nil)
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := serve(t, nil, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestPredict_OK(t *testing.T) {
	var got campaign.Input
	p := predictorFunc(func(ctx context.Context, in campaign.Input) (verdict.Verdict, error) {
		got = in
		v := verdict.Decide(0.7)
		return v, nil
	})

	body := `{"name":"A B C","main_category":"Games","country":"US","deadline":"21/01/2020",
		"launched":"01/01/2020","usd_pledged_real":0,"usd_goal_real":2000}`
	rec := serve(t, p, http.MethodPost, "/predict", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var v verdict.Verdict
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	assert.Equal(t, verdict.LabelSuccess, v.Label)
	assert.Equal(t, 70.0, v.ProbabilityPercent)

	require.NotNil(t, got.USDPledgedReal)
	assert.Equal(t, 0.0, *got.USDPledgedReal)
	assert.Equal(t, "Games", got.MainCategory)
}

func TestPredict_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		kind   string
		field  string
	}{
		{"missing field", core.NewMissingFieldError("deadline"), http.StatusUnprocessableEntity, "missing_field", "deadline"},
		{"invalid field", &core.InvalidFieldError{Field: "usd_goal_real", Reason: "must be greater than 0"}, http.StatusUnprocessableEntity, "invalid_field", "usd_goal_real"},
		{"date parse", &core.DateParseError{Field: "launched", Value: "x"}, http.StatusUnprocessableEntity, "date_parse", "launched"},
		{"date range", &core.InvalidDateRangeError{Days: -1}, http.StatusUnprocessableEntity, "invalid_date_range", ""},
		{"model unavailable", core.NewModelUnavailableError("model", errors.New("missing")), http.StatusServiceUnavailable, "model_unavailable", ""},
		{"internal", errors.New("boom"), http.StatusInternalServerError, "internal", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := predictorFunc(func(ctx context.Context, in campaign.Input) (verdict.Verdict, error) {
				return verdict.Verdict{}, tt.err
			})
			rec := serve(t, p, http.MethodPost, "/predict", `{}`)
			assert.Equal(t, tt.status, rec.Code)

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.kind, body.Kind)
			assert.Equal(t, tt.field, body.Field)
		})
	}
}

func TestPredict_BadJSON(t *testing.T) {
	rec := serve(t, nil, http.MethodPost, "/predict", `{"usd_goal_real":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := serve(t, nil, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
