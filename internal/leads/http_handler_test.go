package leads

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rpattn/leadflow/internal/domain"
	"github.com/rpattn/leadflow/internal/middleware"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	service, repo := newTestService(t)
	mux := http.NewServeMux()
	NewHTTPHandler(service).Register(mux)
	return middleware.DataLoaderMiddleware(repo)(mux)
}

func doJSON(t *testing.T, handler http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	req := httptest.NewRequest(method, target, &payload)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandlerLeadLifecycle(t *testing.T) {
	handler := newTestHandler(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/leads", map[string]any{
		"company":    "Acme AS",
		"org_number": "999",
		"status":     "Ny",
		"kwp":        42,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created domain.Lead
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.True(t, created.IsPersisted())

	rec = doJSON(t, handler, http.MethodGet, "/api/leads/"+created.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, handler, http.MethodPut, "/api/leads/"+created.ID.String(), map[string]any{
		"company":    "Acme AS",
		"org_number": "999",
		"status":     "Kvalifisert",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated domain.Lead
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "Kvalifisert", updated.Status)
	assert.Nil(t, updated.Kwp)

	rec = doJSON(t, handler, http.MethodGet, "/api/leads?limit=10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page Page
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Total)
	require.Len(t, page.Leads, 1)

	rec = doJSON(t, handler, http.MethodDelete, "/api/leads/"+created.ID.String(), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/api/leads/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerErrorMapping(t *testing.T) {
	handler := newTestHandler(t)

	lead := map[string]any{"company": "Acme AS", "org_number": "999", "status": "Ny"}
	require.Equal(t, http.StatusCreated, doJSON(t, handler, http.MethodPost, "/api/leads", lead).Code)

	assert.Equal(t, http.StatusConflict, doJSON(t, handler, http.MethodPost, "/api/leads", lead).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(t, handler, http.MethodPost, "/api/leads", map[string]any{"company": "Acme AS"}).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(t, handler, http.MethodGet, "/api/leads/not-a-uuid", nil).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(t, handler, http.MethodPut, "/api/leads/"+uuid.NewString(), lead).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(t, handler, http.MethodGet, "/api/leads?offset=-3", nil).Code)

	req := httptest.NewRequest(http.MethodPost, "/api/leads", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerDashboardRoutes(t *testing.T) {
	handler := newTestHandler(t)

	for _, org := range []string{"1", "2"} {
		rec := doJSON(t, handler, http.MethodPost, "/api/leads", map[string]any{
			"company": "Firma " + org, "org_number": org, "status": domain.QualifiedStatus, "kwp": 10, "ppa_price": 0.5,
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := doJSON(t, handler, http.MethodGet, "/api/leads/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var metrics domain.LeadMetrics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &metrics))
	assert.Equal(t, domain.LeadMetrics{TotalLeads: 2, AvgKwp: 10, AvgPpaPrice: 0.5, QualifiedLeads: 2}, metrics)

	rec = doJSON(t, handler, http.MethodGet, "/api/leads/charts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var charts domain.LeadCharts
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &charts))
	assert.Equal(t, []domain.CountBucket{{Name: "Nettside", Value: 2}}, charts.Sources)
	assert.Len(t, charts.Prices, 2)

	rec = doJSON(t, handler, http.MethodGet, "/api/leads/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "leads-2024-06-03.xlsx")
	assert.NotZero(t, rec.Body.Len())
}
