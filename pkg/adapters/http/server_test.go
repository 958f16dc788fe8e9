package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvalim/lattice/pkg/adapters/memory"
	"github.com/nvalim/lattice/pkg/domain"
	"github.com/nvalim/lattice/pkg/ports"
)

func strPtr(s string) *string { return &s }

func newTestServer(t *testing.T) (http.Handler, *memory.TemplateStore, *memory.InventorySource, *memory.SubmissionSink) {
	t.Helper()
	templates := memory.NewTemplateStore()
	inventory := memory.NewInventorySource()
	sink := memory.NewSubmissionSink()
	handler := NewHandler(templates, inventory, sink,
		WithMetricsRegistry(prometheus.NewRegistry()),
	)
	return handler, templates, inventory, sink
}

func seedTemplate(t *testing.T, store *memory.TemplateStore) {
	t.Helper()
	g := domain.NewFormGraph()
	g.RootStepID = "q1"
	g.Steps["q1"] = &domain.Step{ID: "q1", Type: domain.StepText, Question: "Name?", NextStepID: strPtr("end")}
	g.Steps["end"] = &domain.Step{ID: "end", Type: domain.StepConclusion, ThankYouMessage: "Thanks!"}
	require.NoError(t, store.Save(context.Background(), "orders", &ports.Template{Name: "Orders", Graph: g}))
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestServer_Health(t *testing.T) {
	handler, _, _, _ := newTestServer(t)
	rec := doJSON(t, handler, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestServer_TemplateRoundTrip(t *testing.T) {
	handler, _, _, _ := newTestServer(t)

	payload := map[string]any{
		"name": "Orders",
		"root": "q1",
		"steps": map[string]any{
			"q1": map[string]any{"type": "text", "question": "Name?"},
		},
	}
	rec := doJSON(t, handler, http.MethodPut, "/templates/orders", payload)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/templates/orders", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got templatePayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Orders", got.Name)
	assert.Equal(t, "q1", got.Root)
	require.Contains(t, got.Steps, "q1")
	// the id is filled in from the map key
	assert.Equal(t, "q1", got.Steps["q1"].ID)

	rec = doJSON(t, handler, http.MethodGet, "/templates/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "orders")
}

func TestServer_PutTemplateRejectsMissingName(t *testing.T) {
	handler, _, _, _ := newTestServer(t)
	rec := doJSON(t, handler, http.MethodPut, "/templates/orders", map[string]any{"root": "q1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_TemplateNotFound(t *testing.T) {
	handler, _, _, _ := newTestServer(t)
	rec := doJSON(t, handler, http.MethodGet, "/templates/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_Lint(t *testing.T) {
	handler, templates, _, _ := newTestServer(t)
	seedTemplate(t, templates)

	rec := doJSON(t, handler, http.MethodGet, "/templates/orders/lint", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		OK       bool `json:"ok"`
		Findings []struct {
			Severity string `json:"severity"`
		} `json:"findings"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.OK)
	assert.Empty(t, got.Findings)
}

func TestServer_TreeAndMermaid(t *testing.T) {
	handler, templates, _, _ := newTestServer(t)
	seedTemplate(t, templates)

	rec := doJSON(t, handler, http.MethodGet, "/templates/orders/tree", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"stepId":"q1"`)

	rec = doJSON(t, handler, http.MethodGet, "/templates/orders/mermaid", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "graph TD"))
}

func TestServer_Inventory(t *testing.T) {
	handler, _, inventory, _ := newTestServer(t)
	two := 2
	inventory.SetStatuses("orders", []domain.InventoryStatus{
		{StepID: "cake", ChoiceID: "choc", Remaining: &two},
	})

	rec := doJSON(t, handler, http.MethodGet, "/inventory/orders", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"choc"`)
}

func TestServer_PostSubmission(t *testing.T) {
	handler, _, _, sink := newTestServer(t)

	payload := map[string]any{
		"formId":        "orders",
		"customerName":  "Ana",
		"customerPhone": "7654321",
		"answers": []map[string]any{
			{"stepId": "q1", "text": "Ana"},
		},
	}
	rec := doJSON(t, handler, http.MethodPost, "/submissions", payload)
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, sink.Submissions(), 1)
	assert.Equal(t, "Ana", sink.Submissions()[0].CustomerName)
}

func TestServer_PostSubmissionValidation(t *testing.T) {
	handler, _, _, sink := newTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/submissions", map[string]any{
		"formId": "orders",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, sink.Submissions())
}

func TestServer_CORSPreflight(t *testing.T) {
	handler, _, _, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/templates/orders", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_Metrics(t *testing.T) {
	handler, _, _, _ := newTestServer(t)
	rec := doJSON(t, handler, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
