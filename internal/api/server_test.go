package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neonwatty/seatify-sub000/internal/api"
	"github.com/neonwatty/seatify-sub000/internal/models"
	"github.com/neonwatty/seatify-sub000/internal/optimizer"
	"github.com/neonwatty/seatify-sub000/internal/store"
)

// newTestServer creates a test HTTP server backed by a MockStore.
func newTestServer(t *testing.T, authToken string) (*httptest.Server, *store.MockStore) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	st := store.NewMockStore()
	opt := optimizer.New(logger)
	srv := api.NewServer(st, opt, logger, authToken)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, st
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func doRequest(t *testing.T, method, url string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequestWithContext(context.Background(), method, url, body)
	} else {
		req, err = http.NewRequestWithContext(context.Background(), method, url, http.NoBody)
	}
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

// TestAPI_Healthz verifies that GET /healthz returns 200 {"status":"ok"}.
func TestAPI_Healthz(t *testing.T) {
	ts, _ := newTestServer(t, "")

	resp := doRequest(t, http.MethodGet, ts.URL+"/healthz", nil, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "ok", result["status"])
}

// TestAPI_AuthRequired verifies that a configured token gates every /v1 route
// but not the health check.
func TestAPI_AuthRequired(t *testing.T) {
	ts, _ := newTestServer(t, "secret-token")

	resp := doRequest(t, http.MethodGet, ts.URL+"/healthz", nil, "")
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doRequest(t, http.MethodGet, ts.URL+"/v1/guests", nil, "")
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doRequest(t, http.MethodGet, ts.URL+"/v1/guests", nil, "wrong-token")
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doRequest(t, http.MethodGet, ts.URL+"/v1/guests", nil, "secret-token")
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// TestAPI_GuestCRUD exercises create, read, and delete for guests.
func TestAPI_GuestCRUD(t *testing.T) {
	ts, _ := newTestServer(t, "")

	body := jsonBody(t, map[string]any{
		"name":      "Ada",
		"group":     "Lovelace",
		"interests": []string{"chess"},
	})
	resp := doRequest(t, http.MethodPost, ts.URL+"/v1/guests", body, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var created models.Guest
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, models.RSVPPending, created.RSVPStatus)

	resp = doRequest(t, http.MethodGet, ts.URL+"/v1/guests/"+created.ID, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched models.Guest
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&fetched))
	resp.Body.Close()
	assert.Equal(t, "Ada", fetched.Name)

	resp = doRequest(t, http.MethodDelete, ts.URL+"/v1/guests/"+created.ID, nil, "")
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doRequest(t, http.MethodGet, ts.URL+"/v1/guests/"+created.ID, nil, "")
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// TestAPI_GuestValidation rejects bad guest payloads.
func TestAPI_GuestValidation(t *testing.T) {
	ts, _ := newTestServer(t, "")

	resp := doRequest(t, http.MethodPost, ts.URL+"/v1/guests", jsonBody(t, map[string]any{}), "")
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doRequest(t, http.MethodPost, ts.URL+"/v1/guests", jsonBody(t, map[string]any{
		"name":        "Bob",
		"rsvp_status": "maybe",
	}), "")
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// TestAPI_TableValidation rejects non-positive capacities.
func TestAPI_TableValidation(t *testing.T) {
	ts, _ := newTestServer(t, "")

	resp := doRequest(t, http.MethodPost, ts.URL+"/v1/tables", jsonBody(t, map[string]any{
		"name":     "Head Table",
		"capacity": 0,
	}), "")
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// TestAPI_ConstraintValidation rejects bad constraint payloads.
func TestAPI_ConstraintValidation(t *testing.T) {
	ts, _ := newTestServer(t, "")

	resp := doRequest(t, http.MethodPost, ts.URL+"/v1/constraints", jsonBody(t, map[string]any{
		"guest_ids": []string{"only-one"},
		"type":      "same_table",
	}), "")
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doRequest(t, http.MethodPost, ts.URL+"/v1/constraints", jsonBody(t, map[string]any{
		"guest_ids": []string{"a", "b"},
		"type":      "adjacent",
	}), "")
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// TestAPI_OptimizeInline runs the optimizer on an inline roster without
// touching the store.
func TestAPI_OptimizeInline(t *testing.T) {
	ts, _ := newTestServer(t, "")

	body := jsonBody(t, map[string]any{
		"guests": []map[string]any{
			{"id": "g1", "name": "Ada", "rsvp_status": "confirmed"},
			{"id": "g2", "name": "Bob", "rsvp_status": "confirmed"},
		},
		"tables": []map[string]any{
			{"id": "t1", "name": "Table 1", "capacity": 4},
		},
		"constraints": []map[string]any{},
	})
	resp := doRequest(t, http.MethodPost, ts.URL+"/v1/optimize", body, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Assignments map[string]string  `json:"assignments"`
		Score       float64            `json:"score"`
		Violations  []models.Violation `json:"violations"`
		Persisted   bool               `json:"persisted"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	resp.Body.Close()

	assert.Equal(t, "t1", result.Assignments["g1"])
	assert.Equal(t, "t1", result.Assignments["g2"])
	assert.Equal(t, 100.0, result.Score)
	assert.Empty(t, result.Violations)
	assert.False(t, result.Persisted)
}

// TestAPI_OptimizeFromStorePersists loads the roster from the store and
// writes assignments back when persist is set.
func TestAPI_OptimizeFromStorePersists(t *testing.T) {
	ts, st := newTestServer(t, "")
	ctx := context.Background()

	require.NoError(t, st.UpsertGuest(ctx, models.Guest{ID: "g1", Name: "Ada", RSVPStatus: models.RSVPConfirmed}))
	require.NoError(t, st.UpsertGuest(ctx, models.Guest{ID: "g2", Name: "Bob", RSVPStatus: models.RSVPConfirmed}))
	require.NoError(t, st.UpsertTable(ctx, models.Table{ID: "t1", Name: "Table 1", Capacity: 8}))

	resp := doRequest(t, http.MethodPost, ts.URL+"/v1/optimize", jsonBody(t, map[string]any{
		"persist": true,
	}), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Assignments map[string]string `json:"assignments"`
		Persisted   bool              `json:"persisted"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	resp.Body.Close()
	assert.True(t, result.Persisted)

	g, err := st.GetGuest(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "t1", g.TableID)
}

// TestAPI_OptimizeNoTables surfaces the no-tables violation through the API.
func TestAPI_OptimizeNoTables(t *testing.T) {
	ts, _ := newTestServer(t, "")

	resp := doRequest(t, http.MethodPost, ts.URL+"/v1/optimize", jsonBody(t, map[string]any{
		"guests": []map[string]any{
			{"id": "g1", "name": "Ada", "rsvp_status": "confirmed"},
		},
		"tables":      []map[string]any{},
		"constraints": []map[string]any{},
	}), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Score      float64            `json:"score"`
		Violations []models.Violation `json:"violations"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	resp.Body.Close()

	assert.Equal(t, 0.0, result.Score)
	require.Len(t, result.Violations, 1)
	assert.Equal(t, models.ViolationNoTables, result.Violations[0].Kind)
	assert.Equal(t, "No tables available", result.Violations[0].Message)
}

// TestAPI_Export streams an xlsx workbook for the stored roster.
func TestAPI_Export(t *testing.T) {
	ts, st := newTestServer(t, "")
	ctx := context.Background()

	require.NoError(t, st.UpsertGuest(ctx, models.Guest{ID: "g1", Name: "Ada", RSVPStatus: models.RSVPConfirmed}))
	require.NoError(t, st.UpsertTable(ctx, models.Table{ID: "t1", Name: "Table 1", Capacity: 4}))

	resp := doRequest(t, http.MethodPost, ts.URL+"/v1/export", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "seating_chart_")

	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	// xlsx files are zip archives; check the magic bytes.
	require.True(t, len(data) > 4)
	assert.Equal(t, []byte("PK"), data[:2])
}

// TestAPI_Stats returns roster counts.
func TestAPI_Stats(t *testing.T) {
	ts, st := newTestServer(t, "")
	ctx := context.Background()

	require.NoError(t, st.UpsertGuest(ctx, models.Guest{ID: "g1", Name: "Ada", RSVPStatus: models.RSVPConfirmed}))
	require.NoError(t, st.UpsertTable(ctx, models.Table{ID: "t1", Capacity: 6}))

	resp := doRequest(t, http.MethodGet, ts.URL+"/v1/stats", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stats models.EventStats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	resp.Body.Close()

	assert.Equal(t, int64(1), stats.TotalGuests)
	assert.Equal(t, int64(1), stats.TotalTables)
	assert.Equal(t, int64(6), stats.TotalCapacity)
}
