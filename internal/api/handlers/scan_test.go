package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyberscan/scand/internal/errors"
	"github.com/cyberscan/scand/internal/orchestrator"
)

// stubService implements ScanService with canned responses.
type stubService struct {
	submitErr error
	state     orchestrator.ScanState
	statusErr error
	submitted []orchestrator.Request
}

func (s *stubService) Submit(_ context.Context, req orchestrator.Request) error {
	s.submitted = append(s.submitted, req)
	return s.submitErr
}

func (s *stubService) GetStatus(_ string) (orchestrator.ScanState, error) {
	return s.state, s.statusErr
}

func newTestRouter(service ScanService) *mux.Router {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewScanHandler(service, logger)
	hh := NewHealthHandler(logger)

	router := mux.NewRouter()
	router.HandleFunc("/scan", h.SubmitScan).Methods("POST")
	router.HandleFunc("/scan/{scan_id}/status", h.GetScanStatus).Methods("GET")
	router.HandleFunc("/scan-types", h.ListScanTypes).Methods("GET")
	router.HandleFunc("/health", hh.Health).Methods("GET")
	router.HandleFunc("/", hh.Root).Methods("GET")
	return router
}

func postScan(t *testing.T, router *mux.Router, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/scan", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSubmitScanAccepted(t *testing.T) {
	service := &stubService{}
	router := newTestRouter(service)

	rec := postScan(t, router, ScanRequest{
		ScanID:   "scan-1",
		Target:   "192.168.1.10",
		ScanType: "basic",
	})

	assert.Equal(t, http.StatusAccepted, rec.Code)

	var resp ScanResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "started", resp.Status)
	assert.Equal(t, "scan-1", resp.ScanID)
	assert.Contains(t, resp.Message, "192.168.1.10")
	assert.Equal(t, "basic", resp.ScanInfo.ID)

	require.Len(t, service.submitted, 1)
	assert.Equal(t, "scan-1", service.submitted[0].ScanID)
}

func TestSubmitScanValidation(t *testing.T) {
	tests := []struct {
		name string
		body ScanRequest
	}{
		{
			name: "missing scan_id",
			body: ScanRequest{Target: "host-1", ScanType: "basic"},
		},
		{
			name: "missing target",
			body: ScanRequest{ScanID: "s1", ScanType: "basic"},
		},
		{
			name: "target with shell metacharacters",
			body: ScanRequest{ScanID: "s1", Target: "host;whoami", ScanType: "basic"},
		},
		{
			name: "bad callback URL",
			body: ScanRequest{ScanID: "s1", Target: "host-1", ScanType: "basic", CallbackURL: "not a url"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &stubService{}
			router := newTestRouter(service)

			rec := postScan(t, router, tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, service.submitted, "rejected request must not reach the orchestrator")
		})
	}
}

func TestSubmitScanUnknownType(t *testing.T) {
	service := &stubService{}
	router := newTestRouter(service)

	rec := postScan(t, router, ScanRequest{ScanID: "s1", Target: "host-1", ScanType: "warp"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "PROFILE_UNKNOWN", resp.Code)
	assert.Contains(t, resp.Error, "basic")
}

func TestSubmitScanMalformedBody(t *testing.T) {
	router := newTestRouter(&stubService{})

	req := httptest.NewRequest(http.MethodPost, "/scan", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitScanAdmissionErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"duplicate", errors.ErrDuplicateScan("s1"), http.StatusConflict},
		{"capacity", errors.ErrCapacityExceeded(), http.StatusTooManyRequests},
		{"invalid target", errors.ErrInvalidTarget("x"), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&stubService{submitErr: tt.err})

			rec := postScan(t, router, ScanRequest{ScanID: "s1", Target: "host-1", ScanType: "basic"})

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestGetScanStatus(t *testing.T) {
	started := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	service := &stubService{
		state: orchestrator.ScanState{
			ScanID:    "scan-1",
			Status:    "running",
			Progress:  25,
			Target:    "host-1",
			ScanType:  "basic",
			StartedAt: started,
		},
	}
	router := newTestRouter(service)

	req := httptest.NewRequest(http.MethodGet, "/scan/scan-1/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var state orchestrator.ScanState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, "running", state.Status)
	assert.Equal(t, 25, state.Progress)
	assert.Nil(t, state.CompletedAt)
}

func TestGetScanStatusNotFound(t *testing.T) {
	service := &stubService{statusErr: errors.ErrScanNotFound("ghost")}
	router := newTestRouter(service)

	req := httptest.NewRequest(http.MethodGet, "/scan/ghost/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListScanTypes(t *testing.T) {
	router := newTestRouter(&stubService{})

	req := httptest.NewRequest(http.MethodGet, "/scan-types", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp ScanTypesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.ScanTypes, 6)
	assert.Equal(t, "basic", resp.ScanTypes[0].ID)
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(&stubService{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var health HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "scand", health.Service)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var root RootResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &root))
	assert.Equal(t, "running", root.Status)
}
