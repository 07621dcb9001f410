package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/washworks/fleetwash/internal/config"
	sessiondomain "github.com/washworks/fleetwash/internal/washsession/domain"
)

type fakeSessionService struct {
	createReq    *sessiondomain.CreateRequest
	createErr    error
	authorizeErr error
	getErr       error
	resp         *sessiondomain.Response
}

func (f *fakeSessionService) Create(ctx context.Context, req sessiondomain.CreateRequest) (*sessiondomain.Response, error) {
	f.createReq = &req
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.resp, nil
}

func (f *fakeSessionService) Authorize(ctx context.Context, id string) (*sessiondomain.Response, error) {
	if f.authorizeErr != nil {
		return nil, f.authorizeErr
	}
	return f.resp, nil
}

func (f *fakeSessionService) Start(ctx context.Context, id string) (*sessiondomain.Response, error) {
	return f.resp, nil
}

func (f *fakeSessionService) Complete(ctx context.Context, id string) (*sessiondomain.Response, error) {
	return f.resp, nil
}

func (f *fakeSessionService) Reject(ctx context.Context, id, reason string) (*sessiondomain.Response, error) {
	return f.resp, nil
}

func (f *fakeSessionService) Lock(ctx context.Context, id string) (*sessiondomain.Response, error) {
	return f.resp, nil
}

func (f *fakeSessionService) Get(ctx context.Context, id string) (*sessiondomain.Response, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.resp, nil
}

func (f *fakeSessionService) List(ctx context.Context, req sessiondomain.ListRequest) ([]sessiondomain.Response, error) {
	return []sessiondomain.Response{*f.resp}, nil
}

func newTestServer(t *testing.T, sessions sessiondomain.Service) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	srv := &Server{
		engine:     engine,
		cfg:        config.Config{DefaultNetworkID: 1},
		sessionSvc: sessions,
	}
	srv.registerAPIRoutes()
	return srv
}

func TestCreateSessionEndpoint(t *testing.T) {
	fake := &fakeSessionService{resp: &sessiondomain.Response{
		ID:     "101",
		Status: sessiondomain.StatusCreated,
	}}
	srv := newTestServer(t, fake)

	body, err := json.Marshal(map[string]any{
		"location_id":        "11",
		"service_package_id": "12",
		"partner_id":         "13",
		"track":              "own",
		"entry_mode":         "driver",
		"components": []map[string]string{
			{"vehicle_type": "tractor", "plate_number": "WX-1042"},
		},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", bytes.NewReader(body))
	req.Header.Set("X-Network-ID", "1")
	rec := httptest.NewRecorder()
	srv.engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, fake.createReq)
	assert.Equal(t, "OWN", string(fake.createReq.Track))
	assert.Equal(t, "DRIVER", string(fake.createReq.EntryMode))
	require.Len(t, fake.createReq.Components, 1)
	assert.Equal(t, "TRACTOR", string(fake.createReq.Components[0].VehicleType))
}

func TestCreateSessionRejectsMalformedBody(t *testing.T) {
	srv := newTestServer(t, &fakeSessionService{})

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	srv.engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "validation_error")
}

func TestInvalidNetworkHeader(t *testing.T) {
	srv := newTestServer(t, &fakeSessionService{})

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/101", nil)
	req.Header.Set("X-Network-ID", "not-a-snowflake")
	rec := httptest.NewRecorder()
	srv.engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_network")
}

func TestTransitionConflictMapsTo409(t *testing.T) {
	fake := &fakeSessionService{authorizeErr: &sessiondomain.TransitionError{
		Status:    sessiondomain.StatusLocked,
		Operation: "authorize",
	}}
	srv := newTestServer(t, fake)

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/101/authorize", nil)
	rec := httptest.NewRecorder()
	srv.engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "cannot authorize")
}

func TestGetSessionNotFound(t *testing.T) {
	fake := &fakeSessionService{getErr: sessiondomain.ErrNotFound}
	srv := newTestServer(t, fake)

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/999", nil)
	rec := httptest.NewRecorder()
	srv.engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_found")
}

func TestConcurrentModificationMapsTo409(t *testing.T) {
	fake := &fakeSessionService{authorizeErr: sessiondomain.ErrConcurrentModification}
	srv := newTestServer(t, fake)

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/101/authorize", nil)
	rec := httptest.NewRecorder()
	srv.engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}
