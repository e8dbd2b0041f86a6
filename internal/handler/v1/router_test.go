package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Leganyst/booking-scheduler/internal/calendar"
	"github.com/Leganyst/booking-scheduler/internal/config"
	"github.com/Leganyst/booking-scheduler/internal/db"
	"github.com/Leganyst/booking-scheduler/internal/metrics"
	"github.com/Leganyst/booking-scheduler/internal/model"
	"github.com/Leganyst/booking-scheduler/internal/repository"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testAPI struct {
	t      *testing.T
	engine *gin.Engine
	db     *gorm.DB
}

func newTestAPI(t *testing.T, cfg RouterConfig) *testAPI {
	t.Helper()

	gdb, err := db.NewGormDB(&config.DBConfig{Driver: config.DriverSQLite, SQLitePath: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, model.AutoMigrate(gdb))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	log := zap.NewNop()
	m := metrics.NewCollector("test")
	store := repository.NewGormStore(gdb, repository.WithStoreObserver(m))
	admitter := calendar.NewAdmitter(store, calendar.WithObserver(m), calendar.WithLogger(log))

	r := Router{
		Directory: NewDirectoryHandler(
			repository.NewGormProviderRepository(gdb),
			repository.NewGormClientRepository(gdb),
			repository.NewGormRoomRepository(gdb),
			log,
		),
		Appointments: NewAppointmentHandler(
			admitter,
			repository.NewGormAppointmentRepository(gdb),
			repository.NewGormEventRepository(gdb),
			log,
		),
		Metrics: m,
		Health:  func(ctx context.Context) error { return db.Ping(ctx, gdb) },
		Log:     log,
	}
	engine, err := r.Engine(cfg)
	require.NoError(t, err)
	return &testAPI{t: t, engine: engine, db: gdb}
}

func (a *testAPI) do(method, path string, body any) *httptest.ResponseRecorder {
	a.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(a.t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.engine.ServeHTTP(rec, req)
	return rec
}

// create выполняет POST и возвращает поле data.
func (a *testAPI) create(path string, body any) map[string]any {
	a.t.Helper()
	rec := a.do(http.MethodPost, path, body)
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeData(a.t, rec)
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp.Data
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func TestRoot(t *testing.T) {
	api := newTestAPI(t, RouterConfig{Version: "1.2.3"})

	rec := api.do(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "1.2.3")
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t, RouterConfig{})

	rec := api.do(http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")

	sqlDB, err := api.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	rec = api.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	api := newTestAPI(t, RouterConfig{})
	api.do(http.MethodGet, "/providers", nil)

	rec := api.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `test_http_requests_total{method="GET",path="/providers",status="200"} 1`)
}

func TestRejectionStatus_EveryKindIsMapped(t *testing.T) {
	for _, kind := range calendar.Kinds {
		assert.NotEqual(t, http.StatusInternalServerError, rejectionStatus(kind), kind.String())
	}
}

func TestRespondServiceError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{calendar.Reject(calendar.RejectClientNotFound), http.StatusNotFound, "CLIENT_NOT_FOUND"},
		{calendar.Reject(calendar.RejectProviderDoubleBooked), http.StatusConflict, "PROVIDER_DOUBLE_BOOKED"},
		{calendar.Reject(calendar.RejectInvalidInterval), http.StatusBadRequest, "INVALID_INTERVAL"},
		{&calendar.InfrastructureError{Op: "get client", Err: errors.New("down")}, http.StatusServiceUnavailable, codeUnavailable},
		{errors.New("boom"), http.StatusInternalServerError, codeInternal},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		respondServiceError(c, zap.NewNop(), tc.err)

		assert.Equal(t, tc.status, rec.Code, tc.err.Error())
		assert.Equal(t, tc.code, decodeError(t, rec).Code)
	}
}

func TestRateLimit(t *testing.T) {
	api := newTestAPI(t, RouterConfig{RateLimitRPS: 0.001, RateLimitBurst: 2})

	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/rooms", nil).Code)
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/rooms", nil).Code)

	rec := api.do(http.MethodGet, "/rooms", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE_LIMITED", decodeError(t, rec).Code)

	// health не ограничивается
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/health", nil).Code)
}

func TestCORS(t *testing.T) {
	api := newTestAPI(t, RouterConfig{AllowedOrigins: []string{"http://localhost:3000"}})

	req := httptest.NewRequest(http.MethodOptions, "/appointments", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	api.engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/rooms", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	api.engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
