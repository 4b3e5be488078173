package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ejidepharmacy/pharmabot-backend/api/middleware"
	"github.com/ejidepharmacy/pharmabot-backend/internal/adherence"
	"github.com/ejidepharmacy/pharmabot-backend/internal/chat"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/config"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubChat struct{}

func (stubChat) Handle(context.Context, chat.Inbound) (string, error) { return "pong", nil }

type stubReminders struct{}

func (stubReminders) Dispatch(context.Context, adherence.Deliverer) ([]adherence.Reminder, error) {
	return nil, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{
		App:   config.AppConfig{Env: "dev"},
		Store: config.StoreConfig{Name: "Ejide Pharmacy"},
	}
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "router_test_total", Help: "test"}))
	return NewRouter(RouterParams{
		Config:    cfg,
		Logger:    logger.Nop(),
		DB:        stubPinger{},
		Gatherer:  registry,
		Chat:      stubChat{},
		Reminders: stubReminders{},
		Deliverer: &adherence.Collector{},
	})
}

func TestRouterServesRoutes(t *testing.T) {
	router := newTestRouter(t)

	cases := []struct {
		method string
		path   string
		body   string
		status int
		want   string
	}{
		{http.MethodGet, "/health", "", http.StatusOK, "healthy"},
		{http.MethodGet, "/health/live", "", http.StatusOK, "live"},
		{http.MethodGet, "/health/ready", "", http.StatusOK, "ready"},
		{http.MethodGet, "/metrics", "", http.StatusOK, "router_test_total"},
		{http.MethodPost, "/chat", `{"phone_number":"2348012345678","message":"ping"}`, http.StatusOK, "pong"},
		{http.MethodGet, "/medication-reminders", "", http.StatusOK, `"reminders":[]`},
		{http.MethodGet, "/missing", "", http.StatusNotFound, ""},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)

			require.Equal(t, tc.status, resp.Code)
			assert.Contains(t, resp.Body.String(), tc.want)
			assert.NotEmpty(t, resp.Header().Get(middleware.RequestIDHeader))
		})
	}
}

func TestRouterWithoutServicesReportsUnavailable(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/generate-weekly-report", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
}
