package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ejidepharmacy/pharmabot-backend/api/controllers"
	"github.com/ejidepharmacy/pharmabot-backend/api/middleware"
	"github.com/ejidepharmacy/pharmabot-backend/internal/adherence"
	"github.com/ejidepharmacy/pharmabot-backend/internal/chat"
	"github.com/ejidepharmacy/pharmabot-backend/internal/inventory"
	"github.com/ejidepharmacy/pharmabot-backend/internal/reports"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/config"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/db"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/logger"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/redis"
)

// RouterParams carries everything the HTTP surface is wired to. Redis is
// optional; without it chat messages are not rate limited.
type RouterParams struct {
	Config    *config.Config
	Logger    *logger.Logger
	DB        db.Pinger
	Redis     *redis.Client
	Gatherer  prometheus.Gatherer
	Chat      chat.Service
	Reminders adherence.Service
	Deliverer adherence.Deliverer
	Inventory inventory.Service
	Reports   reports.Service
}

func NewRouter(p RouterParams) http.Handler {
	cfg, logg := p.Config, p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	var redisPinger controllers.Pinger
	chatLimit := func(next http.Handler) http.Handler { return next }
	if p.Redis != nil {
		redisPinger = p.Redis
		policy := middleware.NewChatRateLimitPolicy(cfg.ChatRateLimit.Window, cfg.ChatRateLimit.Limit)
		chatLimit = middleware.ChatRateLimit(policy, p.Redis, logg)
	}

	gatherer := p.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/", controllers.Health(cfg))
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DB, redisPinger))
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.With(chatLimit).Post("/chat", controllers.Chat(p.Chat, logg))
	r.Get("/medication-reminders", controllers.MedicationReminders(p.Reminders, p.Deliverer, logg))
	r.Post("/upload-inventory", controllers.InventoryUpload(p.Inventory, logg))
	r.Get("/generate-weekly-report", controllers.WeeklyReport(p.Reports, logg))

	return r
}
