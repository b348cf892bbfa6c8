package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/kechei-store/warehouse-api/internal/auth"
	"github.com/kechei-store/warehouse-api/internal/issuing"
	"github.com/kechei-store/warehouse-api/internal/items"
	"github.com/kechei-store/warehouse-api/internal/masterdata"
	"github.com/kechei-store/warehouse-api/internal/observability"
	"github.com/kechei-store/warehouse-api/internal/receiving"
	"github.com/kechei-store/warehouse-api/internal/reports"
	"github.com/kechei-store/warehouse-api/internal/rbac"
	"github.com/kechei-store/warehouse-api/internal/shared"
	"github.com/kechei-store/warehouse-api/internal/stock"
	"github.com/kechei-store/warehouse-api/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	AuthHandler       *auth.Handler
	AuthMiddleware    *auth.Middleware
	ItemsHandler      *items.Handler
	StockHandler      *stock.Handler
	ReceivingHandler  *receiving.Handler
	IssuingHandler    *issuing.Handler
	MasterDataHandler *masterdata.Handler
	ReportsHandler    *reports.Handler
	JobsHandler       *jobs.Handler
	RBACMiddleware    rbac.Middleware
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router with warehouse defaults. Everything
// under /api except /api/auth/login requires a bearer token.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", params.AuthHandler.MountRoutes)

		r.Group(func(r chi.Router) {
			r.Use(params.AuthMiddleware.RequireAuth)

			r.Route("/items", params.ItemsHandler.MountRoutes)
			r.Route("/stock", params.StockHandler.MountRoutes)
			r.Route("/grn", params.ReceivingHandler.MountRoutes)
			r.Route("/issues", params.IssuingHandler.MountRoutes)
			r.Route("/reports", params.ReportsHandler.MountRoutes)
			params.MasterDataHandler.MountRoutes(r)

			if params.JobsHandler != nil {
				r.Route("/jobs", func(r chi.Router) {
					r.Use(params.RBACMiddleware.RequireRoles(shared.RoleAdmin))
					params.JobsHandler.MountRoutes(r)
				})
			}
		})
	})

	return r
}
