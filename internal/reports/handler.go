package reports

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kechei-store/warehouse-api/internal/platform/httpx"
)

// Handler wires HTTP endpoints for reports.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the reports handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/dashboard-stats", h.serve("dashboard stats", func(ctx context.Context) (any, error) {
		return h.service.DashboardStats(ctx)
	}))
	r.Get("/stock-by-category", h.serve("stock by category", func(ctx context.Context) (any, error) {
		return h.service.StockByCategory(ctx)
	}))
	r.Get("/department-consumption", h.serve("department consumption", func(ctx context.Context) (any, error) {
		return h.service.DepartmentConsumption(ctx)
	}))
}

func (h *Handler) serve(name string, fetch func(context.Context) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := fetch(r.Context())
		if err != nil {
			h.logger.Error("report", slog.String("report", name), slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
			return
		}
		httpx.JSON(w, http.StatusOK, data)
	}
}
