package masterdata

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/kechei-store/warehouse-api/internal/platform/httpx"
	"github.com/kechei-store/warehouse-api/internal/rbac"
	"github.com/kechei-store/warehouse-api/internal/shared"
)

// RepositoryPort abstracts reference data access for the handler.
type RepositoryPort interface {
	ListCategories(ctx context.Context) ([]Category, error)
	CreateCategory(ctx context.Context, c Category) (Category, error)
	ListUnits(ctx context.Context) ([]Unit, error)
	CreateUnit(ctx context.Context, u Unit) (Unit, error)
	ListDepartments(ctx context.Context) ([]Department, error)
	CreateDepartment(ctx context.Context, d Department) (Department, error)
	ListSuppliers(ctx context.Context) ([]Supplier, error)
	CreateSupplier(ctx context.Context, s Supplier) (Supplier, error)
}

// Handler wires HTTP endpoints for reference data.
type Handler struct {
	logger    *slog.Logger
	repo      RepositoryPort
	validator *validator.Validate
	rbac      rbac.Middleware
}

// NewHandler constructs the masterdata handler.
func NewHandler(logger *slog.Logger, repo RepositoryPort, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, repo: repo, validator: validator.New(), rbac: rbac}
}

// MountRoutes registers reference data routes under their own prefixes.
func (h *Handler) MountRoutes(r chi.Router) {
	admin := h.rbac.RequireRoles(shared.RoleAdmin)

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.list(func(ctx context.Context) (any, error) {
			return h.repo.ListCategories(ctx)
		}))
		r.With(admin).Post("/", h.handleCreateCategory)
	})
	r.Route("/units", func(r chi.Router) {
		r.Get("/", h.list(func(ctx context.Context) (any, error) {
			return h.repo.ListUnits(ctx)
		}))
		r.With(admin).Post("/", h.handleCreateUnit)
	})
	r.Route("/departments", func(r chi.Router) {
		r.Get("/", h.list(func(ctx context.Context) (any, error) {
			return h.repo.ListDepartments(ctx)
		}))
		r.With(admin).Post("/", h.handleCreateDepartment)
	})
	r.Route("/suppliers", func(r chi.Router) {
		r.Get("/", h.list(func(ctx context.Context) (any, error) {
			return h.repo.ListSuppliers(ctx)
		}))
		r.With(admin).Post("/", h.handleCreateSupplier)
	})
}

func (h *Handler) list(fetch func(context.Context) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := fetch(r.Context())
		if err != nil {
			h.logger.Error("list masterdata", slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
			return
		}
		httpx.JSON(w, http.StatusOK, data)
	}
}

type createCategoryRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

func (h *Handler) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if !h.decode(w, r, &req) {
		return
	}
	c, err := h.repo.CreateCategory(r.Context(), Category{Name: strings.TrimSpace(req.Name), Description: req.Description})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

type createUnitRequest struct {
	Name         string `json:"name" validate:"required"`
	Abbreviation string `json:"abbreviation" validate:"required"`
}

func (h *Handler) handleCreateUnit(w http.ResponseWriter, r *http.Request) {
	var req createUnitRequest
	if !h.decode(w, r, &req) {
		return
	}
	u, err := h.repo.CreateUnit(r.Context(), Unit{Name: strings.TrimSpace(req.Name), Abbreviation: strings.TrimSpace(req.Abbreviation)})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, u)
}

type createDepartmentRequest struct {
	Name string `json:"name" validate:"required"`
}

func (h *Handler) handleCreateDepartment(w http.ResponseWriter, r *http.Request) {
	var req createDepartmentRequest
	if !h.decode(w, r, &req) {
		return
	}
	d, err := h.repo.CreateDepartment(r.Context(), Department{Name: strings.TrimSpace(req.Name)})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, d)
}

type createSupplierRequest struct {
	Name          string `json:"name" validate:"required"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
	Email         string `json:"email" validate:"omitempty,email"`
	Address       string `json:"address"`
}

func (h *Handler) handleCreateSupplier(w http.ResponseWriter, r *http.Request) {
	var req createSupplierRequest
	if !h.decode(w, r, &req) {
		return
	}
	s, err := h.repo.CreateSupplier(r.Context(), Supplier{
		Name:          strings.TrimSpace(req.Name),
		ContactPerson: req.ContactPerson,
		Phone:         req.Phone,
		Email:         req.Email,
		Address:       req.Address,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, s)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(r, target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid json body")
		return false
	}
	if err := h.validator.Struct(target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return false
	}
	return true
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrDuplicateName):
		httpx.Problem(w, http.StatusConflict, "Duplicate", "name already exists")
	default:
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
