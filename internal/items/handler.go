package items

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/kechei-store/warehouse-api/internal/platform/httpx"
	"github.com/kechei-store/warehouse-api/internal/rbac"
	"github.com/kechei-store/warehouse-api/internal/shared"
)

// Handler wires HTTP endpoints for the item catalogue.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
	rbac      rbac.Middleware
}

// NewHandler constructs the items handler.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New(), rbac: rbac}
}

// MountRoutes registers item routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Get("/{id}", h.handleGet)
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireRoles(shared.RoleAdmin, shared.RoleStorekeeper))
		r.Post("/", h.handleCreate)
		r.Put("/{id}", h.handleUpdate)
	})
}

type createItemRequest struct {
	ItemCode        string  `json:"item_code" validate:"required"`
	Name            string  `json:"name" validate:"required"`
	Description     string  `json:"description"`
	CategoryID      string  `json:"category_id" validate:"required,uuid"`
	UnitOfMeasureID string  `json:"unit_of_measure_id" validate:"required,uuid"`
	ReorderLevel    float64 `json:"reorder_level" validate:"gte=0"`
	HasExpiry       bool    `json:"has_expiry"`
}

type updateItemRequest struct {
	Name            string  `json:"name" validate:"required"`
	Description     string  `json:"description"`
	CategoryID      string  `json:"category_id" validate:"required,uuid"`
	UnitOfMeasureID string  `json:"unit_of_measure_id" validate:"required,uuid"`
	ReorderLevel    float64 `json:"reorder_level" validate:"gte=0"`
	HasExpiry       bool    `json:"has_expiry"`
	IsActive        bool    `json:"is_active"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{CategoryID: r.URL.Query().Get("category")}
	if active := r.URL.Query().Get("active"); active != "" {
		value := active == "true"
		filter.Active = &value
	}
	list, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list items", slog.Any("error", err))
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid json body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	principal := shared.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	item, err := h.service.Create(r.Context(), CreateItemInput{
		ItemCode:        req.ItemCode,
		Name:            req.Name,
		Description:     req.Description,
		CategoryID:      req.CategoryID,
		UnitOfMeasureID: req.UnitOfMeasureID,
		ReorderLevel:    req.ReorderLevel,
		HasExpiry:       req.HasExpiry,
		CreatedBy:       principal.ID,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, item)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid json body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	item, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), UpdateItemInput{
		Name:            req.Name,
		Description:     req.Description,
		CategoryID:      req.CategoryID,
		UnitOfMeasureID: req.UnitOfMeasureID,
		ReorderLevel:    req.ReorderLevel,
		HasExpiry:       req.HasExpiry,
		IsActive:        req.IsActive,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrDuplicateCode):
		httpx.Problem(w, http.StatusConflict, "Duplicate", "item code already exists")
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "item not found")
	default:
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
