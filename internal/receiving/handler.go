package receiving

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/kechei-store/warehouse-api/internal/platform/httpx"
	"github.com/kechei-store/warehouse-api/internal/rbac"
	"github.com/kechei-store/warehouse-api/internal/shared"
	"github.com/kechei-store/warehouse-api/internal/stock"
)

// Handler wires HTTP endpoints for goods received notes.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
	rbac      rbac.Middleware
}

// NewHandler constructs the receiving handler.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New(), rbac: rbac}
}

// MountRoutes registers receiving routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Get("/{id}", h.handleGet)
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireRoles(shared.RoleAdmin, shared.RoleStorekeeper))
		r.Post("/", h.handleCreate)
	})
}

type createGRNRequest struct {
	GRNNumber          string             `json:"grn_number" validate:"required"`
	SupplierID         string             `json:"supplier_id" validate:"omitempty,uuid"`
	DeliveryNoteNumber string             `json:"delivery_note_number"`
	ReceivedDate       string             `json:"received_date" validate:"required,datetime=2006-01-02"`
	Notes              string             `json:"notes"`
	Items              []createGRNItemReq `json:"items" validate:"required,min=1,dive"`
}

type createGRNItemReq struct {
	ItemID      string  `json:"item_id" validate:"required,uuid"`
	Quantity    float64 `json:"quantity" validate:"required,gt=0"`
	ExpiryDate  string  `json:"expiry_date" validate:"omitempty,datetime=2006-01-02"`
	BatchNumber string  `json:"batch_number"`
	Notes       string  `json:"notes"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	notes, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list grns", slog.Any("error", err))
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, notes)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	note, lines, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"grn":   note,
		"items": lines,
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createGRNRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid json body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	receivedDate, err := time.Parse("2006-01-02", req.ReceivedDate)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "received_date must be YYYY-MM-DD")
		return
	}

	principal := shared.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	input := CreateGRNInput{
		GRNNumber:          req.GRNNumber,
		SupplierID:         req.SupplierID,
		DeliveryNoteNumber: req.DeliveryNoteNumber,
		ReceivedDate:       receivedDate,
		ReceivedBy:         principal.ID,
		Notes:              req.Notes,
	}
	for _, item := range req.Items {
		line := GRNLineInput{
			ItemID:      item.ItemID,
			Quantity:    item.Quantity,
			BatchNumber: item.BatchNumber,
			Notes:       item.Notes,
		}
		if item.ExpiryDate != "" {
			expiry, err := time.Parse("2006-01-02", item.ExpiryDate)
			if err != nil {
				httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "expiry_date must be YYYY-MM-DD")
				return
			}
			line.ExpiryDate = &expiry
		}
		input.Lines = append(input.Lines, line)
	}

	note, err := h.service.Receive(r.Context(), input)
	if err != nil {
		if errors.Is(err, stock.ErrTransactionAborted) {
			h.logger.Error("receive grn", slog.String("grn_number", req.GRNNumber), slog.Any("error", err))
		}
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, note)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, stock.ErrInvalidQuantity):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrDuplicateNumber):
		httpx.Problem(w, http.StatusConflict, "Duplicate", "grn number already exists")
	case errors.Is(err, stock.ErrItemNotFound):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "line references unknown item")
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "grn not found")
	default:
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
