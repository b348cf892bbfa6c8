package issuing

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

// Handler wires HTTP endpoints for stock issues.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
	rbac      rbac.Middleware
}

// NewHandler constructs the issuing handler.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New(), rbac: rbac}
}

// MountRoutes registers issuing routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Get("/{id}", h.handleGet)
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireRoles(shared.RoleAdmin, shared.RoleStorekeeper))
		r.Post("/", h.handleCreate)
	})
}

type createIssueRequest struct {
	IssueNumber  string               `json:"issue_number" validate:"required"`
	DepartmentID string               `json:"department_id" validate:"required,uuid"`
	IssuedTo     string               `json:"issued_to" validate:"required"`
	IssueDate    string               `json:"issue_date" validate:"required,datetime=2006-01-02"`
	Purpose      string               `json:"purpose"`
	Notes        string               `json:"notes"`
	Items        []createIssueItemReq `json:"items" validate:"required,min=1,dive"`
}

type createIssueItemReq struct {
	ItemID   string  `json:"item_id" validate:"required,uuid"`
	Quantity float64 `json:"quantity" validate:"required,gt=0"`
	Notes    string  `json:"notes"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	issues, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list issues", slog.Any("error", err))
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, issues)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	issue, lines, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"issue": issue,
		"items": lines,
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createIssueRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid json body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	issueDate, err := time.Parse("2006-01-02", req.IssueDate)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "issue_date must be YYYY-MM-DD")
		return
	}

	principal := shared.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	input := CreateIssueInput{
		IssueNumber:  req.IssueNumber,
		DepartmentID: req.DepartmentID,
		IssuedTo:     req.IssuedTo,
		IssuedBy:     principal.ID,
		IssueDate:    issueDate,
		Purpose:      req.Purpose,
		Notes:        req.Notes,
	}
	for _, item := range req.Items {
		input.Lines = append(input.Lines, IssueLineInput{
			ItemID:   item.ItemID,
			Quantity: item.Quantity,
			Notes:    item.Notes,
		})
	}

	issue, err := h.service.Issue(r.Context(), input)
	if err != nil {
		if errors.Is(err, stock.ErrTransactionAborted) {
			h.logger.Error("post issue", slog.String("issue_number", req.IssueNumber), slog.Any("error", err))
		}
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, issue)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var insufficient *stock.InsufficientStockError
	switch {
	case errors.As(err, &insufficient):
		httpx.JSON(w, http.StatusBadRequest, map[string]any{
			"title":     "Insufficient Stock",
			"status":    http.StatusBadRequest,
			"detail":    insufficient.Error(),
			"item_id":   insufficient.ItemID,
			"requested": insufficient.Requested,
			"available": insufficient.Available,
		})
	case errors.Is(err, ErrValidation), errors.Is(err, stock.ErrInvalidQuantity):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrDuplicateNumber):
		httpx.Problem(w, http.StatusConflict, "Duplicate", "issue number already exists")
	case errors.Is(err, stock.ErrItemNotFound):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "line references unknown item")
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "issue not found")
	default:
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
