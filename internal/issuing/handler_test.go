package issuing

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/kechei-store/warehouse-api/internal/rbac"
	"github.com/kechei-store/warehouse-api/internal/shared"
	"github.com/kechei-store/warehouse-api/internal/stock"
	_ "github.com/kechei-store/warehouse-api/testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRouter(repo *memoryRepo, principal *shared.Principal) http.Handler {
	svc := NewService(repo, stock.NewLedger(), nil)
	handler := NewHandler(discardLogger(), svc, rbac.Middleware{})

	r := chi.NewRouter()
	if principal != nil {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(shared.ContextWithPrincipal(req.Context(), principal)))
			})
		})
	}
	r.Route("/api/issues", handler.MountRoutes)
	return r
}

func storekeeper() *shared.Principal {
	return &shared.Principal{ID: "123e4567-e89b-12d3-a456-426614174000", Username: "storekeeper1", Role: shared.RoleStorekeeper}
}

func postIssue(t *testing.T, router http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/issues/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

const issueBody = `{
	"issue_number": "ISS-2026-010",
	"department_id": "323e4567-e89b-12d3-a456-426614174000",
	"issued_to": "Maria Santos",
	"issue_date": "2026-08-21",
	"notes": "handed over at gate 2",
	"items": [{"item_id": "223e4567-e89b-12d3-a456-426614174000", "quantity": 6}]
}`

// same payload without department_id
const issueBodyNoDepartment = `{
	"issue_number": "ISS-2026-011",
	"issued_to": "Maria Santos",
	"issue_date": "2026-08-21",
	"items": [{"item_id": "223e4567-e89b-12d3-a456-426614174000", "quantity": 6}]
}`

func TestHandleCreateIssue(t *testing.T) {
	repo := newMemoryRepo()
	repo.quantities["223e4567-e89b-12d3-a456-426614174000"] = 10
	router := newTestRouter(repo, storekeeper())

	rec := postIssue(t, router, issueBody)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Contains(t, rec.Body.String(), `"issue_number":"ISS-2026-010"`)
	require.Contains(t, rec.Body.String(), `"status":"issued"`)
	require.Contains(t, rec.Body.String(), `"notes":"handed over at gate 2"`)
	require.InDelta(t, 4.0, repo.quantities["223e4567-e89b-12d3-a456-426614174000"], 0.0001)
}

func TestHandleCreateIssueInsufficientStock(t *testing.T) {
	repo := newMemoryRepo()
	repo.quantities["223e4567-e89b-12d3-a456-426614174000"] = 2
	router := newTestRouter(repo, storekeeper())

	rec := postIssue(t, router, issueBody)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "Insufficient Stock")
	require.Contains(t, rec.Body.String(), `"item_id":"223e4567-e89b-12d3-a456-426614174000"`)
	require.Contains(t, rec.Body.String(), `"requested":6`)
	require.Contains(t, rec.Body.String(), `"available":2`)
}

func TestHandleCreateIssueDuplicate(t *testing.T) {
	repo := newMemoryRepo()
	repo.quantities["223e4567-e89b-12d3-a456-426614174000"] = 100
	router := newTestRouter(repo, storekeeper())

	rec := postIssue(t, router, issueBody)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postIssue(t, router, issueBody)
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleCreateIssueValidation(t *testing.T) {
	repo := newMemoryRepo()
	router := newTestRouter(repo, storekeeper())

	rec := postIssue(t, router, `{"issue_number": ""}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postIssue(t, router, issueBodyNoDepartment)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "DepartmentID")

	rec = postIssue(t, router, `not json`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleCreateIssueRequiresRole(t *testing.T) {
	repo := newMemoryRepo()
	repo.quantities["223e4567-e89b-12d3-a456-426614174000"] = 10

	// no principal at all
	rec := postIssue(t, newTestRouter(repo, nil), issueBody)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// viewer cannot post issues
	viewer := &shared.Principal{ID: "123e4567-e89b-12d3-a456-426614174001", Username: "viewer1", Role: shared.RoleViewer}
	rec = postIssue(t, newTestRouter(repo, viewer), issueBody)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandleGetIssue(t *testing.T) {
	repo := newMemoryRepo()
	repo.quantities["223e4567-e89b-12d3-a456-426614174000"] = 10
	router := newTestRouter(repo, storekeeper())

	rec := postIssue(t, router, issueBody)
	require.Equal(t, http.StatusCreated, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/issues/issue-1", nil)
	get := httptest.NewRecorder()
	router.ServeHTTP(get, req)
	require.Equal(t, http.StatusOK, get.Code)
	require.Contains(t, get.Body.String(), `"quantity_issued":6`)

	req = httptest.NewRequest(http.MethodGet, "/api/issues/missing", nil)
	get = httptest.NewRecorder()
	router.ServeHTTP(get, req)
	require.Equal(t, http.StatusNotFound, get.Code)
}
