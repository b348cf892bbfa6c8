package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kechei-store/warehouse-api/internal/shared"
	_ "github.com/kechei-store/warehouse-api/testing"
)

func call(t *testing.T, mw func(http.Handler) http.Handler, principal *shared.Principal) *httptest.ResponseRecorder {
	t.Helper()
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if principal != nil {
		req = req.WithContext(shared.ContextWithPrincipal(req.Context(), principal))
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRequireRoles(t *testing.T) {
	mw := Middleware{}.RequireRoles(shared.RoleAdmin, shared.RoleStorekeeper)

	rec := call(t, mw, &shared.Principal{Username: "keeper", Role: shared.RoleStorekeeper})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = call(t, mw, &shared.Principal{Username: "viewer", Role: shared.RoleViewer})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = call(t, mw, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRolesCaseInsensitive(t *testing.T) {
	mw := Middleware{}.RequireRoles("Admin")

	rec := call(t, mw, &shared.Principal{Username: "root", Role: "ADMIN"})
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequireRolesEmptyListAllowsAll(t *testing.T) {
	mw := Middleware{}.RequireRoles()

	rec := call(t, mw, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
}
