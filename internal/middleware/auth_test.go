package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mmnstore/mmnstore/internal/ctxkeys"
	"github.com/mmnstore/mmnstore/internal/model"
)

func gateRequest(user *model.User) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/apps", nil)
	if user != nil {
		req = req.WithContext(ctxkeys.WithUser(req.Context(), user))
	}
	return req
}

func okHandler(called *bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	}
}

func TestRequireAuth(t *testing.T) {
	var called bool
	h := RequireAuth(okHandler(&called))

	rec := httptest.NewRecorder()
	h(rec, gateRequest(nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)

	rec = httptest.NewRecorder()
	h(rec, gateRequest(&model.User{ID: "u1", Role: model.RoleUser}))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}

func TestRequireRole(t *testing.T) {
	var called bool
	h := RequireRole(model.RoleDeveloper)(okHandler(&called))

	rec := httptest.NewRecorder()
	h(rec, gateRequest(nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	h(rec, gateRequest(&model.User{ID: "u1", Role: model.RoleUser}))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, called)

	rec = httptest.NewRecorder()
	h(rec, gateRequest(&model.User{ID: "d1", Role: model.RoleDeveloper}))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}

func TestRequireRoleAdminPassesAllGates(t *testing.T) {
	var called bool
	h := RequireRole(model.RoleModerator)(okHandler(&called))

	rec := httptest.NewRecorder()
	h(rec, gateRequest(&model.User{ID: "a1", Role: model.RoleAdmin}))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}
