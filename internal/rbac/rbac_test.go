package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPolicy(t *testing.T) {
	c := NewChecker(nil)
	tests := []struct {
		role, perm string
		want       bool
	}{
		{"viewer", PermObservationsList, true},
		{"viewer", PermObservationsExport, false},
		{"viewer", PermAnswerKeyUpload, false},
		{"editor", PermAnswerKeyUpload, true},
		{"editor", PermObservationsExport, true},
		{"admin", "anything:at_all", true},
		{"", PermObservationsList, false},
		{"ghost", PermObservationsList, false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, c.Has(tc.role, tc.perm), "%s %s", tc.role, tc.perm)
	}
	assert.True(t, c.Any("viewer", PermAnswerKeyUpload, PermObservationsList))
	assert.True(t, c.Known("editor"))
	assert.False(t, c.Known("ghost"))
}

func TestRequire(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := Require(PermAnswerKeyUpload)(ok)

	for role, want := range map[string]int{
		"":       http.StatusForbidden,
		"viewer": http.StatusForbidden,
		"editor": http.StatusNoContent,
		"admin":  http.StatusNoContent,
	} {
		req := httptest.NewRequest(http.MethodPost, "/answer-keys", nil)
		req = req.WithContext(WithRole(req.Context(), role))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, role)
	}
}
