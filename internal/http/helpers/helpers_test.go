package helpers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loginBody struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=1,max=256"`
}

func post(body, ct string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	if ct != "" {
		r.Header.Set("Content-Type", ct)
	}
	return r
}

func TestReadJSON(t *testing.T) {
	var v loginBody
	w := httptest.NewRecorder()
	ok := ReadJSON(w, post(`{"email":"a@example.com","password":"x","extra":1}`, "application/json"), &v)
	require.True(t, ok)
	assert.Equal(t, "a@example.com", v.Email)

	cases := map[string]struct {
		body, ct string
		status   int
		code     string
	}{
		"content type": {`{}`, "text/plain", http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE"},
		"bad json":     {`{"email":`, "application/json", http.StatusBadRequest, "INVALID_JSON"},
		"invalid":      {`{"email":"nope","password":""}`, "application/json; charset=utf-8", http.StatusBadRequest, "INVALID_FORMAT"},
		"too large":    {`{"email":"` + strings.Repeat("a", maxBody) + `"}`, "application/json", http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			var v loginBody
			w := httptest.NewRecorder()
			require.False(t, ReadJSON(w, post(tc.body, tc.ct), &v))
			assert.Equal(t, tc.status, w.Code)
			assert.Contains(t, w.Body.String(), tc.code)
		})
	}
}

func TestValidate_Detail(t *testing.T) {
	err := Validate(&loginBody{Email: "nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INVALID_FORMAT")

	w := httptest.NewRecorder()
	require.False(t, ReadJSON(w, post(`{"email":"nope"}`, "application/json"), &loginBody{}))
	assert.Contains(t, w.Body.String(), "email: email")
	assert.Contains(t, w.Body.String(), "password: required")
}

func TestListParams(t *testing.T) {
	p, err := ListParams(httptest.NewRequest(http.MethodGet, "/?status=active", nil))
	require.NoError(t, err)
	assert.Equal(t, DefaultPageSize, p.Limit)
	assert.Equal(t, "active", p.Status)

	p, err = ListParams(httptest.NewRequest(http.MethodGet, "/?limit=5&offset=10", nil))
	require.NoError(t, err)
	assert.Equal(t, 5, p.Limit)
	assert.Equal(t, 10, p.Offset)

	for _, q := range []string{"limit=0", "limit=101", "limit=x", "offset=-1"} {
		_, err := ListParams(httptest.NewRequest(http.MethodGet, "/?"+q, nil))
		assert.Error(t, err, q)
	}
}
