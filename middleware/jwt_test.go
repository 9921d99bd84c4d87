package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	hsjwt "github.com/bionicotaku/lingo-utils-hsjwt"
)

func newHandler(t *testing.T, opts ...Option) (http.Handler, *bool) {
	t.Helper()
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		claims, ok := Claims(r)
		require.True(t, ok, "claims should be bound to the request")
		name, _ := claims.String("name")
		_, _ = w.Write([]byte(name))
	})
	v := hsjwt.NewVerifier(hsjwt.DefaultConfig())
	return JWT(v, opts...)(next), &called
}

func decodeFailure(t *testing.T, rec *httptest.ResponseRecorder) Failure {
	t.Helper()
	var body Failure
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestJWT_ForwardsValidRequests(t *testing.T) {
	token, err := hsjwt.NewBuilder(hsjwt.DefaultConfig()).Build(map[string]any{"name": "alice"})
	require.NoError(t, err)

	h, called := newHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.True(t, *called)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", rec.Body.String())
}

func TestJWT_RejectsWithCodeZero(t *testing.T) {
	expiredCfg := hsjwt.DefaultConfig()
	expiredCfg.TTL = "-1"
	expired, err := hsjwt.NewBuilder(expiredCfg).Build(map[string]any{"name": "alice"})
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		msg    string
	}{
		{"missing header", "", "authorization header is required"},
		{"scheme only", "Bearer ", "token is required"},
		{"malformed", "Bearer abc.def", "token needs two dots"},
		{"bad signature", "Bearer a.b.c", "token is invalid"},
		{"expired", "Bearer " + expired, "token is expired"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, called := newHandler(t)
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.False(t, *called, "handler must not run for rejected requests")
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Equal(t, Failure{Code: 0, Msg: tc.msg}, decodeFailure(t, rec))
		})
	}
}

func TestJWT_FailureStatusAndLogging(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h, _ := newHandler(t, WithLogger(zap.New(core)), WithFailureStatus(http.StatusUnauthorized))

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer abc")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "token needs two dots", decodeFailure(t, rec).Msg)

	entries := logs.FilterMessage("jwt rejected").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, string(hsjwt.ErrCodeTokenMalformed), fields["code"])
	assert.Equal(t, "/private", fields["path"])
}

func TestJWT_WorksAsChiMiddleware(t *testing.T) {
	v := hsjwt.NewVerifier(hsjwt.DefaultConfig())
	r := chi.NewRouter()
	r.Use(JWT(v))
	r.Get("/me", func(w http.ResponseWriter, r *http.Request) {
		claims, ok := Claims(r)
		require.True(t, ok)
		role, _ := claims.String("role")
		_, _ = w.Write([]byte(role))
	})

	token, err := hsjwt.NewBuilder(hsjwt.DefaultConfig()).Build(map[string]any{"role": "admin"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "admin", rec.Body.String())
}
