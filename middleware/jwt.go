package middleware

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	hsjwt "github.com/bionicotaku/lingo-utils-hsjwt"
)

const authorizationHeader = "Authorization"

// Failure is the response body written when a request is rejected.
type Failure struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// Option customizes the middleware.
type Option func(*config)

type config struct {
	logger        *zap.Logger
	failureStatus int
}

// WithLogger sets the logger used to report rejected requests.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithFailureStatus sets the HTTP status of rejection responses.
// The default is 200, with the failure signalled by code 0 in the body.
func WithFailureStatus(status int) Option {
	return func(c *config) {
		if status >= 100 && status <= 999 {
			c.failureStatus = status
		}
	}
}

// JWT returns middleware that verifies the Authorization header with v.
func JWT(v *hsjwt.Verifier, opts ...Option) func(http.Handler) http.Handler {
	cfg := config{
		logger:        zap.NewNop(),
		failureStatus: http.StatusOK,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := v.Verify(r.Header.Get(authorizationHeader))
			if err != nil {
				msg := hsjwt.PublicMessage(err)
				cfg.logger.Info("jwt rejected",
					zap.String("code", string(hsjwt.CodeOf(err))),
					zap.String("path", r.URL.Path),
					zap.Error(err))
				writeFailure(w, cfg.failureStatus, msg)
				return
			}
			next.ServeHTTP(w, r.WithContext(hsjwt.BindClaims(r.Context(), claims)))
		})
	}
}

// Claims returns the claims bound by JWT, if any.
func Claims(r *http.Request) (*hsjwt.Claims, bool) {
	return hsjwt.ClaimsFromContext(r.Context())
}

func writeFailure(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Failure{Code: 0, Msg: msg})
}
