package hsjwt

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// bearerPrefixLen is the length of the "Bearer " scheme prefix. The prefix is
// stripped by length, matching how clients of this format send the header.
const bearerPrefixLen = len("Bearer ")

// Verifier checks tokens produced by a Builder sharing the same secret.
// It is safe for concurrent use.
type Verifier struct {
	cfg Config
	now func() time.Time
}

// NewVerifier returns a Verifier for cfg.
func NewVerifier(cfg Config, opts ...Option) *Verifier {
	o := buildOptions(opts)
	return &Verifier{cfg: cfg, now: o.now}
}

// Validate reports whether the authorization header value carries a valid,
// unexpired token.
func (v *Verifier) Validate(authorization string) error {
	_, err := v.Verify(authorization)
	return err
}

// Verify checks the authorization header value ("Bearer <token>") and
// returns the decoded payload.
func (v *Verifier) Verify(authorization string) (*Claims, error) {
	if authorization == "" {
		return nil, newErrorf(ErrCodeTokenNotFound, "authorization header is required")
	}
	if len(authorization) <= bearerPrefixLen {
		return nil, newError(ErrCodeTokenNotFound, nil)
	}
	return v.VerifyToken(authorization[bearerPrefixLen:])
}

// VerifyToken checks a raw token without an authorization scheme.
func (v *Verifier) VerifyToken(token string) (*Claims, error) {
	if token == "" {
		return nil, newError(ErrCodeTokenNotFound, nil)
	}
	parts := strings.Split(token, ".")
	if len(parts) != segmentCount {
		return nil, newError(ErrCodeTokenMalformed, fmt.Errorf("got %d segments", len(parts)))
	}
	if !signatureMatches(signingInput(parts[0], parts[1]), parts[2], v.cfg.Secret) {
		return nil, newError(ErrCodeTokenInvalid, errors.New("signature mismatch"))
	}

	raw, err := decodeSegment(parts[1])
	if err != nil {
		return nil, newError(ErrCodeTokenInvalid, fmt.Errorf("decode payload: %w", err))
	}
	claims := &Claims{}
	if err := claims.UnmarshalJSON(raw); err != nil {
		return nil, newError(ErrCodeTokenInvalid, fmt.Errorf("unmarshal payload: %w", err))
	}

	// A missing or non-numeric exp counts as already expired.
	exp, ok := claims.ExpiresAt()
	if !ok {
		return nil, newError(ErrCodeTokenExpired, errors.New("exp claim missing"))
	}
	if exp < v.now().Unix() {
		return nil, newError(ErrCodeTokenExpired, nil)
	}
	return claims, nil
}
