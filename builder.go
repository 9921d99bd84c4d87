package hsjwt

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"
)

// Option customizes a Builder or Verifier.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the time source used for exp computation and checks.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// header is the fixed token header. Field order matches the wire format.
type header struct {
	Typ string `json:"typ"`
	Alg string `json:"alg"`
}

// Builder issues signed tokens. It is safe for concurrent use.
type Builder struct {
	cfg Config
	now func() time.Time
}

// NewBuilder returns a Builder for cfg. The configuration is validated on
// each Build call, not here.
func NewBuilder(cfg Config, opts ...Option) *Builder {
	o := buildOptions(opts)
	return &Builder{cfg: cfg, now: o.now}
}

// Config returns the builder configuration.
func (b *Builder) Config() Config {
	return b.cfg
}

// Build signs claims and returns the compact token.
//
// claims may be a *Claims, a string-keyed map, or any value that encodes to
// a JSON object such as a struct. Claims named after registered claims
// (iss, sub, aud, exp, nbf, iat, jti) are rejected.
func (b *Builder) Build(claims any) (string, error) {
	token, _, err := b.issue(claims)
	return token, err
}

// issue builds the token and also returns its exp in Unix seconds.
func (b *Builder) issue(claims any) (string, int64, error) {
	alg, err := ResolveAlgorithm(b.cfg.Alg)
	if err != nil {
		return "", 0, err
	}
	headerJSON, err := json.Marshal(header{Typ: "JWT", Alg: alg.String()})
	if err != nil {
		return "", 0, fmt.Errorf("marshal header: %w", err)
	}
	encodedHeader := encodeSegment(headerJSON)

	user, err := normalizeUserClaims(claims)
	if err != nil {
		return "", 0, err
	}
	if reserved := reservedKeys(user); len(reserved) > 0 {
		return "", 0, newErrorf(ErrCodeReservedClaimCollision,
			"user claims [%s] are not allowed to use", strings.Join(reserved, ","))
	}

	ttl, err := b.cfg.TTLSeconds()
	if err != nil {
		return "", 0, err
	}
	exp := b.now().Unix() + ttl
	payload := standardPayload(exp)
	for _, k := range user.keys {
		payload.Set(k, user.values[k])
	}
	payloadJSON, err := payload.MarshalJSON()
	if err != nil {
		return "", 0, newError(ErrCodeInvalidUserClaims, err)
	}
	encodedPayload := encodeSegment(payloadJSON)

	input := signingInput(encodedHeader, encodedPayload)
	return input + "." + sign(input, b.cfg.Secret), exp, nil
}

// standardPayload returns the registered claims, all null except exp.
func standardPayload(exp int64) *Claims {
	c := &Claims{}
	for _, name := range standardClaimNames {
		c.Set(name, nil)
	}
	c.Set(ClaimExpiresAt, exp)
	return c
}

func reservedKeys(c *Claims) []string {
	var out []string
	for _, k := range c.keys {
		if IsStandardClaim(k) {
			out = append(out, k)
		}
	}
	return out
}

// normalizeUserClaims converts the caller input into an ordered claim set.
func normalizeUserClaims(in any) (*Claims, error) {
	switch v := in.(type) {
	case nil:
		return nil, newError(ErrCodeInvalidUserClaims, fmt.Errorf("claims are nil"))
	case *Claims:
		if v == nil {
			return nil, newError(ErrCodeInvalidUserClaims, fmt.Errorf("claims are nil"))
		}
		return v.Clone(), nil
	case Claims:
		return v.Clone(), nil
	case map[string]any:
		return claimsFromMap(v), nil
	case map[string]string:
		c := &Claims{}
		for _, k := range sortedKeys(v) {
			c.Set(k, v[k])
		}
		return c, nil
	}

	rv := reflect.ValueOf(in)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, newError(ErrCodeInvalidUserClaims, fmt.Errorf("claims are nil"))
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, newError(ErrCodeInvalidUserClaims, fmt.Errorf("claims key type %s", rv.Type().Key()))
		}
	case reflect.Struct:
	default:
		return nil, newError(ErrCodeInvalidUserClaims, fmt.Errorf("claims type %T", in))
	}

	raw, err := marshalJSON(in)
	if err != nil {
		return nil, newError(ErrCodeInvalidUserClaims, err)
	}
	c := &Claims{}
	if err := c.UnmarshalJSON(raw); err != nil {
		return nil, newError(ErrCodeInvalidUserClaims, err)
	}
	return c, nil
}

// claimsFromMap orders map keys lexically since Go maps carry no order.
func claimsFromMap(m map[string]any) *Claims {
	c := &Claims{}
	for _, k := range sortedKeys(m) {
		c.Set(k, m[k])
	}
	return c
}
