package hsjwt

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
)

// Registered claim names, in the order they are written to the payload.
const (
	ClaimIssuer    = "iss"
	ClaimSubject   = "sub"
	ClaimAudience  = "aud"
	ClaimExpiresAt = "exp"
	ClaimNotBefore = "nbf"
	ClaimIssuedAt  = "iat"
	ClaimJWTID     = "jti"
)

// ErrorMessageKey is the claim Auth sets when verification fails.
const ErrorMessageKey = "_error_msg"

var standardClaimNames = []string{
	ClaimIssuer,
	ClaimSubject,
	ClaimAudience,
	ClaimExpiresAt,
	ClaimNotBefore,
	ClaimIssuedAt,
	ClaimJWTID,
}

// StandardClaimNames returns the reserved claim names in payload order.
func StandardClaimNames() []string {
	return append([]string(nil), standardClaimNames...)
}

// IsStandardClaim reports whether name is a reserved claim.
func IsStandardClaim(name string) bool {
	for _, n := range standardClaimNames {
		if n == name {
			return true
		}
	}
	return false
}

// Claims is an ordered claim set. Keys keep their insertion order, which is
// also the order they are encoded in. Reading an absent key yields nil.
//
// The zero value is an empty set ready to use. Claims is not safe for
// concurrent mutation.
type Claims struct {
	keys   []string
	values map[string]any
}

// NewClaims returns an empty claim set.
func NewClaims() *Claims {
	return &Claims{}
}

// Set stores value under key. Existing keys keep their position.
func (c *Claims) Set(key string, value any) {
	if c.values == nil {
		c.values = make(map[string]any)
	}
	if _, ok := c.values[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.values[key] = value
}

// Get returns the value stored under key, or nil when absent.
func (c *Claims) Get(key string) any {
	v, _ := c.Lookup(key)
	return v
}

// Lookup returns the value for key and whether the key is present.
// A present key may hold nil (a JSON null).
func (c *Claims) Lookup(key string) (any, bool) {
	if c == nil || c.values == nil {
		return nil, false
	}
	v, ok := c.values[key]
	return v, ok
}

// Has reports whether key is present.
func (c *Claims) Has(key string) bool {
	_, ok := c.Lookup(key)
	return ok
}

// Delete removes key. Deleting an absent key is a no-op.
func (c *Claims) Delete(key string) {
	if c == nil || c.values == nil {
		return
	}
	if _, ok := c.values[key]; !ok {
		return
	}
	delete(c.values, key)
	for i, k := range c.keys {
		if k == key {
			c.keys = append(c.keys[:i:i], c.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (c *Claims) Keys() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.keys...)
}

// Len returns the number of claims.
func (c *Claims) Len() int {
	if c == nil {
		return 0
	}
	return len(c.keys)
}

// Map returns an unordered copy of the claims.
func (c *Claims) Map() map[string]any {
	out := make(map[string]any, c.Len())
	if c == nil {
		return out
	}
	for _, k := range c.keys {
		out[k] = c.values[k]
	}
	return out
}

// Clone returns a shallow copy.
func (c *Claims) Clone() *Claims {
	out := &Claims{}
	if c == nil {
		return out
	}
	for _, k := range c.keys {
		out.Set(k, c.values[k])
	}
	return out
}

// String returns the claim as a string when it holds one.
func (c *Claims) String(key string) (string, bool) {
	s, ok := c.Get(key).(string)
	return s, ok
}

// Int64 returns the claim as an integer. JSON numbers with a fractional part
// are truncated toward zero.
func (c *Claims) Int64(key string) (int64, bool) {
	return toInt64(c.Get(key))
}

// ExpiresAt returns the exp claim as Unix seconds.
func (c *Claims) ExpiresAt() (int64, bool) {
	return c.Int64(ClaimExpiresAt)
}

// ErrorMessage returns the diagnostic message set by Auth, if any.
func (c *Claims) ErrorMessage() string {
	s, _ := c.String(ErrorMessageKey)
	return s
}

// MarshalJSON encodes the claims as a JSON object in insertion order.
func (c *Claims) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range c.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalJSON(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := marshalJSON(c.values[k])
		if err != nil {
			return nil, fmt.Errorf("claim %q: %w", k, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping document order. Numbers are
// kept as json.Number. Duplicate keys keep the first position and the last
// value.
func (c *Claims) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("claims must be a JSON object")
	}
	*c = Claims{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected claim key %v", tok)
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("claim %q: %w", key, err)
		}
		c.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("unexpected data after claims object")
	}
	return nil
}

// marshalJSON encodes v without HTML escaping.
func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return floatToInt64(f)
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return floatToInt64(n)
	case string:
		if i, err := strconv.ParseInt(n, 10, 64); err == nil {
			return i, true
		}
		return 0, false
	default:
		return 0, false
	}
}

func floatToInt64(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}
