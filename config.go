package hsjwt

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAlg    = "HS256"
	defaultSecret = "leruge"
	defaultTTL    = "31536000" // one year
)

// Config option names accepted by Overlay.
const (
	KeyAlg        = "alg"
	KeySecret     = "secret"
	KeyPublicKey  = "public_key"
	KeyPrivateKey = "private_key"
	KeyPassword   = "password"
	KeyTTL        = "ttl"
)

// envKeys maps environment variables to config option names.
var envKeys = map[string]string{
	"JWT_ALG":         KeyAlg,
	"JWT_SECRET":      KeySecret,
	"JWT_PUBLIC_KEY":  KeyPublicKey,
	"JWT_PRIVATE_KEY": KeyPrivateKey,
	"JWT_PASSWORD":    KeyPassword,
	"JWT_TTL":         KeyTTL,
}

// Config holds signing parameters shared by Builder and Verifier.
//
// PublicKey, PrivateKey and Password are accepted for compatibility with
// asymmetric deployments but are not used: only HS256 can sign.
// TTL is the token lifetime in seconds, kept as supplied so that a
// non-numeric value surfaces as an InvalidConfig error at build time.
type Config struct {
	Alg        string
	Secret     string
	PublicKey  string
	PrivateKey string
	Password   string
	TTL        string
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		Alg:    defaultAlg,
		Secret: defaultSecret,
		TTL:    defaultTTL,
	}
}

// Overlay returns a copy of c with the given options applied. Keys use the
// option names (alg, secret, public_key, private_key, password, ttl);
// unknown keys are ignored. No validation happens here.
func (c Config) Overlay(values map[string]string) Config {
	out := c
	for key, value := range values {
		switch strings.ToLower(strings.TrimSpace(key)) {
		case KeyAlg:
			out.Alg = value
		case KeySecret:
			out.Secret = value
		case KeyPublicKey:
			out.PublicKey = value
		case KeyPrivateKey:
			out.PrivateKey = value
		case KeyPassword:
			out.Password = value
		case KeyTTL:
			out.TTL = value
		}
	}
	return out
}

// WithTTL returns a copy of c whose ttl is d truncated to whole seconds.
func (c Config) WithTTL(d time.Duration) Config {
	c.TTL = strconv.FormatInt(int64(d/time.Second), 10)
	return c
}

// TTLSeconds parses the configured ttl. Integers and decimals are accepted,
// decimals are truncated toward zero.
func (c Config) TTLSeconds() (int64, error) {
	raw := strings.TrimSpace(c.TTL)
	if raw == "" {
		return 0, newErrorf(ErrCodeInvalidConfig, "jwt config [ttl] invalid")
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, &Error{
			Code:    ErrCodeInvalidConfig,
			Message: "jwt config [ttl] invalid",
			Err:     fmt.Errorf("ttl %q is not numeric", c.TTL),
		}
	}
	return int64(f), nil
}

// ConfigFromEnv overlays JWT_* variables found through lookup on the defaults.
func ConfigFromEnv(lookup func(string) (string, bool)) Config {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	values := make(map[string]string, len(envKeys))
	for env, key := range envKeys {
		if v, ok := lookup(env); ok && v != "" {
			values[key] = v
		}
	}
	return DefaultConfig().Overlay(values)
}

// LoadConfig loads the optional env files and builds a Config from the
// process environment. Missing files are skipped; variables already present
// in the environment take precedence over file values.
func LoadConfig(envFiles ...string) (Config, error) {
	for _, path := range envFiles {
		if path == "" {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return Config{}, fmt.Errorf("load %s: %w", path, err)
		}
	}
	return ConfigFromEnv(os.LookupEnv), nil
}
