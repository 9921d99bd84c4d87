package hsjwt

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// bearerTokenType is the token type reported to oauth2 transports, which
// render it as "Authorization: Bearer <token>".
const bearerTokenType = "Bearer"

// defaultMaxEntries bounds the number of cached token sources.
const defaultMaxEntries = 1024

// Provider hands out self-signed tokens to outgoing HTTP clients.
// It caches one reusable token source per distinct claim set, so a token is
// re-issued only when the previous one is about to expire. The cache holds at
// most defaultMaxEntries claim sets; once full, an arbitrary entry is evicted.
// Callers issuing per-request claims should use the Builder directly.
type Provider struct {
	mu         sync.RWMutex
	builder    *Builder
	entries    map[string]*tokenSourceEntry
	maxEntries int
}

type tokenSourceEntry struct {
	source oauth2.TokenSource
}

// NewProvider constructs a Provider issuing tokens with b.
func NewProvider(b *Builder) *Provider {
	return &Provider{
		builder:    b,
		entries:    make(map[string]*tokenSourceEntry),
		maxEntries: defaultMaxEntries,
	}
}

// TokenSource returns a reusable source of tokens carrying claims.
func (p *Provider) TokenSource(claims any) (oauth2.TokenSource, error) {
	entry, err := p.getOrCreate(claims)
	if err != nil {
		return nil, err
	}
	return entry.source, nil
}

// Token returns a token carrying claims, reusing a cached one while valid.
func (p *Provider) Token(ctx context.Context, claims any) (string, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return "", err
		}
	}
	entry, err := p.getOrCreate(claims)
	if err != nil {
		return "", err
	}
	tok, err := entry.source.Token()
	if err != nil {
		return "", fmt.Errorf("fetch token: %w", err)
	}
	if tok.AccessToken == "" {
		return "", errors.New("empty access token returned")
	}
	return tok.AccessToken, nil
}

// Client returns an HTTP client that sends "Authorization: Bearer <token>"
// on every request. The base transport is taken from ctx as documented by
// oauth2.NewClient.
func (p *Provider) Client(ctx context.Context, claims any) (*http.Client, error) {
	src, err := p.TokenSource(claims)
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return oauth2.NewClient(ctx, src), nil
}

func (p *Provider) getOrCreate(claims any) (*tokenSourceEntry, error) {
	normalized, err := normalizeUserClaims(claims)
	if err != nil {
		return nil, err
	}
	raw, err := normalized.MarshalJSON()
	if err != nil {
		return nil, newError(ErrCodeInvalidUserClaims, err)
	}
	key := string(raw)

	p.mu.RLock()
	entry, ok := p.entries[key]
	p.mu.RUnlock()
	if ok {
		return entry, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if entry, ok = p.entries[key]; ok {
		return entry, nil
	}

	// Fail early on configuration errors instead of on first use.
	src := &builderSource{builder: p.builder, claims: normalized}
	first, err := src.Token()
	if err != nil {
		return nil, err
	}
	entry = &tokenSourceEntry{source: oauth2.ReuseTokenSource(first, src)}
	if p.maxEntries > 0 && len(p.entries) >= p.maxEntries {
		for evict := range p.entries {
			delete(p.entries, evict)
			break
		}
	}
	p.entries[key] = entry
	return entry, nil
}

// builderSource mints a fresh token on every call.
type builderSource struct {
	builder *Builder
	claims  *Claims
}

func (s *builderSource) Token() (*oauth2.Token, error) {
	token, exp, err := s.builder.issue(s.claims)
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{
		AccessToken: token,
		TokenType:   bearerTokenType,
		Expiry:      time.Unix(exp, 0),
	}, nil
}
