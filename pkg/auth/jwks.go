package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tidwall/gjson"
)

const (
	jwksFetchTimeout = 5 * time.Second
	jwksMaxBody      = 1 << 20
	// jwksMinRefresh throttles refetches caused by unknown kids.
	jwksMinRefresh = time.Minute
)

var ErrUnknownKey = errors.New("signing key not published")

// Provider caches the RSA keys published at a JWKS endpoint, keyed by kid.
type Provider struct {
	url    string
	client *http.Client

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
}

func NewProvider(jwksURL string) *Provider {
	return &Provider{
		url:    jwksURL,
		client: &http.Client{Timeout: jwksFetchTimeout},
		keys:   map[string]*rsa.PublicKey{},
	}
}

// KeyFunc is a jwt.Keyfunc for RS256 tokens carrying a kid header.
func (p *Provider) KeyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	kid, _ := token.Header["kid"].(string)
	if kid == "" {
		return nil, errors.New("token has no kid header")
	}
	return p.PublicKey(context.Background(), kid)
}

// PublicKey returns the cached key for kid and refetches the set once when it is missing.
func (p *Provider) PublicKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	if key := p.cached(kid); key != nil {
		return key, nil
	}
	if err := p.refresh(ctx); err != nil {
		return nil, fmt.Errorf("jwks refresh: %w", err)
	}
	if key := p.cached(kid); key != nil {
		return key, nil
	}
	return nil, fmt.Errorf("%w: kid %q", ErrUnknownKey, kid)
}

func (p *Provider) cached(kid string) *rsa.PublicKey {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.keys[kid]
}

func (p *Provider) refresh(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.keys) > 0 && time.Since(p.fetchedAt) < jwksMinRefresh {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, jwksMaxBody))
	if err != nil {
		return err
	}
	keys, err := parseKeySet(body)
	if err != nil {
		return err
	}
	p.keys = keys
	p.fetchedAt = time.Now()
	return nil
}

// parseKeySet keeps the RSA signing keys of a JWKS document and skips everything else.
func parseKeySet(body []byte) (map[string]*rsa.PublicKey, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.New("jwks body is not valid JSON")
	}
	keys := map[string]*rsa.PublicKey{}
	for _, k := range gjson.GetBytes(body, "keys").Array() {
		if k.Get("kty").String() != "RSA" {
			continue
		}
		if use := k.Get("use").String(); use != "" && use != "sig" {
			continue
		}
		pub, err := rsaKey(k.Get("n").String(), k.Get("e").String())
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k.Get("kid").String(), err)
		}
		keys[k.Get("kid").String()] = pub
	}
	return keys, nil
}

func rsaKey(n, e string) (*rsa.PublicKey, error) {
	nb, err := base64.RawURLEncoding.DecodeString(n)
	if err != nil {
		return nil, fmt.Errorf("modulus: %w", err)
	}
	eb, err := base64.RawURLEncoding.DecodeString(e)
	if err != nil {
		return nil, fmt.Errorf("exponent: %w", err)
	}
	exp := new(big.Int).SetBytes(eb)
	if len(nb) == 0 || !exp.IsInt64() || exp.Int64() < 3 || exp.Int64() > 1<<31-1 {
		return nil, errors.New("malformed rsa key")
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(nb), E: int(exp.Int64())}, nil
}
