package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrSignerDisabled = errors.New("token signing secret not configured")

// reservedClaims are always set by the signer, whatever the caller sent.
var reservedClaims = []string{"iss", "iat", "nbf", "exp", "jti"}

// Signer mints HS256 tokens for the token function.
type Signer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	maxTTL time.Duration
	now    func() time.Time
}

func NewSigner(secret, issuer string, ttl, maxTTL time.Duration) *Signer {
	if maxTTL < ttl {
		maxTTL = ttl
	}
	return &Signer{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		maxTTL: maxTTL,
		now:    time.Now,
	}
}

func (s *Signer) Enabled() bool {
	return len(s.secret) > 0
}

// Lifetime resolves a requested lifetime: zero or negative means the default,
// anything above the maximum is capped.
func (s *Signer) Lifetime(requested time.Duration) time.Duration {
	if requested <= 0 {
		return s.ttl
	}
	if requested > s.maxTTL {
		return s.maxTTL
	}
	return requested
}

// Sign copies claims, overwrites the registered time and identity claims and signs the result.
func (s *Signer) Sign(claims map[string]interface{}, lifetime time.Duration) (string, time.Time, error) {
	if !s.Enabled() {
		return "", time.Time{}, ErrSignerDisabled
	}

	now := s.now().UTC().Truncate(time.Second)
	expiresAt := now.Add(s.Lifetime(lifetime))

	mc := jwt.MapClaims{}
	for k, v := range claims {
		mc[k] = v
	}
	for _, k := range reservedClaims {
		delete(mc, k)
	}
	mc["iss"] = s.issuer
	mc["iat"] = now.Unix()
	mc["nbf"] = now.Unix()
	mc["exp"] = expiresAt.Unix()
	mc["jti"] = uuid.NewString()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, mc)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}
