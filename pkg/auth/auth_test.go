package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignerRoundTrip(t *testing.T) {
	signer := NewSigner("top-secret", "saludocupacional", time.Hour, 24*time.Hour)
	verifier := NewVerifier("top-secret", nil)

	token, expiresAt, err := signer.Sign(map[string]interface{}{
		"sub":   "5d7b1f9e-2c4a-4e1b-9d55-6a0f3f3c1e20",
		"email": "medico@ips.co",
		"iss":   "spoofed",
		"exp":   float64(1),
	}, 0)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := verifier.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "5d7b1f9e-2c4a-4e1b-9d55-6a0f3f3c1e20", claims.Subject)
	assert.Equal(t, "medico@ips.co", claims.Email)
	assert.Equal(t, "saludocupacional", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}

func TestSignerLifetime(t *testing.T) {
	signer := NewSigner("s", "iss", time.Hour, 2*time.Hour)
	assert.Equal(t, time.Hour, signer.Lifetime(0))
	assert.Equal(t, 30*time.Minute, signer.Lifetime(30*time.Minute))
	assert.Equal(t, 2*time.Hour, signer.Lifetime(10*time.Hour))

	disabled := NewSigner("", "iss", time.Hour, time.Hour)
	_, _, err := disabled.Sign(map[string]interface{}{"sub": "x"}, 0)
	assert.ErrorIs(t, err, ErrSignerDisabled)
}

func TestVerifierRejects(t *testing.T) {
	verifier := NewVerifier("right", nil)

	wrong := NewSigner("wrong", "iss", time.Hour, time.Hour)
	token, _, err := wrong.Sign(map[string]interface{}{"sub": "u1"}, 0)
	require.NoError(t, err)
	_, err = verifier.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	noSub := NewSigner("right", "iss", time.Hour, time.Hour)
	token, _, err = noSub.Sign(map[string]interface{}{"email": "a@b.co"}, 0)
	require.NoError(t, err)
	_, err = verifier.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": time.Now().Add(-time.Minute).Unix(),
	})
	raw, err := expired.SignedString([]byte("right"))
	require.NoError(t, err)
	_, err = verifier.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifierJWKS(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"keys": []map[string]string{
			{"kid": "enc", "kty": "RSA", "use": "enc", "n": "AQAB", "e": "AQAB"},
			{"kid": "ec", "kty": "EC", "crv": "P-256"},
			rsaJWK("k1", &key.PublicKey),
		}})
	}))
	defer srv.Close()

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"sub":   "u-rsa",
		"email": "ops@empresa.co",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	token.Header["kid"] = "k1"
	raw, err := token.SignedString(key)
	require.NoError(t, err)

	verifier := NewVerifier("", NewProvider(srv.URL))
	claims, err := verifier.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "u-rsa", claims.Subject)

	// HS256 is refused when no secret is configured
	hs, _, err := NewSigner("x", "iss", time.Hour, time.Hour).Sign(map[string]interface{}{"sub": "u"}, 0)
	require.NoError(t, err)
	_, err = verifier.Parse(hs)
	assert.Error(t, err)

	token.Header["kid"] = "rotated"
	raw, err = token.SignedString(key)
	require.NoError(t, err)
	_, err = verifier.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func rsaJWK(kid string, pub *rsa.PublicKey) map[string]string {
	return map[string]string{
		"kid": kid,
		"kty": "RSA",
		"alg": "RS256",
		"use": "sig",
		"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
		"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
	}
}

func TestProviderRefetchesUnknownKidOnce(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	var fetches atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"keys": []map[string]string{rsaJWK("k1", &key.PublicKey)}})
	}))
	defer srv.Close()

	p := NewProvider(srv.URL)
	got, err := p.PublicKey(context.Background(), "k1")
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey.N, got.N)
	assert.Equal(t, key.PublicKey.E, got.E)

	_, err = p.PublicKey(context.Background(), "k1")
	require.NoError(t, err)
	_, err = p.PublicKey(context.Background(), "k2")
	assert.ErrorIs(t, err, ErrUnknownKey)
	assert.Equal(t, int32(1), fetches.Load())
}

func TestParseKeySetRejectsMalformedKeys(t *testing.T) {
	_, err := parseKeySet([]byte(`{"keys":[{"kid":"x","kty":"RSA","n":"!!","e":"AQAB"}]}`))
	assert.Error(t, err)

	_, err = parseKeySet([]byte(`not json`))
	assert.Error(t, err)

	keys, err := parseKeySet([]byte(`{"keys":[]}`))
	require.NoError(t, err)
	assert.Empty(t, keys)
}
