// Package auth guards the host console: a single Argon2id host password and
// ed25519-signed JWTs for the browser that logged in with it.
package auth

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// HostSubject is the "sub" claim of every host token.
const HostSubject = "host"

var (
	ErrWrongPassword = errors.New("wrong host password")
	ErrInvalidToken  = errors.New("invalid host token")
)

// HostAuth issues and checks host tokens. A zero PasswordHash disables the
// password check entirely, which is the local single-machine default.
type HostAuth struct {
	passwordHash string
	ttl          time.Duration
	privateKey   ed25519.PrivateKey
	publicKey    ed25519.PublicKey
	now          func() time.Time
}

// NewHostAuth generates a fresh key pair, so tokens do not survive a restart.
// A ttl of 0 issues tokens without an exp claim.
func NewHostAuth(passwordHash string, ttl time.Duration) (*HostAuth, error) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ed25519 key pair: %w", err)
	}
	return &HostAuth{
		passwordHash: passwordHash,
		ttl:          ttl,
		privateKey:   priv,
		publicKey:    pub,
		now:          time.Now,
	}, nil
}

// Enabled reports whether a host password is configured.
func (a *HostAuth) Enabled() bool { return a.passwordHash != "" }

// Login checks password and returns a signed token.
func (a *HostAuth) Login(password string) (string, error) {
	if a.Enabled() {
		ok, err := VerifyPassword(password, a.passwordHash)
		if err != nil {
			return "", fmt.Errorf("checking host password: %w", err)
		}
		if !ok {
			return "", ErrWrongPassword
		}
	}

	claims := jwt.MapClaims{
		"sub": HostSubject,
		"iat": a.now().Unix(),
	}
	if a.ttl > 0 {
		claims["exp"] = a.now().Add(a.ttl).Unix()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(a.privateKey)
}

// Verify accepts any token when auth is disabled.
func (a *HostAuth) Verify(tokenString string) error {
	if !a.Enabled() {
		return nil
	}
	t, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.publicKey, nil
	}, jwt.WithTimeFunc(a.now))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	sub, err := t.Claims.GetSubject()
	if err != nil || sub != HostSubject {
		return ErrInvalidToken
	}
	return nil
}
