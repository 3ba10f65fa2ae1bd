// Package token builds and verifies Apple MusicKit developer tokens: compact
// ES256-signed JWTs carrying the team ID as issuer and the key ID in the
// header.
package token

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MaxValidity is the longest lifetime Apple accepts for a developer token.
const MaxValidity = 180 * 24 * time.Hour

// Algorithm is the only signing algorithm MusicKit accepts.
const Algorithm = "ES256"

// Credentials identify the issuing team and the signing key.
type Credentials struct {
	TeamID         string
	KeyID          string
	PrivateKeyPath string
}

// Token is a signed developer token and the validity window baked into it.
type Token struct {
	Signed    string
	KeyID     string
	Issuer    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Generator signs developer tokens. Now defaults to time.Now.
type Generator struct {
	Credentials Credentials
	Now         func() time.Time
}

// New returns a Generator for the given credentials using the wall clock.
func New(creds Credentials) *Generator {
	return &Generator{Credentials: creds, Now: time.Now}
}

// Generate reads the private key and signs a single token with it.
// A missing key file yields *KeyNotFoundError; a malformed key or signing
// failure yields *SigningError.
func (g *Generator) Generate() (*Token, error) {
	keyPEM, err := ReadKey(g.Credentials.PrivateKeyPath)
	if err != nil {
		return nil, err
	}
	return g.Sign(keyPEM)
}

// Sign builds the header and claims from a single clock reading and signs
// them with the PEM-encoded EC private key.
func (g *Generator) Sign(keyPEM []byte) (*Token, error) {
	now := g.now().UTC().Truncate(time.Second)
	expires := now.Add(MaxValidity)

	key, err := jwt.ParseECPrivateKeyFromPEM(keyPEM)
	if err != nil {
		return nil, &SigningError{Err: fmt.Errorf("parsing private key: %w", err)}
	}

	claims := jwt.RegisteredClaims{
		Issuer:    g.Credentials.TeamID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	t.Header["kid"] = g.Credentials.KeyID

	signed, err := t.SignedString(key)
	if err != nil {
		return nil, &SigningError{Err: err}
	}

	return &Token{
		Signed:    signed,
		KeyID:     g.Credentials.KeyID,
		Issuer:    g.Credentials.TeamID,
		IssuedAt:  now,
		ExpiresAt: expires,
	}, nil
}

func (g *Generator) now() time.Time {
	if g.Now == nil {
		return time.Now()
	}
	return g.Now()
}

// ReadKey returns the contents of the key file at path. The file handle is
// released before ReadKey returns.
func ReadKey(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &KeyNotFoundError{Path: path}
		}
		return nil, &KeyReadError{Path: path, Err: err}
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, &KeyReadError{Path: path, Err: err}
	}
	return data, nil
}
