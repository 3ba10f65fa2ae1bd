package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier checks developer tokens against the public half of the
// configured private key.
type Verifier struct {
	Credentials Credentials
	Now         func() time.Time
}

// NewVerifier returns a Verifier for the given credentials using the wall clock.
func NewVerifier(creds Credentials) *Verifier {
	return &Verifier{Credentials: creds, Now: time.Now}
}

// VerifyWithKeyFile reads the private key at the configured path and
// verifies signed against its public half.
func (v *Verifier) VerifyWithKeyFile(signed string) (*Token, error) {
	keyPEM, err := ReadKey(v.Credentials.PrivateKeyPath)
	if err != nil {
		return nil, err
	}
	return v.Verify(keyPEM, signed)
}

// Verify parses signed, checks the ES256 signature, the kid header and the
// issuer, and requires a future expiration.
func (v *Verifier) Verify(keyPEM []byte, signed string) (*Token, error) {
	key, err := jwt.ParseECPrivateKeyFromPEM(keyPEM)
	if err != nil {
		return nil, &KeyInvalidError{Path: v.Credentials.PrivateKeyPath, Err: err}
	}
	pub := &key.PublicKey

	claims := &jwt.RegisteredClaims{}
	t, err := jwt.ParseWithClaims(signed, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodECDSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		kid, _ := t.Header["kid"].(string)
		if kid != v.Credentials.KeyID {
			return nil, fmt.Errorf("unexpected kid %q, want %q", kid, v.Credentials.KeyID)
		}
		return pub, nil
	},
		jwt.WithValidMethods([]string{Algorithm}),
		jwt.WithIssuer(v.Credentials.TeamID),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return nil, &VerifyError{Err: err}
	}
	if !t.Valid {
		return nil, &VerifyError{Err: fmt.Errorf("token not valid")}
	}
	if claims.IssuedAt == nil {
		return nil, &VerifyError{Err: fmt.Errorf("token has no iat claim")}
	}

	return &Token{
		Signed:    signed,
		KeyID:     v.Credentials.KeyID,
		Issuer:    claims.Issuer,
		IssuedAt:  claims.IssuedAt.Time.UTC(),
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}, nil
}

func (v *Verifier) now() time.Time {
	if v.Now == nil {
		return time.Now()
	}
	return v.Now()
}
