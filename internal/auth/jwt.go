// Package auth provides the credential machinery for the directory API:
// JWT issuance/validation, bcrypt password hashing, the HTTP middleware
// that gates protected routes, and the optional GitHub sign-in flow.
//
// The credential is an HMAC-SHA256 signed JWT. Signing matters here:
// the token's claims (subject, expiry) are only trustworthy because the
// server verifies the signature with its own secret on every request,
// so a client cannot forge or alter claims undetected. A token that
// merely base64-encodes its payload proves nothing.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sakif/dev-directory/internal/apperror"
)

// TokenTTL is the fixed validity window of an issued credential.
// Expiry is absolute from the moment of issuance: it does not slide
// on use, and there is no revocation; expiry is the only way out.
const TokenTTL = time.Hour

const issuer = "dev-directory"

// TokenService signs and verifies bearer credentials.
// It holds the HMAC secret; the same secret must be used for both
// operations.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production,
// e.g. JWT_SECRET=$(openssl rand -hex 32).
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims embeds jwt.RegisteredClaims; the user's internal ID travels in
// the standard "sub" claim.
type claims struct {
	jwt.RegisteredClaims
}

// Generate issues a signed credential for the given userID, valid for
// TokenTTL from now.
func (s *TokenService) Generate(userID string) (string, error) {
	return s.GenerateWithDuration(userID, TokenTTL)
}

// GenerateWithDuration issues a credential with a custom validity
// window. Used by tests to mint already-expired tokens.
func (s *TokenService) GenerateWithDuration(userID string, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a credential string and returns the
// userID it encodes.
//
// Failure modes map onto the API's taxonomy:
//   - expired but otherwise valid token → apperror.ErrTokenExpired
//   - anything else (bad signature, wrong algorithm, malformed,
//     missing subject) → apperror.ErrUnauthenticated
//
// WithValidMethods pins the algorithm to HS256 so a token claiming
// "none" or an asymmetric algorithm is rejected outright.
func (s *TokenService) Validate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", apperror.Expired("credential has expired")
		}
		return "", apperror.Unauthenticated("invalid credential")
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", apperror.Unauthenticated("invalid credential claims")
	}

	if c.Subject == "" {
		return "", apperror.Unauthenticated("credential has no subject")
	}

	return c.Subject, nil
}
