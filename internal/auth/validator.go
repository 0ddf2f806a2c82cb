// Package auth validates the HMAC-signed bearer tokens issued by the
// identity provider.
package auth

import (
	"strings"
	"time"

	"bookstore/pkg/apperror"

	"github.com/golang-jwt/jwt/v5"
)

const bearerPrefix = "Bearer "

// TokenValidator verifies HS256 tokens against the IdP's shared secret.
// The secret is used as raw UTF-8 bytes; the IdP hands it out undecoded,
// so it must not be base64-decoded first.
type TokenValidator struct {
	secret []byte
	parser *jwt.Parser
}

func NewTokenValidator(secret string) *TokenValidator {
	return &TokenValidator{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
		),
	}
}

// Validate parses and verifies a token, returning its claims. The
// "Bearer " prefix is stripped if present. Malformed, unsigned, expired
// or empty tokens all fail with an Invalid error.
func (v *TokenValidator) Validate(tokenString string) (jwt.MapClaims, error) {
	tokenString = strings.TrimPrefix(tokenString, bearerPrefix)
	if tokenString == "" {
		return nil, apperror.Invalid("Token is empty")
	}

	claims := jwt.MapClaims{}
	token, err := v.parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInvalid, err, "Invalid token")
	}
	if !token.Valid {
		return nil, apperror.Invalid("Invalid token")
	}
	return claims, nil
}

// Subject returns the sub claim from a validated token.
func (v *TokenValidator) Subject(tokenString string) (string, error) {
	claims, err := v.Validate(tokenString)
	if err != nil {
		return "", err
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", apperror.Invalid("Token has no subject")
	}
	return sub, nil
}

// IsValid reports whether the token verifies and has not expired. It
// never returns an error; use Validate for authoritative checks.
func (v *TokenValidator) IsValid(tokenString string) bool {
	claims, err := v.Validate(tokenString)
	if err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.After(time.Now())
}
