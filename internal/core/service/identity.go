package service

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lankahomes/storefront/internal/core/domain"
)

// DecodeClaims reads the identity claims of a credential without verifying
// its signature. The backend already vouched for the token when it issued or
// validated it; the client only needs the projection.
func DecodeClaims(token string) (domain.User, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return domain.User{}, fmt.Errorf("decode credential: %w", err)
	}

	var u domain.User
	if sub, err := claims.GetSubject(); err == nil {
		u.Email = sub
	}
	if u.Email == "" {
		u.Email = stringClaim(claims, "email")
	}
	if role, ok := domain.ParseRole(stringClaim(claims, "role")); ok {
		u.Role = role
	}
	u.FirstName = stringClaim(claims, "firstName")
	u.LastName = stringClaim(claims, "lastName")
	return u, nil
}

// DeriveIdentity builds the session user from the credential, then fills the
// gaps from each fallback in order. A credential that cannot be decoded is
// not fatal: the returned error is informational and the user is built from
// the fallbacks alone.
func DeriveIdentity(token string, fallbacks ...domain.User) (domain.User, error) {
	u, err := DecodeClaims(token)
	for _, f := range fallbacks {
		u = u.Overlay(f)
	}
	return u, err
}

func stringClaim(claims jwt.MapClaims, key string) string {
	v, _ := claims[key].(string)
	return v
}

// userFromResponse maps the profile fields an auth response may carry.
func userFromResponse(email, role, firstName, lastName string) domain.User {
	u := domain.User{Email: email, FirstName: firstName, LastName: lastName}
	if r, ok := domain.ParseRole(role); ok {
		u.Role = r
	}
	return u
}
