package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"confcentral/internal/domain"
)

type jwtClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Name  string `json:"name"`
}

type jwtResolver struct {
	secret []byte
}

// NewJWTResolver returns an IdentityResolver that verifies HS256 JWTs signed
// with the given secret. The token subject is the stable user id; email and
// name claims seed the lazily created profile.
func NewJWTResolver(secret string) domain.IdentityResolver {
	return &jwtResolver{secret: []byte(secret)}
}

func (r *jwtResolver) Resolve(ctx context.Context, credential string) (*domain.Identity, error) {
	claims := &jwtClaims{}
	token, err := jwt.ParseWithClaims(credential, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return r.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("verify token: %w: %v", domain.ErrUnauthorized, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("token has no subject: %w", domain.ErrUnauthorized)
	}
	return &domain.Identity{
		UserID:      claims.Subject,
		Email:       claims.Email,
		DisplayName: claims.Name,
	}, nil
}
