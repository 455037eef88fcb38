package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/workstack/org-messaging/internal"
	"github.com/workstack/org-messaging/internal/directory"
)

type ctxKey string

const ContextEmployeeKey ctxKey = "employee"

// EmployeeFromContext returns the directory record of the authenticated
// caller, as placed there by the auth middleware.
func EmployeeFromContext(ctx context.Context) (*directory.Employee, bool) {
	emp, ok := ctx.Value(ContextEmployeeKey).(*directory.Employee)
	return emp, ok
}

func ContextWithEmployee(ctx context.Context, emp *directory.Employee) context.Context {
	return context.WithValue(ctx, ContextEmployeeKey, emp)
}

type Claims struct {
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}

// TokenService validates access tokens issued by the identity layer that
// fronts this engine. Issuance lives there, not here.
type TokenService struct {
	secret []byte
}

func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret)}
}

func (s *TokenService) ValidateAccessToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, internal.ErrInvalidToken
	}
	if !token.Valid {
		return nil, internal.ErrInvalidToken
	}
	return claims, nil
}
