package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"medml-backend/internal/domain"
	"medml-backend/internal/service"
)

type ctxKey int

const claimsKey ctxKey = 0

// AuthMiddleware verifies the Bearer token and stashes the claims in the
// request context.
type AuthMiddleware struct {
	auth *service.AuthService
}

func NewAuthMiddleware(auth *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

func (m *AuthMiddleware) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeJSON(w, http.StatusUnauthorized, Fail("missing bearer token"))
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")

		claims, err := m.auth.VerifyToken(r.Context(), token)
		if err != nil {
			if errors.Is(err, domain.ErrTokenExpired) {
				writeJSON(w, http.StatusUnauthorized, TokenExpired("token expired"))
				return
			}
			writeJSON(w, http.StatusUnauthorized, Fail("invalid token"))
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
	}
}

// WrapAdmin additionally requires the admin role.
func (m *AuthMiddleware) WrapAdmin(next http.HandlerFunc) http.HandlerFunc {
	return m.Wrap(func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFrom(r.Context())
		if claims == nil || claims.Role != domain.RoleAdmin {
			writeJSON(w, http.StatusForbidden, Fail("admin access required"))
			return
		}
		next(w, r)
	})
}

func claimsFrom(ctx context.Context) *service.Claims {
	claims, _ := ctx.Value(claimsKey).(*service.Claims)
	return claims
}

// canAccessPatient allows admins everywhere and patients on their own
// record only.
func canAccessPatient(claims *service.Claims, patientID string) bool {
	if claims == nil {
		return false
	}
	if claims.Role == domain.RoleAdmin {
		return true
	}
	return claims.Role == domain.RolePatient && claims.Subject == patientID
}
