package middleware

import (
	"net/http"

	"surgical-clinic-backend/internal/domain/entity"
	"surgical-clinic-backend/pkg/response"
)

// RequireRole creates a middleware that checks if the user has any of the required roles.
// Role is read from context (set by AuthMiddleware from JWT claims).
func RequireRole(allowedRoleIDs ...int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			roleID, ok := GetRoleIDFromContext(r.Context())
			if !ok {
				response.Unauthorized(w, "Role information not found")
				return
			}

			allowed := false
			for _, allowedRoleID := range allowedRoleIDs {
				if roleID == allowedRoleID {
					allowed = true
					break
				}
			}

			if !allowed {
				response.Forbidden(w, "You don't have permission to access this resource")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin is a convenience middleware for admin-only endpoints
func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(entity.RoleIDAdmin)(next)
}

// RequireClinical allows surgeons and doctors (consultation and surgical-case work)
func RequireClinical(next http.Handler) http.Handler {
	return RequireRole(entity.RoleIDAdmin, entity.RoleIDSurgeon, entity.RoleIDDoctor)(next)
}

// RequireSurgeon is a convenience middleware for surgeon-only endpoints
func RequireSurgeon(next http.Handler) http.Handler {
	return RequireRole(entity.RoleIDAdmin, entity.RoleIDSurgeon)(next)
}

// RequireFrontDesk allows reception and admin (patient registration, check-in, booking)
func RequireFrontDesk(next http.Handler) http.Handler {
	return RequireRole(entity.RoleIDAdmin, entity.RoleIDReception)(next)
}

// RequireStaff allows any authenticated staff role
func RequireStaff(next http.Handler) http.Handler {
	return RequireRole(entity.RoleIDAdmin, entity.RoleIDSurgeon, entity.RoleIDDoctor, entity.RoleIDReception)(next)
}
