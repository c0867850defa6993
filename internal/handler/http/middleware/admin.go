package middleware

import (
	"net/http"

	"github.com/barangay-hris/payroll-backend-go/internal/handler/http/response"
	"github.com/go-chi/jwtauth/v5"
)

func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.Unauthorized(w, "Invalid access token")
			return
		}

		role, ok := claims["role"].(string)
		if !ok || role != "admin" {
			response.Forbidden(w, "Admin privilege required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// TreasurerOrAdmin gates the release path: the treasurer disburses, the
// admin can do everything.
func TreasurerOrAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.Unauthorized(w, "Invalid access token")
			return
		}

		role, ok := claims["role"].(string)
		if !ok || (role != "admin" && role != "treasurer") {
			response.Forbidden(w, "Treasurer or admin privilege required")
			return
		}

		next.ServeHTTP(w, r)
	})
}
