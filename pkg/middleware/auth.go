package middleware

import (
	"net/http"

	"seminar-ticketing/pkg/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const AdminKeyHeader = "X-Admin-Key"

// AdminKey guards admin routes with a shared key checked against its bcrypt
// hash. With no hash configured every admin request is refused.
func AdminKey(keyHash string, logger *zap.Logger) func(http.Handler) http.Handler {
	hash := []byte(keyHash)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(hash) == 0 {
				logger.Warn("Admin request refused, ADMIN_KEY_HASH not set", zap.String("path", r.URL.Path))
				utils.ResponseForbidden(w, "Admin access is not configured")
				return
			}

			key := r.Header.Get(AdminKeyHeader)
			if key == "" {
				utils.ResponseUnauthorized(w, "Missing admin key")
				return
			}

			if err := bcrypt.CompareHashAndPassword(hash, []byte(key)); err != nil {
				logger.Warn("Invalid admin key",
					zap.String("path", r.URL.Path),
					zap.String("ip", r.RemoteAddr),
				)
				utils.ResponseUnauthorized(w, "Invalid admin key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
