package core

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"fishcast/internal/types"
)

// internalSecretHeader carries the shared secret guarding internal endpoints.
const internalSecretHeader = "X-Internal-Secret"

// InternalAuthMiddleware guards the internal endpoints (refresh trigger,
// operational metadata) with a shared secret supplied in the
// X-Internal-Secret header.
//
// Validation logic:
//   - If no secret is configured (development), requests are allowed
//     through with a warning log on every request.
//   - A missing or empty header is rejected with 401 auth_internal_secret_missing.
//   - A mismatched header is rejected with 401 auth_internal_secret_invalid.
//
// The comparison is constant-time to prevent timing attacks.
func (s *Server) InternalAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		configured := ""
		if s.Config != nil {
			configured = s.Config.Security.InternalSecret.Unmask()
		}

		if configured == "" {
			s.Logger.Warn("internal endpoint accessed without a configured secret",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
			)
			next.ServeHTTP(w, r)
			return
		}

		presented := r.Header.Get(internalSecretHeader)
		if presented == "" {
			Error(w, r, types.NewAppError(
				types.ErrCodeAuthSecretMissing,
				"X-Internal-Secret header is required",
				nil,
			))
			return
		}

		if subtle.ConstantTimeCompare([]byte(presented), []byte(configured)) != 1 {
			s.Logger.Warn("internal secret mismatch",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
			)
			Error(w, r, types.NewAppError(
				types.ErrCodeAuthSecretInvalid,
				"invalid internal secret",
				nil,
			))
			return
		}

		next.ServeHTTP(w, r)
	})
}
