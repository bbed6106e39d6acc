package http

import (
	"net/http"
	"strings"

	"kidlingo-service/internal/auth"

	"go.uber.org/zap"
)

// Authenticate resolves the caller from a bearer token or a ?token= query value.
// Requests without a token proceed as guests; a bad token is rejected.
func Authenticate(tokens *auth.Tokens, log *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}
		id, err := tokens.Verify(raw)
		if err != nil {
			log.Debug("token rejected", zap.String("path", r.URL.Path), zap.Error(err))
			writeJSON(w, http.StatusUnauthorized, errorPayload{Message: "invalid token"})
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
	})
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	// browsers cannot set headers on websocket upgrades
	return r.URL.Query().Get("token")
}
