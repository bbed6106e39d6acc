package http

import (
	"net/http"

	"kidlingo-service/internal/app"
	"kidlingo-service/internal/auth"

	"go.uber.org/zap"
)

// NewRouter wires health, websocket and JSON routes behind the auth middleware.
func NewRouter(service *app.QuizService, tokens *auth.Tokens, ws *WSHandler, log *zap.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", ws.ServeWS)
	NewAPIHandler(service, log).Register(mux)
	return Authenticate(tokens, log, mux)
}
