package dashboard

import (
	"net/http"

	"github.com/rs/zerolog"
)

// Router assembles the API routes with the middleware chain. The login
// endpoint sits outside the session gate; everything else requires a token.
func Router(h *Handler, sessions *SessionStore, log zerolog.Logger) http.Handler {
	gate := RequireSession(sessions)

	mux := http.NewServeMux()

	mux.HandleFunc("/api/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h.Login(w, r)
	})

	mux.Handle("/api/reload", gate(onlyMethod(http.MethodPost, h.Reload)))
	mux.Handle("/api/totals", gate(onlyMethod(http.MethodGet, h.Totals)))
	mux.Handle("/api/breakdown", gate(onlyMethod(http.MethodGet, h.Breakdown)))
	mux.Handle("/api/transactions", gate(onlyMethod(http.MethodGet, h.Transactions)))
	mux.Handle("/api/filters", gate(onlyMethod(http.MethodGet, h.Filters)))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	var handler http.Handler = mux
	handler = CORS(handler)
	handler = RequestID(handler)
	handler = Logger(log)(handler)
	handler = Recovery(log)(handler)
	return handler
}

func onlyMethod(method string, fn http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		fn(w, r)
	})
}
