// internal/product/handler.go
//
// JSON read endpoint consumed by the dev proxy and the SPA.
//
//	GET /api/products/{slug}  →  200 { "data": Product | null }
//
// The key may be a slug or a primary id; Resolve tries both.  Unknown keys
// still answer 200 with `data: null` so clients need only one code path.
package product

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Routes mounts the product endpoints on a fresh chi router.
func Routes(l Lookup) chi.Router {
	r := chi.NewRouter()
	r.Get("/{slug}", Handler(l))
	return r
}

// Handler serves one product as an Envelope.
func Handler(l Lookup) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "slug")

		p, err := Resolve(r.Context(), l, key)
		if err != nil {
			zap.L().Error("product api lookup failed",
				zap.String("key", key), zap.Error(err))
			writeEnvelope(w, http.StatusInternalServerError,
				Envelope{Error: "lookup failed"})
			return
		}
		writeEnvelope(w, http.StatusOK, Envelope{Data: p})
	}
}

func writeEnvelope(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}
