package httpx

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/nishkarsh/go-shop-api/internal/apperr"
)

type errBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr maps the error taxonomy onto HTTP. Internal causes are
// logged, never echoed to the client.
func writeErr(w http.ResponseWriter, r *http.Request, err error) {
	ae := apperr.From(err)
	if ae.Kind == apperr.KindInternal || ae.Kind == apperr.KindUpstream {
		slog.Error("request failed",
			"method", r.Method, "path", r.URL.Path, "code", ae.Code, "err", err)
	}
	writeJSON(w, ae.HTTPStatus(), map[string]errBody{
		"error": {Code: ae.Code, Message: ae.Message},
	})
}
