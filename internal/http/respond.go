package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"vanta/internal/core"
	"vanta/internal/log"
)

var (
	errUnknownRoute = fmt.Errorf("no such resource: %w", core.ErrNotFound)
	errRateLimited  = errors.New("rate limit exceeded")
)

// errorBody is the envelope every failed request answers with.
type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// operation names the record operation a request method performs.
func operation(method string) string {
	switch method {
	case http.MethodPost:
		return log.OpCreate
	case http.MethodPut:
		return log.OpUpdate
	case http.MethodDelete:
		return log.OpDelete
	default:
		return log.OpRead
	}
}

func statusFor(kind string) int {
	switch kind {
	case core.KindAuth:
		return http.StatusUnauthorized
	case core.KindValidation:
		return http.StatusUnprocessableEntity
	case core.KindNotFound:
		return http.StatusNotFound
	case core.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps err onto the taxonomy. Internal details of 5xx failures
// are logged, not returned.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := core.ErrorKind(err)
	status := statusFor(kind)
	body := errorBody{Error: err.Error(), Kind: kind}

	var ve *core.ValidationError
	if errors.As(err, &ve) {
		body.Error = ve.Error()
		body.Field = ve.Field
	}

	if status >= 500 {
		fields := log.NewFields().WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.UserAgent())
		fields[log.FieldErrorKind] = kind
		log.NewStructuredLogger(log.FromContext(r.Context())).
			LogError(r.Context(), "Request failed", err, log.ComponentAPI, operation(r.Method), fields)
		if kind == core.KindUnavailable {
			body.Error = core.ErrUnavailable.Error()
		} else {
			body.Error = "internal error"
		}
	}
	writeJSON(w, status, body)
}
