package request

import (
	"net/http"

	dErrors "credledger/pkg/domain-errors"
	"credledger/pkg/platform/httputil"
)

// BodyLimit rejects bodies larger than maxBytes. A declared Content-Length over
// the limit is refused before the handler runs; undeclared bodies are capped
// with http.MaxBytesReader and fail when the handler reads past the limit.
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				httputil.WriteError(w, dErrors.New(dErrors.CodePayloadTooLarge, "request body too large"))
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
