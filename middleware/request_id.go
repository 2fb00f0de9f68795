package middleware

import (
	"net/http"

	"github.com/google/uuid"
)

// requestIDHeader is echoed back to callers and honored when supplied,
// so upstream proxies can correlate their own traces with ours.
const requestIDHeader = "X-Request-ID"

// RequestID assigns every request an ID, stored in the context and echoed
// in the response header. A caller-supplied X-Request-ID is preserved.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := WithRequestID(r.Context(), requestID)
		w.Header().Set(requestIDHeader, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
