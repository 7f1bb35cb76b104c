package http

import (
	"net/http"
	"strings"

	"github.com/utafrali/catalog/pkg/httputil"
)

// ContentType rejects write requests whose body is neither JSON nor a
// multipart form.
func ContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") && !strings.HasPrefix(ct, "multipart/form-data") {
				httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.Response{
					Error: &httputil.ErrorResponse{
						Code:    "UNSUPPORTED_MEDIA_TYPE",
						Message: "Content-Type must be application/json or multipart/form-data",
					},
				})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
