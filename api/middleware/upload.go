package middleware

import (
	"net/http"

	"github.com/soundshelf/soundshelf-backend/api/responses"
	"github.com/soundshelf/soundshelf-backend/internal/uploads"
	"github.com/soundshelf/soundshelf-backend/pkg/logger"
)

// Upload streams the multipart body through the intake pipeline before the
// handler runs. A rejected upload short-circuits the request and leaves no
// file behind.
func Upload(pipeline *uploads.Pipeline, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			result, err := pipeline.Intake(r)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUploadResult(r.Context(), result)))
		})
	}
}
