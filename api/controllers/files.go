package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"

	"github.com/soundshelf/soundshelf-backend/api/responses"
	pkgerrors "github.com/soundshelf/soundshelf-backend/pkg/errors"
	"github.com/soundshelf/soundshelf-backend/pkg/logger"
	"github.com/soundshelf/soundshelf-backend/pkg/storage/local"
)

// ServeUpload handles GET /uploads/{filename}. The stored extension is client
// metadata, so the response content type comes from sniffing the bytes.
func ServeUpload(store *local.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "blob store unavailable"))
			return
		}

		name := chi.URLParam(r, "filename")

		f, err := store.Open(name)
		if err != nil {
			if errors.Is(err, local.ErrNotFound) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "file not found"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid filename"))
			return
		}
		defer f.Close()

		mtype, err := mimetype.DetectReader(f)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sniffing file type"))
			return
		}
		if _, err := f.Seek(0, 0); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rewinding file"))
			return
		}

		w.Header().Set("Content-Type", mtype.String())
		http.ServeContent(w, r, name, time.Time{}, f)
	}
}
