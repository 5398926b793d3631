package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/soundshelf/soundshelf-backend/api/middleware"
	"github.com/soundshelf/soundshelf-backend/api/responses"
	"github.com/soundshelf/soundshelf-backend/api/validators"
	"github.com/soundshelf/soundshelf-backend/internal/tracks"
	pkgerrors "github.com/soundshelf/soundshelf-backend/pkg/errors"
	"github.com/soundshelf/soundshelf-backend/pkg/logger"
)

// ListTracks handles GET /api/v1/music.
func ListTracks(svc tracks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "track service unavailable"))
			return
		}

		rows, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "track list", rows)
	}
}

// GetTrack handles GET /api/v1/music/{trackId}.
func GetTrack(svc tracks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "track service unavailable"))
			return
		}

		trackID := chi.URLParam(r, "trackId")
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithTrackID(ctx, trackID)
		}

		track, err := svc.Get(ctx, trackID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, "track found", track)
	}
}

// CreateTrack handles POST /api/v1/music. The upload middleware has already
// streamed the multipart body, so the handler only reads the collected form
// fields and the stored filename off the context.
func CreateTrack(svc tracks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "track service unavailable"))
			return
		}

		fields := middleware.FormValuesFromContext(r.Context())
		input := tracks.CreateTrackInput{
			Title:     fields.Get("title"),
			Artist:    fields.Get("artist"),
			Image:     fields.Get("image"),
			Video:     fields.Get("video"),
			MusicFile: middleware.UploadedFileFromContext(r.Context()),
		}

		track, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, "track created", track)
	}
}

type updateTrackRequest struct {
	Title  *string `json:"title,omitempty"`
	Artist *string `json:"artist,omitempty"`
	Image  *string `json:"image,omitempty"`
	Video  *string `json:"video,omitempty"`
	Music  *string `json:"music,omitempty"`
}

func (req updateTrackRequest) toInput() tracks.UpdateTrackInput {
	return tracks.UpdateTrackInput{
		Title:  req.Title,
		Artist: req.Artist,
		Image:  req.Image,
		Video:  req.Video,
		Music:  req.Music,
	}
}

// UpdateTrack handles PUT and PATCH /api/v1/music/{trackId}. Fields absent
// from the body are left untouched.
func UpdateTrack(svc tracks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "track service unavailable"))
			return
		}

		trackID := chi.URLParam(r, "trackId")
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithTrackID(ctx, trackID)
		}

		var payload updateTrackRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		track, err := svc.Update(ctx, trackID, payload.toInput())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, "track updated", track)
	}
}

// DeleteTrack handles DELETE /api/v1/music/{trackId}. The response echoes the
// deleted record; the uploaded file stays on disk.
func DeleteTrack(svc tracks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "track service unavailable"))
			return
		}

		trackID := chi.URLParam(r, "trackId")
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithTrackID(ctx, trackID)
		}

		track, err := svc.Delete(ctx, trackID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, "track deleted", track)
	}
}
