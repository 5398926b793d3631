package tracks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/soundshelf/soundshelf-backend/pkg/db/models"
	pkgerrors "github.com/soundshelf/soundshelf-backend/pkg/errors"
)

// Service exposes the track record workflows.
type Service interface {
	Create(ctx context.Context, input CreateTrackInput) (*models.Track, error)
	List(ctx context.Context) ([]models.Track, error)
	Get(ctx context.Context, id string) (*models.Track, error)
	Update(ctx context.Context, id string, input UpdateTrackInput) (*models.Track, error)
	Delete(ctx context.Context, id string) (*models.Track, error)
}

// CreateTrackInput holds the text fields from the form plus the filename the
// upload pipeline produced. MusicFile is empty when no file was uploaded.
type CreateTrackInput struct {
	Title     string
	Artist    string
	Image     string
	Video     string
	MusicFile string
}

// UpdateTrackInput is a partial field set. Nil fields are left untouched.
// Content is applied without re-validation, matching the permissive update
// contract; replacing the music filename does not remove the old blob.
type UpdateTrackInput struct {
	Title  *string
	Artist *string
	Image  *string
	Video  *string
	Music  *string
}

type service struct {
	repo *Repository
}

// NewService constructs the track service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("track repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateTrackInput) (*models.Track, error) {
	if messages := validateCreate(input); len(messages) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(messages)
	}

	track := &models.Track{
		ID:     uuid.New(),
		Title:  strings.TrimSpace(input.Title),
		Artist: strings.TrimSpace(input.Artist),
		Image:  strings.TrimSpace(input.Image),
		Video:  strings.TrimSpace(input.Video),
		Music:  input.MusicFile,
	}

	created, err := s.repo.Create(ctx, track)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving track")
	}
	return created, nil
}

func (s *service) List(ctx context.Context) ([]models.Track, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing tracks")
	}
	if rows == nil {
		rows = []models.Track{}
	}
	return rows, nil
}

func (s *service) Get(ctx context.Context, id string) (*models.Track, error) {
	trackID, err := parseTrackID(id)
	if err != nil {
		return nil, err
	}

	track, err := s.repo.FindByID(ctx, trackID)
	if err != nil {
		return nil, lookupError(err)
	}
	return track, nil
}

func (s *service) Update(ctx context.Context, id string, input UpdateTrackInput) (*models.Track, error) {
	trackID, err := parseTrackID(id)
	if err != nil {
		return nil, err
	}

	track, err := s.repo.FindByID(ctx, trackID)
	if err != nil {
		return nil, lookupError(err)
	}

	applyUpdate(track, input)

	updated, err := s.repo.Save(ctx, track)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating track")
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id string) (*models.Track, error) {
	trackID, err := parseTrackID(id)
	if err != nil {
		return nil, err
	}

	track, err := s.repo.FindByID(ctx, trackID)
	if err != nil {
		return nil, lookupError(err)
	}

	if err := s.repo.Delete(ctx, trackID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting track")
	}
	return track, nil
}

func applyUpdate(track *models.Track, input UpdateTrackInput) {
	if input.Title != nil {
		track.Title = *input.Title
	}
	if input.Artist != nil {
		track.Artist = *input.Artist
	}
	if input.Image != nil {
		track.Image = *input.Image
	}
	if input.Video != nil {
		track.Video = *input.Video
	}
	if input.Music != nil {
		track.Music = *input.Music
	}
}

func parseTrackID(id string) (uuid.UUID, error) {
	trackID, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid track id")
	}
	return trackID, nil
}

func lookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "track not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading track")
}
