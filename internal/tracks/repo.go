package tracks

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/soundshelf/soundshelf-backend/pkg/db/models"
)

// Repository exposes track persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a track repository bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a track row.
func (r *Repository) Create(ctx context.Context, track *models.Track) (*models.Track, error) {
	if err := r.db.WithContext(ctx).Create(track).Error; err != nil {
		return nil, err
	}
	return track, nil
}

// List returns every track in insertion order.
func (r *Repository) List(ctx context.Context) ([]models.Track, error) {
	var rows []models.Track
	if err := r.db.WithContext(ctx).Order("created_at").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByID retrieves a track by ID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Track, error) {
	var track models.Track
	if err := r.db.WithContext(ctx).First(&track, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &track, nil
}

// Save overwrites an existing track row.
func (r *Repository) Save(ctx context.Context, track *models.Track) (*models.Track, error) {
	if err := r.db.WithContext(ctx).Save(track).Error; err != nil {
		return nil, err
	}
	return track, nil
}

// Delete removes a track by ID. The uploaded blob the row points at is left
// untouched.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Track{}).Error
}
