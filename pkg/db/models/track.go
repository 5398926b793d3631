package models

import (
	"time"

	"github.com/google/uuid"
)

// Track is a persisted music record. The music column holds the generated
// filename of the uploaded audio blob, never a full path. Deleting a track
// does not remove the file it points at.
type Track struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Title     string    `gorm:"column:title;not null" json:"title"`
	Artist    string    `gorm:"column:artist;not null" json:"artist"`
	Image     string    `gorm:"column:image;not null" json:"image"`
	Video     string    `gorm:"column:video;not null" json:"video"`
	Music     string    `gorm:"column:music;not null" json:"music"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName pins the table regardless of gorm pluralization settings.
func (Track) TableName() string {
	return "tracks"
}
