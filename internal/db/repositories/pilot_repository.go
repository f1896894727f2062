package repositories

import (
	"context"
	"fmt"

	models "uasfleet/hangar/internal/models/gorm"

	"gorm.io/gorm"
)

// PilotRepository manages pilot profile rows with GORM
type PilotRepository struct {
	db *gorm.DB
}

// NewPilotRepository creates a new pilot repository
func NewPilotRepository(db *gorm.DB) *PilotRepository {
	return &PilotRepository{db: db}
}

// GetByID retrieves a pilot profile by identity id
func (r *PilotRepository) GetByID(ctx context.Context, id string) (*models.Pilot, error) {
	var pilot models.Pilot

	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&pilot).Error

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to fetch pilot: %w", err)
	}

	return &pilot, nil
}

// Update saves profile edits
func (r *PilotRepository) Update(ctx context.Context, pilot *models.Pilot) error {
	if err := r.db.WithContext(ctx).Save(pilot).Error; err != nil {
		return fmt.Errorf("failed to update pilot: %w", err)
	}
	return nil
}
