package repositories

import (
	"context"
	"fmt"

	models "uasfleet/hangar/internal/models/gorm"

	"gorm.io/gorm"
)

// FlightRepository manages flight log rows with GORM. Every tenant-scoped
// read takes the operator id as an explicit parameter; there is no ambient
// "current tenant" state at this layer.
type FlightRepository struct {
	db *gorm.DB
}

// NewFlightRepository creates a new flight repository
func NewFlightRepository(db *gorm.DB) *FlightRepository {
	return &FlightRepository{db: db}
}

// Create inserts a new flight record
func (r *FlightRepository) Create(ctx context.Context, flight *models.Flight) error {
	if err := r.db.WithContext(ctx).Create(flight).Error; err != nil {
		return fmt.Errorf("failed to create flight: %w", err)
	}
	return nil
}

// GetByID retrieves a flight by its own id, regardless of membership state
func (r *FlightRepository) GetByID(ctx context.Context, id string) (*models.Flight, error) {
	var flight models.Flight

	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&flight).Error

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("flight not found")
		}
		return nil, fmt.Errorf("failed to fetch flight: %w", err)
	}

	return &flight, nil
}

// ListByOperator retrieves an operator's flights, newest first
func (r *FlightRepository) ListByOperator(ctx context.Context, operatorID string, limit int) ([]models.Flight, error) {
	var flights []models.Flight

	err := r.db.WithContext(ctx).
		Where("operator_id = ?", operatorID).
		Order("flown_at DESC").
		Limit(limit).
		Find(&flights).Error

	if err != nil {
		return nil, fmt.Errorf("failed to fetch operator flights: %w", err)
	}

	return flights, nil
}

// ListByPilot retrieves a pilot's own flight history across operators
func (r *FlightRepository) ListByPilot(ctx context.Context, pilotID string, limit int) ([]models.Flight, error) {
	var flights []models.Flight

	err := r.db.WithContext(ctx).
		Where("pilot_id = ?", pilotID).
		Order("flown_at DESC").
		Limit(limit).
		Find(&flights).Error

	if err != nil {
		return nil, fmt.Errorf("failed to fetch pilot flights: %w", err)
	}

	return flights, nil
}
