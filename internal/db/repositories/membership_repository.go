package repositories

import (
	"context"
	"fmt"

	models "uasfleet/hangar/internal/models/gorm"

	"gorm.io/gorm"
)

// MembershipRepository manages pilot↔operator membership rows with GORM
type MembershipRepository struct {
	db *gorm.DB
}

// NewMembershipRepository creates a new membership repository
func NewMembershipRepository(db *gorm.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// GetByPilotAndOperator retrieves a pilot's membership in a specific operator
func (r *MembershipRepository) GetByPilotAndOperator(ctx context.Context, pilotID, operatorID string) (*models.Membership, error) {
	var m models.Membership

	err := r.db.WithContext(ctx).
		Preload("Operator").
		Where("pilot_id = ? AND operator_id = ?", pilotID, operatorID).
		First(&m).Error

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("pilot is not a member of this operator")
		}
		return nil, fmt.Errorf("failed to fetch membership: %w", err)
	}

	return &m, nil
}

// GetAllByPilotID retrieves all memberships for a pilot (with operator details)
func (r *MembershipRepository) GetAllByPilotID(ctx context.Context, pilotID string) ([]models.Membership, error) {
	var memberships []models.Membership

	err := r.db.WithContext(ctx).
		Preload("Operator").
		Where("pilot_id = ?", pilotID).
		Order("joined_at ASC").
		Find(&memberships).Error

	if err != nil {
		return nil, fmt.Errorf("failed to fetch pilot memberships: %w", err)
	}

	return memberships, nil
}

// GetAllByOperatorID retrieves every membership of an operator, pending join
// requests included.
func (r *MembershipRepository) GetAllByOperatorID(ctx context.Context, operatorID string) ([]models.Membership, error) {
	var memberships []models.Membership

	err := r.db.WithContext(ctx).
		Preload("Pilot").
		Where("operator_id = ?", operatorID).
		Order("joined_at ASC").
		Find(&memberships).Error

	if err != nil {
		return nil, fmt.Errorf("failed to fetch operator memberships: %w", err)
	}

	return memberships, nil
}
