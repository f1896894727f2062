package services

import (
	"context"
	"fmt"
	"log"

	"uasfleet/hangar/internal/common"
	"uasfleet/hangar/internal/constants"
	"uasfleet/hangar/internal/db/repositories"
	"uasfleet/hangar/internal/models/dtos"
	gormModels "uasfleet/hangar/internal/models/gorm"

	"gorm.io/gorm"
)

// SearchLimit caps operator search results.
const SearchLimit = 10

// ReviewDecision is an admin's verdict on a pending join request.
type ReviewDecision string

const (
	DecisionAccept ReviewDecision = "accept"
	DecisionReject ReviewDecision = "reject"
)

// OperatorService owns the operator lifecycle: creation, discovery, join
// requests, request review and member removal.
type OperatorService struct {
	db         *gorm.DB
	searchRepo *repositories.OperatorRepository
	tenants    *TenantService
}

// NewOperatorService creates a new operator service
func NewOperatorService(db *gorm.DB, searchRepo *repositories.OperatorRepository, tenants *TenantService) *OperatorService {
	return &OperatorService{
		db:         db,
		searchRepo: searchRepo,
		tenants:    tenants,
	}
}

// IdentityMeta carries the identity-provider attributes needed to lazily
// create a pilot profile.
type IdentityMeta struct {
	PilotID     string
	Email       string
	DisplayName string
}

// CreateOperator creates an operator with a slug derived from its name,
// ensures the creating pilot has a profile, and grants that pilot an
// immediately active admin membership flagged operador_activo. Runs in a
// single transaction. Slug collisions are resolved by numeric suffixing
// (-2, -3, …).
func (s *OperatorService) CreateOperator(
	ctx context.Context,
	identity IdentityMeta,
	name string,
	aesaNumber, phone, address *string,
) (*gormModels.Operator, error) {
	slug := common.Slugify(name)
	if slug == "" {
		return nil, fmt.Errorf("operator name %q produces an empty slug", name)
	}

	var operator gormModels.Operator

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		uniqueSlug, err := s.nextFreeSlug(tx, slug)
		if err != nil {
			return err
		}

		operator = gormModels.Operator{
			Name:       name,
			Slug:       uniqueSlug,
			AESANumber: aesaNumber,
			Phone:      phone,
			Address:    address,
			IsActive:   true,
		}
		if err := tx.Create(&operator).Error; err != nil {
			return fmt.Errorf("failed to create operator: %w", err)
		}

		if err := ensurePilotProfile(tx, identity); err != nil {
			return err
		}

		// The new context replaces whatever was active before. Deactivate
		// first: the partial unique index on active memberships rejects a
		// transaction that would ever hold two, including a concurrent
		// switch racing this create.
		if err := tx.Model(&gormModels.Membership{}).
			Where("pilot_id = ? AND operador_activo = ?", identity.PilotID, true).
			Update("operador_activo", false).Error; err != nil {
			return fmt.Errorf("failed to deactivate previous memberships: %w", err)
		}

		adminMembership := gormModels.Membership{
			PilotID:         identity.PilotID,
			OperatorID:      operator.ID,
			Role:            constants.RoleAdmin,
			RequestState:    constants.RequestActive,
			MembershipState: constants.MembershipActive,
			OperadorActivo:  true,
		}
		if err := tx.Create(&adminMembership).Error; err != nil {
			return fmt.Errorf("failed to create admin membership: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	s.tenants.InvalidateResolution(identity.PilotID)
	log.Printf("Created operator %s (slug %s) with admin %s", operator.Name, operator.Slug, identity.PilotID)

	return &operator, nil
}

// nextFreeSlug returns base, or base-2, base-3, and so on, picking the first
// value without an existing operator row.
func (s *OperatorService) nextFreeSlug(tx *gorm.DB, base string) (string, error) {
	candidate := base
	for i := 2; ; i++ {
		var count int64
		if err := tx.Model(&gormModels.Operator{}).
			Where("slug = ?", candidate).
			Count(&count).Error; err != nil {
			return "", fmt.Errorf("failed to check slug availability: %w", err)
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

// RequestJoin records a pilot's intent to join an operator. The membership
// starts pending in both states and grants no access.
func (s *OperatorService) RequestJoin(ctx context.Context, identity IdentityMeta, operatorID string) (*gormModels.Membership, error) {
	var membership gormModels.Membership

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var operator gormModels.Operator
		err := tx.Where("id = ? AND is_active = ?", operatorID, true).First(&operator).Error
		if err == gorm.ErrRecordNotFound {
			return ErrOperatorNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to fetch operator: %w", err)
		}

		var existing gormModels.Membership
		err = tx.Where("pilot_id = ? AND operator_id = ?", identity.PilotID, operatorID).First(&existing).Error
		if err == nil {
			return ErrAlreadyMember
		}
		if err != gorm.ErrRecordNotFound {
			return fmt.Errorf("failed to check existing membership: %w", err)
		}

		if err := ensurePilotProfile(tx, identity); err != nil {
			return err
		}

		membership = gormModels.Membership{
			PilotID:         identity.PilotID,
			OperatorID:      operatorID,
			Role:            constants.DefaultJoinRole,
			RequestState:    constants.RequestPending,
			MembershipState: constants.MembershipPending,
			OperadorActivo:  false,
		}
		if err := tx.Create(&membership).Error; err != nil {
			return fmt.Errorf("failed to create join request: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	log.Printf("Pilot %s requested to join operator %s", identity.PilotID, operatorID)
	return &membership, nil
}

// ReviewJoinRequest applies an admin decision to a pending join request.
// Accepting activates both states but does NOT select the operator as the
// joining pilot's working context; the pilot switches separately. Rejecting
// sets the request rejected and the membership inactive so the two enums
// never disagree.
func (s *OperatorService) ReviewJoinRequest(ctx context.Context, operatorID, membershipID string, decision ReviewDecision) (*gormModels.Membership, error) {
	var membership gormModels.Membership

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ? AND operator_id = ?", membershipID, operatorID).First(&membership).Error
		if err == gorm.ErrRecordNotFound {
			return ErrOperatorNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to fetch membership: %w", err)
		}

		if membership.RequestState != constants.RequestPending {
			return ErrRequestNotPending
		}

		switch decision {
		case DecisionAccept:
			membership.RequestState = constants.RequestActive
			membership.MembershipState = constants.MembershipActive
		case DecisionReject:
			membership.RequestState = constants.RequestRejected
			membership.MembershipState = constants.MembershipInactive
		default:
			return fmt.Errorf("unknown review decision %q", decision)
		}

		if err := tx.Save(&membership).Error; err != nil {
			return fmt.Errorf("failed to update membership: %w", err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	s.tenants.InvalidateResolution(membership.PilotID)
	return &membership, nil
}

// Search performs a case-insensitive substring match against operator name
// and AESA number, capped at SearchLimit rows.
func (s *OperatorService) Search(ctx context.Context, query string, limit int) ([]dtos.OperatorSummary, error) {
	if limit <= 0 || limit > SearchLimit {
		limit = SearchLimit
	}

	rows, err := s.searchRepo.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("operator search failed: %w", err)
	}

	results := make([]dtos.OperatorSummary, 0, len(rows))
	for _, op := range rows {
		results = append(results, dtos.OperatorSummary{
			ID:         op.ID,
			Name:       op.Name,
			Slug:       op.Slug,
			AESANumber: op.AESANumber,
		})
	}
	return results, nil
}

// RemoveMember hard-deletes a membership. The pilot's flight history is
// deliberately preserved; historical records outlive team membership.
func (s *OperatorService) RemoveMember(ctx context.Context, operatorID, membershipID string) error {
	var membership gormModels.Membership
	err := s.db.WithContext(ctx).
		Where("id = ? AND operator_id = ?", membershipID, operatorID).
		First(&membership).Error
	if err == gorm.ErrRecordNotFound {
		return ErrOperatorNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to fetch membership: %w", err)
	}

	if err := s.db.WithContext(ctx).Delete(&membership).Error; err != nil {
		return fmt.Errorf("failed to delete membership: %w", err)
	}

	s.tenants.InvalidateResolution(membership.PilotID)
	log.Printf("Removed membership %s (pilot %s) from operator %s", membershipID, membership.PilotID, operatorID)
	return nil
}

// ensurePilotProfile lazily creates the application-level profile for an
// identity if it does not exist yet.
func ensurePilotProfile(tx *gorm.DB, identity IdentityMeta) error {
	var pilot gormModels.Pilot
	err := tx.Where("id = ?", identity.PilotID).First(&pilot).Error
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return fmt.Errorf("failed to check pilot profile: %w", err)
	}

	pilot = gormModels.Pilot{
		ID:          identity.PilotID,
		Email:       identity.Email,
		DisplayName: identity.DisplayName,
	}
	if err := tx.Create(&pilot).Error; err != nil {
		return fmt.Errorf("failed to create pilot profile: %w", err)
	}
	return nil
}
