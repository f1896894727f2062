package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"uasfleet/hangar/internal/common"
	"uasfleet/hangar/internal/constants"
	"uasfleet/hangar/internal/models/dtos"
	gormModels "uasfleet/hangar/internal/models/gorm"

	"gorm.io/gorm"
)

const activeOperatorCacheTTL = 60 * time.Second

func activeOperatorCacheKey(pilotID string) string {
	return "active_operator:" + pilotID
}

// TenantService resolves and mutates which operator is the active working
// context for a pilot. Every tenant-scoped read in the API goes through
// ResolveActiveOperator before touching operator data.
type TenantService struct {
	db       *gorm.DB
	cache    common.CacheInterface
	sessions *common.SessionService
}

// NewTenantService creates a new tenant service. sessions may be nil when no
// Redis-backed session store is in play (tests, workers).
func NewTenantService(db *gorm.DB, cache common.CacheInterface, sessions *common.SessionService) *TenantService {
	return &TenantService{
		db:       db,
		cache:    cache,
		sessions: sessions,
	}
}

// ResolveActiveOperator returns the membership row flagged operador_activo
// for the pilot, joined with operator details. Read-only; returns
// ErrNoActiveOperator when the pilot has no working context. Successful
// resolutions are cached briefly and invalidated on switch.
func (s *TenantService) ResolveActiveOperator(ctx context.Context, pilotID string) (*dtos.ActiveOperatorResponse, error) {
	if cached, found := s.cache.Get(activeOperatorCacheKey(pilotID)); found {
		if resp, ok := cached.(*dtos.ActiveOperatorResponse); ok {
			return resp, nil
		}
	}

	var m gormModels.Membership
	err := s.db.WithContext(ctx).
		Preload("Operator").
		Where("pilot_id = ? AND operador_activo = ?", pilotID, true).
		First(&m).Error

	if err == gorm.ErrRecordNotFound {
		return nil, ErrNoActiveOperator
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve active operator: %w", err)
	}

	resp := &dtos.ActiveOperatorResponse{
		MembershipID: m.ID,
		OperatorID:   m.OperatorID,
		OperatorName: m.Operator.Name,
		Slug:         m.Operator.Slug,
		Role:         m.Role.String(),
		JoinedAt:     m.JoinedAt,
	}

	s.cache.Set(activeOperatorCacheKey(pilotID), resp, activeOperatorCacheTTL)
	return resp, nil
}

// ResolvePilotProfile looks up the pilot profile for an identity. It never
// creates a profile on read; absence is reported as ErrNoProfile.
func (s *TenantService) ResolvePilotProfile(ctx context.Context, pilotID string) (*gormModels.Pilot, error) {
	var pilot gormModels.Pilot
	err := s.db.WithContext(ctx).
		Where("id = ?", pilotID).
		First(&pilot).Error

	if err == gorm.ErrRecordNotFound {
		return nil, ErrNoProfile
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve pilot profile: %w", err)
	}

	return &pilot, nil
}

// SwitchActiveOperator moves the pilot's working context to the target
// operator. Deactivate-all then activate-one run inside one transaction, and
// the partial unique index on (pilot_id) WHERE operador_activo makes the
// database itself reject any interleaving of two concurrent switches that
// would commit a second active row: the losing transaction fails with a
// unique violation and rolls back instead of corrupting the context.
// Requires an existing fully-active membership with the target; nothing is
// mutated on failure.
func (s *TenantService) SwitchActiveOperator(ctx context.Context, pilotID, targetOperatorID string) (*dtos.ActiveOperatorResponse, error) {
	var target gormModels.Membership

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Preload("Operator").
			Where("pilot_id = ? AND operator_id = ? AND request_state = ? AND membership_state = ?",
				pilotID, targetOperatorID, constants.RequestActive, constants.MembershipActive).
			First(&target).Error

		if err == gorm.ErrRecordNotFound {
			return ErrNotAMember
		}
		if err != nil {
			return fmt.Errorf("failed to fetch target membership: %w", err)
		}

		// Order matters: the old row must leave the partial index before
		// the new one enters it, or the statement trips its own guard.
		if err := tx.Model(&gormModels.Membership{}).
			Where("pilot_id = ? AND operador_activo = ?", pilotID, true).
			Update("operador_activo", false).Error; err != nil {
			return fmt.Errorf("failed to deactivate memberships: %w", err)
		}

		if err := tx.Model(&gormModels.Membership{}).
			Where("id = ?", target.ID).
			Update("operador_activo", true).Error; err != nil {
			return fmt.Errorf("failed to activate target membership: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	// Any previously resolved context is stale now.
	s.cache.Delete(activeOperatorCacheKey(pilotID))
	if s.sessions != nil {
		if err := s.sessions.InvalidatePilotSessions(ctx, pilotID); err != nil {
			log.Printf("Failed to invalidate sessions for pilot %s: %v", pilotID, err)
		}
	}

	log.Printf("Pilot %s switched active operator to %s (%s)", pilotID, target.Operator.Name, targetOperatorID)

	resp := &dtos.ActiveOperatorResponse{
		MembershipID: target.ID,
		OperatorID:   target.OperatorID,
		OperatorName: target.Operator.Name,
		Slug:         target.Operator.Slug,
		Role:         target.Role.String(),
		JoinedAt:     target.JoinedAt,
	}
	return resp, nil
}

// InvalidateResolution drops any cached active-operator resolution for the
// pilot. Used when memberships change outside of a switch (removal, review).
func (s *TenantService) InvalidateResolution(pilotID string) {
	s.cache.Delete(activeOperatorCacheKey(pilotID))
}
