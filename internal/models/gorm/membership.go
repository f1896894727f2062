package gorm

import (
	"time"

	"uasfleet/hangar/internal/constants"
)

// Membership is the pilot↔operator relation carrying the per-tenant role,
// the join-request state, and the exactly-one-active working-context flag.
// For a given pilot at most one row may have operador_activo=true: the
// tenant service flips the flag in a single conditional UPDATE, and the
// partial unique index on (pilot_id) WHERE operador_activo backs that up
// at the database level.
type Membership struct {
	ID              string                    `gorm:"column:id;primaryKey;type:uuid"`
	PilotID         string                    `gorm:"column:pilot_id;type:uuid;index:idx_membership_pilot_operator,unique,priority:1;index:idx_membership_active_context,unique,where:operador_activo"`
	OperatorID      string                    `gorm:"column:operator_id;type:uuid;index:idx_membership_pilot_operator,unique,priority:2"`
	Role            constants.MembershipRole  `gorm:"column:role;type:smallint"`
	RequestState    constants.RequestState    `gorm:"column:request_state;type:request_state"`
	MembershipState constants.MembershipState `gorm:"column:membership_state;type:membership_state"`
	OperadorActivo  bool                      `gorm:"column:operador_activo;default:false"`
	JoinedAt        time.Time                 `gorm:"column:joined_at;autoCreateTime"`
	UpdatedAt       time.Time                 `gorm:"column:updated_at;autoUpdateTime"`

	// Relationships
	Pilot    Pilot    `gorm:"foreignKey:PilotID"`
	Operator Operator `gorm:"foreignKey:OperatorID"`
}

// TableName specifies the table name for GORM
func (Membership) TableName() string {
	return "memberships"
}
