package constants

import (
	"database/sql/driver"
	"fmt"
)

// MembershipRole mirrors the smallint 'role' column on memberships
type MembershipRole int16

const (
	RoleAdmin    MembershipRole = 1
	RoleOperator MembershipRole = 2
	RoleViewer   MembershipRole = 3
)

// DefaultJoinRole is assigned to memberships created through a join request.
const DefaultJoinRole = RoleOperator

func (r MembershipRole) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleOperator:
		return "operator"
	case RoleViewer:
		return "viewer"
	}
	return fmt.Sprintf("role(%d)", int16(r))
}

// RequestState mirrors the Postgres ENUM 'request_state'
type RequestState string

const (
	RequestPending  RequestState = "pending"
	RequestActive   RequestState = "active"
	RequestRejected RequestState = "rejected"
)

func (s RequestState) String() string { return string(s) }

/* ---------- DB adapters so sqlx (or database/sql) scans/values cleanly ---------- */

// Scan implements the sql.Scanner interface
func (s *RequestState) Scan(src interface{}) error {
	if src == nil {
		*s = ""
		return nil
	}
	switch v := src.(type) {
	case string:
		*s = RequestState(v)
	case []byte:
		*s = RequestState(v)
	default:
		return fmt.Errorf("RequestState: cannot scan type %T", src)
	}
	return nil
}

// Value implements the driver.Valuer interface
func (s RequestState) Value() (driver.Value, error) { return string(s), nil }

// MembershipState mirrors the Postgres ENUM 'membership_state'
type MembershipState string

const (
	MembershipPending  MembershipState = "pending"
	MembershipActive   MembershipState = "active"
	MembershipInactive MembershipState = "inactive"
)

func (s MembershipState) String() string { return string(s) }

// Scan implements the sql.Scanner interface
func (s *MembershipState) Scan(src interface{}) error {
	if src == nil {
		*s = ""
		return nil
	}
	switch v := src.(type) {
	case string:
		*s = MembershipState(v)
	case []byte:
		*s = MembershipState(v)
	default:
		return fmt.Errorf("MembershipState: cannot scan type %T", src)
	}
	return nil
}

// Value implements the driver.Valuer interface
func (s MembershipState) Value() (driver.Value, error) { return string(s), nil }
