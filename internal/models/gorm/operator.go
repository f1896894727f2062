package gorm

import "time"

// Operator is a tenant: an organizational account owning drones, memberships
// and flights. The slug is generated once from the name and then treated as
// the immutable routing identifier.
type Operator struct {
	ID         string    `gorm:"column:id;primaryKey;type:uuid"`
	Name       string    `gorm:"column:name"`
	Slug       string    `gorm:"column:slug;uniqueIndex"`
	AESANumber *string   `gorm:"column:aesa_number"`
	Phone      *string   `gorm:"column:phone"`
	Address    *string   `gorm:"column:address"`
	IsActive   bool      `gorm:"column:is_active;default:true"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`

	// Relationships
	Memberships []Membership `gorm:"foreignKey:OperatorID"`
}

// TableName specifies the table name for GORM
func (Operator) TableName() string {
	return "operators"
}
