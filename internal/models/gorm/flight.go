package gorm

import "time"

// Flight is a logged drone flight. Rows reference both the operator and the
// pilot directly so that deleting a membership never orphans flight history.
type Flight struct {
	ID          string    `gorm:"column:id;primaryKey;type:uuid"`
	OperatorID  string    `gorm:"column:operator_id;type:uuid;index"`
	PilotID     string    `gorm:"column:pilot_id;type:uuid;index"`
	DroneID     *string   `gorm:"column:drone_id;type:uuid"`
	Location    string    `gorm:"column:location"`
	DurationMin int       `gorm:"column:duration_min"`
	FlownAt     time.Time `gorm:"column:flown_at"`
	Notes       *string   `gorm:"column:notes"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Flight) TableName() string {
	return "flights"
}
