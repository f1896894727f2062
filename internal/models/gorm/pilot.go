package gorm

import "time"

// Pilot is the application-level profile for an identity-provider principal.
// ID equals the identity id; the row is created lazily on the first operator
// creation or join action, never on read.
type Pilot struct {
	ID               string     `gorm:"column:id;primaryKey;type:uuid"`
	Email            string     `gorm:"column:email;uniqueIndex"`
	DisplayName      string     `gorm:"column:display_name"`
	Phone            *string    `gorm:"column:phone"`
	TelegramChatID   *int64     `gorm:"column:telegram_chat_id"`
	TelegramUsername *string    `gorm:"column:telegram_username"`
	TelegramVerified bool       `gorm:"column:telegram_verified;default:false"`
	PlanID           *string    `gorm:"column:plan_id"`
	FlightsThisMonth int        `gorm:"column:flights_this_month;default:0"`
	TelegramLinkedAt *time.Time `gorm:"column:telegram_linked_at"`
	CreatedAt        time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time  `gorm:"column:updated_at;autoUpdateTime"`

	// Relationships
	Memberships []Membership `gorm:"foreignKey:PilotID"`
}

// TableName specifies the table name for GORM
func (Pilot) TableName() string {
	return "pilots"
}
