package gorm

import "time"

// TelegramLinkCode is a short-lived one-time code binding a pending Telegram
// linkage to a pilot. Codes expire 10 minutes after issuance and are consumed
// exactly once.
type TelegramLinkCode struct {
	ID        string     `gorm:"column:id;primaryKey;type:uuid"`
	Code      string     `gorm:"column:code;uniqueIndex"`
	PilotID   string     `gorm:"column:pilot_id;type:uuid;index"`
	ExpiresAt time.Time  `gorm:"column:expires_at"`
	Used      bool       `gorm:"column:used;default:false"`
	UsedAt    *time.Time `gorm:"column:used_at"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}

// TableName specifies the table name for GORM
func (TelegramLinkCode) TableName() string {
	return "telegram_link_codes"
}
