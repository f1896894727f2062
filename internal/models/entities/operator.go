package entities

import "time"

// Operator is the sqlx-side row used by raw queries (search, slug lookup).
type Operator struct {
	ID         string    `db:"id"`
	Name       string    `db:"name"`
	Slug       string    `db:"slug"`
	AESANumber *string   `db:"aesa_number"`
	IsActive   bool      `db:"is_active"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}
