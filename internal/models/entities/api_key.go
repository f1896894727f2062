package entities

import "time"

// ApiKey authenticates bot integrations (X-API-Key header).
type ApiKey struct {
	ID        string    `db:"id"`
	Key       string    `db:"key"`
	Label     string    `db:"label"`
	Status    bool      `db:"status"`
	CreatedAt time.Time `db:"created_at"`
}
