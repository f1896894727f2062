package constants

const (
	SearchOperators = `
	SELECT id, name, slug, aesa_number, is_active, created_at, updated_at
	FROM operators
	WHERE is_active = true
	  AND (name ILIKE '%' || $1 || '%' OR aesa_number ILIKE '%' || $1 || '%')
	ORDER BY name ASC
	LIMIT $2
	`

	GetStatusByApiKey = `
	SELECT id, key, label, status, created_at FROM api_keys WHERE key = $1
	`

	GetOperatorBySlug = `
	SELECT id, name, slug, aesa_number, is_active, created_at, updated_at
	FROM operators WHERE slug = $1
	`
)
