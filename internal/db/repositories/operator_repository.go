package repositories

import (
	"context"

	"uasfleet/hangar/internal/constants"
	"uasfleet/hangar/internal/models/entities"

	"github.com/jmoiron/sqlx"
)

// OperatorRepository serves the raw-SQL read paths: public operator search
// and slug routing lookups.
type OperatorRepository struct {
	db *sqlx.DB
}

func NewOperatorRepository(db *sqlx.DB) *OperatorRepository {
	return &OperatorRepository{db}
}

// Search runs a case-insensitive substring match against operator name and
// AESA number. Results never include membership data.
func (r *OperatorRepository) Search(ctx context.Context, query string, limit int) ([]entities.Operator, error) {
	var operators []entities.Operator

	err := r.db.SelectContext(ctx, &operators, constants.SearchOperators, query, limit)
	if err != nil {
		return nil, err
	}

	return operators, nil
}

// FindBySlug resolves the durable routing identifier to an operator row.
func (r *OperatorRepository) FindBySlug(ctx context.Context, slug string) (*entities.Operator, error) {
	var operator entities.Operator

	err := r.db.QueryRowxContext(ctx, constants.GetOperatorBySlug, slug).StructScan(&operator)
	if err != nil {
		return nil, err
	}

	return &operator, nil
}
