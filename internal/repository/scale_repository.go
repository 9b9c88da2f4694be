package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/gradesync/internal/models"
)

// ScaleRepository reads grading scales.
type ScaleRepository struct {
	db sqlx.ExtContext
}

// NewScaleRepository constructs a ScaleRepository.
func NewScaleRepository(db sqlx.ExtContext) *ScaleRepository {
	return &ScaleRepository{db: db}
}

// FindByName returns the named scale or sql.ErrNoRows.
func (r *ScaleRepository) FindByName(ctx context.Context, name string) (*models.Scale, error) {
	query := r.db.Rebind(`SELECT id, name, decimals, min, max FROM scale WHERE name = ?`)
	var scale models.Scale
	if err := sqlx.GetContext(ctx, r.db, &scale, query, name); err != nil {
		return nil, err
	}
	return &scale, nil
}

// List returns all scales.
func (r *ScaleRepository) List(ctx context.Context) ([]models.Scale, error) {
	var scales []models.Scale
	if err := sqlx.SelectContext(ctx, r.db, &scales, `SELECT id, name, decimals, min, max FROM scale ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list scales: %w", err)
	}
	return scales, nil
}
