package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/stockward/inventory-service/internal/model"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) GetByID(ctx context.Context, id string) (*model.Warehouse, error) {
	var w model.Warehouse
	err := r.DB.GetContext(ctx, &w, `SELECT * FROM warehouses WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &w, nil
}

func (r *PGRepository) GetByCode(ctx context.Context, code string) (*model.Warehouse, error) {
	var w model.Warehouse
	err := r.DB.GetContext(ctx, &w, `SELECT * FROM warehouses WHERE code = $1`, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &w, nil
}

func (r *PGRepository) List(ctx context.Context, activeOnly bool) ([]model.Warehouse, error) {
	query := `SELECT * FROM warehouses`
	if activeOnly {
		query += ` WHERE is_active = true`
	}
	query += ` ORDER BY code`

	var items []model.Warehouse
	err := r.DB.SelectContext(ctx, &items, query)
	return items, err
}

func (r *PGRepository) Create(ctx context.Context, w *model.Warehouse) error {
	query := `
        INSERT INTO warehouses (
            id, code, name, capacity, current_occupancy, is_active, created_at, updated_at
        )
        VALUES (
            :id, :code, :name, :capacity, :current_occupancy, :is_active, :created_at, :updated_at
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, w)
	return err
}

func (r *PGRepository) Update(ctx context.Context, w *model.Warehouse) error {
	query := `
        UPDATE warehouses
        SET name = :name,
            capacity = :capacity,
            is_active = :is_active,
            updated_at = :updated_at
        WHERE id = :id
    `
	_, err := r.DB.NamedExecContext(ctx, query, w)
	return err
}

// ApplyOccupancyDelta is the single statement allowed to touch
// current_occupancy. The WHERE clause re-checks the capacity bounds so a
// concurrent change cannot slip the row outside 0..capacity.
func (r *PGRepository) ApplyOccupancyDelta(ctx context.Context, id string, delta int) (*model.Warehouse, error) {
	var w model.Warehouse
	err := r.DB.GetContext(ctx, &w, `
        UPDATE warehouses
        SET current_occupancy = current_occupancy + $2,
            updated_at = NOW()
        WHERE id = $1
          AND current_occupancy + $2 >= 0
          AND current_occupancy + $2 <= capacity
        RETURNING *
    `, id, delta)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &w, nil
}
