package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stockward/inventory-service/internal/model"
	"github.com/stockward/inventory-service/internal/reservation/dto"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) GetByID(ctx context.Context, id string) (*model.StockReservation, error) {
	var res model.StockReservation
	err := r.DB.GetContext(ctx, &res, `SELECT * FROM stock_reservations WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &res, nil
}

func (r *PGRepository) List(ctx context.Context, f *dto.ReservationFilters) ([]model.StockReservation, int, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.ProductID != "" {
		conditions = append(conditions, "product_id = :product_id")
		args["product_id"] = f.ProductID
	}
	if f.WarehouseID != "" {
		conditions = append(conditions, "warehouse_id = :warehouse_id")
		args["warehouse_id"] = f.WarehouseID
	}
	if f.Status != "" {
		conditions = append(conditions, "status = :status")
		args["status"] = f.Status
	}
	if f.OrderID != "" {
		conditions = append(conditions, "order_id = :order_id")
		args["order_id"] = f.OrderID
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var count int
	countQuery := "SELECT count(*) FROM stock_reservations" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	if rows.Next() {
		rows.Scan(&count)
	}

	query := "SELECT * FROM stock_reservations" + whereClause + " ORDER BY created_at DESC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	var items []model.StockReservation
	err = nstmt.SelectContext(ctx, &items, args)
	return items, count, err
}

func (r *PGRepository) Create(ctx context.Context, res *model.StockReservation) error {
	query := `
        INSERT INTO stock_reservations (
            id, product_id, warehouse_id, quantity, status, expires_at,
            order_id, customer_id, created_at, updated_at
        )
        VALUES (
            :id, :product_id, :warehouse_id, :quantity, :status, :expires_at,
            :order_id, :customer_id, :created_at, :updated_at
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, res)
	return err
}

func (r *PGRepository) CompareAndSetStatus(ctx context.Context, id string, to model.ReservationStatus, at time.Time) (bool, error) {
	result, err := r.DB.ExecContext(ctx, `
        UPDATE stock_reservations
        SET status = $2, updated_at = $3
        WHERE id = $1 AND status = 'RESERVED'
    `, id, to, at)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *PGRepository) ExtendIfReserved(ctx context.Context, id string, expiresAt, at time.Time) (bool, error) {
	result, err := r.DB.ExecContext(ctx, `
        UPDATE stock_reservations
        SET expires_at = $2, updated_at = $3
        WHERE id = $1 AND status = 'RESERVED'
    `, id, expiresAt, at)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *PGRepository) FindExpired(ctx context.Context, before time.Time, limit int) ([]model.StockReservation, error) {
	var items []model.StockReservation
	err := r.DB.SelectContext(ctx, &items, `
        SELECT * FROM stock_reservations
        WHERE status = 'RESERVED' AND expires_at < $1
        ORDER BY expires_at
        LIMIT $2
    `, before, limit)
	return items, err
}

func (r *PGRepository) SumReservedQuantity(ctx context.Context, productID, warehouseID string) (int, error) {
	var sum int
	err := r.DB.GetContext(ctx, &sum, `
        SELECT COALESCE(SUM(quantity), 0) FROM stock_reservations
        WHERE product_id = $1 AND warehouse_id = $2 AND status = 'RESERVED'
    `, productID, warehouseID)
	return sum, err
}
