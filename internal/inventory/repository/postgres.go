package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/stockward/inventory-service/internal/inventory/dto"
	"github.com/stockward/inventory-service/internal/model"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) GetByProductAndWarehouse(ctx context.Context, productID, warehouseID string) (*model.ProductInventory, error) {
	var inv model.ProductInventory
	err := r.DB.GetContext(ctx, &inv, `
        SELECT * FROM product_inventory
        WHERE product_id = $1 AND warehouse_id = $2
    `, productID, warehouseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &inv, nil
}

func (r *PGRepository) LevelsByProduct(ctx context.Context, productID string) ([]model.StockLevel, error) {
	var levels []model.StockLevel
	err := r.DB.SelectContext(ctx, &levels, `
        SELECT i.warehouse_id,
               w.code AS warehouse_code,
               i.quantity,
               i.reserved_quantity,
               i.quantity - i.reserved_quantity AS available_quantity,
               i.unit_cost
        FROM product_inventory i
        JOIN warehouses w ON w.id = i.warehouse_id
        WHERE i.product_id = $1
        ORDER BY w.code
    `, productID)
	return levels, err
}

func (r *PGRepository) FindReorderNeeded(ctx context.Context, f *dto.ReorderFilters) ([]model.ProductInventory, int, error) {
	conditions := []string{"quantity <= reorder_point", "reorder_point > 0"}
	args := map[string]interface{}{}

	if f.WarehouseID != nil && *f.WarehouseID != "" {
		conditions = append(conditions, "warehouse_id = :warehouse_id")
		args["warehouse_id"] = *f.WarehouseID
	}

	whereClause := " WHERE " + strings.Join(conditions, " AND ")

	var count int
	countQuery := "SELECT count(*) FROM product_inventory" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	if rows.Next() {
		rows.Scan(&count)
	}

	query := "SELECT * FROM product_inventory" + whereClause + " ORDER BY product_id, warehouse_id"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	var items []model.ProductInventory
	err = nstmt.SelectContext(ctx, &items, args)
	return items, count, err
}

func (r *PGRepository) Create(ctx context.Context, inv *model.ProductInventory) error {
	query := `
        INSERT INTO product_inventory (
            id, product_id, warehouse_id, quantity, reserved_quantity,
            minimum_stock, maximum_stock, reorder_point, reorder_quantity,
            unit_cost, batch_number, expiry_date, created_at, updated_at
        )
        VALUES (
            :id, :product_id, :warehouse_id, :quantity, :reserved_quantity,
            :minimum_stock, :maximum_stock, :reorder_point, :reorder_quantity,
            :unit_cost, :batch_number, :expiry_date, :created_at, :updated_at
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, inv)
	return err
}

func (r *PGRepository) Update(ctx context.Context, inv *model.ProductInventory) error {
	query := `
        UPDATE product_inventory
        SET quantity = :quantity,
            reserved_quantity = :reserved_quantity,
            minimum_stock = :minimum_stock,
            maximum_stock = :maximum_stock,
            reorder_point = :reorder_point,
            reorder_quantity = :reorder_quantity,
            unit_cost = :unit_cost,
            batch_number = :batch_number,
            expiry_date = :expiry_date,
            updated_at = :updated_at
        WHERE id = :id
    `
	_, err := r.DB.NamedExecContext(ctx, query, inv)
	return err
}
