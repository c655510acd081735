package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/stockward/inventory-service/internal/alert/dto"
	"github.com/stockward/inventory-service/internal/model"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

// alertRow carries the metadata bag as a jsonb column.
type alertRow struct {
	model.StockAlert
	MetadataJSON []byte `db:"metadata"`
}

func (r *PGRepository) GetByID(ctx context.Context, id string) (*model.StockAlert, error) {
	var row alertRow
	err := r.DB.GetContext(ctx, &row, `SELECT * FROM stock_alerts WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return fromRow(&row)
}

func (r *PGRepository) FindByProduct(ctx context.Context, productID string, activeOnly bool) ([]model.StockAlert, error) {
	query := `SELECT * FROM stock_alerts WHERE product_id = $1`
	if activeOnly {
		query += ` AND is_active = true`
	}

	var rows []alertRow
	if err := r.DB.SelectContext(ctx, &rows, query, productID); err != nil {
		return nil, err
	}
	return fromRows(rows)
}

func (r *PGRepository) List(ctx context.Context, f *dto.AlertFilters) ([]model.StockAlert, int, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.ProductID != "" {
		conditions = append(conditions, "product_id = :product_id")
		args["product_id"] = f.ProductID
	}
	if f.ActiveOnly {
		conditions = append(conditions, "is_active = true")
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var count int
	countQuery := "SELECT count(*) FROM stock_alerts" + whereClause
	crows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	defer crows.Close()
	if crows.Next() {
		crows.Scan(&count)
	}

	query := "SELECT * FROM stock_alerts" + whereClause + " ORDER BY created_at DESC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	var rows []alertRow
	if err := nstmt.SelectContext(ctx, &rows, args); err != nil {
		return nil, 0, err
	}
	items, err := fromRows(rows)
	return items, count, err
}

func (r *PGRepository) Create(ctx context.Context, a *model.StockAlert) error {
	row, err := toRow(a)
	if err != nil {
		return err
	}
	query := `
        INSERT INTO stock_alerts (
            id, product_id, warehouse_id, alert_type, threshold, current_value,
            is_active, is_acknowledged, acknowledged_by, acknowledged_at,
            notification_sent, notified_at, metadata, created_at, updated_at
        )
        VALUES (
            :id, :product_id, :warehouse_id, :alert_type, :threshold, :current_value,
            :is_active, :is_acknowledged, :acknowledged_by, :acknowledged_at,
            :notification_sent, :notified_at, :metadata, :created_at, :updated_at
        )
    `
	_, err = r.DB.NamedExecContext(ctx, query, row)
	return err
}

func (r *PGRepository) Update(ctx context.Context, a *model.StockAlert) error {
	row, err := toRow(a)
	if err != nil {
		return err
	}
	query := `
        UPDATE stock_alerts
        SET threshold = :threshold,
            current_value = :current_value,
            is_active = :is_active,
            is_acknowledged = :is_acknowledged,
            acknowledged_by = :acknowledged_by,
            acknowledged_at = :acknowledged_at,
            notification_sent = :notification_sent,
            notified_at = :notified_at,
            metadata = :metadata,
            updated_at = :updated_at
        WHERE id = :id
    `
	_, err = r.DB.NamedExecContext(ctx, query, row)
	return err
}

func toRow(a *model.StockAlert) (*alertRow, error) {
	meta := a.Metadata
	if meta == nil {
		meta = map[string]string{}
	}
	payload, err := json.Marshal(meta)
	if err != nil {
		return nil, err
	}
	return &alertRow{StockAlert: *a, MetadataJSON: payload}, nil
}

func fromRow(row *alertRow) (*model.StockAlert, error) {
	a := row.StockAlert
	if len(row.MetadataJSON) > 0 {
		if err := json.Unmarshal(row.MetadataJSON, &a.Metadata); err != nil {
			return nil, err
		}
	}
	return &a, nil
}

func fromRows(rows []alertRow) ([]model.StockAlert, error) {
	items := make([]model.StockAlert, 0, len(rows))
	for i := range rows {
		a, err := fromRow(&rows[i])
		if err != nil {
			return nil, err
		}
		items = append(items, *a)
	}
	return items, nil
}
