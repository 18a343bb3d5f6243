package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/chrisdamba/retailiq/internal/analytics"
	"github.com/chrisdamba/retailiq/internal/models"
	"github.com/chrisdamba/retailiq/internal/repositories"
)

// InventoryRepository persists the stored inventory fields. Derived fields
// are recomputed by the analytics engines and never written.
type InventoryRepository struct {
	db    *sql.DB
	clock analytics.Clock
}

func NewInventoryRepository(db *sql.DB, clock analytics.Clock) *InventoryRepository {
	if clock == nil {
		clock = analytics.SystemClock
	}
	return &InventoryRepository{db: db, clock: clock}
}

const selectItems = `SELECT product_id, product_name, category, current_stock, reorder_point,
	max_stock, cost_per_unit, sell_price, supplier, lead_time_days, last_restocked FROM inventory_items`

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (models.InventoryItem, error) {
	var item models.InventoryItem
	err := s.Scan(
		&item.ProductID,
		&item.ProductName,
		&item.Category,
		&item.CurrentStock,
		&item.ReorderPoint,
		&item.MaxStock,
		&item.CostPerUnit,
		&item.SellPrice,
		&item.Supplier,
		&item.LeadTimeDays,
		&item.LastRestocked,
	)
	return item, err
}

func (r *InventoryRepository) ListItems(ctx context.Context) ([]models.InventoryItem, error) {
	rows, err := r.db.QueryContext(ctx, selectItems+` ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory: %w", err)
	}
	defer rows.Close()

	items := make([]models.InventoryItem, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan inventory item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *InventoryRepository) GetItem(ctx context.Context, productID string) (*models.InventoryItem, error) {
	item, err := scanItem(r.db.QueryRowContext(ctx, selectItems+` WHERE product_id = ?`, productID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product %q: %w", productID, repositories.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product %s: %w", productID, err)
	}
	return &item, nil
}

func (r *InventoryRepository) UpdateStock(ctx context.Context, productID string, newStock int) error {
	if newStock < 0 {
		return repositories.ErrInvalidStock
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE inventory_items SET current_stock = ?, last_restocked = ? WHERE product_id = ?`,
		newStock, r.clock.Now().UnixMilli(), productID,
	)
	if err != nil {
		return fmt.Errorf("failed to update stock of %s: %w", productID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("product %q: %w", productID, repositories.ErrNotFound)
	}
	return nil
}

func (r *InventoryRepository) BulkCreate(ctx context.Context, items []models.InventoryItem) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	stmt, err := dbTx.PrepareContext(ctx, `INSERT INTO inventory_items
		(product_id, product_name, category, current_stock, reorder_point, max_stock,
		cost_per_unit, sell_price, supplier, lead_time_days, last_restocked)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, item := range items {
		if _, err := stmt.ExecContext(ctx,
			item.ProductID,
			item.ProductName,
			item.Category,
			item.CurrentStock,
			item.ReorderPoint,
			item.MaxStock,
			item.CostPerUnit,
			item.SellPrice,
			item.Supplier,
			item.LeadTimeDays,
			item.LastRestocked,
		); err != nil {
			return fmt.Errorf("failed to insert product %s: %w", item.ProductID, err)
		}
	}
	return dbTx.Commit()
}

func (r *InventoryRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM inventory_items").Scan(&count)
	return count, err
}

func (r *InventoryRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM inventory_items")
	return err
}
