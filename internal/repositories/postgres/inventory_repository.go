package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chrisdamba/retailiq/internal/analytics"
	"github.com/chrisdamba/retailiq/internal/models"
	"github.com/chrisdamba/retailiq/internal/repositories"
)

type InventoryRepository struct {
	pool  *pgxpool.Pool
	clock analytics.Clock
}

func NewInventoryRepository(pool *pgxpool.Pool, clock analytics.Clock) *InventoryRepository {
	if clock == nil {
		clock = analytics.SystemClock
	}
	return &InventoryRepository{pool: pool, clock: clock}
}

const selectItems = `
        SELECT product_id, product_name, category, current_stock, reorder_point,
            max_stock, cost_per_unit, sell_price, supplier, lead_time_days, last_restocked
        FROM inventory_items`

func scanItem(row pgx.Row) (models.InventoryItem, error) {
	var item models.InventoryItem
	err := row.Scan(
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
	rows, err := r.pool.Query(ctx, selectItems+` ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]models.InventoryItem, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *InventoryRepository) GetItem(ctx context.Context, productID string) (*models.InventoryItem, error) {
	item, err := scanItem(r.pool.QueryRow(ctx, selectItems+` WHERE product_id = $1`, productID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("product %q: %w", productID, repositories.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *InventoryRepository) UpdateStock(ctx context.Context, productID string, newStock int) error {
	if newStock < 0 {
		return repositories.ErrInvalidStock
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE inventory_items SET current_stock = $1, last_restocked = $2 WHERE product_id = $3`,
		newStock, r.clock.Now().UnixMilli(), productID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %q: %w", productID, repositories.ErrNotFound)
	}
	return nil
}

func (r *InventoryRepository) BulkCreate(ctx context.Context, items []models.InventoryItem) error {
	_, err := r.pool.CopyFrom(
		ctx,
		pgx.Identifier{"inventory_items"},
		[]string{
			"product_id", "product_name", "category", "current_stock", "reorder_point",
			"max_stock", "cost_per_unit", "sell_price", "supplier", "lead_time_days",
			"last_restocked",
		},
		pgx.CopyFromSlice(len(items), func(i int) ([]interface{}, error) {
			return []interface{}{
				items[i].ProductID,
				items[i].ProductName,
				items[i].Category,
				items[i].CurrentStock,
				items[i].ReorderPoint,
				items[i].MaxStock,
				items[i].CostPerUnit,
				items[i].SellPrice,
				items[i].Supplier,
				items[i].LeadTimeDays,
				items[i].LastRestocked,
			}, nil
		}),
	)
	return err
}

func (r *InventoryRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM inventory_items").Scan(&count)
	return count, err
}

func (r *InventoryRepository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, "TRUNCATE TABLE inventory_items")
	return err
}
