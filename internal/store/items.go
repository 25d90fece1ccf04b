package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/shivam-website/gold-shop/internal/model"
)

// CreateItem creates a new item under the given account. The numeric key is
// assigned by the database and is strictly increasing; gaps left by deleted
// items are never reused.
func CreateItem(ctx context.Context, db *sql.DB, accountID int64, weightTola decimal.Decimal, material string, laborCost decimal.Decimal, description, photoRef string) (*model.Item, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO items (account_id, weight_tola, material, labor_cost, description, photo_ref)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		accountID, weightTola.String(), material, laborCost.String(),
		nullIfEmpty(description), nullIfEmpty(photoRef),
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return GetItem(ctx, db, id)
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// GetItem returns an item by its numeric key, or nil if no such item exists.
func GetItem(ctx context.Context, db *sql.DB, id int64) (*model.Item, error) {
	item := &model.Item{}
	var description, photoRef sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, account_id, weight_tola, material, labor_cost, description, photo_ref, sold, created_at
		 FROM items WHERE id = ?`, id,
	).Scan(&item.ID, &item.AccountID, &item.WeightTola, &item.Material, &item.LaborCost,
		&description, &photoRef, &item.Sold, &item.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	item.Description = description.String
	item.PhotoRef = photoRef.String
	return item, nil
}

// ListAccountItems returns an account's items newest-first. If sold is
// non-nil, only items matching that sold state are returned.
func ListAccountItems(ctx context.Context, db *sql.DB, accountID int64, sold *bool) ([]model.Item, error) {
	var rows *sql.Rows
	var err error

	if sold != nil {
		rows, err = db.QueryContext(ctx,
			`SELECT id, account_id, weight_tola, material, labor_cost, description, photo_ref, sold, created_at
			 FROM items WHERE account_id = ? AND sold = ?
			 ORDER BY created_at DESC, id DESC`, accountID, *sold,
		)
	} else {
		rows, err = db.QueryContext(ctx,
			`SELECT id, account_id, weight_tola, material, labor_cost, description, photo_ref, sold, created_at
			 FROM items WHERE account_id = ?
			 ORDER BY created_at DESC, id DESC`, accountID,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("listing account items: %w", err)
	}
	defer rows.Close()

	return scanItems(rows, false)
}

// ListAllItems returns every item across all accounts newest-first, with
// the owning shop's name and login name joined in.
func ListAllItems(ctx context.Context, db *sql.DB) ([]model.Item, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT i.id, i.account_id, i.weight_tola, i.material, i.labor_cost,
		        i.description, i.photo_ref, i.sold, i.created_at,
		        a.shop_name, a.username
		 FROM items i
		 JOIN accounts a ON a.id = i.account_id
		 ORDER BY i.created_at DESC, i.id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing all items: %w", err)
	}
	defer rows.Close()

	return scanItems(rows, true)
}

func scanItems(rows *sql.Rows, withOwner bool) ([]model.Item, error) {
	var items []model.Item
	for rows.Next() {
		var item model.Item
		var description, photoRef sql.NullString
		dest := []any{&item.ID, &item.AccountID, &item.WeightTola, &item.Material, &item.LaborCost,
			&description, &photoRef, &item.Sold, &item.CreatedAt}
		if withOwner {
			dest = append(dest, &item.ShopName, &item.OwnerUsername)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		item.Description = description.String
		item.PhotoRef = photoRef.String
		items = append(items, item)
	}
	return items, rows.Err()
}

// MarkItemSold marks an item as sold. Sold is terminal: there is no
// operation that flips it back, and marking an already-sold item again is
// a no-op.
func MarkItemSold(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE items SET sold = 1 WHERE id = ?`, id,
	)
	if err != nil {
		return fmt.Errorf("marking item sold: %w", err)
	}
	return nil
}

// SetItemPhoto sets or replaces an item's photo reference, returning the
// previous reference (empty if none) so the caller can clean up the old
// file.
func SetItemPhoto(ctx context.Context, db *sql.DB, id int64, photoRef string) (string, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var old sql.NullString
	err = tx.QueryRowContext(ctx, `SELECT photo_ref FROM items WHERE id = ?`, id).Scan(&old)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("item %d not found", id)
	}
	if err != nil {
		return "", fmt.Errorf("getting item photo ref: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE items SET photo_ref = ? WHERE id = ?`, nullIfEmpty(photoRef), id,
	); err != nil {
		return "", fmt.Errorf("setting item photo ref: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing photo update: %w", err)
	}
	return old.String, nil
}

// DeleteItem hard-deletes an item, returning its photo reference (empty if
// none) so the caller can remove the file after the delete commits.
func DeleteItem(ctx context.Context, db *sql.DB, id int64) (string, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var photoRef sql.NullString
	err = tx.QueryRowContext(ctx, `SELECT photo_ref FROM items WHERE id = ?`, id).Scan(&photoRef)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("item %d not found", id)
	}
	if err != nil {
		return "", fmt.Errorf("getting item photo ref: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id); err != nil {
		return "", fmt.Errorf("deleting item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing item deletion: %w", err)
	}
	return photoRef.String, nil
}
