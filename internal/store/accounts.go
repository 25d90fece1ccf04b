package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/shivam-website/gold-shop/internal/model"
)

// ErrUsernameTaken is returned when creating an account with a username
// that already exists. Checked before any write so a conflict leaves no
// state behind.
var ErrUsernameTaken = fmt.Errorf("username already exists")

// CreateAccount creates a new shop account with the default metal rates.
func CreateAccount(ctx context.Context, db *sql.DB, shopName, username, passwordHash, role string) (*model.Account, error) {
	existing, err := GetAccountByUsername(ctx, db, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO accounts (shop_name, username, password_hash, role) VALUES (?, ?, ?, ?)`,
		shopName, username, passwordHash, role,
	)
	if err != nil {
		return nil, fmt.Errorf("creating account: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting account id: %w", err)
	}

	return GetAccount(ctx, db, id)
}

const accountColumns = `id, shop_name, username, password_hash, role, active,
	gold_rate_per_tola, silver_rate_per_tola, created_at`

func scanAccount(row *sql.Row) (*model.Account, error) {
	a := &model.Account{}
	err := row.Scan(&a.ID, &a.ShopName, &a.Username, &a.PasswordHash, &a.Role, &a.Active,
		&a.GoldRatePerTola, &a.SilverRatePerTola, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning account: %w", err)
	}
	return a, nil
}

// GetAccount returns an account by ID.
func GetAccount(ctx context.Context, db *sql.DB, id int64) (*model.Account, error) {
	return scanAccount(db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id,
	))
}

// GetAccountByUsername returns an account by login name.
func GetAccountByUsername(ctx context.Context, db *sql.DB, username string) (*model.Account, error) {
	return scanAccount(db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE username = ?`, username,
	))
}

// ListAccounts returns all accounts with their item counts, ordered by
// shop name.
func ListAccounts(ctx context.Context, db *sql.DB) ([]model.Account, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT a.id, a.shop_name, a.username, a.password_hash, a.role, a.active,
		        a.gold_rate_per_tola, a.silver_rate_per_tola, a.created_at,
		        COUNT(i.id) AS item_count
		 FROM accounts a
		 LEFT JOIN items i ON i.account_id = a.id
		 GROUP BY a.id
		 ORDER BY a.shop_name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		var a model.Account
		if err := rows.Scan(&a.ID, &a.ShopName, &a.Username, &a.PasswordHash, &a.Role, &a.Active,
			&a.GoldRatePerTola, &a.SilverRatePerTola, &a.CreatedAt, &a.ItemCount); err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// SetAccountActive sets an account's active flag. Deactivation is soft:
// the account and its items stay in place, only login is refused.
func SetAccountActive(ctx context.Context, db *sql.DB, id int64, active bool) error {
	_, err := db.ExecContext(ctx,
		`UPDATE accounts SET active = ? WHERE id = ?`,
		active, id,
	)
	if err != nil {
		return fmt.Errorf("setting account active: %w", err)
	}
	return nil
}

// UpdateAccountRate updates an account's per-tola rate for one material.
func UpdateAccountRate(ctx context.Context, db *sql.DB, id int64, material string, rate decimal.Decimal) error {
	var column string
	switch material {
	case model.MaterialGold:
		column = "gold_rate_per_tola"
	case model.MaterialSilver:
		column = "silver_rate_per_tola"
	default:
		return fmt.Errorf("unknown material %q", material)
	}

	_, err := db.ExecContext(ctx,
		`UPDATE accounts SET `+column+` = ? WHERE id = ?`,
		rate.String(), id,
	)
	if err != nil {
		return fmt.Errorf("updating %s rate: %w", material, err)
	}
	return nil
}

// UpdateAccountPassword updates an account's password hash.
func UpdateAccountPassword(ctx context.Context, db *sql.DB, id int64, passwordHash string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE accounts SET password_hash = ? WHERE id = ?`,
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("updating account password: %w", err)
	}
	return nil
}

// DeleteAccount hard-deletes an account and every item it owns in a single
// transaction. It returns the photo references of the deleted items so the
// caller can remove the files after the commit; photo cleanup is best-effort
// and must never roll the deletion back.
func DeleteAccount(ctx context.Context, db *sql.DB, id int64) ([]string, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		`SELECT photo_ref FROM items WHERE account_id = ? AND photo_ref IS NOT NULL`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("collecting photo refs: %w", err)
	}

	var photoRefs []string
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning photo ref: %w", err)
		}
		if strings.TrimSpace(ref) != "" {
			photoRefs = append(photoRefs, ref)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("collecting photo refs: %w", err)
	}
	rows.Close()

	if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE account_id = ?`, id); err != nil {
		return nil, fmt.Errorf("deleting account items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("deleting account: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing account deletion: %w", err)
	}
	return photoRefs, nil
}
