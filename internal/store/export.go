package store

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/shivam-website/gold-shop/internal/model"
	"github.com/shivam-website/gold-shop/internal/money"
)

// exportHeader is the fixed column order of the inventory export.
var exportHeader = []string{
	"id", "display_id", "shop_name", "username", "material",
	"weight_tola", "labor_cost", "sold", "created_at",
}

// ExportItemsCSV writes every item across all accounts as CSV, oldest
// first. Weight and labor cost are money-rounded, the sold flag renders as
// "Yes"/"No", and timestamps use RFC 3339 so rows sort textually.
func ExportItemsCSV(ctx context.Context, db *sql.DB, w io.Writer) error {
	rows, err := db.QueryContext(ctx,
		`SELECT i.id, i.weight_tola, i.material, i.labor_cost, i.sold, i.created_at,
		        a.shop_name, a.username
		 FROM items i
		 JOIN accounts a ON a.id = i.account_id
		 ORDER BY i.created_at ASC, i.id ASC`,
	)
	if err != nil {
		return fmt.Errorf("querying items for export: %w", err)
	}
	defer rows.Close()

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("writing export header: %w", err)
	}

	for rows.Next() {
		var item model.Item
		if err := rows.Scan(&item.ID, &item.WeightTola, &item.Material, &item.LaborCost,
			&item.Sold, &item.CreatedAt, &item.ShopName, &item.OwnerUsername); err != nil {
			return fmt.Errorf("scanning item for export: %w", err)
		}

		sold := "No"
		if item.Sold {
			sold = "Yes"
		}

		record := []string{
			fmt.Sprintf("%d", item.ID),
			item.DisplayID(),
			item.ShopName,
			item.OwnerUsername,
			item.Material,
			money.Format(money.Round(item.WeightTola)),
			money.Format(money.Round(item.LaborCost)),
			sold,
			item.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing export row: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("reading items for export: %w", err)
	}

	cw.Flush()
	return cw.Error()
}
