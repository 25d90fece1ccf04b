package store

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/shivam-website/gold-shop/internal/db"
	"github.com/shivam-website/gold-shop/internal/model"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("NewFromString(%q): %v", s, err)
	}
	return d
}

func TestCreateAndGetAccount(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	acct, err := CreateAccount(ctx, database, "Sharma Jewelers", "sharma", "hash123", model.RoleShopkeeper)
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	if acct.ShopName != "Sharma Jewelers" {
		t.Errorf("expected shop name 'Sharma Jewelers', got %q", acct.ShopName)
	}
	if acct.Role != model.RoleShopkeeper {
		t.Errorf("expected role 'shopkeeper', got %q", acct.Role)
	}
	if !acct.Active {
		t.Error("expected new account to be active")
	}

	// Default rates.
	if !acct.GoldRatePerTola.Equal(dec(t, "70000")) {
		t.Errorf("expected default gold rate 70000, got %s", acct.GoldRatePerTola)
	}
	if !acct.SilverRatePerTola.Equal(dec(t, "1000")) {
		t.Errorf("expected default silver rate 1000, got %s", acct.SilverRatePerTola)
	}

	got, err := GetAccountByUsername(ctx, database, "sharma")
	if err != nil {
		t.Fatalf("GetAccountByUsername: %v", err)
	}
	if got == nil || got.ID != acct.ID {
		t.Errorf("expected account %d by username, got %+v", acct.ID, got)
	}
}

func TestCreateAccountDuplicateUsername(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := CreateAccount(ctx, database, "First", "shop1", "hash", model.RoleShopkeeper); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}

	_, err := CreateAccount(ctx, database, "Second", "shop1", "hash", model.RoleShopkeeper)
	if err != ErrUsernameTaken {
		t.Errorf("expected ErrUsernameTaken, got %v", err)
	}

	// The conflict must leave nothing behind.
	accounts, _ := ListAccounts(ctx, database)
	if len(accounts) != 1 {
		t.Errorf("expected 1 account after conflict, got %d", len(accounts))
	}
}

func TestGetMissingAccount(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	acct, err := GetAccount(ctx, database, 42)
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	if acct != nil {
		t.Error("expected nil for missing account")
	}
}

func TestListAccountsWithItemCounts(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	a, _ := CreateAccount(ctx, database, "Busy Shop", "busy", "hash", model.RoleShopkeeper)
	CreateAccount(ctx, database, "Empty Shop", "empty", "hash", model.RoleShopkeeper)

	CreateItem(ctx, database, a.ID, dec(t, "1"), model.MaterialGold, dec(t, "100"), "", "")
	CreateItem(ctx, database, a.ID, dec(t, "2"), model.MaterialSilver, dec(t, "50"), "", "")

	accounts, err := ListAccounts(ctx, database)
	if err != nil {
		t.Fatalf("ListAccounts: %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(accounts))
	}

	// Ordered by shop name: Busy Shop first.
	if accounts[0].ItemCount != 2 {
		t.Errorf("expected item count 2 for %q, got %d", accounts[0].ShopName, accounts[0].ItemCount)
	}
	if accounts[1].ItemCount != 0 {
		t.Errorf("expected item count 0 for %q, got %d", accounts[1].ShopName, accounts[1].ItemCount)
	}
}

func TestSetAccountActive(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	acct, _ := CreateAccount(ctx, database, "Shop", "shop", "hash", model.RoleShopkeeper)

	if err := SetAccountActive(ctx, database, acct.ID, false); err != nil {
		t.Fatalf("SetAccountActive: %v", err)
	}
	got, _ := GetAccount(ctx, database, acct.ID)
	if got.Active {
		t.Error("expected account to be inactive")
	}

	SetAccountActive(ctx, database, acct.ID, true)
	got, _ = GetAccount(ctx, database, acct.ID)
	if !got.Active {
		t.Error("expected account to be active again")
	}
}

func TestUpdateAccountRate(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	acct, _ := CreateAccount(ctx, database, "Shop", "shop", "hash", model.RoleShopkeeper)

	if err := UpdateAccountRate(ctx, database, acct.ID, model.MaterialGold, dec(t, "71500.50")); err != nil {
		t.Fatalf("UpdateAccountRate gold: %v", err)
	}
	if err := UpdateAccountRate(ctx, database, acct.ID, model.MaterialSilver, dec(t, "1250")); err != nil {
		t.Fatalf("UpdateAccountRate silver: %v", err)
	}

	got, _ := GetAccount(ctx, database, acct.ID)
	if !got.GoldRatePerTola.Equal(dec(t, "71500.50")) {
		t.Errorf("expected gold rate 71500.50, got %s", got.GoldRatePerTola)
	}
	if !got.SilverRatePerTola.Equal(dec(t, "1250")) {
		t.Errorf("expected silver rate 1250, got %s", got.SilverRatePerTola)
	}
}

func TestUpdateAccountRateUnknownMaterial(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	acct, _ := CreateAccount(ctx, database, "Shop", "shop", "hash", model.RoleShopkeeper)

	if err := UpdateAccountRate(ctx, database, acct.ID, "platinum", dec(t, "1")); err == nil {
		t.Error("expected error for unknown material")
	}
}

func TestDeleteAccountCascades(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	acct, _ := CreateAccount(ctx, database, "Doomed Shop", "doomed", "hash", model.RoleShopkeeper)
	other, _ := CreateAccount(ctx, database, "Other Shop", "other", "hash", model.RoleShopkeeper)

	CreateItem(ctx, database, acct.ID, dec(t, "1"), model.MaterialGold, dec(t, "100"), "", "a.jpg")
	CreateItem(ctx, database, acct.ID, dec(t, "2"), model.MaterialSilver, dec(t, "50"), "", "")
	CreateItem(ctx, database, acct.ID, dec(t, "3"), model.MaterialGold, dec(t, "75"), "", "b.jpg")
	keep, _ := CreateItem(ctx, database, other.ID, dec(t, "1"), model.MaterialGold, dec(t, "10"), "", "")

	refs, err := DeleteAccount(ctx, database, acct.ID)
	if err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}
	if len(refs) != 2 {
		t.Errorf("expected 2 photo refs, got %d (%v)", len(refs), refs)
	}

	if got, _ := GetAccount(ctx, database, acct.ID); got != nil {
		t.Error("expected account to be gone")
	}
	items, _ := ListAccountItems(ctx, database, acct.ID, nil)
	if len(items) != 0 {
		t.Errorf("expected 0 items after cascade, got %d", len(items))
	}

	// The other account's inventory is untouched.
	if got, _ := GetItem(ctx, database, keep.ID); got == nil {
		t.Error("expected other account's item to survive")
	}
}

func TestDeleteAccountWithNoItems(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	acct, _ := CreateAccount(ctx, database, "Empty", "empty", "hash", model.RoleShopkeeper)

	refs, err := DeleteAccount(ctx, database, acct.ID)
	if err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}
	if len(refs) != 0 {
		t.Errorf("expected no photo refs, got %v", refs)
	}
	if got, _ := GetAccount(ctx, database, acct.ID); got != nil {
		t.Error("expected account to be gone")
	}
}

func TestAccountKeysNotReusedAfterDelete(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	first, _ := CreateAccount(ctx, database, "First", "first", "hash", model.RoleShopkeeper)
	if _, err := DeleteAccount(ctx, database, first.ID); err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}

	second, _ := CreateAccount(ctx, database, "Second", "second", "hash", model.RoleShopkeeper)
	if second.ID <= first.ID {
		t.Errorf("expected key after %d, got %d (keys must never be reused)", first.ID, second.ID)
	}
}

func TestUpdateAccountPassword(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	acct, _ := CreateAccount(ctx, database, "Shop", "shop", "oldhash", model.RoleShopkeeper)
	UpdateAccountPassword(ctx, database, acct.ID, "newhash")

	got, _ := GetAccount(ctx, database, acct.ID)
	if got.PasswordHash != "newhash" {
		t.Errorf("expected password hash 'newhash', got %q", got.PasswordHash)
	}
}
