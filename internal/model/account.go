package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Account represents a shop account. Every item belongs to exactly one
// account, and prices are always computed from the owning account's rates.
type Account struct {
	ID                int64           `json:"id"`
	ShopName          string          `json:"shop_name"`
	Username          string          `json:"username"`
	PasswordHash      string          `json:"-"`
	Role              string          `json:"role"`
	Active            bool            `json:"active"`
	GoldRatePerTola   decimal.Decimal `json:"gold_rate_per_tola"`
	SilverRatePerTola decimal.Decimal `json:"silver_rate_per_tola"`
	CreatedAt         time.Time       `json:"created_at"`

	// Joined fields (not always populated).
	ItemCount int `json:"item_count,omitempty"`
}

// Roles.
const (
	RoleAdmin      = "admin"
	RoleShopkeeper = "shopkeeper"
)

// ValidRole reports whether role is a known account role.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleShopkeeper
}

// ValidatePassword checks password requirements for new accounts.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	return nil
}
