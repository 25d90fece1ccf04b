package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Item represents a single piece of jewelry. Apart from the sold flag and
// the photo reference, an item never changes after creation.
type Item struct {
	ID          int64           `json:"id"`
	AccountID   int64           `json:"account_id"`
	WeightTola  decimal.Decimal `json:"weight_tola"`
	Material    string          `json:"material"`
	LaborCost   decimal.Decimal `json:"labor_cost"`
	Description string          `json:"description,omitempty"`
	PhotoRef    string          `json:"photo_ref,omitempty"`
	Sold        bool            `json:"sold"`
	CreatedAt   time.Time       `json:"created_at"`

	// Joined fields (not always populated).
	ShopName      string `json:"shop_name,omitempty"`
	OwnerUsername string `json:"owner_username,omitempty"`
}

// Materials.
const (
	MaterialGold   = "gold"
	MaterialSilver = "silver"
)

// ValidMaterial reports whether material is a known item material.
func ValidMaterial(material string) bool {
	return material == MaterialGold || material == MaterialSilver
}

// ItemIDPrefix is the literal prefix of every display identifier.
const ItemIDPrefix = "JW-"

// FormatItemID returns the display identifier for a numeric item key:
// the prefix followed by the key zero-padded to at least four digits.
// Key 7 formats as "JW-0007", key 123456 as "JW-123456".
func FormatItemID(id int64) string {
	return fmt.Sprintf("%s%04d", ItemIDPrefix, id)
}

// ParseItemID parses a display identifier back to its numeric key. The
// prefix is matched case-insensitively and surrounding whitespace is
// ignored. Returns false for anything that is not a well-formed identifier;
// callers treat that the same as a key that does not exist.
func ParseItemID(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if len(s) <= len(ItemIDPrefix) || !strings.EqualFold(s[:len(ItemIDPrefix)], ItemIDPrefix) {
		return 0, false
	}
	id, err := strconv.ParseUint(s[len(ItemIDPrefix):], 10, 63)
	if err != nil {
		return 0, false
	}
	return int64(id), true
}

// DisplayID returns the item's display identifier.
func (i *Item) DisplayID() string {
	return FormatItemID(i.ID)
}
